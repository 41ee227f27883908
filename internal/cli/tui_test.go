package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/snapshot"
	"github.com/bichil/orgchart/pkg/storage"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func newTestModel(t *testing.T) *editorModel {
	t.Helper()
	g, err := snapshot.Decode([]byte(abcChart))
	if err != nil {
		t.Fatal(err)
	}
	ed := editor.New(g, nil, editor.WithLang(i18n.English))
	return newEditorModel(context.Background(), ed, nil)
}

func press(m *editorModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func TestEditorModelAddChild(t *testing.T) {
	m := newTestModel(t)
	press(m, "a")

	kids := m.ed.Chart().Children("A")
	if len(kids) != 2 || kids[1].Label != "New unit" {
		t.Fatalf("children of A = %+v", kids)
	}
	if len(m.rows) != 4 {
		t.Errorf("rows = %d, want 4", len(m.rows))
	}
}

func TestEditorModelRename(t *testing.T) {
	m := newTestModel(t)
	press(m, "down", "enter")

	id, label, ok := m.ed.Editing()
	if !ok || id != "B" || label != "Deputy" {
		t.Fatalf("editing = %q %q %v", id, label, ok)
	}

	press(m, "ctrl+u", "Chief", "backspace", "f", "enter")
	if m.ed.Mode() != editor.ModeIdle {
		t.Fatalf("mode = %v, want idle", m.ed.Mode())
	}
	if n, _ := m.ed.Chart().Node("B"); n.Label != "Chief" {
		t.Errorf("label = %q, want Chief", n.Label)
	}
	if !strings.Contains(m.View(), "Chief") {
		t.Error("view does not show the new label")
	}
}

func TestEditorModelDelete(t *testing.T) {
	m := newTestModel(t)
	press(m, "G", "d")
	if m.confirm == nil {
		t.Fatal("delete should ask first")
	}
	press(m, "n")
	if !m.ed.Chart().HasNode("C") {
		t.Fatal("declined delete removed C")
	}

	press(m, "d", "y")
	if m.ed.Chart().HasNode("C") {
		t.Fatal("confirmed delete kept C")
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor %d beyond rows %d", m.cursor, len(m.rows))
	}
}

func TestEditorModelDeleteFromDialog(t *testing.T) {
	m := newTestModel(t)
	press(m, "down", "enter", "delete", "y")

	g := m.ed.Chart()
	if g.HasNode("B") {
		t.Fatal("B should be deleted")
	}
	if m.ed.Mode() != editor.ModeIdle {
		t.Errorf("mode = %v, want idle", m.ed.Mode())
	}
	if o := g.Orphans(); len(o) != 1 || o[0].ID != "C" {
		t.Errorf("orphans = %+v, want C", o)
	}
}

func TestEditorModelReplaceRoot(t *testing.T) {
	m := newTestModel(t)
	press(m, "d", "y")

	if m.ed.Mode() != editor.ModeSelectingRoot || m.roots == nil {
		t.Fatalf("mode = %v, picker open = %v", m.ed.Mode(), m.roots != nil)
	}
	if !strings.Contains(m.View(), "Deputy") {
		t.Error("picker should list the candidates")
	}

	press(m, "down", "enter")
	if m.confirm == nil {
		t.Fatal("picking a root should ask first")
	}
	press(m, "y")

	g := m.ed.Chart()
	root, ok := g.Root()
	if !ok || root.ID != "C" || g.HasNode("A") {
		t.Fatalf("root = %+v, A present = %v", root, g.HasNode("A"))
	}
	if m.roots != nil || m.ed.Mode() != editor.ModeIdle {
		t.Error("picker should close after the choice")
	}
}

func TestEditorModelCancelRootReplacement(t *testing.T) {
	m := newTestModel(t)
	press(m, "d", "y", "esc")

	if m.ed.Mode() != editor.ModeIdle || m.roots != nil {
		t.Fatalf("mode = %v, picker open = %v", m.ed.Mode(), m.roots != nil)
	}
	if root, _ := m.ed.Chart().Root(); root.ID != "A" {
		t.Errorf("root = %q, want A", root.ID)
	}
}

func TestEditorModelPreviewBlocksEdits(t *testing.T) {
	m := newTestModel(t)
	press(m, "p", "a")

	if !m.isErr {
		t.Error("adding in preview should report an error")
	}
	if n := m.ed.Chart().NodeCount(); n != 3 {
		t.Errorf("NodeCount = %d, want 3", n)
	}

	press(m, "enter")
	if _, _, ok := m.ed.Editing(); ok {
		t.Error("preview should not open the edit dialog")
	}

	press(m, "p", "a")
	if n := m.ed.Chart().NodeCount(); n != 4 {
		t.Errorf("NodeCount after preview off = %d, want 4", n)
	}
}

func TestEditorModelLayoutAndScatter(t *testing.T) {
	m := newTestModel(t)
	m.seed = func() uint64 { return 7 }

	press(m, "l")
	if c, _ := m.ed.Chart().Node("C"); c.Position.Y != 280 {
		t.Errorf("C.y = %v, want 280", c.Position.Y)
	}

	press(m, "S")
	if m.status != "scatter seed 7" {
		t.Errorf("status = %q", m.status)
	}
}

func TestEditorModelQuit(t *testing.T) {
	m := newTestModel(t)
	if cmd := press(m, "q"); cmd == nil {
		t.Fatal("q on a clean chart should quit")
	}
}

func TestEditorModelQuitAsksAboutUnsavedEdits(t *testing.T) {
	m := newTestModel(t)
	if m.ed.HasBaseline() {
		t.Fatal("test chart should have no baseline")
	}
	press(m, "a")

	if cmd := press(m, "q"); cmd != nil || m.confirm == nil {
		t.Fatal("q after an edit should ask before quitting")
	}
	press(m, "n")
	if m.confirm != nil || m.ed.Chart().NodeCount() != 4 {
		t.Fatal("declining should keep the editor open with the edit")
	}

	press(m, "q")
	if cmd := press(m, "y"); cmd == nil {
		t.Error("confirming should quit")
	}
}

func TestEditorModelSaveOverMalformedSlotAsks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Set(ctx, storage.DefaultSlot, []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	ed, src := editor.Open(ctx, snapshot.NewTracker(store, "", nil), editor.WithLang(i18n.English))
	if src != snapshot.SourceMalformed {
		t.Fatalf("source = %v", src)
	}
	m := newEditorModel(ctx, ed, nil)

	press(m, "s")
	if m.confirm == nil || !strings.Contains(m.View(), "could not be read") {
		t.Fatal("saving over a malformed slot should ask first")
	}
	press(m, "n")
	if data, _, _ := store.Get(ctx, storage.DefaultSlot); string(data) != "{broken" {
		t.Fatalf("declined save wrote %s", data)
	}

	press(m, "s", "y")
	if m.isErr || m.status != "✅ Saved" {
		t.Errorf("status = %q err = %v", m.status, m.isErr)
	}
	if _, ok, _ := store.Get(ctx, storage.DefaultSlot); !ok || !ed.HasBaseline() {
		t.Error("confirmed save should fill the slot")
	}
}

func TestEditorModelSaveWithoutTracker(t *testing.T) {
	m := newTestModel(t)
	press(m, "s")
	if !m.isErr {
		t.Errorf("save without a slot should fail, status %q", m.status)
	}
}

func TestRootSelectModelNavigation(t *testing.T) {
	candidates := []chart.Node{{ID: "B", Label: "Deputy"}, {ID: "C", Label: "Office"}, {ID: "D", Label: "Desk"}}
	m := newRootSelectModel(i18n.English, chart.Node{ID: "A", Label: "Director"}, candidates)
	m.height = 2

	m = m.update(keyMsg("up"))
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
	m = m.update(keyMsg("j"))
	m = m.update(keyMsg("down"))
	m = m.update(keyMsg("down"))
	if m.cursor != 2 || m.offset != 1 {
		t.Fatalf("cursor = %d offset = %d, want 2 1", m.cursor, m.offset)
	}

	model, cmd := m.Update(keyMsg("enter"))
	got := model.(rootSelectModel)
	if !got.done || got.chosen != "D" || cmd == nil {
		t.Errorf("done = %v chosen = %q cmd = %v", got.done, got.chosen, cmd != nil)
	}
}

func TestRootSelectModelCancel(t *testing.T) {
	m := newRootSelectModel(i18n.English, chart.Node{ID: "A"}, []chart.Node{{ID: "B"}})
	m = m.update(keyMsg("esc"))
	if !m.done || m.chosen != "" {
		t.Errorf("done = %v chosen = %q", m.done, m.chosen)
	}
}
