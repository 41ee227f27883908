package editor

import (
	"context"
	"slices"
	"testing"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/snapshot"
	"github.com/bichil/orgchart/pkg/storage"
)

// newEditor builds A -> B -> C with A as root and a saved baseline.
func newEditor(t *testing.T) *Editor {
	t.Helper()
	g, err := chart.FromParts(
		[]chart.Node{
			{ID: "A", Label: "A", IsRoot: true},
			{ID: "B", Label: "B"},
			{ID: "C", Label: "C"},
		},
		[]chart.Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "B", Target: "C"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	tr := snapshot.NewTracker(storage.NewMemoryStore(), "", nil)
	e := New(g, tr)
	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return e
}

func TestAddNodeDefaults(t *testing.T) {
	e := newEditor(t)
	n, err := e.AddNode()
	if err != nil {
		t.Fatal(err)
	}
	if n.Label != "Шинэ нэгж" {
		t.Errorf("Label = %q, want Шинэ нэгж", n.Label)
	}
	if n.Position != NewNodePosition {
		t.Errorf("Position = %+v, want %+v", n.Position, NewNodePosition)
	}
	if !e.Dirty() {
		t.Error("Dirty() = false after AddNode")
	}

	en := New(chart.New(), nil, WithLang(i18n.English))
	if n, _ := en.AddNode(); n.Label != "New unit" {
		t.Errorf("English label = %q", n.Label)
	}
}

func TestAddChildMissingParent(t *testing.T) {
	e := newEditor(t)
	_, ok, err := e.AddChild("missing")
	if err != nil || ok {
		t.Errorf("AddChild(missing) = ok %v, err %v; want silent no-op", ok, err)
	}
	if e.Dirty() {
		t.Error("no-op made the chart dirty")
	}
}

func TestEditDialog(t *testing.T) {
	e := newEditor(t)
	if !e.BeginEdit("B") {
		t.Fatal("BeginEdit(B) = false")
	}
	if _, label, _ := e.Editing(); label != "B" {
		t.Errorf("buffer = %q, want B", label)
	}

	e.SetEditLabel("Finance")
	if n, _ := e.Chart().Node("B"); n.Label != "B" {
		t.Error("typing changed the chart before commit")
	}
	if err := e.CommitEdit(); err != nil {
		t.Fatal(err)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", e.Mode())
	}
	if n, _ := e.Chart().Node("B"); n.Label != "Finance" {
		t.Errorf("Label = %q, want Finance", n.Label)
	}

	e.BeginEdit("C")
	e.SetEditLabel("discarded")
	e.CancelEdit()
	if n, _ := e.Chart().Node("C"); n.Label != "C" {
		t.Error("CancelEdit() applied the buffer")
	}

	e.BeginEdit("C")
	e.SetEditLabel("bad\nlabel")
	if err := e.CommitEdit(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("CommitEdit() error = %v, want invalid input", err)
	}
	if e.Mode() != ModeEditing {
		t.Error("invalid label closed the dialog")
	}
}

func TestDeleteNonRoot(t *testing.T) {
	e := newEditor(t)
	res, err := e.RequestDelete("B")
	if err != nil || res != Deleted {
		t.Fatalf("RequestDelete(B) = %v, %v", res, err)
	}
	g := e.Chart()
	if g.HasNode("B") || !g.HasNode("C") {
		t.Error("B should be gone and C kept")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}

	if res, _ := e.RequestDelete("missing"); res != DeleteNoop {
		t.Errorf("RequestDelete(missing) = %v, want noop", res)
	}
}

func TestDeleteSubtree(t *testing.T) {
	e := newEditor(t)
	removed, res, err := e.RequestDeleteSubtree("B")
	if err != nil || res != Deleted {
		t.Fatalf("RequestDeleteSubtree(B) = %v, %v", res, err)
	}
	if !slices.Equal(removed, []string{"B", "C"}) {
		t.Errorf("removed = %v", removed)
	}
	if e.Chart().NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", e.Chart().NodeCount())
	}
}

func TestRootReplacement(t *testing.T) {
	e := newEditor(t)
	res, err := e.RequestDelete("A")
	if err != nil || res != NeedsNewRoot {
		t.Fatalf("RequestDelete(A) = %v, %v", res, err)
	}
	if e.Mode() != ModeSelectingRoot {
		t.Fatalf("Mode = %v, want selecting_root", e.Mode())
	}
	if e.Chart().NodeCount() != 3 {
		t.Error("root request removed something")
	}

	var ids []string
	for _, n := range e.Candidates() {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"B", "C"}) {
		t.Errorf("Candidates = %v, want [B C]", ids)
	}

	if _, err := e.AddNode(); err == nil {
		t.Error("AddNode() during root selection should fail")
	}
	if err := e.ChooseRoot("A"); err == nil {
		t.Error("ChooseRoot(current root) should fail")
	}

	if err := e.ChooseRoot("B"); err != nil {
		t.Fatalf("ChooseRoot(B) error = %v", err)
	}
	g := e.Chart()
	root, _ := g.Root()
	if root.ID != "B" || g.HasNode("A") {
		t.Errorf("root = %s, A present = %v", root.ID, g.HasNode("A"))
	}
	if p, _ := g.Parent("C"); p.ID != "B" {
		t.Errorf("Parent(C) = %q, want B", p.ID)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", e.Mode())
	}

	var steps []string
	for _, tr := range e.Transitions() {
		steps = append(steps, tr.Step)
	}
	want := []string{"root_deletion_requested", "select_root", "root_chosen"}
	if !slices.Equal(steps, want) {
		t.Errorf("transitions = %v, want %v", steps, want)
	}
}

func TestCancelRootSelection(t *testing.T) {
	e := newEditor(t)
	before := e.Chart()
	e.RequestDelete("A")
	e.CancelRootSelection()
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", e.Mode())
	}
	if !e.Chart().Equal(before) {
		t.Error("cancel changed the chart")
	}
	if e.Candidates() != nil {
		t.Error("Candidates() outside selection should be nil")
	}
}

func TestPreviewMode(t *testing.T) {
	e := newEditor(t)
	e.BeginEdit("B")
	e.SetPreview(true)
	if e.Mode() != ModeIdle {
		t.Error("preview did not close the edit dialog")
	}
	if e.BeginEdit("B") {
		t.Error("BeginEdit() allowed in preview")
	}

	checks := map[string]error{}
	_, checks["add"] = e.AddNode()
	_, _, checks["child"] = e.AddChild("A")
	_, checks["connect"] = e.Connect("A", "C")
	_, checks["delete"] = e.RequestDelete("B")
	_, checks["layout"] = e.AutoLayout()
	_, checks["reset"] = e.Reset()
	for name, err := range checks {
		if !errors.Is(err, errors.ErrCodePreview) {
			t.Errorf("%s error = %v, want preview", name, err)
		}
	}
	if e.Dirty() {
		t.Error("preview changed dirty state")
	}

	e.SetPreview(false)
	if _, err := e.AddNode(); err != nil {
		t.Errorf("AddNode() after preview = %v", err)
	}
}

func TestConnectErrors(t *testing.T) {
	e := newEditor(t)
	_, err := e.Connect("A", "C")
	if !errors.Is(err, errors.ErrCodeInvalidEdge) {
		t.Errorf("Connect(A, C) error = %v, want invalid edge", err)
	}
	n, _ := e.AddNode()
	if _, err := e.Connect("C", n.ID); err != nil {
		t.Errorf("Connect(C, new) error = %v", err)
	}
}

func TestSaveResetDirty(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	if e.Dirty() {
		t.Fatal("fresh editor is dirty")
	}
	e.Rename("A", "Board")
	if !e.Dirty() || !e.NeedsConfirm(ActionReset) {
		t.Error("rename should make the chart dirty and reset need confirmation")
	}

	ok, err := e.Reset()
	if err != nil || !ok {
		t.Fatalf("Reset() = %v, %v", ok, err)
	}
	if n, _ := e.Chart().Node("A"); n.Label != "A" {
		t.Errorf("Label after reset = %q", n.Label)
	}
	if e.Dirty() || e.NeedsConfirm(ActionReset) {
		t.Error("reset chart should be clean")
	}

	e.Rename("A", "Board")
	if err := e.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if e.Dirty() {
		t.Error("Dirty() after save")
	}
}

func TestResetWithoutBaseline(t *testing.T) {
	e := New(snapshot.Default(), snapshot.NewTracker(storage.NewMemoryStore(), "", nil))
	ok, err := e.Reset()
	if ok || err != nil {
		t.Errorf("Reset() = %v, %v; want no-op", ok, err)
	}
	e.Rename("tuz", "x")
	if e.Dirty() {
		t.Error("Dirty() without baseline")
	}
}

func TestSaveBusy(t *testing.T) {
	e := newEditor(t)
	e.saving.Store(true)
	if err := e.Save(context.Background()); !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("Save() error = %v, want busy", err)
	}
}

func TestSaveWithoutTracker(t *testing.T) {
	e := New(chart.New(), nil)
	if err := e.Save(context.Background()); !errors.Is(err, errors.ErrCodeNoBaseline) {
		t.Errorf("Save() error = %v, want no baseline", err)
	}
}

func TestReloadAfterMalformedSlot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Set(ctx, storage.DefaultSlot, []byte("not json"))

	e, src := Open(ctx, snapshot.NewTracker(store, "", nil))
	if src != snapshot.SourceMalformed || e.Source() != snapshot.SourceMalformed {
		t.Fatalf("source = %v", src)
	}
	if !e.NeedsConfirm(ActionSave) {
		t.Error("saving over a malformed slot should need confirmation")
	}

	saved, _ := chart.FromParts([]chart.Node{{ID: "r", Label: "R", IsRoot: true}}, nil)
	data, _ := snapshot.Encode(saved)
	_ = store.Set(ctx, storage.DefaultSlot, data)

	e.BeginEdit("tuz")
	src, err := e.Reload(ctx)
	if err != nil || src != snapshot.SourceSaved {
		t.Fatalf("Reload() = %v, %v", src, err)
	}
	if e.Mode() != ModeIdle || !e.Chart().Equal(saved) || !e.HasBaseline() {
		t.Errorf("mode = %v, chart = %v", e.Mode(), e.Chart().Nodes())
	}
	if e.NeedsConfirm(ActionSave) {
		t.Error("a readable slot saves without confirmation")
	}
}

func TestReloadWithoutTracker(t *testing.T) {
	e := New(chart.New(), nil)
	if _, err := e.Reload(context.Background()); !errors.Is(err, errors.ErrCodeNoBaseline) {
		t.Errorf("Reload() error = %v, want no baseline", err)
	}
	if e.Source() != "" || e.NeedsConfirm(ActionSave) {
		t.Errorf("Source() = %q", e.Source())
	}
}

func TestAutoLayout(t *testing.T) {
	e := newEditor(t)
	if _, err := e.AutoLayout(); err != nil {
		t.Fatal(err)
	}
	g := e.Chart()
	want := map[string]chart.Position{"A": {X: 0, Y: 0}, "B": {X: 0, Y: 140}, "C": {X: 0, Y: 280}}
	for id, p := range want {
		if n, _ := g.Node(id); n.Position != p {
			t.Errorf("%s = %+v, want %+v", id, n.Position, p)
		}
	}
}

func TestChartIsACopy(t *testing.T) {
	e := newEditor(t)
	c := e.Chart()
	c.Rename("A", "mutated")
	if e.Dirty() {
		t.Error("mutating Chart() result reached the editor")
	}
}

func TestOpen(t *testing.T) {
	tr := snapshot.NewTracker(storage.NewMemoryStore(), "", nil)
	e, src := Open(context.Background(), tr)
	if src != snapshot.SourceDefault {
		t.Errorf("source = %v, want default", src)
	}
	if e.Chart().NodeCount() != 56 {
		t.Errorf("NodeCount = %d, want default chart", e.Chart().NodeCount())
	}
}

func TestReplace(t *testing.T) {
	e := newEditor(t)
	e.BeginEdit("B")

	imported := chart.New()
	imported.AddNode(chart.Position{}, "Solo")
	if err := e.Replace(imported); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode() = %v, want idle", e.Mode())
	}
	if got := e.Chart().NodeCount(); got != 1 {
		t.Errorf("NodeCount() = %d, want 1", got)
	}
	if !e.Dirty() {
		t.Error("import should leave the chart dirty")
	}
	if e.Slot() != storage.DefaultSlot {
		t.Errorf("Slot() = %q", e.Slot())
	}

	imported.AddNode(chart.Position{}, "later")
	if got := e.Chart().NodeCount(); got != 1 {
		t.Error("Replace() kept a reference to the caller's chart")
	}

	e.SetPreview(true)
	if err := e.Replace(imported); !errors.Is(err, errors.ErrCodePreview) {
		t.Errorf("Replace() in preview error = %v", err)
	}
	if err := New(chart.New(), nil).Replace(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Replace(nil) error = %v", err)
	}
}
