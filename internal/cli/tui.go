package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// =============================================================================
// rootSelectModel - choose the unit that replaces a deleted root
// =============================================================================

type rootSelectModel struct {
	lang       i18n.Lang
	old        chart.Node
	candidates []chart.Node
	cursor     int
	offset     int
	height     int

	chosen string
	done   bool
}

func newRootSelectModel(lang i18n.Lang, old chart.Node, candidates []chart.Node) rootSelectModel {
	return rootSelectModel{lang: lang, old: old, candidates: candidates, height: 10}
}

func (m rootSelectModel) Init() tea.Cmd {
	return nil
}

func (m rootSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m = m.update(msg)
	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

// update applies one message. done is set once the user picks a unit
// (chosen != "") or backs out (chosen == "").
func (m rootSelectModel) update(msg tea.Msg) rootSelectModel {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen, m.done = "", true
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.candidates) > 0 {
				m.chosen, m.done = m.candidates[m.cursor].ID, true
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 3)
	}
	return m
}

func (m rootSelectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(i18n.T(m.lang, i18n.RootSelectTitle)))
	b.WriteString("\n")
	b.WriteString(StyleWarning.Render(i18n.T(m.lang, i18n.RootIsCurrent, m.old.Label)))
	b.WriteString("\n")
	b.WriteString(i18n.T(m.lang, i18n.RootSelectPrompt))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc " + i18n.T(m.lang, i18n.Cancel)))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.candidates))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, m.candidates[i].Label, m.candidates[i].ID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Unit", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.candidates))))
	return b.String()
}

// runRootSelect shows the picker full screen and returns the chosen ID, or
// "" when the user cancelled.
func runRootSelect(lang i18n.Lang, old chart.Node, candidates []chart.Node) (string, error) {
	final, err := tea.NewProgram(newRootSelectModel(lang, old, candidates)).Run()
	if err != nil {
		return "", err
	}
	return final.(rootSelectModel).chosen, nil
}

// =============================================================================
// editorModel - the interactive chart editor
// =============================================================================

type row struct {
	node   chart.Node
	depth  int
	orphan bool
}

type confirmState struct {
	question string
	onYes    func(m *editorModel) tea.Cmd
}

type exportDoneMsg struct {
	path   string
	cached bool
	err    error
}

type editorModel struct {
	ctx    context.Context
	ed     *editor.Editor
	runner *export.Runner

	rows   []row
	cursor int
	offset int
	height int

	status    string
	isErr     bool
	confirm   *confirmState
	roots     *rootSelectModel
	exporting bool
	seed      func() uint64

	// opened is the chart as loaded, for charts without a saved baseline.
	opened *chart.Graph
}

func newEditorModel(ctx context.Context, ed *editor.Editor, runner *export.Runner) *editorModel {
	m := &editorModel{
		ctx:    ctx,
		ed:     ed,
		runner: runner,
		height: 20,
		seed:   func() uint64 { return uint64(time.Now().UnixNano()) },
		opened: ed.Chart(),
	}
	m.refresh()
	return m
}

// refresh rebuilds the visible rows: the rooted tree in walk order, then
// the orphans.
func (m *editorModel) refresh() {
	g := m.ed.Chart()
	m.rows = m.rows[:0]
	g.Walk(func(n chart.Node, depth int) bool {
		m.rows = append(m.rows, row{node: n, depth: depth})
		return true
	})
	for _, n := range g.Orphans() {
		m.rows = append(m.rows, row{node: n, orphan: true})
	}
	m.cursor = max(min(m.cursor, len(m.rows)-1), 0)
	m.scroll()
}

func (m *editorModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *editorModel) selected() (chart.Node, bool) {
	if m.cursor >= len(m.rows) {
		return chart.Node{}, false
	}
	return m.rows[m.cursor].node, true
}

func (m *editorModel) lang() i18n.Lang { return m.ed.Lang() }

func (m *editorModel) setStatus(format string, args ...any) {
	m.status, m.isErr = fmt.Sprintf(format, args...), false
}

func (m *editorModel) setError(err error) {
	m.status, m.isErr = errors.UserMessage(err), true
}

// apply records err, if any, and redraws after a mutation.
func (m *editorModel) apply(err error) {
	if err != nil {
		m.setError(err)
	}
	m.refresh()
}

// unsaved reports edits that quitting would lose. Without a baseline the
// chart is compared with the one the editor opened on.
func (m *editorModel) unsaved() bool {
	if m.ed.HasBaseline() {
		return m.ed.Dirty()
	}
	return !m.ed.Chart().Equal(m.opened)
}

func (m *editorModel) ask(question string, onYes func(m *editorModel) tea.Cmd) {
	m.confirm = &confirmState{question: question, onYes: onYes}
}

func (m *editorModel) Init() tea.Cmd {
	return nil
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
		m.scroll()
	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.status, m.isErr = exportMessage(m.lang(), msg.err), true
		} else {
			m.setStatus("%s %s %s", i18n.T(m.lang(), i18n.PNGExported), iconArrow, msg.path)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			c := m.confirm
			m.confirm = nil
			return m, c.onYes(m)
		case "n", "N", "esc":
			m.confirm = nil
			m.setStatus("%s", i18n.T(m.lang(), i18n.Cancel))
		}
		return m, nil
	}

	switch m.ed.Mode() {
	case editor.ModeEditing:
		return m, m.handleEditKey(msg)
	case editor.ModeSelectingRoot:
		return m, m.handleRootKey(msg)
	default:
		return m, m.handleIdleKey(msg.String())
	}
}

// handleEditKey types into the label buffer; the dialog's own keys go
// through the editor's bindings.
func (m *editorModel) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	id, label, _ := m.ed.Editing()
	switch msg.Type {
	case tea.KeyRunes:
		m.ed.SetEditLabel(label + string(msg.Runes))
		return nil
	case tea.KeySpace:
		m.ed.SetEditLabel(label + " ")
		return nil
	case tea.KeyBackspace:
		if r := []rune(label); len(r) > 0 {
			m.ed.SetEditLabel(string(r[:len(r)-1]))
		}
		return nil
	case tea.KeyCtrlU:
		m.ed.SetEditLabel("")
		return nil
	}

	key := msg.String()
	if key == "delete" {
		n, ok := m.ed.Chart().Node(id)
		if !ok || n.IsRoot {
			return nil
		}
		m.ask(i18n.T(m.lang(), i18n.ConfirmDelete, n.Label), func(m *editorModel) tea.Cmd {
			_, err := m.ed.HandleKey("delete")
			m.apply(err)
			return nil
		})
		return nil
	}
	if consumed, err := m.ed.HandleKey(key); consumed {
		m.apply(err)
	}
	return nil
}

func (m *editorModel) handleRootKey(msg tea.KeyMsg) tea.Cmd {
	if m.roots == nil {
		m.openRootSelect()
		if m.roots == nil {
			return nil
		}
	}
	next := m.roots.update(msg)
	m.roots = &next
	if !next.done {
		return nil
	}
	if next.chosen == "" {
		m.ed.HandleKey("esc")
		m.roots = nil
		m.setStatus("%s", i18n.T(m.lang(), i18n.Cancel))
		return nil
	}

	m.roots.done = false
	choice := next.chosen
	label := choice
	if n, ok := m.ed.Chart().Node(choice); ok {
		label = n.Label
	}
	m.ask(i18n.T(m.lang(), i18n.RootSelectTitle)+": "+label+"?", func(m *editorModel) tea.Cmd {
		if err := m.ed.ChooseRoot(choice); err != nil {
			m.ed.CancelRootSelection()
			m.setError(err)
		}
		m.roots = nil
		m.refresh()
		return nil
	})
	return nil
}

// openRootSelect starts the picker for a pending root deletion. A root
// with nothing to replace it is kept.
func (m *editorModel) openRootSelect() {
	old, ok := m.ed.PendingRoot()
	if !ok {
		return
	}
	candidates := m.ed.Candidates()
	if len(candidates) == 0 {
		m.ed.CancelRootSelection()
		m.setError(errors.New(errors.ErrCodeRootDeletion, "%q is the only unit", old.Label))
		return
	}
	rs := newRootSelectModel(m.lang(), old, candidates)
	rs.height = max(m.height-6, 3)
	m.roots = &rs
}

func (m *editorModel) handleIdleKey(key string) tea.Cmd {
	lang := m.lang()
	switch key {
	case "q":
		if m.unsaved() {
			m.ask(i18n.T(lang, i18n.ConfirmReset), func(*editorModel) tea.Cmd { return tea.Quit })
			return nil
		}
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}
	case "home", "g":
		m.cursor = 0
		m.scroll()
	case "end", "G":
		m.cursor = max(len(m.rows)-1, 0)
		m.scroll()
	case "enter", "e":
		if n, ok := m.selected(); ok && !m.ed.BeginEdit(n.ID) && m.ed.Preview() {
			m.setStatus("%s", i18n.T(lang, i18n.PreviewOn))
		}
	case "a":
		if n, ok := m.selected(); ok {
			_, _, err := m.ed.AddChild(n.ID)
			m.apply(err)
		}
	case "n":
		_, err := m.ed.AddNode()
		m.apply(err)
		if err == nil {
			m.cursor = len(m.rows) - 1
			m.scroll()
		}
	case "d", "D":
		n, ok := m.selected()
		if !ok {
			return nil
		}
		cascade := key == "D"
		m.ask(i18n.T(lang, i18n.ConfirmDelete, n.Label), func(m *editorModel) tea.Cmd {
			var (
				res editor.DeleteResult
				err error
			)
			if cascade {
				_, res, err = m.ed.RequestDeleteSubtree(n.ID)
			} else {
				res, err = m.ed.RequestDelete(n.ID)
			}
			m.apply(err)
			if res == editor.NeedsNewRoot {
				m.openRootSelect()
			}
			return nil
		})
	case "l":
		moved, err := m.ed.AutoLayout()
		m.apply(err)
		if err == nil {
			m.setStatus("%d unit(s) moved", moved)
		}
	case "S":
		seed := m.seed()
		_, err := m.ed.Scatter(seed)
		m.apply(err)
		if err == nil {
			m.setStatus("scatter seed %d", seed)
		}
	case "p":
		m.ed.SetPreview(!m.ed.Preview())
		m.status = ""
		if m.ed.Preview() {
			m.setStatus("%s", i18n.T(lang, i18n.PreviewOn))
		}
	case "s", "ctrl+s":
		save := func(m *editorModel) tea.Cmd {
			if err := m.ed.Save(m.ctx); err != nil {
				m.setError(err)
			} else {
				m.setStatus("%s", i18n.T(m.lang(), i18n.Saved))
			}
			return nil
		}
		if m.ed.NeedsConfirm(editor.ActionSave) {
			m.ask(i18n.T(lang, i18n.ConfirmOverwrite, m.ed.Slot()), save)
			return nil
		}
		return save(m)
	case "u":
		reset := func(m *editorModel) tea.Cmd {
			ok, err := m.ed.Reset()
			m.apply(err)
			if ok {
				m.setStatus("%s", i18n.T(m.lang(), i18n.ResetDone))
			}
			return nil
		}
		if m.ed.NeedsConfirm(editor.ActionReset) {
			m.ask(i18n.T(lang, i18n.ConfirmReset), reset)
			return nil
		}
		return reset(m)
	case "x":
		if m.runner == nil || m.exporting {
			return nil
		}
		m.exporting = true
		m.setStatus("…")
		return exportPNG(m.ctx, m.runner, m.ed.Chart(), export.FormatPNG.FileName())
	}
	return nil
}

// exportPNG renders a copy of the chart off the event loop.
func exportPNG(ctx context.Context, r *export.Runner, g *chart.Graph, path string) tea.Cmd {
	return func() tea.Msg {
		art, err := r.Render(ctx, g, export.FormatPNG)
		if err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		return exportDoneMsg{path: path, cached: art.Cached}
	}
}

func (m *editorModel) View() string {
	lang := m.lang()
	var b strings.Builder

	b.WriteString(StyleTitle.Render(i18n.T(lang, i18n.Title)))
	if slot := m.ed.Slot(); slot != "" {
		b.WriteString(" " + listDimStyle.Render(slot))
	}
	if m.ed.Dirty() {
		b.WriteString("  " + StyleWarning.Render(i18n.T(lang, i18n.Unsaved)))
	}
	if m.ed.Preview() {
		b.WriteString("  " + StyleHighlight.Render(i18n.T(lang, i18n.PreviewOn)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.viewRows())

	switch {
	case m.roots != nil && m.ed.Mode() == editor.ModeSelectingRoot && m.confirm == nil:
		b.WriteString("\n")
		b.WriteString(dialogStyle.Render(m.roots.View()))
	case m.ed.Mode() == editor.ModeEditing:
		b.WriteString("\n")
		b.WriteString(m.viewEditDialog())
	}

	b.WriteString("\n")
	if m.confirm != nil {
		b.WriteString(StyleWarning.Render(m.confirm.question) + " [y/N]\n")
	} else if m.status != "" {
		if m.isErr {
			b.WriteString(styleIconError.Render(iconError) + " " + m.status + "\n")
		} else {
			b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.status + "\n")
		}
	}
	b.WriteString(listDimStyle.Render(m.help()))
	return b.String()
}

func (m *editorModel) viewRows() string {
	var b strings.Builder
	end := min(m.offset+m.height, len(m.rows))
	orphanHeader := false
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		if r.orphan && !orphanHeader {
			b.WriteString("\n" + styleOrphan.Render(i18n.T(m.lang(), i18n.Orphans)) + "\n")
			orphanHeader = true
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", r.depth) + r.node.Label + " " + styleNodeID.Render(r.node.ID)
		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case r.node.IsRoot:
			b.WriteString(styleRoot.Render(line))
		case r.orphan:
			b.WriteString(styleOrphan.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.rows) > m.height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))) + "\n")
	}
	return b.String()
}

func (m *editorModel) viewEditDialog() string {
	_, label, _ := m.ed.Editing()
	var keys []string
	for _, kb := range m.ed.Bindings() {
		keys = append(keys, kb.Key+" "+kb.Help)
	}
	body := StyleTitle.Render(i18n.T(m.lang(), i18n.EditTitle)) + "\n" +
		StyleValue.Render(label) + StyleHighlight.Render("█") + "\n" +
		listDimStyle.Render(strings.Join(keys, "  "))
	return dialogStyle.Render(body)
}

func (m *editorModel) help() string {
	switch m.ed.Mode() {
	case editor.ModeEditing, editor.ModeSelectingRoot:
		return ""
	}
	if m.ed.Preview() {
		return "↑/↓ move  p " + i18n.T(m.lang(), i18n.Preview) + "  x png  q quit"
	}
	return "↑/↓ move  ⏎ rename  a child  n unit  d delete  D subtree  l layout  S scatter  p preview  s save  u reset  x png  q quit"
}

// =============================================================================
// edit command
// =============================================================================

func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the chart interactively",
		Long: `Open the chart in a full-screen editor. Changes stay in memory until you
save with "s"; quitting with unsaved changes asks first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			runner, err := c.newRunner(false)
			if err != nil {
				return err
			}
			defer runner.Close()

			p := tea.NewProgram(newEditorModel(ctx, s.editor, runner), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return err
			}
			if s.editor.Dirty() {
				printWarning(c.out, "%s", i18n.T(s.editor.Lang(), i18n.Unsaved))
			}
			return nil
		},
	}
}
