// Package editor implements the interactive editing protocol on top of a
// chart: the label edit dialog, root replacement, preview mode, and
// save/reset against a snapshot tracker.
//
// The editor is a small state machine:
//
//	Idle ──BeginEdit──▶ Editing ──Commit/Cancel──▶ Idle
//	Idle ──RequestDelete(root)──▶ SelectingRoot ──ChooseRoot/Cancel──▶ Idle
//
// Deleting the root never happens directly. The request moves the editor into
// SelectingRoot, the caller shows [Editor.Candidates], and [Editor.ChooseRoot]
// promotes the chosen node and removes the old root in one step.
//
// An Editor is not safe for concurrent use; shells serialize access.
package editor

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/chart/layout"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/observability"
	"github.com/bichil/orgchart/pkg/snapshot"
)

// NewNodePosition is where [Editor.AddNode] drops a detached unit.
var NewNodePosition = chart.Position{X: 500, Y: 500}

// Mode is the editor's current state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditing
	ModeSelectingRoot
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeEditing:
		return "editing"
	case ModeSelectingRoot:
		return "selecting_root"
	default:
		return "unknown"
	}
}

// Transition is one entry of the state machine log. Step names the event
// that caused it.
type Transition struct {
	From, To Mode
	Step     string
}

const maxTransitions = 64

// DeleteResult says what a delete request did.
type DeleteResult int

const (
	// DeleteNoop means the node did not exist.
	DeleteNoop DeleteResult = iota
	// Deleted means the node (or subtree) is gone.
	Deleted
	// NeedsNewRoot means the target was the root; the editor is now in
	// ModeSelectingRoot and nothing was removed yet.
	NeedsNewRoot
)

// Action names a user action that may need confirmation.
type Action int

const (
	ActionDelete Action = iota
	ActionDeleteSubtree
	ActionReset
	ActionChooseRoot
	ActionSave
)

// Editor drives one chart.
type Editor struct {
	graph   *chart.Graph
	tracker *snapshot.Tracker
	logger  *log.Logger
	lang    i18n.Lang
	layout  layout.Options
	scatter *layout.ScatterOptions

	mode        Mode
	editing     string
	editLabel   string
	pendingRoot string
	preview     bool
	transitions []Transition

	saving atomic.Bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLang sets the language used for default labels.
func WithLang(lang i18n.Lang) Option { return func(e *Editor) { e.lang = lang } }

// WithLayout overrides the auto-layout constants.
func WithLayout(opts layout.Options) Option { return func(e *Editor) { e.layout = opts } }

// WithScatter overrides the scatter preset.
func WithScatter(opts layout.ScatterOptions) Option {
	return func(e *Editor) { e.scatter = &opts }
}

// New wraps an existing chart. tracker may be nil for a chart that is never
// persisted; Save then fails with ErrCodeNoBaseline and Dirty is always false.
func New(g *chart.Graph, tracker *snapshot.Tracker, opts ...Option) *Editor {
	e := &Editor{
		graph:   g,
		tracker: tracker,
		logger:  log.New(io.Discard),
		lang:    i18n.Default,
		layout:  layout.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the tracker's slot and returns an editor over the result.
func Open(ctx context.Context, tracker *snapshot.Tracker, opts ...Option) (*Editor, snapshot.Source) {
	g, src := tracker.Load(ctx)
	return New(g, tracker, opts...), src
}

// Chart returns a deep copy of the working chart for rendering.
func (e *Editor) Chart() *chart.Graph { return e.graph.Clone() }

// Mode returns the current state.
func (e *Editor) Mode() Mode { return e.mode }

// Preview reports whether preview (read-only) mode is on.
func (e *Editor) Preview() bool { return e.preview }

// Lang returns the editor language.
func (e *Editor) Lang() i18n.Lang { return e.lang }

// Editing returns the node under edit and the current buffer.
func (e *Editor) Editing() (id, label string, ok bool) {
	if e.mode != ModeEditing {
		return "", "", false
	}
	return e.editing, e.editLabel, true
}

// PendingRoot returns the root whose deletion is awaiting a replacement.
func (e *Editor) PendingRoot() (chart.Node, bool) {
	if e.mode != ModeSelectingRoot {
		return chart.Node{}, false
	}
	return e.graph.Node(e.pendingRoot)
}

// Transitions returns the most recent state machine transitions, oldest first.
func (e *Editor) Transitions() []Transition {
	return append([]Transition(nil), e.transitions...)
}

func (e *Editor) setMode(to Mode, step string) {
	from := e.mode
	e.mode = to
	e.transitions = append(e.transitions, Transition{From: from, To: to, Step: step})
	if len(e.transitions) > maxTransitions {
		e.transitions = e.transitions[len(e.transitions)-maxTransitions:]
	}
	if from != to {
		observability.Editor().OnModeChange(from.String(), to.String())
		e.logger.Debug("mode change", "from", from, "to", to, "step", step)
	}
}

// guard rejects mutations in preview mode and while a root replacement is
// pending.
func (e *Editor) guard() error {
	if e.preview {
		return errors.New(errors.ErrCodePreview, "chart is read-only in preview mode")
	}
	if e.mode == ModeSelectingRoot {
		return errors.New(errors.ErrCodeInvalidInput, "choose a new root or cancel first")
	}
	return nil
}

func (e *Editor) record(op string, err error) {
	observability.Editor().OnMutation(op, err)
	if err != nil {
		e.logger.Debug("mutation rejected", "op", op, "err", err)
	}
}

// AddNode adds a detached unit with the default label.
func (e *Editor) AddNode() (chart.Node, error) {
	if err := e.guard(); err != nil {
		e.record("add_node", err)
		return chart.Node{}, err
	}
	n := e.graph.AddNode(NewNodePosition, i18n.T(e.lang, i18n.NewUnitLabel))
	e.record("add_node", nil)
	return n, nil
}

// AddChild adds a unit below parentID. A missing parent is a silent no-op.
func (e *Editor) AddChild(parentID string) (chart.Node, bool, error) {
	if err := e.guard(); err != nil {
		e.record("add_child", err)
		return chart.Node{}, false, err
	}
	n, _, ok := e.graph.AddChild(parentID, i18n.T(e.lang, i18n.NewUnitLabel))
	if ok {
		e.record("add_child", nil)
	}
	return n, ok, nil
}

// Rename sets a label directly, outside the edit dialog.
func (e *Editor) Rename(id, label string) (bool, error) {
	if err := e.guard(); err != nil {
		e.record("rename", err)
		return false, err
	}
	if err := errors.ValidateLabel(label); err != nil {
		e.record("rename", err)
		return false, err
	}
	ok := e.graph.Rename(id, label)
	if ok {
		e.record("rename", nil)
	}
	return ok, nil
}

// Move places a node by hand.
func (e *Editor) Move(id string, pos chart.Position) (bool, error) {
	if err := e.guard(); err != nil {
		e.record("move", err)
		return false, err
	}
	ok := e.graph.Move(id, pos)
	if ok {
		e.record("move", nil)
	}
	return ok, nil
}

// Connect adds a reporting line. Structural refusals carry ErrCodeInvalidEdge.
func (e *Editor) Connect(source, target string) (chart.Edge, error) {
	if err := e.guard(); err != nil {
		e.record("connect", err)
		return chart.Edge{}, err
	}
	edge, err := e.graph.Connect(source, target)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidEdge, err, "cannot connect %q to %q", source, target)
	}
	e.record("connect", err)
	return edge, err
}

// Disconnect removes a reporting line by edge ID.
func (e *Editor) Disconnect(edgeID string) (bool, error) {
	if err := e.guard(); err != nil {
		e.record("disconnect", err)
		return false, err
	}
	ok := e.graph.DisconnectEdge(edgeID)
	if ok {
		e.record("disconnect", nil)
	}
	return ok, nil
}

// AutoLayout repositions the rooted tree and returns how many units moved.
func (e *Editor) AutoLayout() (int, error) {
	if err := e.guard(); err != nil {
		e.record("layout", err)
		return 0, err
	}
	moved := layout.Apply(e.graph, e.layout)
	e.record("layout", nil)
	return moved, nil
}

// Scatter applies the seeded scatter preset.
func (e *Editor) Scatter(seed uint64) (int, error) {
	if err := e.guard(); err != nil {
		e.record("scatter", err)
		return 0, err
	}
	opts := e.scatter
	if opts == nil {
		opts = &layout.ScatterOptions{Layout: e.layout, JitterX: 60, JitterY: 30}
	}
	moved := e.graph.SetPositions(layout.Scatter(e.graph, seed, opts))
	e.record("scatter", nil)
	return moved, nil
}

// SetPreview toggles read-only preview. Turning it on closes the edit dialog.
func (e *Editor) SetPreview(on bool) {
	if on && e.mode == ModeEditing {
		e.editing, e.editLabel = "", ""
		e.setMode(ModeIdle, "preview")
	}
	e.preview = on
}

// Dirty reports unsaved changes. It is false until a baseline exists.
func (e *Editor) Dirty() bool {
	if e.tracker == nil {
		return false
	}
	return e.tracker.Dirty(e.graph)
}

// HasBaseline reports whether a saved snapshot exists to reset to.
func (e *Editor) HasBaseline() bool {
	return e.tracker != nil && e.tracker.HasBaseline()
}

// Save persists the chart and makes it the new baseline. A save already in
// flight makes the call fail with ErrCodeBusy.
func (e *Editor) Save(ctx context.Context) error {
	if e.tracker == nil {
		return errors.New(errors.ErrCodeNoBaseline, "chart has no storage slot")
	}
	if !e.saving.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeBusy, "save already in progress")
	}
	defer e.saving.Store(false)

	err := e.tracker.Save(ctx, e.graph)
	e.record("save", err)
	return err
}

// Reset replaces the working chart with a copy of the baseline and closes
// any dialog. Without a baseline it does nothing and reports false.
func (e *Editor) Reset() (bool, error) {
	if e.preview {
		err := errors.New(errors.ErrCodePreview, "chart is read-only in preview mode")
		e.record("reset", err)
		return false, err
	}
	if e.tracker == nil {
		return false, nil
	}
	g, ok := e.tracker.Reset()
	if !ok {
		return false, nil
	}
	e.graph = g
	e.editing, e.editLabel, e.pendingRoot = "", "", ""
	if e.mode != ModeIdle {
		e.setMode(ModeIdle, "reset")
	}
	e.record("reset", nil)
	return true, nil
}

// NeedsConfirm reports whether the shell must ask before performing action.
func (e *Editor) NeedsConfirm(action Action) bool {
	switch action {
	case ActionDelete, ActionDeleteSubtree, ActionChooseRoot:
		return true
	case ActionReset:
		return e.Dirty()
	case ActionSave:
		return e.Source() == snapshot.SourceMalformed
	default:
		return false
	}
}

// Replace swaps in an imported chart, closing any dialog. The baseline is
// untouched, so the import shows as unsaved until Save.
func (e *Editor) Replace(g *chart.Graph) error {
	if err := e.guard(); err != nil {
		e.record("import", err)
		return err
	}
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no chart to import")
	}
	e.graph = g.Clone()
	if e.mode == ModeEditing {
		e.closeEdit("import")
	}
	e.record("import", nil)
	return nil
}

// Source reports where the chart in the slot came from, or "" for an
// unpersisted chart.
func (e *Editor) Source() snapshot.Source {
	if e.tracker == nil {
		return ""
	}
	return e.tracker.Source()
}

// Reload discards the working chart and reads the slot again, closing any
// dialog. It is the way back from an unreadable slot.
func (e *Editor) Reload(ctx context.Context) (snapshot.Source, error) {
	if e.tracker == nil {
		return "", errors.New(errors.ErrCodeNoBaseline, "chart has no storage slot")
	}
	if e.preview {
		err := errors.New(errors.ErrCodePreview, "chart is read-only in preview mode")
		e.record("reload", err)
		return "", err
	}
	g, src := e.tracker.Load(ctx)
	e.graph = g
	e.editing, e.editLabel, e.pendingRoot = "", "", ""
	if e.mode != ModeIdle {
		e.setMode(ModeIdle, "reload")
	}
	e.record("reload", nil)
	return src, nil
}

// Slot names the storage slot, or "" for an unpersisted chart.
func (e *Editor) Slot() string {
	if e.tracker == nil {
		return ""
	}
	return e.tracker.Slot()
}
