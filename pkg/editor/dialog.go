package editor

import (
	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
)

// BeginEdit opens the label dialog for id with the current label in the
// buffer. It reports false in preview mode, while a root replacement is
// pending, or when the node does not exist.
func (e *Editor) BeginEdit(id string) bool {
	if e.preview || e.mode == ModeSelectingRoot {
		return false
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return false
	}
	e.editing, e.editLabel = id, n.Label
	e.setMode(ModeEditing, "begin_edit")
	return true
}

// SetEditLabel replaces the dialog buffer. It does nothing outside ModeEditing.
func (e *Editor) SetEditLabel(label string) {
	if e.mode == ModeEditing {
		e.editLabel = label
	}
}

// CommitEdit writes the buffer to the node and closes the dialog. An invalid
// label keeps the dialog open.
func (e *Editor) CommitEdit() error {
	if e.mode != ModeEditing {
		return nil
	}
	if err := errors.ValidateLabel(e.editLabel); err != nil {
		e.record("rename", err)
		return err
	}
	e.graph.Rename(e.editing, e.editLabel)
	e.record("rename", nil)
	e.closeEdit("commit")
	return nil
}

// CancelEdit closes the dialog, discarding the buffer.
func (e *Editor) CancelEdit() {
	if e.mode == ModeEditing {
		e.closeEdit("cancel")
	}
}

func (e *Editor) closeEdit(step string) {
	e.editing, e.editLabel = "", ""
	e.setMode(ModeIdle, step)
}

// DeleteEditing deletes the node open in the dialog, unless it is the root.
func (e *Editor) DeleteEditing() (DeleteResult, error) {
	if e.mode != ModeEditing {
		return DeleteNoop, nil
	}
	if n, ok := e.graph.Node(e.editing); ok && n.IsRoot {
		return DeleteNoop, nil
	}
	return e.RequestDelete(e.editing)
}

// RequestDelete removes a non-root node and its edges; its children become
// orphans. Targeting the root starts root replacement instead.
func (e *Editor) RequestDelete(id string) (DeleteResult, error) {
	if err := e.guard(); err != nil {
		e.record("delete", err)
		return DeleteNoop, err
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return DeleteNoop, nil
	}
	if n.IsRoot {
		e.beginRootSelection(id)
		return NeedsNewRoot, nil
	}
	if err := e.graph.DeleteNode(id); err != nil {
		e.record("delete", err)
		return DeleteNoop, err
	}
	e.afterDelete(id)
	e.record("delete", nil)
	return Deleted, nil
}

// RequestDeleteSubtree removes a non-root node and everything below it.
// Targeting the root starts root replacement, exactly like RequestDelete.
func (e *Editor) RequestDeleteSubtree(id string) ([]string, DeleteResult, error) {
	if err := e.guard(); err != nil {
		e.record("delete_subtree", err)
		return nil, DeleteNoop, err
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return nil, DeleteNoop, nil
	}
	if n.IsRoot {
		e.beginRootSelection(id)
		return nil, NeedsNewRoot, nil
	}
	removed, err := e.graph.DeleteSubtree(id)
	if err != nil {
		e.record("delete_subtree", err)
		return nil, DeleteNoop, err
	}
	for _, r := range removed {
		e.afterDelete(r)
	}
	e.record("delete_subtree", nil)
	return removed, Deleted, nil
}

func (e *Editor) afterDelete(id string) {
	if e.mode == ModeEditing && e.editing == id {
		e.closeEdit("deleted")
	}
}

func (e *Editor) beginRootSelection(rootID string) {
	if e.mode == ModeEditing {
		e.editing, e.editLabel = "", ""
	}
	e.pendingRoot = rootID
	e.setMode(ModeIdle, "root_deletion_requested")
	e.setMode(ModeSelectingRoot, "select_root")
}

// Candidates lists every node that may replace the pending root, in chart
// order. It is empty outside ModeSelectingRoot.
func (e *Editor) Candidates() []chart.Node {
	if e.mode != ModeSelectingRoot {
		return nil
	}
	var out []chart.Node
	for _, n := range e.graph.Nodes() {
		if n.ID != e.pendingRoot {
			out = append(out, n)
		}
	}
	return out
}

// ChooseRoot promotes candidate, removes the pending root and returns to
// ModeIdle.
func (e *Editor) ChooseRoot(candidate string) error {
	if e.mode != ModeSelectingRoot {
		return errors.New(errors.ErrCodeInvalidInput, "no root replacement in progress")
	}
	if candidate == e.pendingRoot {
		return errors.New(errors.ErrCodeInvalidInput, "%q is the current root", candidate)
	}
	if !e.graph.HasNode(candidate) {
		return errors.New(errors.ErrCodeNotFound, "unit %q not found", candidate)
	}
	old, err := e.graph.PromoteRoot(candidate)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "promote %q", candidate)
		e.record("promote_root", err)
		return err
	}
	e.logger.Info("root replaced", "old", old, "new", candidate)
	e.pendingRoot = ""
	e.setMode(ModeIdle, "root_chosen")
	e.record("promote_root", nil)
	return nil
}

// CancelRootSelection abandons root replacement without changing the chart.
func (e *Editor) CancelRootSelection() {
	if e.mode != ModeSelectingRoot {
		return
	}
	e.pendingRoot = ""
	e.setMode(ModeIdle, "cancel_root_selection")
}
