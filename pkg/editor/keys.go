package editor

// Binding is a key active in the current mode.
type Binding struct {
	Key  string
	Help string
}

var (
	editingBindings = []Binding{
		{Key: "esc", Help: "close"},
		{Key: "enter", Help: "save label"},
		{Key: "delete", Help: "delete unit"},
	}
	selectingRootBindings = []Binding{
		{Key: "esc", Help: "cancel"},
	}
)

// Bindings returns the keys the editor itself handles in the current mode.
// Idle has none; navigation belongs to the shell.
func (e *Editor) Bindings() []Binding {
	switch e.mode {
	case ModeEditing:
		return editingBindings
	case ModeSelectingRoot:
		return selectingRootBindings
	default:
		return nil
	}
}

// HandleKey dispatches key through the bindings of the current mode only, so
// a dialog's keys never fire once it is closed. It reports whether the key
// was consumed.
func (e *Editor) HandleKey(key string) (bool, error) {
	switch e.mode {
	case ModeEditing:
		switch key {
		case "esc":
			e.CancelEdit()
			return true, nil
		case "enter":
			return true, e.CommitEdit()
		case "delete":
			_, err := e.DeleteEditing()
			return true, err
		}
	case ModeSelectingRoot:
		if key == "esc" {
			e.CancelRootSelection()
			return true, nil
		}
	}
	return false, nil
}
