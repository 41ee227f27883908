package editor

import "testing"

func TestBindingsScoped(t *testing.T) {
	e := newEditor(t)
	if got := e.Bindings(); len(got) != 0 {
		t.Errorf("idle bindings = %v, want none", got)
	}
	for _, key := range []string{"esc", "enter", "delete"} {
		if handled, _ := e.HandleKey(key); handled {
			t.Errorf("idle HandleKey(%q) consumed the key", key)
		}
	}

	e.BeginEdit("B")
	if got := len(e.Bindings()); got != 3 {
		t.Errorf("editing bindings = %d, want 3", got)
	}

	e.RequestDelete("A")
	if got := e.Bindings(); len(got) != 1 || got[0].Key != "esc" {
		t.Errorf("selecting bindings = %v", got)
	}
	if handled, _ := e.HandleKey("enter"); handled {
		t.Error("enter should not fire during root selection")
	}
}

func TestHandleKeyEditing(t *testing.T) {
	tests := []struct {
		name      string
		node      string
		key       string
		wantMode  Mode
		wantLabel string
		wantGone  bool
	}{
		{"enter commits", "B", "enter", ModeIdle, "typed", false},
		{"esc discards", "B", "esc", ModeIdle, "B", false},
		{"delete removes", "B", "delete", ModeIdle, "", true},
		{"delete ignores root", "A", "delete", ModeEditing, "A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			e.BeginEdit(tt.node)
			e.SetEditLabel("typed")
			handled, err := e.HandleKey(tt.key)
			if !handled || err != nil {
				t.Fatalf("HandleKey(%q) = %v, %v", tt.key, handled, err)
			}
			if e.Mode() != tt.wantMode {
				t.Errorf("Mode = %v, want %v", e.Mode(), tt.wantMode)
			}
			n, ok := e.Chart().Node(tt.node)
			if ok == tt.wantGone {
				t.Fatalf("node present = %v, want gone = %v", ok, tt.wantGone)
			}
			if ok && n.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", n.Label, tt.wantLabel)
			}
		})
	}
}

func TestHandleKeyCancelsRootSelection(t *testing.T) {
	e := newEditor(t)
	e.RequestDelete("A")
	if handled, _ := e.HandleKey("esc"); !handled {
		t.Fatal("esc not handled")
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", e.Mode())
	}
}
