package chart

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
}

// sample builds A -> B -> C with A as root.
func sample(t *testing.T) *Graph {
	t.Helper()
	g, err := FromParts(
		[]Node{
			{ID: "A", Label: "A", IsRoot: true},
			{ID: "B", Label: "B", Position: Position{Y: 140}},
			{ID: "C", Label: "C", Position: Position{Y: 280}},
		},
		[]Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "B", Target: "C"},
		},
		seqIDs(),
	)
	if err != nil {
		t.Fatalf("FromParts() error = %v", err)
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New(seqIDs())

	first := g.AddNode(Position{X: 500, Y: 500}, "Шинэ нэгж")
	if !first.IsRoot {
		t.Error("first node IsRoot = false, want true")
	}
	second := g.AddNode(Position{X: 500, Y: 500}, "Шинэ нэгж")
	if second.IsRoot {
		t.Error("second node IsRoot = true, want false")
	}
	if first.ID == second.ID {
		t.Errorf("ids collide: %s", first.ID)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 0 {
		t.Errorf("counts = (%d, %d), want (2, 0)", g.NodeCount(), g.EdgeCount())
	}
}

func TestAddChild(t *testing.T) {
	g := sample(t)

	child, edge, ok := g.AddChild("A", "New")
	if !ok {
		t.Fatal("AddChild() ok = false")
	}
	if child.Position != (Position{X: 0, Y: ChildOffsetY}) {
		t.Errorf("Position = %+v, want {0 %d}", child.Position, ChildOffsetY)
	}
	if want := "e-A-" + child.ID; edge.ID != want {
		t.Errorf("edge ID = %q, want %q", edge.ID, want)
	}
	if edge.Source != "A" || edge.Target != child.ID {
		t.Errorf("edge = %+v", edge)
	}
	if got := g.ChildIDs("A"); !slices.Equal(got, []string{"B", child.ID}) {
		t.Errorf("ChildIDs(A) = %v", got)
	}

	before := g.Clone()
	if _, _, ok := g.AddChild("missing", "x"); ok {
		t.Error("AddChild(missing) ok = true, want false")
	}
	if !g.Equal(before) {
		t.Error("AddChild(missing) changed the graph")
	}
}

func TestRenameAndMove(t *testing.T) {
	g := sample(t)

	if !g.Rename("B", "Finance") {
		t.Fatal("Rename(B) = false")
	}
	if n, _ := g.Node("B"); n.Label != "Finance" {
		t.Errorf("Label = %q, want Finance", n.Label)
	}
	if g.Rename("Z", "x") {
		t.Error("Rename(Z) = true, want false")
	}

	if !g.Move("C", Position{X: 10, Y: 20}) {
		t.Fatal("Move(C) = false")
	}
	if n, _ := g.Node("C"); n.Position != (Position{X: 10, Y: 20}) {
		t.Errorf("Position = %+v", n.Position)
	}
	if g.Move("Z", Position{}) {
		t.Error("Move(Z) = true, want false")
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		target  string
		wantErr error
	}{
		{"unknown source", "Z", "C", ErrUnknownSourceNode},
		{"unknown target", "A", "Z", ErrUnknownTargetNode},
		{"self loop", "B", "B", ErrSelfLoop},
		{"second parent", "A", "C", ErrSecondParent},
		{"root target", "C", "A", ErrConnectToRoot},
		{"valid", "C", "D", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sample(t)
			g.AddNode(Position{}, "D")
			// the generator hands out n1 for D
			target := tt.target
			if target == "D" {
				target = "n1"
			}
			before := g.EdgeCount()
			e, err := g.Connect(tt.source, target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Connect() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if g.EdgeCount() != before {
					t.Error("failed Connect() added an edge")
				}
				return
			}
			if e.ID != "e-C-n1" {
				t.Errorf("edge ID = %q, want e-C-n1", e.ID)
			}
			if p, _ := g.Parent(target); p.ID != "C" {
				t.Errorf("Parent = %q, want C", p.ID)
			}
		})
	}
}

func TestConnectCycle(t *testing.T) {
	g := sample(t)
	// detach B so it no longer has a parent, then try C -> B where B is C's ancestor
	if !g.DisconnectEdge("e1") {
		t.Fatal("DisconnectEdge(e1) = false")
	}
	if _, err := g.Connect("C", "B"); !errors.Is(err, ErrCycle) {
		t.Errorf("Connect(C, B) error = %v, want %v", err, ErrCycle)
	}
}

func TestEdgeIDCollision(t *testing.T) {
	g, err := FromParts(
		[]Node{{ID: "A", IsRoot: true}, {ID: "B"}},
		[]Edge{{ID: "e-A-B", Source: "A", Target: "B"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	g.DisconnectEdge("e-A-B")
	g.edges = append(g.edges, Edge{ID: "e-A-B", Source: "A", Target: "A"})
	g.reindex()
	e, err := g.Connect("A", "B")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if e.ID != "e-A-B-2" {
		t.Errorf("ID = %q, want e-A-B-2", e.ID)
	}
}

func TestDeleteNode(t *testing.T) {
	t.Run("non-root leaves orphans", func(t *testing.T) {
		g := sample(t)
		if err := g.DeleteNode("B"); err != nil {
			t.Fatalf("DeleteNode(B) error = %v", err)
		}
		if g.HasNode("B") {
			t.Error("B still present")
		}
		if !g.HasNode("C") {
			t.Error("C removed, want kept")
		}
		if g.EdgeCount() != 0 {
			t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
		}
		orphans := g.Orphans()
		if len(orphans) != 1 || orphans[0].ID != "C" {
			t.Errorf("Orphans = %v, want [C]", orphans)
		}
	})

	t.Run("root refused", func(t *testing.T) {
		g := sample(t)
		before := g.Clone()
		if err := g.DeleteNode("A"); !errors.Is(err, ErrRootDeletion) {
			t.Fatalf("DeleteNode(A) error = %v, want %v", err, ErrRootDeletion)
		}
		if !g.Equal(before) {
			t.Error("graph changed")
		}
	})

	t.Run("missing is noop", func(t *testing.T) {
		g := sample(t)
		before := g.Clone()
		if err := g.DeleteNode("Z"); err != nil {
			t.Fatalf("DeleteNode(Z) error = %v", err)
		}
		if !g.Equal(before) {
			t.Error("graph changed")
		}
	})
}

func TestDeleteSubtree(t *testing.T) {
	g := sample(t)
	removed, err := g.DeleteSubtree("B")
	if err != nil {
		t.Fatalf("DeleteSubtree(B) error = %v", err)
	}
	if !slices.Equal(removed, []string{"B", "C"}) {
		t.Errorf("removed = %v, want [B C]", removed)
	}
	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", g.NodeCount(), g.EdgeCount())
	}
	if _, err := g.DeleteSubtree("A"); !errors.Is(err, ErrRootDeletion) {
		t.Errorf("DeleteSubtree(A) error = %v, want %v", err, ErrRootDeletion)
	}
}

func TestPromoteRoot(t *testing.T) {
	g := sample(t)
	old, err := g.PromoteRoot("B")
	if err != nil {
		t.Fatalf("PromoteRoot(B) error = %v", err)
	}
	if old != "A" {
		t.Errorf("old root = %q, want A", old)
	}
	if g.HasNode("A") {
		t.Error("A still present")
	}
	root, _ := g.Root()
	if root.ID != "B" || !root.IsRoot {
		t.Errorf("Root = %+v, want B flagged", root)
	}
	if _, ok := g.Parent("B"); ok {
		t.Error("B still has a parent")
	}
	if p, _ := g.Parent("C"); p.ID != "B" {
		t.Errorf("Parent(C) = %q, want B", p.ID)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if _, err := g.PromoteRoot("B"); !errors.Is(err, ErrCandidateIsRoot) {
		t.Errorf("PromoteRoot(B) again error = %v", err)
	}
	if _, err := g.PromoteRoot("Z"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("PromoteRoot(Z) error = %v", err)
	}
}

func TestPromoteRootOrphansSiblings(t *testing.T) {
	g, _ := FromParts(
		[]Node{{ID: "A", IsRoot: true}, {ID: "B"}, {ID: "C"}},
		[]Edge{{ID: "e1", Source: "A", Target: "B"}, {ID: "e2", Source: "A", Target: "C"}},
	)
	if _, err := g.PromoteRoot("C"); err != nil {
		t.Fatal(err)
	}
	orphans := g.Orphans()
	if len(orphans) != 1 || orphans[0].ID != "B" {
		t.Errorf("Orphans = %v, want [B]", orphans)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := sample(t)
	c := g.Clone()
	c.Rename("A", "changed")
	c.AddChild("C", "D")

	if n, _ := g.Node("A"); n.Label != "A" {
		t.Errorf("original label = %q, want A", n.Label)
	}
	if g.NodeCount() != 3 {
		t.Errorf("original NodeCount = %d, want 3", g.NodeCount())
	}
	if g.Equal(c) {
		t.Error("Equal() = true after diverging")
	}
}

func TestFromPartsErrors(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{"empty id", []Node{{ID: ""}}, nil, ErrInvalidNodeID},
		{"duplicate node", []Node{{ID: "a"}, {ID: "a"}}, nil, ErrDuplicateNodeID},
		{"duplicate edge", []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			[]Edge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "a", Target: "c"}}, ErrDuplicateEdgeID},
		{"dangling edge", []Node{{ID: "a"}}, []Edge{{ID: "e", Source: "a", Target: "x"}}, ErrInvalidEdgeEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromParts(tt.nodes, tt.edges); !errors.Is(err, tt.wantErr) {
				t.Errorf("FromParts() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func rootCount(g *Graph) int {
	n := 0
	for _, node := range g.Nodes() {
		if node.IsRoot {
			n++
		}
	}
	return n
}

func TestSingleRootAcrossEdits(t *testing.T) {
	g := sample(t)
	steps := []struct {
		name string
		do   func() error
	}{
		{"add detached", func() error { g.AddNode(Position{}, "D"); return nil }},
		{"add child of C", func() error { g.AddChild("C", "E"); return nil }},
		{"connect C to n1", func() error { _, err := g.Connect("C", "n1"); return err }},
		{"delete B", func() error { return g.DeleteNode("B") }},
		{"add child of A", func() error { g.AddChild("A", "F"); return nil }},
		{"connect A to C", func() error { _, err := g.Connect("A", "C"); return err }},
		{"delete subtree C", func() error { _, err := g.DeleteSubtree("C"); return err }},
		{"delete root", func() error {
			if err := g.DeleteNode("A"); !errors.Is(err, ErrRootDeletion) {
				return fmt.Errorf("DeleteNode(root) = %v", err)
			}
			return nil
		}},
		{"promote n3", func() error { _, err := g.PromoteRoot("n3"); return err }},
		{"add detached again", func() error { g.AddNode(Position{}, "G"); return nil }},
	}
	for _, step := range steps {
		if err := step.do(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if n := rootCount(g); n != 1 {
			t.Fatalf("after %s: %d roots", step.name, n)
		}
	}
	if root, _ := g.Root(); root.ID != "n3" {
		t.Errorf("root = %q, want n3", root.ID)
	}
}

func TestSingleRootAcrossRandomEdits(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		r := rand.New(rand.NewPCG(seed, 0))
		g := sample(t)
		pick := func() string {
			nodes := g.Nodes()
			return nodes[r.IntN(len(nodes))].ID
		}
		for step := 0; step < 60; step++ {
			var op string
			switch r.IntN(6) {
			case 0:
				op = "add"
				g.AddNode(Position{}, "x")
			case 1:
				op = "add-child"
				g.AddChild(pick(), "x")
			case 2:
				op = "connect"
				_, _ = g.Connect(pick(), pick())
			case 3:
				op = "delete"
				_ = g.DeleteNode(pick())
			case 4:
				op = "delete-subtree"
				_, _ = g.DeleteSubtree(pick())
			case 5:
				op = "promote"
				_, _ = g.PromoteRoot(pick())
			}
			if n := rootCount(g); n != 1 {
				t.Fatalf("seed %d step %d (%s): %d roots", seed, step, op, n)
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("seed %d step %d (%s): %v", seed, step, op, err)
			}
		}
	}
}
