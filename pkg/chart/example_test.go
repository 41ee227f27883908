package chart_test

import (
	"fmt"

	"github.com/bichil/orgchart/pkg/chart"
)

func ExampleGraph_AddChild() {
	n := 0
	g := chart.New(chart.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("u%d", n)
	}))
	board := g.AddNode(chart.Position{X: 800}, "Board")
	ceo, edge, _ := g.AddChild(board.ID, "CEO")

	fmt.Println("root:", board.IsRoot)
	fmt.Println("edge:", edge.ID)
	fmt.Println("child y:", ceo.Position.Y)
	// Output:
	// root: true
	// edge: e-u1-u2
	// child y: 200
}

func ExampleGraph_PromoteRoot() {
	g, _ := chart.FromParts(
		[]chart.Node{{ID: "board", IsRoot: true}, {ID: "ceo"}, {ID: "cfo"}},
		[]chart.Edge{
			{ID: "e1", Source: "board", Target: "ceo"},
			{ID: "e2", Source: "ceo", Target: "cfo"},
		},
	)
	removed, _ := g.PromoteRoot("ceo")
	root, _ := g.Root()

	fmt.Println("removed:", removed)
	fmt.Println("root:", root.ID)
	fmt.Println("nodes:", g.NodeCount(), "edges:", g.EdgeCount())
	// Output:
	// removed: board
	// root: ceo
	// nodes: 2 edges: 1
}
