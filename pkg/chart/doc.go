// Package chart holds the organization chart graph: units (nodes), reporting
// lines (edges) and the single apex unit marked as root.
//
// # Overview
//
// The graph is stored as two ordered lists, nodes and edges, mirroring the
// persisted snapshot. Insertion order is significant: it drives sibling order
// in the tree layout and the fallback root choice when no node carries the
// root flag.
//
// The tree view (parent, children, depth) is never stored. It is derived from
// the edges on demand by [Graph.Children], [Graph.Parent] and [Graph.Walk].
//
// # Mutations
//
// All mutations preserve referential integrity: an edge only ever references
// existing nodes, and removing a node removes every edge that touches it.
//
//	g := chart.New()
//	ceo := g.AddNode(chart.Position{X: 800}, "CEO")
//	cto, _, _ := g.AddChild(ceo.ID, "CTO")
//	g.Rename(cto.ID, "Chief Technology Officer")
//
// [Graph.Connect] refuses links that would give a node a second parent, form a
// cycle or point at the root, so the reachable part of the graph stays a tree.
//
// # Root
//
// Exactly one node carries IsRoot once the first node exists. The root cannot
// be removed with [Graph.DeleteNode]; instead [Graph.PromoteRoot] designates a
// replacement, detaches it from its former parent and removes the old root.
package chart
