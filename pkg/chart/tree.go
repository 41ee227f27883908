package chart

import "slices"

// ChildIDs returns the IDs of the direct subordinates of id in edge order.
func (g *Graph) ChildIDs(id string) []string { return slices.Clone(g.outgoing[id]) }

// Children returns the direct subordinates of id in edge order.
func (g *Graph) Children(id string) []Node {
	ids := g.outgoing[id]
	out := make([]Node, 0, len(ids))
	for _, c := range ids {
		out = append(out, *g.byID[c])
	}
	return out
}

// Parent returns the superior of id. Imported charts may carry several
// parents for one node; the first edge wins.
func (g *Graph) Parent(id string) (Node, bool) {
	parents := g.incoming[id]
	if len(parents) == 0 {
		return Node{}, false
	}
	return *g.byID[parents[0]], true
}

// Root returns the node flagged as root, falling back to [Graph.FindRoot]
// when none is flagged. It reports false only for an empty graph.
func (g *Graph) Root() (Node, bool) {
	for _, n := range g.nodes {
		if n.IsRoot {
			return *n, true
		}
	}
	return g.FindRoot()
}

// FindRoot derives a root from structure alone: the first node without a
// parent, or the first node when every node has one.
func (g *Graph) FindRoot() (Node, bool) {
	if len(g.nodes) == 0 {
		return Node{}, false
	}
	for _, n := range g.nodes {
		if len(g.incoming[n.ID]) == 0 {
			return *n, true
		}
	}
	return *g.nodes[0], true
}

// ReconcileRoot makes the root flag agree with [Graph.Root]: when no node is
// flagged the fallback root is flagged, and when several are flagged only the
// first keeps the flag. It reports whether anything changed.
func (g *Graph) ReconcileRoot() bool {
	root, ok := g.Root()
	if !ok {
		return false
	}
	changed := false
	for _, n := range g.nodes {
		want := n.ID == root.ID
		if n.IsRoot != want {
			n.IsRoot = want
			changed = true
		}
	}
	return changed
}

// Walk visits the tree below the root in pre-order, children in edge order.
// Traversal uses an explicit stack, so arbitrarily deep charts are fine, and
// a node reached twice through malformed data is visited once. Returning
// false from fn stops the walk.
func (g *Graph) Walk(fn func(n Node, depth int) bool) {
	root, ok := g.Root()
	if !ok {
		return
	}
	g.walkFrom(root.ID, fn)
}

func (g *Graph) walkFrom(start string, fn func(n Node, depth int) bool) {
	type frame struct {
		id    string
		depth int
	}
	seen := map[string]bool{}
	stack := []frame{{start, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.id] {
			continue
		}
		seen[f.id] = true
		if !fn(*g.byID[f.id], f.depth) {
			return
		}
		kids := g.outgoing[f.id]
		for i := len(kids) - 1; i >= 0; i-- {
			if !seen[kids[i]] {
				stack = append(stack, frame{kids[i], f.depth + 1})
			}
		}
	}
}

// Depth returns the number of edges between the root and id, or -1 when id is
// not reachable from the root.
func (g *Graph) Depth(id string) int {
	depth := -1
	g.Walk(func(n Node, d int) bool {
		if n.ID == id {
			depth = d
			return false
		}
		return true
	})
	return depth
}

// Descendants returns every node reachable below id in pre-order, excluding id.
func (g *Graph) Descendants(id string) []string {
	if g.byID[id] == nil {
		return nil
	}
	var out []string
	g.walkFrom(id, func(n Node, _ int) bool {
		if n.ID != id {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// Reachable returns the set of node IDs in the rooted tree.
func (g *Graph) Reachable() map[string]bool {
	seen := make(map[string]bool, len(g.nodes))
	g.Walk(func(n Node, _ int) bool {
		seen[n.ID] = true
		return true
	})
	return seen
}

// Orphans returns the nodes that are not reachable from the root, in
// insertion order. They stay visible on the canvas but take no part in layout.
func (g *Graph) Orphans() []Node {
	reach := g.Reachable()
	var out []Node
	for _, n := range g.nodes {
		if !reach[n.ID] {
			out = append(out, *n)
		}
	}
	return out
}

// TreeNode is one unit of the nested view returned by [Graph.Tree].
type TreeNode struct {
	ID       string      `json:"id" yaml:"id"`
	Label    string      `json:"label" yaml:"label"`
	Depth    int         `json:"depth" yaml:"depth"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree returns the rooted tree as nested nodes, or nil for an empty chart.
// Orphans are not included.
func (g *Graph) Tree() *TreeNode {
	var root *TreeNode
	var path []*TreeNode
	g.Walk(func(n Node, depth int) bool {
		t := &TreeNode{ID: n.ID, Label: n.Label, Depth: depth}
		path = append(path[:depth], t)
		if depth == 0 {
			root = t
		} else {
			parent := path[depth-1]
			parent.Children = append(parent.Children, t)
		}
		return true
	})
	return root
}
