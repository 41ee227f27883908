package chart

import (
	"fmt"
	"slices"
)

func (g *Graph) nextNodeID() string {
	for {
		if id := g.newID(); id != "" && g.byID[id] == nil {
			return id
		}
	}
}

func (g *Graph) edgeID(source, target string) string {
	id := "e-" + source + "-" + target
	if _, taken := g.edgeIDs[id]; !taken {
		return id
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", id, i)
		if _, taken := g.edgeIDs[candidate]; !taken {
			return candidate
		}
	}
}

// AddNode inserts a detached node at pos. The first node added to an empty
// graph becomes the root.
func (g *Graph) AddNode(pos Position, label string) Node {
	n := &Node{
		ID:       g.nextNodeID(),
		Label:    label,
		Position: pos,
		IsRoot:   len(g.nodes) == 0,
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return *n
}

// AddChild inserts a new node placed [ChildOffsetY] below parentID and links
// it with an edge whose ID is "e-<parent>-<child>". It reports false and
// changes nothing when the parent does not exist.
func (g *Graph) AddChild(parentID, label string) (Node, Edge, bool) {
	parent, ok := g.byID[parentID]
	if !ok {
		return Node{}, Edge{}, false
	}
	n := &Node{
		ID:    g.nextNodeID(),
		Label: label,
		Position: Position{
			X: parent.Position.X,
			Y: parent.Position.Y + ChildOffsetY,
		},
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	e := Edge{ID: g.edgeID(parentID, n.ID), Source: parentID, Target: n.ID}
	g.appendEdge(e)
	return *n, e, true
}

// Rename replaces a node's label. It reports false when the node is missing.
func (g *Graph) Rename(id, label string) bool {
	n, ok := g.byID[id]
	if !ok {
		return false
	}
	n.Label = label
	return true
}

// Move sets a node's position. It reports false when the node is missing.
func (g *Graph) Move(id string, pos Position) bool {
	n, ok := g.byID[id]
	if !ok {
		return false
	}
	n.Position = pos
	return true
}

// SetPositions moves every listed node and returns how many positions changed.
// Unknown IDs are ignored.
func (g *Graph) SetPositions(positions map[string]Position) int {
	changed := 0
	for _, n := range g.nodes {
		if p, ok := positions[n.ID]; ok && p != n.Position {
			n.Position = p
			changed++
		}
	}
	return changed
}

// Connect adds a reporting line from source to target. The reachable part of
// the chart stays a tree: a target may not already have a parent, may not be
// the root and may not be an ancestor of the source.
func (g *Graph) Connect(source, target string) (Edge, error) {
	if g.byID[source] == nil {
		return Edge{}, ErrUnknownSourceNode
	}
	tgt := g.byID[target]
	if tgt == nil {
		return Edge{}, ErrUnknownTargetNode
	}
	if source == target {
		return Edge{}, ErrSelfLoop
	}
	if tgt.IsRoot {
		return Edge{}, ErrConnectToRoot
	}
	if len(g.incoming[target]) > 0 {
		return Edge{}, ErrSecondParent
	}
	if g.isAncestor(target, source) {
		return Edge{}, ErrCycle
	}
	e := Edge{ID: g.edgeID(source, target), Source: source, Target: target}
	g.appendEdge(e)
	return e, nil
}

// isAncestor reports whether anc lies on any parent chain above id.
func (g *Graph) isAncestor(anc, id string) bool {
	seen := map[string]bool{id: true}
	stack := slices.Clone(g.incoming[id])
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == anc {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.incoming[cur]...)
	}
	return false
}

// DisconnectEdge removes one edge. It reports false when the edge is missing.
func (g *Graph) DisconnectEdge(edgeID string) bool {
	if _, ok := g.edgeIDs[edgeID]; !ok {
		return false
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.ID == edgeID })
	g.reindex()
	return true
}

// DeleteNode removes a non-root node and every edge touching it. Its former
// children stay in the graph as orphans. Deleting a missing node is a no-op;
// deleting the root returns [ErrRootDeletion] and changes nothing.
func (g *Graph) DeleteNode(id string) error {
	n, ok := g.byID[id]
	if !ok {
		return nil
	}
	if n.IsRoot {
		return ErrRootDeletion
	}
	g.removeNodes(map[string]bool{id: true})
	return nil
}

// DeleteSubtree removes a non-root node together with every node reachable
// below it, returning the removed IDs in pre-order.
func (g *Graph) DeleteSubtree(id string) ([]string, error) {
	n, ok := g.byID[id]
	if !ok {
		return nil, nil
	}
	if n.IsRoot {
		return nil, ErrRootDeletion
	}
	removed := append([]string{id}, g.Descendants(id)...)
	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}
	g.removeNodes(drop)
	return removed, nil
}

// PromoteRoot makes candidate the new root. The candidate loses its incoming
// edges, the previous root is removed along with its edges, and the previous
// root's other children become orphans. It returns the ID of the removed root,
// or "" when the graph had no flagged root.
func (g *Graph) PromoteRoot(candidate string) (string, error) {
	c, ok := g.byID[candidate]
	if !ok {
		return "", ErrUnknownNode
	}
	if c.IsRoot {
		return "", ErrCandidateIsRoot
	}

	var oldRoot string
	for _, n := range g.nodes {
		if n.IsRoot && oldRoot == "" {
			oldRoot = n.ID
		}
		n.IsRoot = false
	}
	c.IsRoot = true

	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.Target == candidate })
	if oldRoot != "" {
		g.removeNodes(map[string]bool{oldRoot: true})
	} else {
		g.reindex()
	}
	return oldRoot, nil
}

func (g *Graph) removeNodes(drop map[string]bool) {
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return drop[n.ID] })
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return drop[e.Source] || drop[e.Target] })
	g.reindex()
}
