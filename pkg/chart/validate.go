package chart

import (
	"errors"
	"fmt"
)

// ErrNoRoot is returned by [Graph.Validate] for a non-empty graph without a
// flagged root.
var ErrNoRoot = errors.New("no root node")

// Validate reports every structural problem at once: dangling edges, missing
// or repeated root flags, nodes with several parents and cycles. The editor
// can still operate on a graph that fails validation.
func (g *Graph) Validate() error {
	var errs []error

	roots := 0
	for _, n := range g.nodes {
		if n.IsRoot {
			roots++
		}
	}
	switch {
	case roots == 0 && len(g.nodes) > 0:
		errs = append(errs, ErrNoRoot)
	case roots > 1:
		errs = append(errs, fmt.Errorf("%w: %d flagged", ErrMultipleRoots, roots))
	}

	seenEdge := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		if seenEdge[e.ID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateEdgeID, e.ID))
		}
		seenEdge[e.ID] = true
		if g.byID[e.Source] == nil || g.byID[e.Target] == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidEdgeEndpoint, e.ID))
		}
	}

	for _, n := range g.nodes {
		if len(g.incoming[n.ID]) > 1 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSecondParent, n.ID))
		}
		if n.IsRoot && len(g.incoming[n.ID]) > 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrConnectToRoot, n.ID))
		}
	}

	if id, ok := g.findCycle(); ok {
		errs = append(errs, fmt.Errorf("%w: through %s", ErrCycle, id))
	}
	return errors.Join(errs...)
}

// findCycle runs an iterative white/gray/black DFS over all nodes.
func (g *Graph) findCycle() (string, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.nodes))
	type frame struct {
		id   string
		next int
	}
	for _, start := range g.nodes {
		if color[start.ID] != white {
			continue
		}
		stack := []frame{{id: start.ID}}
		color[start.ID] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := g.outgoing[top.id]
			if top.next == len(kids) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := kids[top.next]
			top.next++
			switch color[child] {
			case gray:
				return child, true
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			}
		}
	}
	return "", false
}
