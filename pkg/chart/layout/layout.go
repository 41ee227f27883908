// Package layout computes canvas positions for an organization chart.
//
// [Compute] is the deterministic top-down tree layout: each level sits
// LevelHeight below its parent and siblings are spread SiblingGap apart,
// centered under the parent. It ignores current positions, so running it twice
// gives the same result. Nodes that are not reachable from the root keep
// whatever position they have.
//
// [Scatter] is an opt-in seeded variant that jitters the tree layout.
package layout

import (
	"github.com/bichil/orgchart/pkg/chart"
)

const (
	// DefaultLevelHeight is the vertical distance between a unit and its
	// subordinates.
	DefaultLevelHeight = 140
	// DefaultSiblingGap is the horizontal distance between adjacent
	// subordinates of one unit.
	DefaultSiblingGap = 220
)

// Options controls the tree layout.
type Options struct {
	LevelHeight float64 `toml:"level_height" json:"levelHeight" yaml:"levelHeight"`
	SiblingGap  float64 `toml:"sibling_gap" json:"siblingGap" yaml:"siblingGap"`
	OriginX     float64 `toml:"origin_x" json:"originX" yaml:"originX"`
}

// DefaultOptions returns the layout constants used by the editor.
func DefaultOptions() Options {
	return Options{
		LevelHeight: DefaultLevelHeight,
		SiblingGap:  DefaultSiblingGap,
	}
}

func (o Options) normalized() Options {
	if o.LevelHeight <= 0 {
		o.LevelHeight = DefaultLevelHeight
	}
	if o.SiblingGap <= 0 {
		o.SiblingGap = DefaultSiblingGap
	}
	return o
}

// Compute returns a position for every node reachable from the root. The
// root sits at (OriginX, 0); the i-th of k children of a parent at x sits at
// x - (k-1)*SiblingGap/2 + i*SiblingGap, one LevelHeight lower.
func Compute(g *chart.Graph, opts Options) map[string]chart.Position {
	opts = opts.normalized()
	root, ok := g.Root()
	if !ok {
		return map[string]chart.Position{}
	}

	type item struct {
		id    string
		x     float64
		depth int
	}
	out := make(map[string]chart.Position, g.NodeCount())
	stack := []item{{id: root.ID, x: opts.OriginX}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := out[it.id]; done {
			continue
		}
		out[it.id] = chart.Position{X: it.x, Y: float64(it.depth) * opts.LevelHeight}

		kids := g.ChildIDs(it.id)
		k := float64(len(kids))
		start := it.x - (k-1)*opts.SiblingGap/2
		for i, kid := range kids {
			if _, done := out[kid]; done {
				continue
			}
			stack = append(stack, item{
				id:    kid,
				x:     start + float64(i)*opts.SiblingGap,
				depth: it.depth + 1,
			})
		}
	}
	return out
}

// Apply runs [Compute] and writes the result into g, returning how many
// nodes moved.
func Apply(g *chart.Graph, opts Options) int {
	return g.SetPositions(Compute(g, opts))
}
