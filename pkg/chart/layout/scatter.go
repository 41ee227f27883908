package layout

import (
	"math/rand/v2"

	"github.com/bichil/orgchart/pkg/chart"
)

// ScatterOptions controls [Scatter].
type ScatterOptions struct {
	Layout  Options
	JitterX float64 // maximum horizontal offset in either direction
	JitterY float64 // maximum vertical offset in either direction
}

// DefaultScatterOptions returns the preset used by "orgchart layout --scatter".
func DefaultScatterOptions() ScatterOptions {
	return ScatterOptions{Layout: DefaultOptions(), JitterX: 60, JitterY: 30}
}

// Scatter returns the tree layout with every position shifted by a random
// offset drawn from a PCG source seeded with seed. The same seed and graph
// always produce the same positions. Nodes are visited in insertion order so
// the random stream does not depend on map iteration.
func Scatter(g *chart.Graph, seed uint64, opts *ScatterOptions) map[string]chart.Position {
	if opts == nil {
		d := DefaultScatterOptions()
		opts = &d
	}
	base := Compute(g, opts.Layout)
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))

	for _, n := range g.Nodes() {
		p, ok := base[n.ID]
		if !ok {
			continue
		}
		p.X += jitter(rng, opts.JitterX)
		p.Y += jitter(rng, opts.JitterY)
		base[n.ID] = p
	}
	return base
}

func jitter(rng *rand.Rand, span float64) float64 {
	if span <= 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * span
}
