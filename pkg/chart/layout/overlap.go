package layout

import (
	"cmp"
	"slices"

	"github.com/bichil/orgchart/pkg/chart"
)

// Overlap names two nodes on the same level that sit closer than the
// requested minimum horizontal gap.
type Overlap struct {
	A, B string
	Y    float64
	Gap  float64
}

// Overlaps reports neighbouring nodes sharing a Y coordinate whose horizontal
// distance is below minGap. Results are ordered by level, then by x.
func Overlaps(nodes []chart.Node, minGap float64) []Overlap {
	byLevel := map[float64][]chart.Node{}
	var levels []float64
	for _, n := range nodes {
		if _, ok := byLevel[n.Position.Y]; !ok {
			levels = append(levels, n.Position.Y)
		}
		byLevel[n.Position.Y] = append(byLevel[n.Position.Y], n)
	}
	slices.Sort(levels)

	var out []Overlap
	for _, y := range levels {
		row := byLevel[y]
		slices.SortStableFunc(row, func(a, b chart.Node) int { return cmp.Compare(a.Position.X, b.Position.X) })
		for i := 1; i < len(row); i++ {
			if gap := row[i].Position.X - row[i-1].Position.X; gap < minGap {
				out = append(out, Overlap{A: row[i-1].ID, B: row[i].ID, Y: y, Gap: gap})
			}
		}
	}
	return out
}
