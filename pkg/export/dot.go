package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bichil/orgchart/pkg/chart"
)

// Box dimensions of a rendered unit, in canvas pixels.
const (
	NodeWidth  = 180
	NodeHeight = 60
)

// ToDOT converts a chart to Graphviz DOT for the neato engine. Every unit is
// pinned at its canvas position; canvas y grows downward so it is negated.
// Orphaned units are drawn where they sit. The root gets a heavier outline.
func ToDOT(g *chart.Graph, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  splines=line;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", opts.Background)
	fmt.Fprintf(&buf, "  pad=%s;\n", fmtFloat(opts.Padding/72))
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=\"#1a192b\", fontname=\"Helvetica\", fontsize=12, width=%s, height=%s, fixedsize=true];\n",
		fmtFloat(NodeWidth/72.0), fmtFloat(NodeHeight/72.0))
	buf.WriteString("  edge [color=\"#b1b1b7\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	root, hasRoot := g.Root()
	for _, n := range g.Nodes() {
		attrs := fmt.Sprintf("label=%q, pos=\"%s,%s!\"", n.Label, fmtFloat(n.Position.X), fmtFloat(0-n.Position.Y))
		if hasRoot && n.ID == root.ID {
			attrs += ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
