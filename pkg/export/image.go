package export

import (
	"context"
	stderrors "errors"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
)

// ErrNoDiagram is the cause of image exports of an empty chart.
var ErrNoDiagram = stderrors.New("no units to draw")

func errNoDiagram() error {
	return errors.Wrap(errors.ErrCodeExport, ErrNoDiagram, "diagram not found")
}

// SVG draws the chart at its current positions.
func SVG(ctx context.Context, g *chart.Graph, opts Options) ([]byte, error) {
	if g == nil || g.NodeCount() == 0 {
		return nil, errNoDiagram()
	}
	svg, err := RenderSVG(ctx, ToDOT(g, opts))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "render svg")
	}
	return svg, nil
}

// ExportPNG draws the chart and rasterizes it. A nil rasterizer uses
// [RSVGRasterizer]. Every failure carries [errors.ErrCodeExport]; the chart
// is only read.
func ExportPNG(ctx context.Context, g *chart.Graph, r Rasterizer, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	svg, err := SVG(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = RSVGRasterizer{}
	}
	png, err := r.Rasterize(ctx, svg, opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeExport) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeExport, err, "rasterize png")
	}
	if len(png) == 0 {
		return nil, errors.New(errors.ErrCodeExport, "rasterizer returned no image")
	}
	return png, nil
}
