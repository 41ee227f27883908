package export

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bichil/orgchart/pkg/cache"
	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/observability"
	"github.com/bichil/orgchart/pkg/snapshot"
)

// Artifact is one rendered export.
type Artifact struct {
	Format Format
	Data   []byte
	Cached bool
}

// Runner renders exports, serving images from cache when the chart and
// options are unchanged. Only one render runs at a time; a second call while
// one is in flight fails with [errors.ErrCodeBusy].
type Runner struct {
	Cache      cache.Cache
	Rasterizer Rasterizer
	Logger     *log.Logger
	Options    Options

	busy atomic.Bool
}

// NewRunner creates a runner. A nil cache disables caching, a nil rasterizer
// uses rsvg-convert, a nil logger uses the default logger.
func NewRunner(c cache.Cache, r Rasterizer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if r == nil {
		r = RSVGRasterizer{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Rasterizer: r, Logger: logger, Options: DefaultOptions()}
}

// Render produces the chart in the given format.
func (r *Runner) Render(ctx context.Context, g *chart.Graph, format Format) (*Artifact, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeBusy, "an export is already in progress")
	}
	defer r.busy.Store(false)

	start := time.Now()
	observability.Export().OnExportStart(ctx, string(format))
	art, err := r.render(ctx, g, format)
	size := 0
	if art != nil {
		size = len(art.Data)
	}
	observability.Export().OnExportComplete(ctx, string(format), size, time.Since(start), err)
	if err != nil {
		r.Logger.Warn("export failed", "format", format, "error", err)
		return nil, err
	}
	r.Logger.Debug("exported", "format", format, "bytes", size, "cached", art.Cached, "duration", time.Since(start))
	return art, nil
}

func (r *Runner) render(ctx context.Context, g *chart.Graph, format Format) (*Artifact, error) {
	if g == nil {
		return nil, errNoDiagram()
	}
	opts := r.Options.withDefaults()

	switch format {
	case FormatJSON:
		data, err := snapshot.EncodeIndent(g)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "encode json")
		}
		return &Artifact{Format: format, Data: data}, nil
	case FormatYAML:
		var buf bytes.Buffer
		if err := WriteYAML(&buf, g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeExport, err, "encode yaml")
		}
		return &Artifact{Format: format, Data: buf.Bytes()}, nil
	case FormatDOT:
		return &Artifact{Format: format, Data: []byte(ToDOT(g, opts))}, nil
	case FormatSVG, FormatPNG:
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", format)
	}

	encoded, err := snapshot.Encode(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "hash chart")
	}
	keyOpts := cache.ArtifactKeyOpts{Format: string(format), Padding: opts.Padding, Background: opts.Background}
	if format == FormatPNG {
		keyOpts.Scale = opts.Scale
	}
	key := cache.ArtifactKey(cache.Hash(encoded), keyOpts)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return &Artifact{Format: format, Data: data, Cached: true}, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	var data []byte
	if format == FormatSVG {
		data, err = SVG(ctx, g, opts)
	} else {
		data, err = ExportPNG(ctx, g, r.Rasterizer, opts)
	}
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Debug("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return &Artifact{Format: format, Data: data}, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
