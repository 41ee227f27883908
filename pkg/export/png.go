package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bichil/orgchart/pkg/errors"
)

// Rasterizer converts SVG to PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, opts Options) ([]byte, error)
}

// RSVGRasterizer shells out to librsvg's rsvg-convert.
type RSVGRasterizer struct {
	// Path to the binary. Empty means look up "rsvg-convert" on PATH.
	Path string
}

// Rasterize pipes svg through rsvg-convert at opts.Scale on opts.Background.
func (r RSVGRasterizer) Rasterize(ctx context.Context, svg []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	bin := r.Path
	if bin == "" {
		bin = "rsvg-convert"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s not found: install librsvg (brew install librsvg, apt install librsvg2-bin)", bin)
	}

	cmd := exec.CommandContext(ctx, path,
		"-f", "png",
		"-z", fmtFloat(opts.Scale),
		"-b", opts.Background)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("rsvg-convert: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("rsvg-convert: %w", err)
	}
	return stdout.Bytes(), nil
}
