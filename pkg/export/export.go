// Package export turns a chart into files: the JSON snapshot, YAML, Graphviz
// DOT, SVG and PNG.
//
// JSON and YAML are lossless and can be imported again. DOT pins every unit
// at its canvas position, so SVG and PNG show the chart exactly as laid out
// in the editor rather than re-laid out by Graphviz.
//
//	r := export.NewRunner(cache.NewNullCache(), nil, logger)
//	png, err := r.Render(ctx, g, export.FormatPNG)
//
// SVG rendering runs Graphviz in-process through go-graphviz. PNG conversion
// needs librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
package export

import (
	"slices"
	"strings"

	"github.com/bichil/orgchart/pkg/errors"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatDOT, FormatSVG, FormatPNG}

// BaseName is the file stem used for downloads and default output paths.
const BaseName = "org-chart"

// ParseFormat accepts a format name or a file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q (want one of json, yaml, dot, svg, png)", s)
	}
	return f, nil
}

// FileName returns "org-chart.<ext>".
func (f Format) FileName() string { return BaseName + "." + string(f) }

// ContentType returns the MIME type for HTTP responses and uploads.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Importable reports whether the format can be read back into a chart.
func (f Format) Importable() bool { return f == FormatJSON || f == FormatYAML }

// Options controls image output.
type Options struct {
	Scale      float64 `toml:"scale"`      // PNG pixel ratio
	Padding    float64 `toml:"padding"`    // pixels around the chart
	Background string  `toml:"background"` // CSS color name or #rrggbb
}

// DefaultOptions matches the editor's PNG download: 2x pixel ratio, white
// background, 40px padding.
func DefaultOptions() Options {
	return Options{Scale: 2, Padding: 40, Background: "white"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	return o
}
