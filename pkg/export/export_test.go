package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bichil/orgchart/pkg/cache"
	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
)

func sample(t *testing.T) *chart.Graph {
	t.Helper()
	g, err := chart.FromParts(
		[]chart.Node{
			{ID: "A", Label: "Захирал", Position: chart.Position{X: 0, Y: 0}, IsRoot: true},
			{ID: "B", Label: "B", Position: chart.Position{X: -110, Y: 140}},
			{ID: "C", Label: "C <&>", Position: chart.Position{X: 110, Y: 140}},
		},
		[]chart.Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "A", Target: "C"},
		},
	)
	if err != nil {
		t.Fatalf("FromParts() error = %v", err)
	}
	return g
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".PNG", FormatPNG, false},
		{"yml", FormatYAML, false},
		{" svg ", FormatSVG, false},
		{"dot", FormatDOT, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) code = %s", tt.in, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	if got := FormatPNG.FileName(); got != "org-chart.png" {
		t.Errorf("FileName() = %q", got)
	}
	if got := FormatSVG.ContentType(); got != "image/svg+xml" {
		t.Errorf("ContentType() = %q", got)
	}
	if !FormatYAML.Importable() || FormatPNG.Importable() {
		t.Error("Importable() wrong")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := sample(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"nodes\"") {
		t.Errorf("WriteJSON() not indented:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "C <&>") {
		t.Error("WriteJSON() escaped HTML characters in labels")
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if !got.Equal(g) {
		t.Errorf("round trip changed chart:\n got %v\nwant %v", got.Nodes(), g.Nodes())
	}
}

func TestJSONDeterministic(t *testing.T) {
	g := sample(t)
	var a, b bytes.Buffer
	if err := WriteJSON(&a, g); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(&b, g.Clone()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("WriteJSON() output differs for equal charts")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	g := sample(t)

	var buf bytes.Buffer
	if err := WriteYAML(&buf, g); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	if !strings.Contains(buf.String(), "isRoot: true") {
		t.Errorf("WriteYAML() missing root flag:\n%s", buf.String())
	}

	got, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if !got.Equal(g) {
		t.Error("YAML round trip changed chart")
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{not json")); !errors.Is(err, errors.ErrCodeMalformedSnapshot) {
		t.Errorf("ReadJSON() error = %v, want MALFORMED_SNAPSHOT", err)
	}
	if _, err := ReadYAML(strings.NewReader("nodes: [")); !errors.Is(err, errors.ErrCodeMalformedSnapshot) {
		t.Errorf("ReadYAML() error = %v, want MALFORMED_SNAPSHOT", err)
	}
	dangling := `{"version":1,"nodes":[{"id":"a","label":"a","position":{"x":0,"y":0}}],"edges":[{"id":"e","source":"a","target":"zz"}]}`
	if _, err := ReadJSON(strings.NewReader(dangling)); !errors.Is(err, errors.ErrCodeMalformedSnapshot) {
		t.Errorf("ReadJSON() dangling edge error = %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	g := sample(t)

	var jsonBuf, yamlBuf bytes.Buffer
	if err := WriteJSON(&jsonBuf, g); err != nil {
		t.Fatal(err)
	}
	if err := WriteYAML(&yamlBuf, g); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"chart.json": jsonBuf.Bytes(),
		"chart.yml":  yamlBuf.Bytes(),
		"chart":      jsonBuf.Bytes(),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%s) error = %v", name, err)
			continue
		}
		if !got.Equal(g) {
			t.Errorf("ReadFile(%s) changed chart", name)
		}
	}

	png := filepath.Join(dir, "chart.png")
	if err := os.WriteFile(png, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(png); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ReadFile(png) error = %v, want INVALID_FORMAT", err)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"chart.json":        "json",
		"dir/chart.YAML":    "YAML",
		"archive.tar.yml":   "yml",
		"chart":             "",
		"releases.v2/chart": "",
		"chart.":            "",
	}
	for path, want := range tests {
		if got := extension(path); got != want {
			t.Errorf("extension(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(t), DefaultOptions())

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`bgcolor="white"`,
		`"A" [label="Захирал", pos="0,0!", penwidth=2]`,
		`"B" [label="B", pos="-110,-140!"]`,
		`"C" [label="C <&>", pos="110,-140!"]`,
		`"A" -> "B"`,
		`"A" -> "C"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTPadding(t *testing.T) {
	dot := ToDOT(sample(t), Options{Padding: 72, Background: "#fafafa"})
	if !strings.Contains(dot, "pad=1;") {
		t.Errorf("ToDOT() padding not converted to inches:\n%s", dot)
	}
	if !strings.Contains(dot, `bgcolor="#fafafa"`) {
		t.Error("ToDOT() ignored background")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}

type fakeRasterizer struct {
	calls atomic.Int32
	err   error
	opts  Options
}

func (f *fakeRasterizer) Rasterize(_ context.Context, svg []byte, opts Options) ([]byte, error) {
	f.calls.Add(1)
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("PNG:"), svg[:4]...), nil
}

func TestExportPNGEmptyChart(t *testing.T) {
	r := &fakeRasterizer{}
	_, err := ExportPNG(context.Background(), chart.New(), r, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeExport) {
		t.Fatalf("ExportPNG() error = %v, want EXPORT_FAILED", err)
	}
	if !strings.Contains(err.Error(), "diagram not found") {
		t.Errorf("ExportPNG() error = %v", err)
	}
	if r.calls.Load() != 0 {
		t.Error("rasterizer called for empty chart")
	}
}

func TestExportPNGRasterizerFailure(t *testing.T) {
	g := sample(t)
	before := g.Clone()
	r := &fakeRasterizer{err: fmt.Errorf("boom")}

	_, err := ExportPNG(context.Background(), g, r, Options{})
	if !errors.Is(err, errors.ErrCodeExport) {
		t.Fatalf("ExportPNG() error = %v, want EXPORT_FAILED", err)
	}
	if !g.Equal(before) {
		t.Error("failed export modified the chart")
	}
	if r.opts.Scale != 2 || r.opts.Background != "white" {
		t.Errorf("rasterizer options = %+v, want defaults", r.opts)
	}
}

func TestRunnerStructuredFormats(t *testing.T) {
	r := NewRunner(nil, &fakeRasterizer{}, nil)
	g := sample(t)

	for _, f := range []Format{FormatJSON, FormatYAML, FormatDOT} {
		art, err := r.Render(context.Background(), g, f)
		if err != nil {
			t.Fatalf("Render(%s) error = %v", f, err)
		}
		if len(art.Data) == 0 || art.Cached {
			t.Errorf("Render(%s) = %d bytes, cached %v", f, len(art.Data), art.Cached)
		}
	}

	if _, err := r.Render(context.Background(), g, Format("pdf")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) error = %v", err)
	}
}

func TestRunnerCachesImages(t *testing.T) {
	c, err := cache.NewLRUCache(8)
	if err != nil {
		t.Fatal(err)
	}
	raster := &fakeRasterizer{}
	r := NewRunner(c, raster, nil)
	g := sample(t)
	ctx := context.Background()

	first, err := r.Render(ctx, g, FormatPNG)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if first.Cached {
		t.Error("first render reported cached")
	}
	second, err := r.Render(ctx, g, FormatPNG)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !second.Cached || !bytes.Equal(first.Data, second.Data) {
		t.Error("second render not served from cache")
	}
	if got := raster.calls.Load(); got != 1 {
		t.Errorf("rasterizer calls = %d, want 1", got)
	}

	g.Rename("B", "Renamed")
	third, err := r.Render(ctx, g, FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("edited chart served from stale cache")
	}
}

func TestRunnerBusy(t *testing.T) {
	r := NewRunner(nil, &fakeRasterizer{}, nil)
	r.busy.Store(true)
	if _, err := r.Render(context.Background(), sample(t), FormatJSON); !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("Render() while busy error = %v, want BUSY", err)
	}
}
