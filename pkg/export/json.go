package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/snapshot"
)

// WriteJSON writes the chart as an indented snapshot document.
func WriteJSON(w io.Writer, g *chart.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(snapshot.FromGraph(g))
}

// ReadJSON parses a snapshot document.
func ReadJSON(r io.Reader) (*chart.Graph, error) {
	var doc snapshot.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSnapshot, err, "decode json")
	}
	return doc.Graph()
}

// ReadFile imports a JSON or YAML chart, choosing the codec by extension.
func ReadFile(path string) (*chart.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	format, err := ParseFormat(extension(path))
	if err != nil {
		format = FormatJSON
	}
	switch format {
	case FormatYAML:
		return ReadYAML(f)
	case FormatJSON:
		return ReadJSON(f)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot import %s files", format)
	}
}

func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
