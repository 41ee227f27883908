package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/snapshot"
)

// WriteYAML writes the chart as a YAML snapshot document.
func WriteYAML(w io.Writer, g *chart.Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot.FromGraph(g)); err != nil {
		return err
	}
	return enc.Close()
}

// ReadYAML parses a YAML snapshot document.
func ReadYAML(r io.Reader) (*chart.Graph, error) {
	var doc snapshot.Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSnapshot, err, "decode yaml")
	}
	return doc.Graph()
}
