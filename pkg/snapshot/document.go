// Package snapshot encodes charts for persistence and tracks unsaved changes.
//
// A [Document] is the stored shape of a chart:
//
//	{"version":1,"nodes":[{"id":"tuz","label":"ТУЗ","position":{"x":800,"y":0},"isRoot":true}],
//	 "edges":[{"id":"e1","source":"tuz","target":"hr"}]}
//
// Documents written before the version field existed decode as version 1.
// A [Tracker] keeps the baseline captured at the last load or save and
// answers whether the working chart differs from it.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
)

// Version is the document format written by this package.
const Version = 1

// Document is the persisted form of a chart.
type Document struct {
	Version int          `json:"version" yaml:"version"`
	Nodes   []chart.Node `json:"nodes" yaml:"nodes"`
	Edges   []chart.Edge `json:"edges" yaml:"edges"`
}

// FromGraph captures g as a document. Empty lists encode as [] rather than null.
func FromGraph(g *chart.Graph) Document {
	doc := Document{
		Version: Version,
		Nodes:   g.Nodes(),
		Edges:   g.Edges(),
	}
	if doc.Nodes == nil {
		doc.Nodes = []chart.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []chart.Edge{}
	}
	return doc
}

// Graph rebuilds the chart. Version 0 (absent) is migrated to 1; newer
// versions are rejected. A chart without a flagged root gets one via
// [chart.Graph.ReconcileRoot].
func (d Document) Graph(opts ...chart.Option) (*chart.Graph, error) {
	switch d.Version {
	case 0, Version:
	default:
		return nil, errors.New(errors.ErrCodeMalformedSnapshot, "unsupported snapshot version %d", d.Version)
	}
	g, err := chart.FromParts(d.Nodes, d.Edges, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSnapshot, err, "invalid chart")
	}
	g.ReconcileRoot()
	return g, nil
}

// Encode returns the compact JSON encoding used for storage and dirty checks.
func Encode(g *chart.Graph) ([]byte, error) {
	data, err := json.Marshal(FromGraph(g))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// EncodeIndent returns the two-space indented encoding used for exported files.
func EncodeIndent(g *chart.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a stored or exported document. Failures carry
// [errors.ErrCodeMalformedSnapshot].
func Decode(data []byte, opts ...chart.Option) (*chart.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSnapshot, err, "decode")
	}
	return doc.Graph(opts...)
}
