package snapshot

import (
	_ "embed"

	"github.com/bichil/orgchart/pkg/chart"
)

//go:embed default_chart.json
var defaultChart []byte

// DefaultJSON returns the built-in starter chart as indented JSON.
func DefaultJSON() []byte { return append([]byte(nil), defaultChart...) }

// Default returns a fresh copy of the built-in starter chart.
func Default(opts ...chart.Option) *chart.Graph {
	g, err := Decode(defaultChart, opts...)
	if err != nil {
		panic("snapshot: embedded default chart: " + err.Error())
	}
	return g
}
