// Package cache stores rendered export artifacts keyed by chart content.
//
// Rendering an SVG or PNG of a large chart shells out to Graphviz and
// rsvg-convert, so repeated exports of an unchanged chart are served from
// cache. Keys are derived from the chart's snapshot hash plus the render
// options, so any edit invalidates them naturally.
//
// Implementations:
//   - [FileCache]: sharded files on disk, for the CLI
//   - [LRUCache]: bounded in-process cache, for the HTTP server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLArtifact bounds how long a rendered artifact is kept.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte cache with optional per-entry expiry. A ttl of zero means
// no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Scale      float64 `json:"scale,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
	Background string  `json:"background,omitempty"`
}

// ArtifactKey derives the cache key for one rendered artifact of the chart
// whose snapshot hashes to chartHash.
func ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chartHash, opts)
}
