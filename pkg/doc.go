// Package pkg provides the core libraries for Orgchart, an editor for
// organization charts.
//
// # Overview
//
// An organization chart is a set of units (nodes) joined by reporting lines
// (edges). Exactly one unit is the root; every line runs from a superior to
// a subordinate and the part of the chart reachable from the root is a tree.
// Units that lost their parent stay on the canvas as orphans until they are
// reconnected or deleted.
//
// The pkg directory is organized into these areas:
//
//  1. [chart] - The graph model, its mutations and invariants
//  2. [chart/layout] - Deterministic tree layout and seeded scatter
//  3. [editor] - Editing state machine (idle, label dialog, root selection)
//  4. [snapshot] - Document codec, default chart and dirty tracking
//  5. [storage] - Slot backends (file, memory, sqlite, redis, mongodb)
//  6. [export] - JSON, YAML, SVG and PNG output
//
// # Architecture
//
// The typical data flow:
//
//	storage slot (JSON snapshot)
//	         ↓
//	    [snapshot] Tracker.Load (baseline for dirty checks)
//	         ↓
//	    [editor] package (mutations guarded by mode and preview)
//	         ↓
//	    [chart/layout] package (auto layout on demand)
//	         ↓
//	    [export] Runner (JSON/YAML/SVG/PNG, cached by content hash)
//
// # Quick Start
//
//	store := storage.NewMemoryStore()
//	tracker := snapshot.NewTracker(store, storage.DefaultSlot, logger)
//	ed, _ := editor.Open(ctx, tracker)
//
//	child, _, _ := ed.AddChild("tuz")
//	ed.Rename(child.ID, "Audit")
//	ed.AutoLayout()
//	ed.Save(ctx)
//
// # Supporting Packages
//
// [errors] - Code-typed errors shared by the CLI and the HTTP API.
//
// [config] - TOML configuration with .env and environment overrides.
//
// [cache] - Content-addressed caches (file, LRU, null) for rendered images.
//
// [upload] - Optional S3-compatible upload of exported files.
//
// [i18n] - Mongolian and English interface messages.
//
// [observability] - Hook interfaces for metrics, with a Prometheus collector
// in observability/metrics.
//
// [buildinfo] - Version metadata injected at build time.
//
// [chart]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/chart
// [chart/layout]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/chart/layout
// [editor]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/editor
// [snapshot]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/snapshot
// [storage]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/storage
// [export]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/export
// [errors]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/errors
// [config]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/config
// [cache]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/cache
// [upload]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/upload
// [i18n]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/i18n
// [observability]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/bichil/orgchart/pkg/buildinfo
package pkg
