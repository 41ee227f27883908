package snapshot

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/observability"
	"github.com/bichil/orgchart/pkg/storage"
)

// Source says where [Tracker.Load] got its chart from.
type Source string

const (
	// SourceSaved means the slot held a valid snapshot; a baseline exists.
	SourceSaved Source = "saved"
	// SourceDefault means the slot was empty.
	SourceDefault Source = "default"
	// SourceMalformed means the slot held data that failed to decode.
	SourceMalformed Source = "malformed"
	// SourceUnavailable means the store itself returned an error.
	SourceUnavailable Source = "unavailable"
)

// Tracker binds a storage slot to the baseline used for dirty detection.
// Only a successful load from the slot or a successful save creates a
// baseline; until then the chart is never reported dirty.
//
// A slot whose read failed is never written: the chart on display is the
// fallback, not the slot's contents. Load again once the store recovers.
type Tracker struct {
	store  storage.Store
	slot   string
	logger *log.Logger
	opts   []chart.Option
	source Source

	baseline    *chart.Graph
	baselineRaw []byte
}

// NewTracker creates a tracker for one slot. An empty slot means
// [storage.DefaultSlot]; a nil logger discards output.
func NewTracker(store storage.Store, slot string, logger *log.Logger, opts ...chart.Option) *Tracker {
	if slot == "" {
		slot = storage.DefaultSlot
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tracker{store: store, slot: slot, logger: logger, opts: opts}
}

// Slot returns the slot name.
func (t *Tracker) Slot() string { return t.slot }

// Load reads the slot. Any failure falls back to the built-in default chart
// without a baseline; malformed data is logged but never returned as an error.
func (t *Tracker) Load(ctx context.Context) (*chart.Graph, Source) {
	start := time.Now()
	g, src, err := t.load(ctx)
	observability.Store().OnLoad(ctx, string(src), time.Since(start), err)
	t.source = src
	return g, src
}

// Source reports the result of the last Load, or [SourceSaved] once a save
// succeeded. It is empty before the first Load.
func (t *Tracker) Source() Source { return t.source }

func (t *Tracker) load(ctx context.Context) (*chart.Graph, Source, error) {
	t.baseline, t.baselineRaw = nil, nil
	data, ok, err := t.store.Get(ctx, t.slot)
	if err != nil {
		t.logger.Warn("snapshot store unavailable, using default chart", "slot", t.slot, "err", err)
		return Default(t.opts...), SourceUnavailable, err
	}
	if !ok {
		t.logger.Debug("no saved chart, using default", "slot", t.slot)
		return Default(t.opts...), SourceDefault, nil
	}

	g, err := Decode(data, t.opts...)
	if err != nil {
		t.logger.Error("failed to load org chart", "slot", t.slot, "err", err)
		return Default(t.opts...), SourceMalformed, err
	}
	if err := t.setBaseline(g); err != nil {
		return Default(t.opts...), SourceMalformed, err
	}
	t.logger.Debug("loaded chart", "slot", t.slot, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, SourceSaved, nil
}

func (t *Tracker) setBaseline(g *chart.Graph) error {
	raw, err := Encode(g)
	if err != nil {
		return err
	}
	t.baseline = g.Clone()
	t.baselineRaw = raw
	return nil
}

// HasBaseline reports whether a baseline exists.
func (t *Tracker) HasBaseline() bool { return t.baseline != nil }

// Dirty reports whether g differs from the baseline. Without a baseline it
// is always false.
func (t *Tracker) Dirty(g *chart.Graph) bool {
	if t.baseline == nil {
		return false
	}
	raw, err := Encode(g)
	if err != nil {
		return true
	}
	return !bytes.Equal(raw, t.baselineRaw)
}

// Save persists g and makes it the new baseline. On failure the previous
// baseline is kept. After an unavailable load it fails with
// [errors.ErrCodeSlotUnreadable] and leaves the slot alone.
func (t *Tracker) Save(ctx context.Context, g *chart.Graph) error {
	if t.source == SourceUnavailable {
		return errors.New(errors.ErrCodeSlotUnreadable, "slot %q could not be read; reload it before saving", t.slot)
	}
	start := time.Now()
	raw, err := Encode(g)
	if err == nil {
		err = t.store.Set(ctx, t.slot, raw)
	}
	observability.Store().OnSave(ctx, t.store.Name(), len(raw), time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save slot %q", t.slot)
	}
	t.baseline = g.Clone()
	t.baselineRaw = raw
	t.source = SourceSaved
	t.logger.Info("chart saved", "slot", t.slot, "backend", t.store.Name(), "nodes", g.NodeCount())
	return nil
}

// Reset returns a deep copy of the baseline, or false when none exists.
func (t *Tracker) Reset() (*chart.Graph, bool) {
	if t.baseline == nil {
		return nil, false
	}
	return t.baseline.Clone(), true
}

// Clear deletes the slot and drops the baseline.
func (t *Tracker) Clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.slot); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "clear slot %q", t.slot)
	}
	t.baseline = nil
	t.baselineRaw = nil
	t.source = SourceDefault
	return nil
}
