// Package engine is the pipeline entry point: it turns vendor wearable
// payloads and behavioral session logs into HSI documents, maintaining
// per-device rolling baselines and the last captured bio context between
// calls. A Processor is not internally synchronized; the host serializes
// access, typically one processor per device stream.
package engine

// #region imports
import (
	"errors"
	"time"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/biocontext"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #endregion imports

// #region errors

// ErrNoBioContext is returned when a snapshot is requested before any
// wearable payload has been processed.
var ErrNoBioContext = errors.New("no bio context captured yet")

// #endregion errors

// #region config

// Config sizes the processor's rolling baselines.
type Config struct {
	// WearableWindow is the number of days kept per wearable metric.
	WearableWindow int
	// BehaviorWindow is the number of sessions kept per behavior metric.
	BehaviorWindow int
	// HalfLife is the staleness half-life applied to bio context reads.
	HalfLife time.Duration
	// Now supplies the clock; nil means time.Now.
	Now func() time.Time
	// InstanceID pins the producer instance identity; empty means a
	// random one is generated at construction.
	InstanceID string
}

// DefaultConfig returns the standard processor configuration.
func DefaultConfig() Config {
	return Config{
		WearableWindow: baseline.DefaultWearableConfig().WindowSize,
		BehaviorWindow: baseline.DefaultBehaviorConfig().WindowSize,
		HalfLife:       12 * time.Hour,
	}
}

// #endregion config

// #region processor

// Processor holds the mutable state of one device stream: two baseline
// engines and the last bio context snapshot.
type Processor struct {
	config   Config
	wearable *baseline.Engine
	behavior *baseline.Engine
	snapshot *biocontext.Snapshot
	encoder  *hsi.Encoder
	now      func() time.Time
}

// NewProcessor constructs a processor from config, falling back to
// defaults for zero-valued fields.
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.WearableWindow <= 0 {
		config.WearableWindow = def.WearableWindow
	}
	if config.BehaviorWindow <= 0 {
		config.BehaviorWindow = def.BehaviorWindow
	}
	if config.HalfLife <= 0 {
		config.HalfLife = def.HalfLife
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	encoder := hsi.NewEncoder()
	if config.InstanceID != "" {
		encoder = hsi.WithInstanceID(config.InstanceID)
	}

	return &Processor{
		config:   config,
		wearable: baseline.NewEngine(baseline.Config{WindowSize: config.WearableWindow}),
		behavior: baseline.NewEngine(baseline.Config{WindowSize: config.BehaviorWindow}),
		snapshot: nil,
		encoder:  encoder,
		now:      now,
	}
}

// BioContext returns the last captured snapshot, or nil before the first
// wearable run.
func (p *Processor) BioContext() *biocontext.Snapshot {
	return p.snapshot
}

// #endregion processor

// #region deviation

// pctDeviation reports how far value sits from the stream's current
// baseline mean, in percent. Nil when no baseline exists yet.
func pctDeviation(value *float64, stats baseline.Stats) *float64 {
	if value == nil || stats.Count == 0 || stats.Mean <= 0 {
		return nil
	}
	pct := (*value - stats.Mean) / stats.Mean * 100
	return &pct
}

// deltaFromPct normalizes a percentage deviation onto [-1, 1], treating
// 50% as the full-scale deviation.
func deltaFromPct(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	d := *pct / 50
	if d < -1 {
		d = -1
	}
	if d > 1 {
		d = 1
	}
	return &d
}

// #endregion deviation
