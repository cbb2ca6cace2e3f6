// Package biocontext captures a day's wearable-derived background state and
// applies staleness decay when that state is read back later. Wearable data
// is honest but slow; it colors later behavioral documents with confidence
// that fades as the observation ages.
package biocontext

// #region imports
import (
	"fmt"
	"time"

	"github.com/synheart/flux/go-engine/internal/decay"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #endregion imports

// #region snapshot

// Snapshot is the bio context retained from a single day's wearable
// processing. Delta fields are deviations from baseline normalized to
// [-1, 1]; positive means above baseline.
type Snapshot struct {
	ObservedAtUTC time.Time `json:"observed_at_utc"`
	ComputedAtUTC time.Time `json:"computed_at_utc"`

	SleepQuality *float64 `json:"sleep_quality,omitempty"`
	Recovery     *float64 `json:"recovery,omitempty"`
	HrvDelta     *float64 `json:"hrv_delta,omitempty"`
	RhrDelta     *float64 `json:"rhr_delta,omitempty"`

	SourceIDs []string `json:"source_ids,omitempty"`
}

// NewSnapshot returns an empty snapshot carrying only its timestamps.
func NewSnapshot(observedAt, computedAt time.Time) *Snapshot {
	return &Snapshot{
		ObservedAtUTC: observedAt.UTC(),
		ComputedAtUTC: computedAt.UTC(),
	}
}

// HasData reports whether any context field is populated.
func (s *Snapshot) HasData() bool {
	return s.SleepQuality != nil || s.Recovery != nil || s.HrvDelta != nil || s.RhrDelta != nil
}

// BaseConfidence scores the snapshot's completeness before any decay:
// 0.6 plus 0.1 per populated field, capped at 1. An empty snapshot rates
// a noncommittal 0.5.
func (s *Snapshot) BaseConfidence() float64 {
	fields := 0
	for _, set := range []bool{
		s.SleepQuality != nil,
		s.Recovery != nil,
		s.HrvDelta != nil,
		s.RhrDelta != nil,
	} {
		if set {
			fields++
		}
	}
	if fields == 0 {
		return 0.5
	}
	conf := 0.6 + 0.1*float64(fields)
	if conf > 1 {
		conf = 1
	}
	return conf
}

// #endregion snapshot

// #region decayed

// Decayed is a snapshot evaluated at a reference time, with staleness
// folded into its confidence.
type Decayed struct {
	Snapshot Snapshot

	// BaseConfidence is the confidence before decay.
	BaseConfidence float64
	// DecayedConfidence is base times the staleness factor.
	DecayedConfidence float64
	// ValidUntil is when confidence drops below 10% of base.
	ValidUntil time.Time
	// Age is how old the observation was at evaluation time.
	Age time.Duration
}

// Decay evaluates a snapshot at now, applying the half-life to its base
// confidence.
func Decay(s Snapshot, baseConfidence float64, now time.Time, halfLife time.Duration) Decayed {
	age := now.Sub(s.ObservedAtUTC)
	decayed := clamp01(baseConfidence * decay.Factor(age, halfLife))
	return Decayed{
		Snapshot:          s,
		BaseConfidence:    baseConfidence,
		DecayedConfidence: decayed,
		ValidUntil:        decay.StaleAfter(s.ObservedAtUTC, halfLife),
		Age:               age,
	}
}

// DecayDefault evaluates a snapshot with the default 12 hour half-life.
func DecayDefault(s Snapshot, baseConfidence float64, now time.Time) Decayed {
	return Decay(s, baseConfidence, now, decay.DefaultHalfLife)
}

// Freshness is the staleness factor on its own: 1 fresh, approaching 0 as
// the observation ages.
func (d *Decayed) Freshness() float64 {
	if d.BaseConfidence <= 0 {
		return 0
	}
	return clamp01(d.DecayedConfidence / d.BaseConfidence)
}

// Valid reports whether confidence is still above 10% of base at now.
func (d *Decayed) Valid(now time.Time) bool {
	return now.Before(d.ValidUntil)
}

// #endregion decayed

// #region readings

// Readings converts the decayed context into HSI context-axis readings
// attached to windowID. bio_freshness is always present; the remaining
// axes appear only when their snapshot field is populated.
func (d *Decayed) Readings(windowID string) []hsi.Reading {
	sourceIDs := d.Snapshot.SourceIDs

	readings := []hsi.Reading{{
		Axis:              "bio_freshness",
		Score:             d.Freshness(),
		Confidence:        d.BaseConfidence,
		WindowID:          windowID,
		Direction:         hsi.HigherIsMore,
		Unit:              "freshness",
		EvidenceSourceIDs: sourceIDs,
		Notes:             fmt.Sprintf("age %ds, half-life %gh", int64(d.Age.Seconds()), decay.DefaultHalfLife.Hours()),
	}}

	if d.Snapshot.Recovery != nil {
		readings = append(readings, hsi.Reading{
			Axis:              "recovery_context",
			Score:             clamp01(*d.Snapshot.Recovery),
			Confidence:        d.DecayedConfidence,
			WindowID:          windowID,
			Direction:         hsi.HigherIsMore,
			Unit:              "score",
			EvidenceSourceIDs: sourceIDs,
		})
	}

	if d.Snapshot.SleepQuality != nil {
		readings = append(readings, hsi.Reading{
			Axis:              "sleep_context",
			Score:             clamp01(*d.Snapshot.SleepQuality),
			Confidence:        d.DecayedConfidence,
			WindowID:          windowID,
			Direction:         hsi.HigherIsMore,
			Unit:              "score",
			EvidenceSourceIDs: sourceIDs,
		})
	}

	if d.Snapshot.HrvDelta != nil {
		// Bidirectional: 0.5 is baseline, above 0.5 is above baseline.
		readings = append(readings, hsi.Reading{
			Axis:              "hrv_delta_context",
			Score:             clamp01((*d.Snapshot.HrvDelta + 1) / 2),
			Confidence:        d.DecayedConfidence,
			WindowID:          windowID,
			Direction:         hsi.Bidirectional,
			Unit:              "normalized_deviation",
			EvidenceSourceIDs: sourceIDs,
			Notes:             "0.5 = baseline, >0.5 = above baseline",
		})
	}

	if d.Snapshot.RhrDelta != nil {
		// Higher resting heart rate is worse, so the score inverts the
		// delta: above 0.5 means RHR below baseline.
		readings = append(readings, hsi.Reading{
			Axis:              "rhr_delta_context",
			Score:             clamp01((1 - *d.Snapshot.RhrDelta) / 2),
			Confidence:        d.DecayedConfidence,
			WindowID:          windowID,
			Direction:         hsi.HigherIsMore,
			Unit:              "normalized_deviation",
			EvidenceSourceIDs: sourceIDs,
			Notes:             "0.5 = baseline, >0.5 = below baseline",
		})
	}

	return readings
}

// #endregion readings

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
