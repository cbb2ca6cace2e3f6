package engine

// #region imports
import (
	"fmt"
	"time"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/behavior"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #endregion imports

// #region stateless

// ConvertSession is the one-shot behavioral conversion: one session log
// in, one HSI document out, no baselines consulted.
func ConvertSession(raw []byte, now time.Time) (*hsi.Document, error) {
	derived, err := deriveSession(raw)
	if err != nil {
		return nil, err
	}
	encoder := hsi.NewEncoderForDevice(derived.DeviceID)
	return buildBehaviorDocument(encoder, derived, behaviorBaseline{}, now), nil
}

func deriveSession(raw []byte) (behavior.Derived, error) {
	session, err := behavior.ParseSession(raw)
	if err != nil {
		return behavior.Derived{}, err
	}
	canonical, err := behavior.Canonicalize(session)
	if err != nil {
		return behavior.Derived{}, err
	}
	return behavior.Derive(behavior.Normalize(canonical)), nil
}

// #endregion stateless

// #region stateful

// ProcessBehavior parses a session log, updates the behavioral baselines
// and emits the session's HSI document.
func (p *Processor) ProcessBehavior(raw []byte) (*hsi.Document, error) {
	derived, err := deriveSession(raw)
	if err != nil {
		return nil, err
	}

	stream := derived.DeviceID
	distractionPct := pctDeviation(&derived.DistractionScore, p.behavior.Stats(stream, "distraction"))

	p.behavior.UpdateAndScore(stream, "distraction", baseline.LowerIsBetter, derived.DistractionScore)
	p.behavior.UpdateAndScore(stream, "focus", baseline.HigherIsBetter, derived.FocusHint)
	p.behavior.UpdateAndScore(stream, "intensity", baseline.Bidirectional, derived.InteractionIntensity)
	if derived.Burstiness != nil {
		p.behavior.UpdateAndScore(stream, "burstiness", baseline.Bidirectional, *derived.Burstiness)
	}

	bl := behaviorBaseline{
		sessions: p.behavior.Observations(stream, "distraction"),
	}
	if stats := p.behavior.Stats(stream, "distraction"); stats.Count > 0 {
		mean := stats.Mean
		bl.distractionMean = &mean
	}
	bl.distractionPct = distractionPct

	return buildBehaviorDocument(p.encoder, derived, bl, p.now()), nil
}

// #endregion stateful

// #region document

// behaviorBaseline carries what the baseline engine knows about a stream
// at document-build time. The zero value means no baseline exists.
type behaviorBaseline struct {
	sessions        int
	distractionMean *float64
	distractionPct  *float64
}

// sessionBonusThreshold is how many sessions the baseline needs before
// documents earn the confidence bonus.
const sessionBonusThreshold = 5

func buildBehaviorDocument(encoder *hsi.Encoder, d behavior.Derived, bl behaviorBaseline, now time.Time) *hsi.Document {
	doc := encoder.NewDocument(d.Canonical.EndTime, now)
	attachBehavior(doc, d, bl)
	return doc
}

// attachBehavior adds a session's window, source, behavior axis and
// metadata to a document under construction.
func attachBehavior(doc *hsi.Document, d behavior.Derived, bl behaviorBaseline) {
	c := &d.Canonical

	windowID := hsi.WindowID(c.SessionID)
	doc.AddWindow(windowID, hsi.Window{
		Start: hsi.Timestamp(c.StartTime),
		End:   hsi.Timestamp(c.EndTime),
		Label: "session:" + c.SessionID,
	})

	sourceID := hsi.SourceID(c.DeviceID)
	notes := ""
	if len(d.Flags) > 0 {
		notes = fmt.Sprintf("quality flags: %v", d.Flags)
	}
	doc.AddSource(sourceID, hsi.Source{
		Type:     hsi.SourceApp,
		Quality:  d.Coverage,
		Degraded: len(d.Flags) > 0,
		Notes:    notes,
	})

	confidence := d.Coverage
	if bl.sessions >= sessionBonusThreshold {
		confidence += 0.1
	}
	if confidence > 1 {
		confidence = 1
	}

	doc.BehaviorReadings(behaviorReadings(d, windowID, sourceID, confidence))

	doc.SetMeta("session_id", c.SessionID)
	doc.SetMeta("duration_sec", c.DurationSec)
	doc.SetMeta("total_events", c.TotalEvents)
	doc.SetMeta("deep_focus_blocks", d.DeepFocusBlocks)
	doc.SetMeta("sessions_in_baseline", bl.sessions)
	if bl.distractionMean != nil {
		doc.SetMeta("baseline_distraction", *bl.distractionMean)
	}
	if bl.distractionPct != nil {
		doc.SetMeta("distraction_deviation_pct", *bl.distractionPct)
	}
}

// behaviorReadings lists the behavior axis in its fixed order. Burstiness
// is omitted entirely when the session could not define it.
func behaviorReadings(d behavior.Derived, windowID, sourceID string, confidence float64) []hsi.Reading {
	sources := []string{sourceID}
	reading := func(axis string, score float64, direction hsi.Direction, unit, notes string) hsi.Reading {
		return hsi.Reading{
			Axis:              axis,
			Score:             score,
			Confidence:        confidence,
			WindowID:          windowID,
			Direction:         direction,
			Unit:              unit,
			EvidenceSourceIDs: sources,
			Notes:             notes,
		}
	}

	readings := []hsi.Reading{
		reading("distraction", d.DistractionScore, hsi.HigherIsMore, "", ""),
		reading("focus", d.FocusHint, hsi.HigherIsMore, "", ""),
		reading("task_switch_rate", d.TaskSwitchRate, hsi.HigherIsMore, "normalized", "exponential saturation of app switches per minute"),
		reading("notification_load", d.NotificationLoad, hsi.HigherIsMore, "normalized", ""),
	}
	if d.Burstiness != nil {
		readings = append(readings, reading("burstiness", *d.Burstiness, hsi.Bidirectional, "barabasi_index", "inter-event gap variance index"))
	}
	readings = append(readings,
		reading("scroll_jitter_rate", d.ScrollJitterRate, hsi.HigherIsMore, "ratio", ""),
		reading("interaction_intensity", d.InteractionIntensity, hsi.HigherIsMore, "normalized", ""),
		reading("idle_ratio", d.IdleRatio, hsi.HigherIsMore, "ratio", ""),
	)
	return readings
}

// #endregion document
