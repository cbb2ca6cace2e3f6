package engine

// #region imports
import (
	"fmt"
	"time"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/biocontext"
	"github.com/synheart/flux/go-engine/internal/hsi"
	"github.com/synheart/flux/go-engine/internal/wearable"
)

// #endregion imports

// #region stateless

// ConvertWhoop is the one-shot WHOOP conversion: raw payload in, one HSI
// document per calendar day out. No baselines are consulted and no state
// is retained; identical inputs yield identical documents.
func ConvertWhoop(raw []byte, timezone, deviceID string, now time.Time) ([]*hsi.Document, error) {
	records, err := wearable.ParseWhoop(raw, timezone, deviceID)
	if err != nil {
		return nil, err
	}
	return convertRecords(records, deviceID, now)
}

// ConvertGarmin is the one-shot Garmin conversion, mirroring ConvertWhoop.
func ConvertGarmin(raw []byte, timezone, deviceID string, now time.Time) ([]*hsi.Document, error) {
	records, err := wearable.ParseGarmin(raw, timezone, deviceID)
	if err != nil {
		return nil, err
	}
	return convertRecords(records, deviceID, now)
}

func convertRecords(records []wearable.DailyRecord, deviceID string, now time.Time) ([]*hsi.Document, error) {
	encoder := hsi.NewEncoderForDevice(deviceID)
	docs := make([]*hsi.Document, 0, len(records))
	for _, rec := range records {
		derived := wearable.Derive(wearable.Normalize(rec))
		snap := captureSnapshot(derived, nil, nil, now)
		docs = append(docs, buildWearableDocument(encoder, derived, snap, nil, derived.Coverage, now, DefaultConfig().HalfLife))
	}
	return docs, nil
}

// #endregion stateless

// #region stateful

// ProcessWhoop parses a WHOOP payload, updates the wearable baselines and
// bio context, and emits one document per calendar day.
func (p *Processor) ProcessWhoop(raw []byte, timezone, deviceID string) ([]*hsi.Document, error) {
	records, err := wearable.ParseWhoop(raw, timezone, deviceID)
	if err != nil {
		return nil, err
	}
	return p.processRecords(records, deviceID)
}

// ProcessGarmin parses a Garmin payload, updates the wearable baselines
// and bio context, and emits one document per calendar day.
func (p *Processor) ProcessGarmin(raw []byte, timezone, deviceID string) ([]*hsi.Document, error) {
	records, err := wearable.ParseGarmin(raw, timezone, deviceID)
	if err != nil {
		return nil, err
	}
	return p.processRecords(records, deviceID)
}

func (p *Processor) processRecords(records []wearable.DailyRecord, deviceID string) ([]*hsi.Document, error) {
	docs := make([]*hsi.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, p.processRecord(rec, deviceID))
	}
	return docs, nil
}

func (p *Processor) processRecord(rec wearable.DailyRecord, deviceID string) *hsi.Document {
	now := p.now()
	derived := wearable.Derive(wearable.Normalize(rec))
	sleep := &rec.Sleep
	recovery := &rec.Recovery

	// Deviations compare today against the baseline as it stood before
	// today's values entered the window.
	hrvPct := pctDeviation(recovery.HrvRmssdMs, p.wearable.Stats(deviceID, "hrv_rmssd"))
	rhrPct := pctDeviation(recovery.RestingHrBpm, p.wearable.Stats(deviceID, "resting_hr"))
	sleepPct := pctDeviation(sleep.TotalSleepMinutes, p.wearable.Stats(deviceID, "sleep_duration"))

	baselineMeta := map[string]any{}
	addStat := func(key string, stats baseline.Stats) {
		if stats.Count > 0 {
			baselineMeta[key] = stats.Mean
		}
	}
	addStat("hrv_baseline_ms", p.wearable.Stats(deviceID, "hrv_rmssd"))
	addStat("rhr_baseline_bpm", p.wearable.Stats(deviceID, "resting_hr"))
	addStat("sleep_baseline_minutes", p.wearable.Stats(deviceID, "sleep_duration"))
	addStat("sleep_efficiency_baseline", p.wearable.Stats(deviceID, "sleep_efficiency"))

	if recovery.HrvRmssdMs != nil {
		p.wearable.UpdateAndScore(deviceID, "hrv_rmssd", baseline.Bidirectional, *recovery.HrvRmssdMs)
	}
	if recovery.RestingHrBpm != nil {
		p.wearable.UpdateAndScore(deviceID, "resting_hr", baseline.LowerIsBetter, *recovery.RestingHrBpm)
	}
	if derived.RecoveryScore != nil {
		p.wearable.UpdateAndScore(deviceID, "recovery", baseline.HigherIsBetter, *derived.RecoveryScore)
	}
	if sleep.TotalSleepMinutes != nil {
		p.wearable.UpdateAndScore(deviceID, "sleep_duration", baseline.HigherIsBetter, *sleep.TotalSleepMinutes)
	}
	if derived.SleepEfficiency != nil {
		p.wearable.UpdateAndScore(deviceID, "sleep_efficiency", baseline.HigherIsBetter, derived.SleepEfficiency.Value)
	}

	days := p.wearable.Observations(deviceID, "hrv_rmssd")
	if rhr := p.wearable.Observations(deviceID, "resting_hr"); rhr > days {
		days = rhr
	}
	baselineMeta["days_in_baseline"] = days
	addPct := func(key string, pct *float64) {
		if pct != nil {
			baselineMeta[key] = *pct
		}
	}
	addPct("hrv_deviation_pct", hrvPct)
	addPct("rhr_deviation_pct", rhrPct)
	addPct("sleep_deviation_pct", sleepPct)

	confidence := derived.Coverage
	if days >= p.config.WearableWindow {
		confidence += 0.1
	}
	if confidence > 1 {
		confidence = 1
	}

	snap := captureSnapshot(derived, hrvPct, rhrPct, now)
	p.snapshot = &snap

	return buildWearableDocument(p.encoder, derived, snap, baselineMeta, confidence, now, p.config.HalfLife)
}

// #endregion stateful

// #region snapshot-capture

// captureSnapshot distills a day's derived signals into the bio context
// retained for later snapshot reads.
func captureSnapshot(d wearable.Derived, hrvPct, rhrPct *float64, now time.Time) biocontext.Snapshot {
	rec := &d.Record
	snap := biocontext.Snapshot{
		ObservedAtUTC: rec.ObservedAt.UTC(),
		ComputedAtUTC: now.UTC(),
		SleepQuality:  d.SleepScore,
		Recovery:      d.RecoveryScore,
		HrvDelta:      deltaFromPct(hrvPct),
		RhrDelta:      deltaFromPct(rhrPct),
		SourceIDs:     []string{wearableSourceID(rec)},
	}
	return snap
}

func wearableSourceID(rec *wearable.DailyRecord) string {
	return hsi.SourceID(string(rec.Vendor) + "-" + rec.DeviceID)
}

// #endregion snapshot-capture

// #region document

func buildWearableDocument(encoder *hsi.Encoder, d wearable.Derived, snap biocontext.Snapshot, baselineMeta map[string]any, confidence float64, now time.Time, halfLife time.Duration) *hsi.Document {
	rec := &d.Record
	doc := encoder.NewDocument(rec.ObservedAt, now)

	windowID := hsi.WindowID(rec.Date)
	start, end := dayBounds(rec)
	doc.AddWindow(windowID, hsi.Window{
		Start: hsi.Timestamp(start),
		End:   hsi.Timestamp(end),
		Label: "day:" + rec.Date,
	})

	sourceID := wearableSourceID(rec)
	doc.AddSource(sourceID, hsi.Source{
		Type:     hsi.SourceWearable,
		Quality:  d.Coverage,
		Degraded: len(d.Flags) > 0,
		Notes:    flagNotes(d.Flags),
	})

	decayed := biocontext.Decay(snap, snap.BaseConfidence(), now, halfLife)
	doc.ContextReadings(decayed.Readings(windowID))

	doc.SetMeta("date", rec.Date)
	doc.SetMeta("timezone", rec.Timezone)
	doc.SetMeta("vendor", string(rec.Vendor))
	doc.SetMeta("sleep", sleepMeta(d))
	doc.SetMeta("physiology", physiologyMeta(d))
	doc.SetMeta("activity", activityMeta(d))
	if baselineMeta != nil {
		doc.SetMeta("baseline", baselineMeta)
	}
	doc.SetMeta("quality", map[string]any{
		"coverage":      d.Coverage,
		"freshness_sec": int64(now.Sub(rec.ObservedAt).Seconds()),
		"confidence":    confidence,
		"flags":         flagStrings(d.Flags),
	})

	return doc
}

func dayBounds(rec *wearable.DailyRecord) (time.Time, time.Time) {
	loc, err := time.LoadLocation(rec.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation("2006-01-02", rec.Date, loc)
	if err != nil {
		start = rec.ObservedAt
	}
	return start, start.AddDate(0, 0, 1)
}

func sleepMeta(d wearable.Derived) map[string]any {
	m := map[string]any{}
	sleep := &d.Record.Sleep
	metaFloat(m, "duration_minutes", sleep.TotalSleepMinutes)
	metaFloat(m, "latency_minutes", sleep.LatencyMinutes)
	metaFloat(m, "score", d.SleepScore)
	metaFeature(m, "efficiency", d.SleepEfficiency)
	metaFeature(m, "fragmentation", d.SleepFragmentation)
	metaFeature(m, "deep_ratio", d.DeepSleepRatio)
	metaFeature(m, "rem_ratio", d.RemSleepRatio)
	return m
}

func physiologyMeta(d wearable.Derived) map[string]any {
	m := map[string]any{}
	recovery := &d.Record.Recovery
	metaFloat(m, "hrv_rmssd_ms", recovery.HrvRmssdMs)
	metaFloat(m, "resting_hr_bpm", recovery.RestingHrBpm)
	metaFloat(m, "respiratory_rate", d.Record.Sleep.RespiratoryRate)
	metaFloat(m, "spo2_percentage", recovery.Spo2Percentage)
	metaFloat(m, "recovery_score", d.RecoveryScore)
	return m
}

func activityMeta(d wearable.Derived) map[string]any {
	m := map[string]any{}
	activity := &d.Record.Activity
	metaFloat(m, "strain_score", d.StrainScore)
	metaFeature(m, "normalized_load", d.NormalizedLoad)
	metaFloat(m, "calories", activity.Calories)
	metaFloat(m, "active_calories", activity.ActiveCalories)
	metaFloat(m, "active_minutes", activity.ActiveMinutes)
	metaFloat(m, "distance_meters", activity.DistanceMeters)
	if activity.Steps != nil {
		m["steps"] = *activity.Steps
	}
	return m
}

func metaFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func metaFeature(m map[string]any, key string, f *wearable.Feature) {
	if f != nil {
		m[key] = f.Value
	}
}

func flagStrings(flags []wearable.QualityFlag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}

func flagNotes(flags []wearable.QualityFlag) string {
	if len(flags) == 0 {
		return ""
	}
	return fmt.Sprintf("quality flags: %v", flagStrings(flags))
}

// #endregion document
