package engine

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/behavior"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

const whoopSample = `{
	"sleep": [{
		"id": 1,
		"start": "2024-01-15T22:30:00.000Z",
		"end": "2024-01-16T06:30:00.000Z",
		"score": {
			"stage_summary": {
				"total_in_bed_time_milli": 28800000,
				"total_awake_time_milli": 1800000,
				"total_light_sleep_time_milli": 12600000,
				"total_slow_wave_sleep_time_milli": 7200000,
				"total_rem_sleep_time_milli": 7200000,
				"total_sleep_time_milli": 27000000,
				"disturbance_count": 3
			},
			"sleep_performance_percentage": 85.0,
			"sleep_efficiency_percentage": 93.75,
			"respiratory_rate": 14.5
		}
	}],
	"recovery": [{
		"cycle_id": 1,
		"created_at": "2024-01-15T06:30:00.000Z",
		"score": {
			"recovery_score": 75.0,
			"resting_heart_rate": 52.0,
			"hrv_rmssd_milli": 65.0,
			"spo2_percentage": 97.0
		}
	}],
	"cycle": [{
		"id": 1,
		"start": "2024-01-15T06:30:00.000Z",
		"end": "2024-01-15T22:30:00.000Z",
		"score": {
			"strain": 12.5,
			"kilojoule": 8500.0,
			"average_heart_rate": 72.0,
			"max_heart_rate": 165.0
		}
	}]
}`

const sessionSample = `{
	"session_id": "sess-001",
	"device_id": "device-123",
	"timezone": "UTC",
	"start_time": "2024-01-15T14:00:00Z",
	"end_time": "2024-01-15T14:30:00Z",
	"events": [
		{"timestamp": "2024-01-15T14:01:00Z", "event_type": "scroll", "scroll": {"velocity": 120.5, "direction": "down"}},
		{"timestamp": "2024-01-15T14:01:30Z", "event_type": "tap", "tap": {"tap_duration_ms": 80}},
		{"timestamp": "2024-01-15T14:02:00Z", "event_type": "notification", "interruption": {"action": "ignored"}},
		{"timestamp": "2024-01-15T14:03:00Z", "event_type": "app_switch", "app_switch": {"from_app_id": "a", "to_app_id": "b"}}
	]
}`

var testNow = time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC)

func testProcessor() *Processor {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return testNow }
	cfg.InstanceID = "test-instance"
	return NewProcessor(cfg)
}

func findReading(t *testing.T, readings []hsi.Reading, axis string) hsi.Reading {
	t.Helper()
	for _, r := range readings {
		if r.Axis == axis {
			return r
		}
	}
	t.Fatalf("axis %q not found", axis)
	return hsi.Reading{}
}

func TestConvertWhoop_Deterministic(t *testing.T) {
	a, err := ConvertWhoop([]byte(whoopSample), "America/New_York", "device-123", testNow)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	b, err := ConvertWhoop([]byte(whoopSample), "America/New_York", "device-123", testNow)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("docs = %d and %d, want 1 each", len(a), len(b))
	}

	ja, err := a[0].MarshalIndent()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, err := b[0].MarshalIndent()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(ja, jb) {
		t.Error("identical inputs produced different documents")
	}
}

func TestConvertWhoop_EmptyArrays(t *testing.T) {
	docs, err := ConvertWhoop([]byte(`{"sleep": [], "recovery": [], "cycle": []}`), "America/New_York", "device-123", testNow)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %d, want 0 for empty arrays", len(docs))
	}
}

func TestProcessWhoop_DocumentShape(t *testing.T) {
	p := testProcessor()
	docs, err := p.ProcessWhoop([]byte(whoopSample), "America/New_York", "device-123")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs = %d, want 1", len(docs))
	}
	doc := docs[0]

	if doc.HsiVersion != hsi.Version {
		t.Errorf("hsi_version = %q", doc.HsiVersion)
	}
	if doc.Producer.Name != hsi.ProducerName || doc.Producer.InstanceID != "test-instance" {
		t.Errorf("producer = %+v", doc.Producer)
	}
	if len(doc.WindowIDs) != 1 || doc.WindowIDs[0] != "w_2024_01_15" {
		t.Errorf("window ids = %v", doc.WindowIDs)
	}
	if len(doc.SourceIDs) != 1 || doc.SourceIDs[0] != "s_whoop_device_123" {
		t.Errorf("source ids = %v", doc.SourceIDs)
	}
	src := doc.Sources["s_whoop_device_123"]
	if src.Type != hsi.SourceWearable || src.Quality != 1.0 {
		t.Errorf("source = %+v", src)
	}

	if doc.Axes == nil || doc.Axes.Context == nil {
		t.Fatal("no context axis")
	}
	readings := doc.Axes.Context.Readings
	for _, axis := range []string{"bio_freshness", "recovery_context", "sleep_context"} {
		findReading(t, readings, axis)
	}

	sleep := findReading(t, readings, "sleep_context")
	if sleep.Score != 0.85 {
		t.Errorf("sleep_context score = %v, want 0.85", sleep.Score)
	}
	recovery := findReading(t, readings, "recovery_context")
	if recovery.Score != 0.75 {
		t.Errorf("recovery_context score = %v, want 0.75", recovery.Score)
	}

	if doc.Meta["date"] != "2024-01-15" || doc.Meta["vendor"] != "whoop" {
		t.Errorf("meta = %v", doc.Meta)
	}
	if _, ok := doc.Meta["baseline"]; !ok {
		t.Error("stateful document carries no baseline meta")
	}
}

func TestProcessWhoop_CapturesBioContext(t *testing.T) {
	p := testProcessor()
	if p.BioContext() != nil {
		t.Fatal("bio context set before any wearable run")
	}
	if _, err := p.ProcessWhoop([]byte(whoopSample), "America/New_York", "device-123"); err != nil {
		t.Fatalf("process: %v", err)
	}

	snap := p.BioContext()
	if snap == nil {
		t.Fatal("no bio context captured")
	}
	if snap.SleepQuality == nil || *snap.SleepQuality != 0.85 {
		t.Errorf("sleep quality = %v, want 0.85", snap.SleepQuality)
	}
	if snap.Recovery == nil || *snap.Recovery != 0.75 {
		t.Errorf("recovery = %v, want 0.75", snap.Recovery)
	}
	want := time.Date(2024, 1, 16, 6, 30, 0, 0, time.UTC)
	if !snap.ObservedAtUTC.Equal(want) {
		t.Errorf("observed at = %v, want %v", snap.ObservedAtUTC, want)
	}
	// First day has no prior baseline, so no deltas yet.
	if snap.HrvDelta != nil || snap.RhrDelta != nil {
		t.Errorf("deltas = %v / %v, want nil on first run", snap.HrvDelta, snap.RhrDelta)
	}
}

func TestSnapshotNow_NoBioContext(t *testing.T) {
	p := testProcessor()
	_, err := p.SnapshotNow(testNow, nil)
	if !errors.Is(err, ErrNoBioContext) {
		t.Errorf("err = %v, want ErrNoBioContext", err)
	}
}

func TestSnapshotNow_DecaysConfidence(t *testing.T) {
	p := testProcessor()
	if _, err := p.ProcessWhoop([]byte(whoopSample), "America/New_York", "device-123"); err != nil {
		t.Fatalf("process: %v", err)
	}

	// Observed at 06:30, snapshot at 14:30: eight hours of staleness.
	doc, err := p.SnapshotNow(testNow, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if doc.Axes == nil || doc.Axes.Context == nil {
		t.Fatal("no context axis")
	}

	fresh := findReading(t, doc.Axes.Context.Readings, "bio_freshness")
	wantFactor := math.Pow(0.5, 8.0/12)
	if math.Abs(fresh.Score-wantFactor) > 1e-9 {
		t.Errorf("freshness = %v, want %v", fresh.Score, wantFactor)
	}

	recovery := findReading(t, doc.Axes.Context.Readings, "recovery_context")
	base := p.BioContext().BaseConfidence()
	if math.Abs(recovery.Confidence-base*wantFactor) > 1e-9 {
		t.Errorf("recovery confidence = %v, want %v", recovery.Confidence, base*wantFactor)
	}
}

func TestSnapshotNow_ReadOnly(t *testing.T) {
	p := testProcessor()
	if _, err := p.ProcessWhoop([]byte(whoopSample), "America/New_York", "device-123"); err != nil {
		t.Fatalf("process: %v", err)
	}

	before := p.wearable.Observations("device-123", "hrv_rmssd")
	a, err := p.SnapshotNow(testNow, []byte(sessionSample))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	b, err := p.SnapshotNow(testNow, []byte(sessionSample))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if p.wearable.Observations("device-123", "hrv_rmssd") != before {
		t.Error("snapshot mutated wearable baselines")
	}
	if p.behavior.Observations("device-123", "distraction") != 0 {
		t.Error("snapshot mutated behavior baselines")
	}

	ja, _ := a.MarshalIndent()
	jb, _ := b.MarshalIndent()
	if !bytes.Equal(ja, jb) {
		t.Error("repeated snapshots differ")
	}
}

func TestProcessBehavior_FourEventSession(t *testing.T) {
	p := testProcessor()
	doc, err := p.ProcessBehavior([]byte(sessionSample))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if doc.Axes == nil || doc.Axes.Behavior == nil {
		t.Fatal("no behavior axis")
	}
	readings := doc.Axes.Behavior.Readings

	distraction := findReading(t, readings, "distraction")
	focus := findReading(t, readings, "focus")
	findReading(t, readings, "task_switch_rate")
	findReading(t, readings, "burstiness")

	if focus.Score != 1-distraction.Score {
		t.Errorf("focus = %v, want exactly 1 - %v", focus.Score, distraction.Score)
	}

	if len(doc.WindowIDs) != 1 || doc.WindowIDs[0] != "w_sess_001" {
		t.Errorf("window ids = %v", doc.WindowIDs)
	}
	if doc.Meta["session_id"] != "sess-001" {
		t.Errorf("meta session_id = %v", doc.Meta["session_id"])
	}
	if doc.Meta["sessions_in_baseline"] != 1 {
		t.Errorf("sessions_in_baseline = %v, want 1", doc.Meta["sessions_in_baseline"])
	}
	src := doc.Sources["s_device_123"]
	if src.Type != hsi.SourceApp {
		t.Errorf("source type = %q", src.Type)
	}
}

func TestProcessBehavior_BaselineBonus(t *testing.T) {
	p := testProcessor()

	var last float64
	for i := 0; i < 6; i++ {
		doc, err := p.ProcessBehavior([]byte(sessionSample))
		if err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
		last = findReading(t, doc.Axes.Behavior.Readings, "distraction").Confidence
	}

	c, err := behavior.Canonicalize(mustSession(t))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	coverage := behavior.Normalize(c).Coverage
	if math.Abs(last-(coverage+0.1)) > 1e-9 {
		t.Errorf("confidence after 6 sessions = %v, want coverage %v + 0.1", last, coverage)
	}
}

func mustSession(t *testing.T) behavior.Session {
	t.Helper()
	s, err := behavior.ParseSession([]byte(sessionSample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return s
}

func TestProcessBehavior_InvalidTimeRange(t *testing.T) {
	raw := []byte(`{
		"session_id": "bad",
		"device_id": "device-123",
		"timezone": "UTC",
		"start_time": "2024-01-15T14:30:00Z",
		"end_time": "2024-01-15T14:00:00Z",
		"events": []
	}`)
	p := testProcessor()
	_, err := p.ProcessBehavior(raw)
	if !errors.Is(err, behavior.ErrInvalidTimeRange) {
		t.Errorf("err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestSaveLoadBaselines_RoundTrip(t *testing.T) {
	p := testProcessor()
	if _, err := p.ProcessWhoop([]byte(whoopSample), "America/New_York", "device-123"); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := p.ProcessBehavior([]byte(sessionSample)); err != nil {
		t.Fatalf("process: %v", err)
	}

	blob, err := p.SaveBaselines()
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	q := testProcessor()
	if err := q.LoadBaselines(blob); err != nil {
		t.Fatalf("load: %v", err)
	}

	if q.wearable.Observations("device-123", "hrv_rmssd") != p.wearable.Observations("device-123", "hrv_rmssd") {
		t.Error("wearable observations not restored")
	}
	if q.behavior.Observations("device-123", "distraction") != 1 {
		t.Error("behavior observations not restored")
	}
	if q.BioContext() == nil {
		t.Fatal("bio context not restored")
	}
	if *q.BioContext().SleepQuality != *p.BioContext().SleepQuality {
		t.Error("bio context sleep quality not restored")
	}

	a, err := p.SnapshotNow(testNow, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	b, err := q.SnapshotNow(testNow, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	ja, _ := a.MarshalIndent()
	jb, _ := b.MarshalIndent()
	if !bytes.Equal(ja, jb) {
		t.Error("restored processor snapshots differently")
	}
}

func TestLoadBaselines_VersionMismatch(t *testing.T) {
	p := testProcessor()
	blob := []byte(fmt.Sprintf(`{"version": %d, "wearable": {}, "behavior": {}}`, baseline.StateVersion+1))
	if err := p.LoadBaselines(blob); !errors.Is(err, baseline.ErrSchemaVersion) {
		t.Errorf("err = %v, want ErrSchemaVersion", err)
	}

	if err := p.LoadBaselines([]byte("garbage")); !errors.Is(err, baseline.ErrSchemaVersion) {
		t.Errorf("garbage err = %v, want ErrSchemaVersion", err)
	}
}
