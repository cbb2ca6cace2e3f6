package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/synheart/flux/go-engine/internal/hsi"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "flux.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBaselines_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	blob, err := s.LoadBaselines("device-123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if blob != nil {
		t.Errorf("unknown device returned state: %q", blob)
	}

	if err := s.SaveBaselines("device-123", []byte(`{"version":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveBaselines("device-123", []byte(`{"version":2,"updated":true}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	blob, err = s.LoadBaselines("device-123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(blob) != `{"version":2,"updated":true}` {
		t.Errorf("state = %q, want latest upsert", blob)
	}
}

func TestDocuments_Recent(t *testing.T) {
	s := openTestStore(t)
	enc := hsi.WithInstanceID("test-instance")
	observed := time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		doc := enc.NewDocument(observed.Add(time.Duration(i)*time.Hour), observed.Add(24*time.Hour))
		if err := s.SaveDocument("device-123", "wearable", doc); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	docs, err := s.RecentDocuments("device-123", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].ID <= docs[1].ID {
		t.Error("documents not newest first")
	}
	if docs[0].Kind != "wearable" || docs[0].DeviceID != "device-123" {
		t.Errorf("row = %+v", docs[0])
	}
	if docs[0].ObservedAt != "2024-01-15T08:30:00Z" {
		t.Errorf("observed at = %q", docs[0].ObservedAt)
	}

	none, err := s.RecentDocuments("other-device", 10)
	if err != nil {
		t.Fatalf("recent other: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("other device has %d docs", len(none))
	}
}

func TestRunLog(t *testing.T) {
	s := openTestStore(t)

	if err := s.LogRun("device-123", "process_whoop", "ok", "1 document"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := s.LogRun("device-123", "process_behavior", "error", "invalid time range"); err != nil {
		t.Fatalf("log: %v", err)
	}

	entries, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Operation != "process_behavior" || entries[0].Outcome != "error" {
		t.Errorf("latest entry = %+v", entries[0])
	}
	if entries[1].Detail != "1 document" {
		t.Errorf("detail = %q", entries[1].Detail)
	}
}
