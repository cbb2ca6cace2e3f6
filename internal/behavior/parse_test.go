package behavior

import (
	"errors"
	"math"
	"testing"
	"time"
)

func ts(min, sec int) time.Time {
	return time.Date(2024, 1, 15, 14, min, sec, 0, time.UTC)
}

func dirptr(d ScrollDirection) *ScrollDirection { return &d }

func makeSession(events []Event) Session {
	return Session{
		SessionID: "test-session-123",
		DeviceID:  "test-device",
		Timezone:  "America/New_York",
		StartTime: ts(0, 0),
		EndTime:   ts(30, 0),
		Events:    events,
	}
}

func TestParseSession_JSON(t *testing.T) {
	raw := `{
		"session_id": "sess-1",
		"device_id": "dev-1",
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
	s, err := ParseSession([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.SessionID != "sess-1" || len(s.Events) != 4 {
		t.Errorf("session = %q with %d events", s.SessionID, len(s.Events))
	}
	if s.Events[0].Scroll == nil || *s.Events[0].Scroll.Direction != DirectionDown {
		t.Error("scroll sub-object not decoded")
	}
	if s.Events[2].Interruption == nil || s.Events[2].Interruption.Action != ActionIgnored {
		t.Error("interruption sub-object not decoded")
	}
}

func TestParseSession_NotJSON(t *testing.T) {
	_, err := ParseSession([]byte("]["))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestCanonicalize_EndBeforeStart(t *testing.T) {
	s := makeSession(nil)
	s.EndTime = s.StartTime.Add(-time.Minute)
	_, err := Canonicalize(s)
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestCanonicalize_NonMonotonicEvents(t *testing.T) {
	s := makeSession([]Event{
		{Timestamp: ts(5, 0), EventType: EventTap},
		{Timestamp: ts(3, 0), EventType: EventTap},
	})
	_, err := Canonicalize(s)
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestCanonicalize_ClampsOutOfRangeEvents(t *testing.T) {
	s := makeSession([]Event{
		{Timestamp: ts(0, 0).Add(-time.Minute), EventType: EventTap},
		{Timestamp: ts(15, 0), EventType: EventTap},
		{Timestamp: ts(30, 0).Add(time.Minute), EventType: EventTap},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if c.TotalEvents != 3 {
		t.Errorf("clamped events dropped: %d", c.TotalEvents)
	}
	// First gap runs from session start, last gap ends at session end.
	if len(c.InterEventGaps) != 2 {
		t.Fatalf("gaps = %v", c.InterEventGaps)
	}
	if c.InterEventGaps[0] != 900 || c.InterEventGaps[1] != 900 {
		t.Errorf("gaps = %v, want [900 900]", c.InterEventGaps)
	}
}

func TestCanonicalize_CountsAndDuration(t *testing.T) {
	s := makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionDown)}},
		{Timestamp: ts(1, 30), EventType: EventTap},
		{Timestamp: ts(2, 0), EventType: EventNotification, Interruption: &InterruptionEvent{Action: ActionIgnored}},
		{Timestamp: ts(3, 0), EventType: EventAppSwitch},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if c.DurationSec != 1800 {
		t.Errorf("duration = %v, want 1800", c.DurationSec)
	}
	if c.ScrollEvents != 1 || c.TapEvents != 1 || c.NotificationEvents != 1 || c.AppSwitchEvents != 1 {
		t.Errorf("counts = %+v", c)
	}
	if len(c.InterEventGaps) != 3 {
		t.Errorf("gaps = %v", c.InterEventGaps)
	}
}

func TestCanonicalize_IdleSegments(t *testing.T) {
	// Events at 14:01 and 14:03; idle gaps before, between and after, each
	// recorded net of the 30 second threshold.
	s := makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventTap},
		{Timestamp: ts(3, 0), EventType: EventTap},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if len(c.IdleSegments) != 3 {
		t.Fatalf("idle segments = %d, want 3", len(c.IdleSegments))
	}
	if c.IdleSegments[0].DurationSec != 30 {
		t.Errorf("lead-in idle = %v, want 30 (60s gap minus threshold)", c.IdleSegments[0].DurationSec)
	}
	if c.IdleSegments[1].DurationSec != 90 {
		t.Errorf("mid idle = %v, want 90 (120s gap minus threshold)", c.IdleSegments[1].DurationSec)
	}
	if c.IdleSegments[2].DurationSec != 1590 {
		t.Errorf("tail idle = %v, want 1590 (27min gap minus threshold)", c.IdleSegments[2].DurationSec)
	}
	if math.Abs(c.TotalIdleTimeSec-(30+90+1590)) > 1e-9 {
		t.Errorf("total idle = %v", c.TotalIdleTimeSec)
	}
}

func TestCanonicalize_EmptySessionFullyIdle(t *testing.T) {
	c, err := Canonicalize(makeSession(nil))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if len(c.IdleSegments) != 1 {
		t.Fatalf("idle segments = %d, want 1", len(c.IdleSegments))
	}
	if c.IdleSegments[0].DurationSec != 1770 {
		t.Errorf("idle = %v, want 1770 (30min minus threshold)", c.IdleSegments[0].DurationSec)
	}
}

func TestCanonicalize_ScrollReversals(t *testing.T) {
	// Flag-based reversal plus a derived down->up direction change.
	s := makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionDown)}},
		{Timestamp: ts(1, 5), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionUp)}},
		{Timestamp: ts(1, 10), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionUp), DirectionReversal: true}},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if c.ScrollDirectionReversals != 2 {
		t.Errorf("reversals = %d, want 2", c.ScrollDirectionReversals)
	}
}

func TestCanonicalize_TypingGapsCapped(t *testing.T) {
	dur := 45.0
	s := makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventTap},
		{Timestamp: ts(1, 10), EventType: EventTap},
		// 100s gap into a typing event gets capped at the 10s max
		// non-typing gap.
		{Timestamp: ts(2, 50), EventType: EventTyping, Typing: &TypingEvent{DurationSec: &dur}},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if len(c.InterEventGaps) != 2 {
		t.Fatalf("gaps = %v", c.InterEventGaps)
	}
	if c.InterEventGaps[1] != 10 {
		t.Errorf("typing gap = %v, want capped at 10", c.InterEventGaps[1])
	}
	if c.TotalTypingDurationSec != 45 {
		t.Errorf("typing duration = %v, want 45", c.TotalTypingDurationSec)
	}
}

func TestCanonicalize_EngagementSegments(t *testing.T) {
	// Tight burst of taps for two minutes, then an app switch, then more.
	events := []Event{}
	for i := 0; i < 13; i++ {
		events = append(events, Event{Timestamp: ts(0, i*10), EventType: EventTap})
	}
	events = append(events, Event{Timestamp: ts(2, 30), EventType: EventAppSwitch})
	c, err := Canonicalize(makeSession(events))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if len(c.EngagementSegments) == 0 {
		t.Fatal("no engagement segments detected")
	}
	first := c.EngagementSegments[0]
	if first.DurationSec < 120 {
		t.Errorf("segment duration = %v, want >= 120", first.DurationSec)
	}
	if first.EventCount != 13 {
		t.Errorf("segment events = %d, want 13", first.EventCount)
	}
}
