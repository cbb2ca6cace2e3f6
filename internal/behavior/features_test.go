package behavior

import (
	"math"
	"testing"
)

func canonicalFourEvents(t *testing.T) Canonical {
	t.Helper()
	c, err := Canonicalize(makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionDown)}},
		{Timestamp: ts(1, 30), EventType: EventTap},
		{Timestamp: ts(2, 0), EventType: EventNotification, Interruption: &InterruptionEvent{Action: ActionIgnored}},
		{Timestamp: ts(3, 0), EventType: EventAppSwitch},
	}))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	return c
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNormalize_RatesAndCoverage(t *testing.T) {
	n := Normalize(canonicalFourEvents(t))

	if !almostEqual(n.EventsPerMin, 4.0/30) {
		t.Errorf("events/min = %v", n.EventsPerMin)
	}
	if !almostEqual(n.AppSwitchesPerMin, 1.0/30) {
		t.Errorf("app switches/min = %v", n.AppSwitchesPerMin)
	}

	// 4 of 6 event categories, full duration score, 4 of 10 events.
	want := 0.4*(4.0/6) + 0.3*1 + 0.3*0.4
	if !almostEqual(n.Coverage, want) {
		t.Errorf("coverage = %v, want %v", n.Coverage, want)
	}
}

func TestNormalize_Flags(t *testing.T) {
	n := Normalize(canonicalFourEvents(t))

	if n.HasFlag(FlagShortSession) {
		t.Error("30 minute session flagged short")
	}
	if !n.HasFlag(FlagLowEventCount) {
		t.Error("4 events not flagged as low count")
	}
	if !n.HasFlag(FlagHighIdleRatio) {
		t.Error("mostly idle session not flagged")
	}
	if n.HasFlag(FlagLowEventDiversity) {
		t.Error("4 event types flagged as low diversity")
	}
	if !n.HasFlag(FlagSessionGaps) {
		t.Error("3 idle segments not flagged as session gaps")
	}
}

func TestNormalize_LowDiversity(t *testing.T) {
	s := makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventTap},
		{Timestamp: ts(2, 0), EventType: EventTap},
	})
	c, err := Canonicalize(s)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	n := Normalize(c)
	if !n.HasFlag(FlagLowEventDiversity) {
		t.Error("single event type not flagged")
	}
}

func TestDerive_FourEventSession(t *testing.T) {
	d := Derive(Normalize(canonicalFourEvents(t)))

	wantTask := 1 - math.Exp(-(1.0/30)/0.5)
	if !almostEqual(d.TaskSwitchRate, wantTask) {
		t.Errorf("task switch = %v, want %v", d.TaskSwitchRate, wantTask)
	}
	wantNotif := 1 - math.Exp(-(1.0 / 30))
	if !almostEqual(d.NotificationLoad, wantNotif) {
		t.Errorf("notification load = %v, want %v", d.NotificationLoad, wantNotif)
	}

	// Idle: 30s lead-in, 30s mid, 1590s tail over a 1800s session. Three
	// segments give 3/1800*60 = 0.1 fragmentation.
	if !almostEqual(d.IdleRatio, 1650.0/1800) {
		t.Errorf("idle ratio = %v", d.IdleRatio)
	}
	if !almostEqual(d.FragmentedIdleRatio, 0.1) {
		t.Errorf("fragmented idle = %v", d.FragmentedIdleRatio)
	}

	if d.ScrollJitterRate != 0 {
		t.Errorf("jitter = %v, want 0 for a single scroll", d.ScrollJitterRate)
	}

	// Gaps [30 30 60]: mean 40, stddev sqrt(200).
	if d.Burstiness == nil {
		t.Fatal("burstiness omitted despite 3 gaps")
	}
	sigma := math.Sqrt(200)
	wantBurst := ((sigma-40)/(sigma+40) + 1) / 2
	if !almostEqual(*d.Burstiness, wantBurst) {
		t.Errorf("burstiness = %v, want %v", *d.Burstiness, wantBurst)
	}

	if d.DeepFocusBlocks != 0 {
		t.Errorf("deep focus blocks = %d, want 0", d.DeepFocusBlocks)
	}

	// 3 non-interruption events over 30 minutes against a 10/min ceiling.
	if !almostEqual(d.InteractionIntensity, 0.01) {
		t.Errorf("intensity = %v", d.InteractionIntensity)
	}

	wantDistraction := 0.35*wantTask + 0.30*wantNotif + 0.20*0.1
	if !almostEqual(d.DistractionScore, wantDistraction) {
		t.Errorf("distraction = %v, want %v", d.DistractionScore, wantDistraction)
	}
	if d.FocusHint != 1-d.DistractionScore {
		t.Errorf("focus = %v, want exactly 1 - distraction", d.FocusHint)
	}
}

func TestDerive_BurstinessOmittedForSingleEvent(t *testing.T) {
	c, err := Canonicalize(makeSession([]Event{
		{Timestamp: ts(5, 0), EventType: EventTap},
	}))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	d := Derive(Normalize(c))
	if d.Burstiness != nil {
		t.Errorf("burstiness = %v, want nil with fewer than two events", *d.Burstiness)
	}
}

func TestDerive_BurstinessNeutralForZeroGaps(t *testing.T) {
	c, err := Canonicalize(makeSession([]Event{
		{Timestamp: ts(5, 0), EventType: EventTap},
		{Timestamp: ts(5, 0), EventType: EventTap},
		{Timestamp: ts(5, 0), EventType: EventTap},
	}))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	d := Derive(Normalize(c))
	if d.Burstiness == nil || *d.Burstiness != 0.5 {
		t.Errorf("burstiness = %v, want 0.5 for simultaneous events", d.Burstiness)
	}
}

func TestDerive_ScrollJitter(t *testing.T) {
	c, err := Canonicalize(makeSession([]Event{
		{Timestamp: ts(1, 0), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionDown)}},
		{Timestamp: ts(1, 5), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionUp)}},
		{Timestamp: ts(1, 10), EventType: EventScroll, Scroll: &ScrollEvent{Direction: dirptr(DirectionUp)}},
	}))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	d := Derive(Normalize(c))
	if !almostEqual(d.ScrollJitterRate, 0.5) {
		t.Errorf("jitter = %v, want 1 reversal over 2 transitions", d.ScrollJitterRate)
	}
}

func TestDerive_DeepFocusBlock(t *testing.T) {
	var events []Event
	for i := 0; i < 13; i++ {
		events = append(events, Event{Timestamp: ts(0, i*10), EventType: EventTap})
	}
	events = append(events, Event{Timestamp: ts(2, 30), EventType: EventAppSwitch})
	c, err := Canonicalize(makeSession(events))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	d := Derive(Normalize(c))
	if d.DeepFocusBlocks != 1 {
		t.Errorf("deep focus blocks = %d, want 1", d.DeepFocusBlocks)
	}
}
