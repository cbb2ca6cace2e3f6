package decay

import (
	"math"
	"testing"
	"time"
)

func TestFactor_ZeroAge(t *testing.T) {
	if got := Factor(0, DefaultHalfLife); got != 1.0 {
		t.Errorf("Factor(0, H) = %v, want 1.0", got)
	}
}

func TestFactor_AtHalfLife(t *testing.T) {
	halfLives := []time.Duration{time.Hour, 6 * time.Hour, DefaultHalfLife, 48 * time.Hour}
	for _, h := range halfLives {
		if got := Factor(h, h); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Factor(%v, %v) = %v, want 0.5", h, h, got)
		}
		if got := Factor(2*h, h); math.Abs(got-0.25) > 1e-9 {
			t.Errorf("Factor(%v, %v) = %v, want 0.25", 2*h, h, got)
		}
	}
}

func TestFactor_EightHoursDefaultHalfLife(t *testing.T) {
	// 0.5^(8/12) ~= 0.63, the documented decay curve for a morning
	// wearable reading consumed in the afternoon.
	got := Factor(8*time.Hour, DefaultHalfLife)
	want := math.Pow(0.5, 8.0/12.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Factor(8h, 12h) = %v, want %v", got, want)
	}
	if got < 0.62 || got > 0.64 {
		t.Errorf("Factor(8h, 12h) = %v, want ~0.63", got)
	}
}

func TestFactor_NoFloor(t *testing.T) {
	got := Factor(200*time.Hour, DefaultHalfLife)
	if got <= 0 {
		t.Errorf("Factor must not clamp to zero, got %v", got)
	}
	if got > 1e-4 {
		t.Errorf("Factor(200h, 12h) = %v, expected deeply decayed", got)
	}
}

func TestFactor_InvalidHalfLife(t *testing.T) {
	if got := Factor(time.Hour, 0); got != 0 {
		t.Errorf("Factor with zero half-life = %v, want 0", got)
	}
}

func TestStaleAfter_DefaultHalfLife(t *testing.T) {
	observed := time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC)
	stale := StaleAfter(observed, DefaultHalfLife)

	hours := stale.Sub(observed).Hours()
	if hours < 39 || hours > 41 {
		t.Errorf("StaleAfter horizon = %.1fh, want ~40h", hours)
	}
}
