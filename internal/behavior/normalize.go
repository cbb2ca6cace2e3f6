package behavior

// #region flags

// QualityFlag annotates weaknesses in a session's data.
type QualityFlag string

const (
	// FlagShortSession marks sessions under five minutes.
	FlagShortSession QualityFlag = "short_session"
	// FlagLowEventCount marks sessions with fewer than ten events.
	FlagLowEventCount QualityFlag = "low_event_count"
	// FlagHighIdleRatio marks sessions that were mostly idle.
	FlagHighIdleRatio QualityFlag = "high_idle_ratio"
	// FlagLowEventDiversity marks sessions with at most one event type.
	FlagLowEventDiversity QualityFlag = "low_event_diversity"
	// FlagSessionGaps marks repeated idle segments, suggesting the device
	// was off mid-session.
	FlagSessionGaps QualityFlag = "session_gaps"
)

// #endregion flags

// #region constants

const (
	minSessionDurationSec = 300.0
	minEventCount         = 10
	maxIdleRatio          = 0.8
	eventTypeCategories   = 6
)

// #endregion constants

// #region normalized

// Normalized carries a canonical session plus per-minute rates, coverage
// and quality flags.
type Normalized struct {
	Canonical

	EventsPerMin        float64
	ScrollsPerMin       float64
	TapsPerMin          float64
	SwipesPerMin        float64
	NotificationsPerMin float64
	AppSwitchesPerMin   float64

	Coverage float64
	Flags    []QualityFlag
}

// HasFlag reports whether a specific quality flag was raised.
func (n *Normalized) HasFlag(flag QualityFlag) bool {
	for _, f := range n.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// #endregion normalized

// #region normalize

// Normalize converts a canonical session into per-minute rates and scores
// its coverage: 40% event-type diversity, 30% duration, 30% event count.
func Normalize(c Canonical) Normalized {
	n := Normalized{Canonical: c}

	durationMin := c.DurationSec / 60
	if durationMin > 0 {
		n.EventsPerMin = float64(c.TotalEvents) / durationMin
		n.ScrollsPerMin = float64(c.ScrollEvents) / durationMin
		n.TapsPerMin = float64(c.TapEvents) / durationMin
		n.SwipesPerMin = float64(c.SwipeEvents) / durationMin
		n.NotificationsPerMin = float64(c.NotificationEvents) / durationMin
		n.AppSwitchesPerMin = float64(c.AppSwitchEvents) / durationMin
	}

	diversity := float64(countEventTypes(&c)) / eventTypeCategories
	durationScore := min1(c.DurationSec / minSessionDurationSec)
	eventScore := min1(float64(c.TotalEvents) / minEventCount)
	n.Coverage = clamp01(0.4*diversity + 0.3*durationScore + 0.3*eventScore)

	if c.DurationSec < minSessionDurationSec {
		n.Flags = append(n.Flags, FlagShortSession)
	}
	if c.TotalEvents < minEventCount {
		n.Flags = append(n.Flags, FlagLowEventCount)
	}
	if c.DurationSec > 0 && c.TotalIdleTimeSec/c.DurationSec > maxIdleRatio {
		n.Flags = append(n.Flags, FlagHighIdleRatio)
	}
	if countEventTypes(&c) <= 1 {
		n.Flags = append(n.Flags, FlagLowEventDiversity)
	}
	if len(c.IdleSegments) >= 3 {
		n.Flags = append(n.Flags, FlagSessionGaps)
	}

	return n
}

func countEventTypes(c *Canonical) int {
	count := 0
	if c.ScrollEvents > 0 {
		count++
	}
	if c.TapEvents > 0 {
		count++
	}
	if c.SwipeEvents > 0 {
		count++
	}
	if c.NotificationEvents > 0 || c.CallEvents > 0 {
		count++
	}
	if c.TypingEvents > 0 {
		count++
	}
	if c.AppSwitchEvents > 0 {
		count++
	}
	return count
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion normalize
