package behavior

// #region imports
import (
	"encoding/json"
	"fmt"
	"time"
)

// #endregion imports

// #region constants

// idleGapThresholdSec separates an idle segment from ordinary inter-event
// spacing. Idle duration subtracts the threshold, matching the producing
// SDK's accounting.
const idleGapThresholdSec = 30.0

// minEngagementDurationSec is the shortest span reported as engagement.
const minEngagementDurationSec = 10.0

// #endregion constants

// #region parse

// ParseSession decodes a raw session payload.
func ParseSession(raw []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return s, nil
}

// Canonicalize validates a session and aggregates its event log. A session
// whose end precedes its start, or whose events run backwards in time, is
// rejected; events outside [start, end] are clamped to the boundary.
func Canonicalize(s Session) (Canonical, error) {
	if !s.EndTime.After(s.StartTime) {
		return Canonical{}, fmt.Errorf("%w: end %s not after start %s",
			ErrInvalidTimeRange, s.EndTime.Format(time.RFC3339), s.StartTime.Format(time.RFC3339))
	}
	for i := 1; i < len(s.Events); i++ {
		if s.Events[i].Timestamp.Before(s.Events[i-1].Timestamp) {
			return Canonical{}, fmt.Errorf("%w: event %d precedes event %d", ErrInvalidTimeRange, i, i-1)
		}
	}

	events := clampEvents(s.Events, s.StartTime, s.EndTime)

	c := Canonical{
		SessionID:   s.SessionID,
		DeviceID:    s.DeviceID,
		Timezone:    s.Timezone,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		DurationSec: s.EndTime.Sub(s.StartTime).Seconds(),
		TotalEvents: len(events),
	}

	for i := range events {
		e := &events[i]
		switch e.EventType {
		case EventScroll:
			c.ScrollEvents++
		case EventTap:
			c.TapEvents++
		case EventSwipe:
			c.SwipeEvents++
		case EventNotification:
			c.NotificationEvents++
		case EventCall:
			c.CallEvents++
		case EventTyping:
			c.TypingEvents++
			if e.Typing != nil && e.Typing.DurationSec != nil && *e.Typing.DurationSec > 0 {
				c.TotalTypingDurationSec += *e.Typing.DurationSec
			}
		case EventAppSwitch:
			c.AppSwitchEvents++
		}
	}

	c.ScrollDirectionReversals = countScrollReversals(events)
	c.InterEventGaps = interEventGaps(events)
	c.IdleSegments = detectIdleSegments(events, s.StartTime, s.EndTime)
	for _, seg := range c.IdleSegments {
		c.TotalIdleTimeSec += seg.DurationSec
	}
	c.EngagementSegments = detectEngagementSegments(events, s.StartTime, s.EndTime)

	return c, nil
}

func clampEvents(events []Event, start, end time.Time) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	for i := range out {
		if out[i].Timestamp.Before(start) {
			out[i].Timestamp = start
		}
		if out[i].Timestamp.After(end) {
			out[i].Timestamp = end
		}
	}
	return out
}

// countScrollReversals counts direction changes. Producers that set the
// direction_reversal flag are trusted; otherwise a reversal is derived from
// consecutive scrolls with differing directions.
func countScrollReversals(events []Event) int {
	count := 0
	var prev *ScrollDirection
	for i := range events {
		e := &events[i]
		if e.EventType != EventScroll || e.Scroll == nil {
			continue
		}
		switch {
		case e.Scroll.DirectionReversal:
			count++
		case e.Scroll.Direction != nil && prev != nil && *e.Scroll.Direction != *prev:
			count++
		}
		if e.Scroll.Direction != nil {
			prev = e.Scroll.Direction
		}
	}
	return count
}

// interEventGaps returns the seconds between consecutive events. Gaps that
// touch a typing event are capped at the largest non-typing gap so long
// typing bursts do not masquerade as idle spacing.
func interEventGaps(events []Event) []float64 {
	if len(events) < 2 {
		return nil
	}

	type gap struct {
		sec    float64
		typing bool
	}
	gaps := make([]gap, 0, len(events)-1)
	maxNonTyping := 0.0
	for i := 1; i < len(events); i++ {
		g := gap{
			sec:    events[i].Timestamp.Sub(events[i-1].Timestamp).Seconds(),
			typing: events[i].EventType == EventTyping || events[i-1].EventType == EventTyping,
		}
		if g.sec < 0 {
			g.sec = 0
		}
		if !g.typing && g.sec > maxNonTyping {
			maxNonTyping = g.sec
		}
		gaps = append(gaps, g)
	}

	out := make([]float64, len(gaps))
	for i, g := range gaps {
		if g.typing && maxNonTyping > 0 && g.sec > maxNonTyping {
			g.sec = maxNonTyping
		}
		out[i] = g.sec
	}
	return out
}

// #endregion parse

// #region idle

func detectIdleSegments(events []Event, start, end time.Time) []IdleSegment {
	threshold := time.Duration(idleGapThresholdSec * float64(time.Second))
	var segments []IdleSegment

	appendIdle := func(from, to time.Time) {
		gapSec := to.Sub(from).Seconds()
		if gapSec > idleGapThresholdSec {
			segments = append(segments, IdleSegment{
				Start:       from.Add(threshold),
				End:         to,
				DurationSec: gapSec - idleGapThresholdSec,
			})
		}
	}

	if len(events) == 0 {
		appendIdle(start, end)
		return segments
	}

	appendIdle(start, events[0].Timestamp)
	for i := 1; i < len(events); i++ {
		appendIdle(events[i-1].Timestamp, events[i].Timestamp)
	}
	appendIdle(events[len(events)-1].Timestamp, end)
	return segments
}

// #endregion idle

// #region engagement

func isInterruption(t EventType) bool {
	return t == EventNotification || t == EventCall || t == EventAppSwitch
}

func detectEngagementSegments(events []Event, start, end time.Time) []EngagementSegment {
	if len(events) == 0 {
		return nil
	}

	var segments []EngagementSegment
	closeSegment := func(segStart, segEnd time.Time, count int) {
		durationSec := segEnd.Sub(segStart).Seconds()
		if durationSec >= minEngagementDurationSec && count > 0 {
			segments = append(segments, EngagementSegment{
				Start:       segStart,
				End:         segEnd,
				DurationSec: durationSec,
				EventCount:  count,
			})
		}
	}

	firstIdx := -1
	for i := range events {
		if !isInterruption(events[i].EventType) {
			firstIdx = i
			break
		}
	}
	if firstIdx < 0 {
		return nil
	}

	segStart := events[firstIdx].Timestamp
	if events[firstIdx].Timestamp.Sub(start).Seconds() <= idleGapThresholdSec {
		segStart = start
	}
	count := 1

	for i := firstIdx + 1; i < len(events); i++ {
		gapSec := events[i].Timestamp.Sub(events[i-1].Timestamp).Seconds()
		interruption := isInterruption(events[i].EventType)

		if interruption || gapSec > idleGapThresholdSec {
			segEnd := events[i-1].Timestamp
			if interruption {
				segEnd = events[i].Timestamp
			}
			closeSegment(segStart, segEnd, count)
			segStart = events[i].Timestamp
			if interruption {
				count = 0
			} else {
				count = 1
			}
		} else {
			count++
		}
	}

	segEnd := events[len(events)-1].Timestamp
	if end.Sub(segEnd).Seconds() <= idleGapThresholdSec {
		segEnd = end
	}
	closeSegment(segStart, segEnd, count)
	return segments
}

// #endregion engagement
