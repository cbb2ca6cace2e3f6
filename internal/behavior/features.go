package behavior

// #region imports
import (
	"math"
)

// #endregion imports

// #region constants

// Saturation constants for the exponential rate mappings: 0.5 app switches
// per minute maps to ~63% task switching, 1 notification per minute to ~63%
// load.
const (
	taskSwitchSaturationPerMin   = 0.5
	notificationSaturationPerMin = 1.0
)

// deepFocusMinDurationSec is the shortest engagement segment counted as a
// deep focus block.
const deepFocusMinDurationSec = 120.0

// intensityEventsPerMin is the events-per-minute rate treated as maximum
// interaction intensity.
const intensityEventsPerMin = 10.0

// typingSecondsPerEvent converts typing duration into event equivalents.
const typingSecondsPerEvent = 10.0

// Distraction composite weights.
const (
	weightTaskSwitch     = 0.35
	weightNotification   = 0.30
	weightFragmentedIdle = 0.20
	weightScrollJitter   = 0.15
)

// #endregion constants

// #region derived

// Derived carries a normalized session plus its behavioral metrics. All
// scores live in [0,1]. Burstiness is nil when the session has fewer than
// two events; the reading is omitted rather than defaulted.
type Derived struct {
	Normalized

	TaskSwitchRate       float64
	NotificationLoad     float64
	IdleRatio            float64
	FragmentedIdleRatio  float64
	ScrollJitterRate     float64
	Burstiness           *float64
	DeepFocusBlocks      int
	InteractionIntensity float64
	DistractionScore     float64
	FocusHint            float64
}

// #endregion derived

// #region derive

// Derive computes the behavioral metric set from a normalized session.
// Focus is exactly 1 - distraction.
func Derive(n Normalized) Derived {
	d := Derived{Normalized: n}
	c := &n.Canonical

	d.TaskSwitchRate = saturate(n.AppSwitchesPerMin, taskSwitchSaturationPerMin)
	d.NotificationLoad = saturate(n.NotificationsPerMin, notificationSaturationPerMin)

	if c.DurationSec > 0 {
		d.IdleRatio = clamp01(c.TotalIdleTimeSec / c.DurationSec)
		segmentsPerMin := float64(len(c.IdleSegments)) / c.DurationSec * 60
		d.FragmentedIdleRatio = clamp01(segmentsPerMin)
	}

	d.ScrollJitterRate = scrollJitterRate(c.ScrollDirectionReversals, c.ScrollEvents)
	d.Burstiness = burstiness(c.InterEventGaps)

	for _, seg := range c.EngagementSegments {
		if seg.DurationSec >= deepFocusMinDurationSec {
			d.DeepFocusBlocks++
		}
	}

	d.InteractionIntensity = interactionIntensity(c)

	d.DistractionScore = clamp01(weightTaskSwitch*d.TaskSwitchRate +
		weightNotification*d.NotificationLoad +
		weightFragmentedIdle*d.FragmentedIdleRatio +
		weightScrollJitter*d.ScrollJitterRate)
	d.FocusHint = 1 - d.DistractionScore

	return d
}

// saturate maps a nonnegative rate onto [0,1) with exponential saturation.
func saturate(ratePerMin, scale float64) float64 {
	return clamp01(1 - math.Exp(-ratePerMin/scale))
}

func scrollJitterRate(reversals, scrolls int) float64 {
	if scrolls <= 1 {
		return 0
	}
	return clamp01(float64(reversals) / float64(scrolls-1))
}

// burstiness applies the Barabasi index to inter-event gaps: (sigma-mu)/
// (sigma+mu), rescaled from [-1,1] to [0,1]. 0 is periodic, 0.5 random,
// 1 bursty. Nil when no gaps exist.
func burstiness(gaps []float64) *float64 {
	if len(gaps) == 0 {
		return nil
	}

	n := float64(len(gaps))
	var sum float64
	for _, g := range gaps {
		sum += g
	}
	mean := sum / n
	neutral := 0.5
	if mean <= 0 {
		return &neutral
	}

	var sq float64
	for _, g := range gaps {
		d := g - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / n)

	b := clamp01(((stddev-mean)/(stddev+mean) + 1) / 2)
	return &b
}

func interactionIntensity(c *Canonical) float64 {
	if c.DurationSec <= 0 {
		return 0
	}
	nonInterruption := c.TotalEvents - c.NotificationEvents - c.CallEvents
	if nonInterruption < 0 {
		nonInterruption = 0
	}
	interaction := float64(nonInterruption) + c.TotalTypingDurationSec/typingSecondsPerEvent
	perMin := interaction / c.DurationSec * 60
	return clamp01(perMin / intensityEventsPerMin)
}

// #endregion derive
