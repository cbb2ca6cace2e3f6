package wearable

// #region feature

// Feature is one derived value plus a confidence in [0,1] reflecting how
// complete its inputs were.
type Feature struct {
	Value      float64
	Confidence float64
}

func feature(value, confidence float64) *Feature {
	return &Feature{Value: value, Confidence: confidence}
}

// Derived carries the normalized record plus the per-day derived features.
// Stateless; recomputed every call.
type Derived struct {
	Normalized
	SleepEfficiency    *Feature
	SleepFragmentation *Feature
	DeepSleepRatio     *Feature
	RemSleepRatio      *Feature
	NormalizedLoad     *Feature
}

// #endregion feature

// #region derive

// maxAwakeningsPerHour saturates the fragmentation index.
const maxAwakeningsPerHour = 6.0

// Derive computes sleep efficiency, fragmentation, stage ratios and
// normalized load from a normalized record.
func Derive(n Normalized) Derived {
	d := Derived{Normalized: n}
	sleep := &n.Record.Sleep

	// Sleep efficiency: time asleep over time in bed. A zero in-bed window
	// yields a zero-value low-quality feature, not a division error.
	if sleep.TotalSleepMinutes != nil && sleep.TimeInBedMinutes != nil {
		if *sleep.TimeInBedMinutes > 0 {
			d.SleepEfficiency = feature(clamp01(*sleep.TotalSleepMinutes / *sleep.TimeInBedMinutes), 1)
		} else {
			d.SleepEfficiency = feature(0, 0.2)
			d.Flags = append(d.Flags, FlagZeroTimeInBed)
		}
	}

	// Fragmentation: awakenings per hour asleep, saturating at six. Falls
	// back to the awake-time ratio when awakening counts are absent.
	switch {
	case sleep.Awakenings != nil && sleep.TotalSleepMinutes != nil && *sleep.TotalSleepMinutes > 0:
		perHour := float64(*sleep.Awakenings) / (*sleep.TotalSleepMinutes / 60)
		d.SleepFragmentation = feature(clamp01(perHour/maxAwakeningsPerHour), 1)
	case sleep.AwakeMinutes != nil && sleep.TimeInBedMinutes != nil && *sleep.TimeInBedMinutes > 0:
		d.SleepFragmentation = feature(clamp01(*sleep.AwakeMinutes / *sleep.TimeInBedMinutes), 0.6)
	}

	if sleep.DeepSleepMinutes != nil && sleep.TotalSleepMinutes != nil && *sleep.TotalSleepMinutes > 0 {
		d.DeepSleepRatio = feature(clamp01(*sleep.DeepSleepMinutes / *sleep.TotalSleepMinutes), 1)
	}
	if sleep.RemSleepMinutes != nil && sleep.TotalSleepMinutes != nil && *sleep.TotalSleepMinutes > 0 {
		d.RemSleepRatio = feature(clamp01(*sleep.RemSleepMinutes / *sleep.TotalSleepMinutes), 1)
	}

	// Normalized load: how much of recovery capacity the day's strain used,
	// on a 0-2 scale. Raw strain stands in when recovery is absent.
	switch {
	case n.StrainScore != nil && n.RecoveryScore != nil && *n.RecoveryScore > 0:
		d.NormalizedLoad = feature(clampRange(*n.StrainScore / *n.RecoveryScore, 0, 2), 1)
	case n.StrainScore != nil:
		d.NormalizedLoad = feature(*n.StrainScore, 0.5)
	}

	return d
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion derive
