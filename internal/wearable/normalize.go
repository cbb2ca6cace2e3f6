package wearable

// #region flags

// QualityFlag annotates gaps in a day's data. Flags degrade confidence;
// they never fail the pipeline.
type QualityFlag string

const (
	FlagMissingSleepData    QualityFlag = "missing_sleep_data"
	FlagMissingHrv          QualityFlag = "missing_hrv"
	FlagMissingRestingHr    QualityFlag = "missing_resting_hr"
	FlagMissingRecoveryData QualityFlag = "missing_recovery_data"
	FlagMissingActivityData QualityFlag = "missing_activity_data"
	FlagShortSleepWindow    QualityFlag = "short_sleep_window"
	FlagZeroTimeInBed       QualityFlag = "zero_time_in_bed"
)

// #endregion flags

// #region normalized

// Normalized carries a canonical record plus vendor scores harmonized onto
// a 0-1 scale and a coverage fraction over the tracked field groups.
type Normalized struct {
	Record        DailyRecord
	SleepScore    *float64
	RecoveryScore *float64
	StrainScore   *float64
	Coverage      float64
	Flags         []QualityFlag
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

// coverageFields is how many field groups contribute to coverage.
const coverageFields = 6

// shortSleepMinutes flags implausibly short sleep windows.
const shortSleepMinutes = 180

// Normalize harmonizes vendor scales and computes coverage and quality
// flags. Deterministic and side-effect free; never drops data, only
// annotates.
func Normalize(rec DailyRecord) Normalized {
	n := Normalized{Record: rec}
	covered := 0

	n.SleepScore = scaleScore(rec.Sleep.VendorSleepScore, 100)
	if rec.Sleep.TotalSleepMinutes != nil {
		covered++
		if *rec.Sleep.TotalSleepMinutes < shortSleepMinutes {
			n.Flags = append(n.Flags, FlagShortSleepWindow)
		}
	} else {
		n.Flags = append(n.Flags, FlagMissingSleepData)
	}

	n.RecoveryScore = scaleScore(rec.Recovery.VendorRecoveryScore, 100)
	if rec.Recovery.HrvRmssdMs != nil {
		covered++
	} else {
		n.Flags = append(n.Flags, FlagMissingHrv)
	}
	if rec.Recovery.RestingHrBpm != nil {
		covered++
	} else {
		n.Flags = append(n.Flags, FlagMissingRestingHr)
	}
	if n.RecoveryScore != nil {
		covered++
	} else {
		n.Flags = append(n.Flags, FlagMissingRecoveryData)
	}

	switch rec.Vendor {
	case VendorWhoop:
		// WHOOP strain runs 0-21.
		n.StrainScore = scaleScore(rec.Activity.VendorStrainScore, 21)
	case VendorGarmin:
		// Garmin training load balance, typical range 0-150.
		n.StrainScore = scaleScore(rec.Activity.VendorStrainScore, 150)
	}
	if n.StrainScore != nil {
		covered++
	} else {
		n.Flags = append(n.Flags, FlagMissingActivityData)
	}

	if rec.Activity.Calories != nil || rec.Activity.Steps != nil {
		covered++
	}

	n.Coverage = float64(covered) / coverageFields
	return n
}

func scaleScore(raw *float64, ceiling float64) *float64 {
	if raw == nil {
		return nil
	}
	return f64ptr(clamp01(*raw / ceiling))
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
