package wearable

// #region imports
import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// #endregion imports

// #region payload

type whoopPayload struct {
	Sleep    []whoopSleep    `json:"sleep"`
	Recovery []whoopRecovery `json:"recovery"`
	Cycle    []whoopCycle    `json:"cycle"`
}

type whoopSleep struct {
	Start string           `json:"start"`
	End   string           `json:"end"`
	Score *whoopSleepScore `json:"score,omitempty"`
}

type whoopSleepScore struct {
	StageSummary               *whoopStageSummary `json:"stage_summary,omitempty"`
	SleepLatencyTimeMilli      *float64           `json:"sleep_latency_time_milli,omitempty"`
	SleepPerformancePercentage *float64           `json:"sleep_performance_percentage,omitempty"`
	SleepEfficiencyPercentage  *float64           `json:"sleep_efficiency_percentage,omitempty"`
	RespiratoryRate            *float64           `json:"respiratory_rate,omitempty"`
}

type whoopStageSummary struct {
	TotalInBedTimeMilli        float64 `json:"total_in_bed_time_milli"`
	TotalAwakeTimeMilli        float64 `json:"total_awake_time_milli"`
	TotalLightSleepTimeMilli   float64 `json:"total_light_sleep_time_milli"`
	TotalSlowWaveSleepTimeMilli float64 `json:"total_slow_wave_sleep_time_milli"`
	TotalRemSleepTimeMilli     float64 `json:"total_rem_sleep_time_milli"`
	TotalSleepTimeMilli        float64 `json:"total_sleep_time_milli"`
	DisturbanceCount           int     `json:"disturbance_count"`
}

type whoopRecovery struct {
	CycleID   int64               `json:"cycle_id"`
	CreatedAt string              `json:"created_at"`
	Score     *whoopRecoveryScore `json:"score,omitempty"`
}

type whoopRecoveryScore struct {
	RecoveryScore    *float64 `json:"recovery_score,omitempty"`
	RestingHeartRate *float64 `json:"resting_heart_rate,omitempty"`
	HrvRmssdMilli    *float64 `json:"hrv_rmssd_milli,omitempty"`
	Spo2Percentage   *float64 `json:"spo2_percentage,omitempty"`
	SkinTempCelsius  *float64 `json:"skin_temp_celsius,omitempty"`
}

type whoopCycle struct {
	Start string           `json:"start"`
	End   string           `json:"end"`
	Score *whoopCycleScore `json:"score,omitempty"`
}

type whoopCycleScore struct {
	Strain           *float64 `json:"strain,omitempty"`
	Kilojoule        *float64 `json:"kilojoule,omitempty"`
	AverageHeartRate *float64 `json:"average_heart_rate,omitempty"`
	MaxHeartRate     *float64 `json:"max_heart_rate,omitempty"`
}

// #endregion payload

// #region adapter

// kilojoules to kilocalories
const kjToKcal = 0.239006

// ParseWhoop maps a WHOOP API payload onto canonical daily records, one per
// calendar day present. Empty vendor arrays yield zero records. Missing or
// malformed sections inside a decodable payload produce absent fields, not
// errors.
func ParseWhoop(raw []byte, timezone, deviceID string) ([]DailyRecord, error) {
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrDecode, timezone)
	}
	var payload whoopPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	type dayData struct {
		sleep    *whoopSleep
		recovery *whoopRecovery
		cycle    *whoopCycle
	}
	byDate := map[string]*dayData{}
	day := func(date string) *dayData {
		d, ok := byDate[date]
		if !ok {
			d = &dayData{}
			byDate[date] = d
		}
		return d
	}

	for i := range payload.Sleep {
		s := &payload.Sleep[i]
		if date, ok := dateOfTimestamp(s.Start); ok {
			day(date).sleep = s
		}
	}
	for i := range payload.Recovery {
		r := &payload.Recovery[i]
		if date, ok := dateOfTimestamp(r.CreatedAt); ok {
			day(date).recovery = r
		}
	}
	for i := range payload.Cycle {
		c := &payload.Cycle[i]
		if date, ok := dateOfTimestamp(c.Start); ok {
			day(date).cycle = c
		}
	}

	records := make([]DailyRecord, 0, len(byDate))
	for date, d := range byDate {
		rec := DailyRecord{
			Vendor:    VendorWhoop,
			Date:      date,
			DeviceID:  deviceID,
			Timezone:  timezone,
			VendorRaw: map[string]json.RawMessage{},
		}

		if s := d.sleep; s != nil {
			rec.Sleep = whoopCanonicalSleep(s)
			rec.VendorRaw["sleep"] = mustRaw(s)
		}
		if r := d.recovery; r != nil {
			if sc := r.Score; sc != nil {
				rec.Recovery = Recovery{
					HrvRmssdMs:          sc.HrvRmssdMilli,
					RestingHrBpm:        sc.RestingHeartRate,
					VendorRecoveryScore: sc.RecoveryScore,
					SkinTempDeviationC:  sc.SkinTempCelsius,
					Spo2Percentage:      sc.Spo2Percentage,
				}
			}
			rec.VendorRaw["recovery"] = mustRaw(r)
		}
		if c := d.cycle; c != nil {
			if sc := c.Score; sc != nil {
				rec.Activity = Activity{
					VendorStrainScore: sc.Strain,
					AverageHrBpm:      sc.AverageHeartRate,
					MaxHrBpm:          sc.MaxHeartRate,
				}
				if sc.Kilojoule != nil {
					rec.Activity.Calories = f64ptr(*sc.Kilojoule * kjToKcal)
				}
			}
			rec.VendorRaw["cycle"] = mustRaw(c)
		}

		rec.ObservedAt = whoopObservedAt(d.sleep, d.recovery, d.cycle, date)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

func whoopCanonicalSleep(s *whoopSleep) Sleep {
	out := Sleep{
		StartTime: parseTimestamp(s.Start),
		EndTime:   parseTimestamp(s.End),
	}
	sc := s.Score
	if sc == nil {
		return out
	}
	out.VendorSleepScore = sc.SleepPerformancePercentage
	out.RespiratoryRate = sc.RespiratoryRate
	if sc.SleepLatencyTimeMilli != nil {
		out.LatencyMinutes = f64ptr(*sc.SleepLatencyTimeMilli / 60_000)
	}
	if ss := sc.StageSummary; ss != nil {
		out.TimeInBedMinutes = f64ptr(ss.TotalInBedTimeMilli / 60_000)
		out.TotalSleepMinutes = f64ptr(ss.TotalSleepTimeMilli / 60_000)
		out.AwakeMinutes = f64ptr(ss.TotalAwakeTimeMilli / 60_000)
		out.LightSleepMinutes = f64ptr(ss.TotalLightSleepTimeMilli / 60_000)
		out.DeepSleepMinutes = f64ptr(ss.TotalSlowWaveSleepTimeMilli / 60_000)
		out.RemSleepMinutes = f64ptr(ss.TotalRemSleepTimeMilli / 60_000)
		out.Awakenings = intptr(ss.DisturbanceCount)
	}
	return out
}

// whoopObservedAt picks the latest input-derived instant for the day so
// repeated runs over the same payload stay deterministic.
func whoopObservedAt(s *whoopSleep, r *whoopRecovery, c *whoopCycle, date string) time.Time {
	var observed time.Time
	consider := func(t *time.Time) {
		if t != nil && t.After(observed) {
			observed = *t
		}
	}
	if s != nil {
		consider(parseTimestamp(s.End))
	}
	if r != nil {
		consider(parseTimestamp(r.CreatedAt))
	}
	if c != nil {
		consider(parseTimestamp(c.End))
	}
	if observed.IsZero() {
		observed, _ = time.Parse("2006-01-02", date)
	}
	return observed
}

// #endregion adapter

// #region time-helpers

func parseTimestamp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func dateOfTimestamp(s string) (string, bool) {
	if len(s) < 10 {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
		return "", false
	}
	return s[:10], true
}

func mustRaw(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}

// #endregion time-helpers
