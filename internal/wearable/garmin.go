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

type garminPayload struct {
	Dailies []garminDaily `json:"dailies"`
	Sleep   []garminSleep `json:"sleep"`
}

type garminDaily struct {
	CalendarDate             string   `json:"calendarDate"`
	TotalSteps               *int64   `json:"totalSteps,omitempty"`
	TotalDistanceMeters      *float64 `json:"totalDistanceMeters,omitempty"`
	TotalKilocalories        *float64 `json:"totalKilocalories,omitempty"`
	ActiveKilocalories       *float64 `json:"activeKilocalories,omitempty"`
	RestingHeartRate         *float64 `json:"restingHeartRate,omitempty"`
	RestingHeartRateHrv      *float64 `json:"restingHeartRateHrv,omitempty"`
	AverageHeartRate         *float64 `json:"averageHeartRate,omitempty"`
	MaxHeartRate             *float64 `json:"maxHeartRate,omitempty"`
	AvgSpo2Value             *float64 `json:"avgSpo2Value,omitempty"`
	BodyBatteryChargedValue  *float64 `json:"bodyBatteryChargedValue,omitempty"`
	BodyBatteryDrainedValue  *float64 `json:"bodyBatteryDrainedValue,omitempty"`
	TrainingLoadBalance      *float64 `json:"trainingLoadBalance,omitempty"`
	ModerateIntensityMinutes *float64 `json:"moderateIntensityMinutes,omitempty"`
	VigorousIntensityMinutes *float64 `json:"vigorousIntensityMinutes,omitempty"`
}

type garminSleep struct {
	CalendarDate           string             `json:"calendarDate"`
	SleepStartTimestampGmt *int64             `json:"sleepStartTimestampGmt,omitempty"`
	SleepEndTimestampGmt   *int64             `json:"sleepEndTimestampGmt,omitempty"`
	SleepTimeSeconds       *float64           `json:"sleepTimeSeconds,omitempty"`
	AwakeSleepSeconds      *float64           `json:"awakeSleepSeconds,omitempty"`
	LightSleepSeconds      *float64           `json:"lightSleepSeconds,omitempty"`
	DeepSleepSeconds       *float64           `json:"deepSleepSeconds,omitempty"`
	RemSleepSeconds        *float64           `json:"remSleepSeconds,omitempty"`
	AwakeCount             *int               `json:"awakeCount,omitempty"`
	AvgSleepRespiration    *float64           `json:"avgSleepRespiration,omitempty"`
	SleepScores            *garminSleepScores `json:"sleepScores,omitempty"`
}

type garminSleepScores struct {
	OverallScore     *float64 `json:"overallScore,omitempty"`
	QualityScore     *float64 `json:"qualityScore,omitempty"`
	RecoveryScore    *float64 `json:"recoveryScore,omitempty"`
	RestfulnessScore *float64 `json:"restfulnessScore,omitempty"`
}

// #endregion payload

// #region adapter

// ParseGarmin maps a Garmin Health payload (dailies + sleep sections) onto
// canonical daily records keyed by calendarDate. Body Battery charge serves
// as the recovery proxy; training load balance as the strain score.
func ParseGarmin(raw []byte, timezone, deviceID string) ([]DailyRecord, error) {
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrDecode, timezone)
	}
	var payload garminPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	type dayData struct {
		daily *garminDaily
		sleep *garminSleep
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

	for i := range payload.Dailies {
		d := &payload.Dailies[i]
		if d.CalendarDate != "" {
			day(d.CalendarDate).daily = d
		}
	}
	for i := range payload.Sleep {
		s := &payload.Sleep[i]
		if s.CalendarDate != "" {
			day(s.CalendarDate).sleep = s
		}
	}

	records := make([]DailyRecord, 0, len(byDate))
	for date, d := range byDate {
		rec := DailyRecord{
			Vendor:    VendorGarmin,
			Date:      date,
			DeviceID:  deviceID,
			Timezone:  timezone,
			VendorRaw: map[string]json.RawMessage{},
		}

		if s := d.sleep; s != nil {
			rec.Sleep = garminCanonicalSleep(s)
			rec.VendorRaw["sleep"] = mustRaw(s)
		}
		if daily := d.daily; daily != nil {
			rec.Recovery = Recovery{
				HrvRmssdMs:          daily.RestingHeartRateHrv,
				RestingHrBpm:        daily.RestingHeartRate,
				VendorRecoveryScore: daily.BodyBatteryChargedValue,
				Spo2Percentage:      daily.AvgSpo2Value,
			}
			rec.Activity = Activity{
				VendorStrainScore: daily.TrainingLoadBalance,
				Calories:          daily.TotalKilocalories,
				ActiveCalories:    daily.ActiveKilocalories,
				AverageHrBpm:      daily.AverageHeartRate,
				MaxHrBpm:          daily.MaxHeartRate,
				DistanceMeters:    daily.TotalDistanceMeters,
				Steps:             daily.TotalSteps,
				ActiveMinutes:     sumIntensityMinutes(daily),
			}
			rec.VendorRaw["daily"] = mustRaw(daily)
		}

		rec.ObservedAt = garminObservedAt(d.sleep, date)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

func garminCanonicalSleep(s *garminSleep) Sleep {
	out := Sleep{
		Awakenings:      s.AwakeCount,
		RespiratoryRate: s.AvgSleepRespiration,
	}
	if s.SleepStartTimestampGmt != nil {
		t := time.UnixMilli(*s.SleepStartTimestampGmt).UTC()
		out.StartTime = &t
	}
	if s.SleepEndTimestampGmt != nil {
		t := time.UnixMilli(*s.SleepEndTimestampGmt).UTC()
		out.EndTime = &t
	}
	if s.SleepTimeSeconds != nil {
		out.TotalSleepMinutes = f64ptr(*s.SleepTimeSeconds / 60)
		out.TimeInBedMinutes = f64ptr(*s.SleepTimeSeconds / 60)
	} else if out.StartTime != nil && out.EndTime != nil {
		out.TimeInBedMinutes = f64ptr(out.EndTime.Sub(*out.StartTime).Minutes())
	}
	if s.AwakeSleepSeconds != nil {
		out.AwakeMinutes = f64ptr(*s.AwakeSleepSeconds / 60)
	}
	if s.LightSleepSeconds != nil {
		out.LightSleepMinutes = f64ptr(*s.LightSleepSeconds / 60)
	}
	if s.DeepSleepSeconds != nil {
		out.DeepSleepMinutes = f64ptr(*s.DeepSleepSeconds / 60)
	}
	if s.RemSleepSeconds != nil {
		out.RemSleepMinutes = f64ptr(*s.RemSleepSeconds / 60)
	}
	if s.SleepScores != nil {
		out.VendorSleepScore = s.SleepScores.OverallScore
	}
	return out
}

func garminObservedAt(s *garminSleep, date string) time.Time {
	if s != nil && s.SleepEndTimestampGmt != nil {
		return time.UnixMilli(*s.SleepEndTimestampGmt).UTC()
	}
	t, _ := time.Parse("2006-01-02", date)
	return t
}

func sumIntensityMinutes(d *garminDaily) *float64 {
	if d.ModerateIntensityMinutes == nil && d.VigorousIntensityMinutes == nil {
		return nil
	}
	var total float64
	if d.ModerateIntensityMinutes != nil {
		total += *d.ModerateIntensityMinutes
	}
	if d.VigorousIntensityMinutes != nil {
		total += *d.VigorousIntensityMinutes
	}
	return &total
}

// #endregion adapter
