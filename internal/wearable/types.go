package wearable

// #region imports
import (
	"encoding/json"
	"errors"
	"time"
)

// #endregion imports

// #region errors

// ErrDecode is returned when a vendor payload is not a valid instance of
// its expected shape. Fatal for the call; missing fields inside a valid
// payload degrade quality instead.
var ErrDecode = errors.New("vendor payload not decodable")

// #endregion errors

// #region vendor

// Vendor tags which adapter produced a record. Closed set; a new vendor is
// a new constant plus a mapping function.
type Vendor string

const (
	VendorWhoop  Vendor = "whoop"
	VendorGarmin Vendor = "garmin"
)

// #endregion vendor

// #region canonical

// Sleep holds one day's canonical sleep block. All durations in minutes.
// Nil means the vendor did not report the field.
type Sleep struct {
	StartTime         *time.Time
	EndTime           *time.Time
	TimeInBedMinutes  *float64
	TotalSleepMinutes *float64
	AwakeMinutes      *float64
	LightSleepMinutes *float64
	DeepSleepMinutes  *float64
	RemSleepMinutes   *float64
	Awakenings        *int
	LatencyMinutes    *float64
	VendorSleepScore  *float64
	RespiratoryRate   *float64
}

// Recovery holds one day's canonical recovery block.
type Recovery struct {
	HrvRmssdMs          *float64
	RestingHrBpm        *float64
	VendorRecoveryScore *float64
	SkinTempDeviationC  *float64
	Spo2Percentage      *float64
}

// Activity holds one day's canonical activity block.
type Activity struct {
	VendorStrainScore *float64
	Calories          *float64
	ActiveCalories    *float64
	AverageHrBpm      *float64
	MaxHrBpm          *float64
	DistanceMeters    *float64
	Steps             *int64
	ActiveMinutes     *float64
}

// DailyRecord is the canonical daily record one adapter invocation emits,
// one per calendar day present in the payload. Immutable after creation.
type DailyRecord struct {
	Vendor     Vendor
	Date       string
	DeviceID   string
	Timezone   string
	ObservedAt time.Time
	Sleep      Sleep
	Recovery   Recovery
	Activity   Activity
	// VendorRaw preserves unmapped vendor sections under a vendor-namespaced
	// pass-through so downstream consumers retain raw detail.
	VendorRaw map[string]json.RawMessage
}

// #endregion canonical

// #region helpers

func f64ptr(v float64) *float64 { return &v }

func intptr(v int) *int { return &v }

// #endregion helpers
