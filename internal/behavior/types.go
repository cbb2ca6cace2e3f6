package behavior

// #region imports
import (
	"errors"
	"time"
)

// #endregion imports

// #region errors

// ErrDecode is returned when a session payload is not valid JSON of the
// expected shape.
var ErrDecode = errors.New("behavioral session not decodable")

// ErrInvalidTimeRange is returned when a session ends before it starts or
// its events are not in timestamp order. Fatal for that session.
var ErrInvalidTimeRange = errors.New("invalid session time range")

// #endregion errors

// #region events

// EventType tags a behavioral interaction event.
type EventType string

const (
	EventScroll       EventType = "scroll"
	EventTap          EventType = "tap"
	EventSwipe        EventType = "swipe"
	EventNotification EventType = "notification"
	EventCall         EventType = "call"
	EventTyping       EventType = "typing"
	EventAppSwitch    EventType = "app_switch"
)

// ScrollDirection is the axis-aligned direction of a scroll or swipe.
type ScrollDirection string

const (
	DirectionUp    ScrollDirection = "up"
	DirectionDown  ScrollDirection = "down"
	DirectionLeft  ScrollDirection = "left"
	DirectionRight ScrollDirection = "right"
)

// InterruptionAction is what the user did with a notification or call.
type InterruptionAction string

const (
	ActionIgnored   InterruptionAction = "ignored"
	ActionOpened    InterruptionAction = "opened"
	ActionAnswered  InterruptionAction = "answered"
	ActionDismissed InterruptionAction = "dismissed"
)

// ScrollEvent is the scroll-specific payload.
type ScrollEvent struct {
	Velocity          *float64         `json:"velocity,omitempty"`
	Direction         *ScrollDirection `json:"direction,omitempty"`
	DirectionReversal bool             `json:"direction_reversal,omitempty"`
}

// TapEvent is the tap-specific payload.
type TapEvent struct {
	TapDurationMs *int `json:"tap_duration_ms,omitempty"`
	LongPress     bool `json:"long_press,omitempty"`
}

// SwipeEvent is the swipe-specific payload.
type SwipeEvent struct {
	Direction *ScrollDirection `json:"direction,omitempty"`
	Velocity  *float64         `json:"velocity,omitempty"`
}

// InterruptionEvent records how a notification or call was handled.
type InterruptionEvent struct {
	Action      InterruptionAction `json:"action"`
	SourceAppID *string            `json:"source_app_id,omitempty"`
}

// TypingEvent summarizes one typing burst.
type TypingEvent struct {
	TypingSpeedCpm   *float64 `json:"typing_speed_cpm,omitempty"`
	CadenceStability *float64 `json:"cadence_stability,omitempty"`
	DurationSec      *float64 `json:"duration_sec,omitempty"`
	PauseCount       *int     `json:"pause_count,omitempty"`
}

// AppSwitchEvent records a foreground app change.
type AppSwitchEvent struct {
	FromAppID *string `json:"from_app_id,omitempty"`
	ToAppID   *string `json:"to_app_id,omitempty"`
}

// Event is one timestamped interaction with a type-specific sub-object.
type Event struct {
	Timestamp    time.Time          `json:"timestamp"`
	EventType    EventType          `json:"event_type"`
	Scroll       *ScrollEvent       `json:"scroll,omitempty"`
	Tap          *TapEvent          `json:"tap,omitempty"`
	Swipe        *SwipeEvent        `json:"swipe,omitempty"`
	Interruption *InterruptionEvent `json:"interruption,omitempty"`
	Typing       *TypingEvent       `json:"typing,omitempty"`
	AppSwitch    *AppSwitchEvent    `json:"app_switch,omitempty"`
}

// Session is a raw interaction log as delivered by the producing SDK.
// Events are expected in timestamp order.
type Session struct {
	SessionID string    `json:"session_id"`
	DeviceID  string    `json:"device_id"`
	Timezone  string    `json:"timezone"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Events    []Event   `json:"events"`
}

// #endregion events

// #region canonical

// IdleSegment is a span with no interaction beyond the idle threshold.
type IdleSegment struct {
	Start       time.Time
	End         time.Time
	DurationSec float64
}

// EngagementSegment is sustained activity bounded by interruptions or idle
// gaps.
type EngagementSegment struct {
	Start       time.Time
	End         time.Time
	DurationSec float64
	EventCount  int
}

// Canonical is a validated, aggregated view of one session. Immutable after
// creation.
type Canonical struct {
	SessionID string
	DeviceID  string
	Timezone  string
	StartTime time.Time
	EndTime   time.Time

	DurationSec float64

	TotalEvents        int
	ScrollEvents       int
	TapEvents          int
	SwipeEvents        int
	NotificationEvents int
	CallEvents         int
	TypingEvents       int
	AppSwitchEvents    int

	ScrollDirectionReversals int
	TotalTypingDurationSec   float64

	IdleSegments       []IdleSegment
	TotalIdleTimeSec   float64
	EngagementSegments []EngagementSegment
	InterEventGaps     []float64
}

// #endregion canonical
