package hsi

// #region constants

// Version is the HSI schema major.minor this encoder targets.
const Version = "1.0"

// ProducerName identifies this engine in every emitted document.
const ProducerName = "synheart-flux"

// EngineVersion is embedded in the producer block of every document.
const EngineVersion = "0.3.0"

// #endregion constants

// #region direction

// Direction declares how a reading's score should be interpreted.
type Direction string

const (
	// HigherIsMore means larger scores indicate more of the named quantity.
	HigherIsMore Direction = "higher_is_more"
	// Bidirectional means 0.5 is the neutral point and deviation in either
	// direction is meaningful.
	Bidirectional Direction = "bidirectional"
)

// #endregion direction

// #region document

// Document is one HSI 1.0 output payload. Built fresh per call, never
// mutated after construction.
type Document struct {
	HsiVersion    string            `json:"hsi_version"`
	ObservedAtUTC string            `json:"observed_at_utc"`
	ComputedAtUTC string            `json:"computed_at_utc"`
	Producer      Producer          `json:"producer"`
	WindowIDs     []string          `json:"window_ids"`
	Windows       map[string]Window `json:"windows"`
	SourceIDs     []string          `json:"source_ids,omitempty"`
	Sources       map[string]Source `json:"sources,omitempty"`
	Axes          *Axes             `json:"axes,omitempty"`
	Privacy       Privacy           `json:"privacy"`
	Meta          map[string]any    `json:"meta,omitempty"`
}

// Producer identifies the software that computed a document.
type Producer struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	InstanceID string `json:"instance_id,omitempty"`
}

// Window is a labeled time span readings attach to.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

// SourceType tags where a source's data came from.
type SourceType string

const (
	SourceApp      SourceType = "app"
	SourceWearable SourceType = "wearable"
)

// Source describes one evidence stream contributing to a document.
type Source struct {
	Type     SourceType `json:"type"`
	Quality  float64    `json:"quality"`
	Degraded bool       `json:"degraded"`
	Notes    string     `json:"notes,omitempty"`
}

// Axes groups readings by domain.
type Axes struct {
	Behavior *AxisGroup `json:"behavior,omitempty"`
	Context  *AxisGroup `json:"context,omitempty"`
}

// AxisGroup holds the readings of one axis domain.
type AxisGroup struct {
	Readings []Reading `json:"readings"`
}

// Reading is a single scored observation on a named axis.
type Reading struct {
	Axis              string    `json:"axis"`
	Score             float64   `json:"score"`
	Confidence        float64   `json:"confidence"`
	WindowID          string    `json:"window_id"`
	Direction         Direction `json:"direction,omitempty"`
	Unit              string    `json:"unit,omitempty"`
	EvidenceSourceIDs []string  `json:"evidence_source_ids,omitempty"`
	Notes             string    `json:"notes,omitempty"`
}

// Privacy declares what a document may contain and how it may be used.
type Privacy struct {
	ContainsPII           bool     `json:"contains_pii"`
	RawBiosignalsAllowed  bool     `json:"raw_biosignals_allowed"`
	DerivedMetricsAllowed bool     `json:"derived_metrics_allowed"`
	Purposes              []string `json:"purposes,omitempty"`
}

// DefaultPrivacy is the declaration every engine-produced document carries:
// derived metrics only, no PII beyond opaque caller-supplied identifiers.
func DefaultPrivacy() Privacy {
	return Privacy{
		ContainsPII:           false,
		RawBiosignalsAllowed:  false,
		DerivedMetricsAllowed: true,
		Purposes:              []string{"behavioral_research"},
	}
}

// #endregion document
