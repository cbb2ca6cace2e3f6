package hsi

// #region imports
import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// #endregion imports

// #region encoder

// Encoder builds HSI documents with a fixed producer identity. Window and
// source IDs are content-derived so identical inputs produce identical
// documents.
type Encoder struct {
	instanceID string
}

// NewEncoder returns an encoder with a random instance ID, for long-lived
// stateful processors.
func NewEncoder() *Encoder {
	return &Encoder{instanceID: uuid.NewString()}
}

// NewEncoderForDevice returns an encoder whose instance ID is derived
// deterministically from the device identity. One-shot conversions use this
// so repeated runs over the same input stay byte-identical.
func NewEncoderForDevice(deviceID string) *Encoder {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(ProducerName+"/"+deviceID))
	return &Encoder{instanceID: id.String()}
}

// WithInstanceID returns an encoder with an explicit instance ID.
func WithInstanceID(id string) *Encoder {
	return &Encoder{instanceID: id}
}

// InstanceID reports the encoder's producer instance identity.
func (e *Encoder) InstanceID() string { return e.instanceID }

// NewDocument starts a document with producer identity, timestamps, empty
// window/source tables and the default privacy declaration.
func (e *Encoder) NewDocument(observedAt, computedAt time.Time) *Document {
	return &Document{
		HsiVersion:    Version,
		ObservedAtUTC: Timestamp(observedAt),
		ComputedAtUTC: Timestamp(computedAt),
		Producer: Producer{
			Name:       ProducerName,
			Version:    EngineVersion,
			InstanceID: e.instanceID,
		},
		WindowIDs: []string{},
		Windows:   map[string]Window{},
		Privacy:   DefaultPrivacy(),
	}
}

// #endregion encoder

// #region document-builders

// AddWindow registers a window under the given ID and appends it to the
// ordered ID list.
func (d *Document) AddWindow(id string, w Window) {
	d.WindowIDs = append(d.WindowIDs, id)
	d.Windows[id] = w
}

// AddSource registers an evidence source under the given ID.
func (d *Document) AddSource(id string, s Source) {
	d.SourceIDs = append(d.SourceIDs, id)
	if d.Sources == nil {
		d.Sources = map[string]Source{}
	}
	d.Sources[id] = s
}

// SetMeta attaches one metadata entry, allocating the map on first use.
func (d *Document) SetMeta(key string, value any) {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	d.Meta[key] = value
}

// BehaviorReadings attaches the behavior axis group.
func (d *Document) BehaviorReadings(readings []Reading) {
	if d.Axes == nil {
		d.Axes = &Axes{}
	}
	d.Axes.Behavior = &AxisGroup{Readings: readings}
}

// ContextReadings attaches the context axis group.
func (d *Document) ContextReadings(readings []Reading) {
	if d.Axes == nil {
		d.Axes = &Axes{}
	}
	d.Axes.Context = &AxisGroup{Readings: readings}
}

// MarshalIndent renders the document as stable, human-readable JSON. Map
// keys serialize in sorted order so output is reproducible across runs.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// #endregion document-builders

// #region identifiers

// WindowID derives a stable window identifier from free-form content such
// as a session ID or calendar date.
func WindowID(content string) string {
	return "w_" + sanitizeID(content)
}

// SourceID derives a stable source identifier from a device ID.
func SourceID(deviceID string) string {
	return "s_" + sanitizeID(deviceID)
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// Timestamp renders a time as RFC3339 UTC, the only timestamp form HSI
// documents carry.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// #endregion identifiers
