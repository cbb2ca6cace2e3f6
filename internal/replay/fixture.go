// Package replay runs recorded payload sequences through a fresh processor
// and checks the outcomes against expectations. Fixtures are plain JSON so
// the same recordings can drive engines on other platforms.
package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/synheart/flux/go-engine/internal/engine"
)

// #endregion imports

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Config      FixtureConfig `json:"config"`
	Steps       []Step        `json:"steps"`
	Expected    []Expectation `json:"expected_results,omitempty"`
}

// FixtureConfig mirrors engine.Config with JSON tags.
type FixtureConfig struct {
	WearableWindow int     `json:"wearable_window"`
	BehaviorWindow int     `json:"behavior_window"`
	HalfLifeHours  float64 `json:"half_life_hours"`
	InstanceID     string  `json:"instance_id"`
}

// Step is one recorded engine call. Kind selects the operation: "whoop",
// "garmin", "behavior" or "snapshot". AtUTC pins the clock for the step.
type Step struct {
	AtUTC    string          `json:"at_utc"`
	Kind     string          `json:"kind"`
	Timezone string          `json:"timezone,omitempty"`
	DeviceID string          `json:"device_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Expectation pins the outcome of one step: how many documents it emits,
// or which error kind it fails with.
type Expectation struct {
	Step      int    `json:"step"`
	Documents int    `json:"documents"`
	Error     string `json:"error,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture JSON.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// EngineConfig converts the fixture config to an engine.Config, leaving
// zero values for the engine's own defaults.
func (fc *FixtureConfig) EngineConfig() engine.Config {
	cfg := engine.Config{
		WearableWindow: fc.WearableWindow,
		BehaviorWindow: fc.BehaviorWindow,
		InstanceID:     fc.InstanceID,
	}
	if fc.HalfLifeHours > 0 {
		cfg.HalfLife = time.Duration(fc.HalfLifeHours * float64(time.Hour))
	}
	return cfg
}

// At parses the step's pinned clock instant.
func (s *Step) At() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s.AtUTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("step at_utc %q: %w", s.AtUTC, err)
	}
	return t, nil
}

// #endregion fixture-loader
