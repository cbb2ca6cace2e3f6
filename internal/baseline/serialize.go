package baseline

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
)

// #endregion imports

// #region format

// StateVersion tags the persisted baseline format. Bump on any change to
// the window layout so a stale store fails loudly instead of producing
// silently wrong statistics.
const StateVersion = 2

// ErrSchemaVersion is returned when persisted state carries a version this
// engine cannot read. The caller must discard or migrate.
var ErrSchemaVersion = errors.New("baseline state schema version mismatch")

type persistedState struct {
	Version    int                           `json:"version"`
	WindowSize int                           `json:"window_size"`
	Streams    map[string]map[string]*window `json:"streams"`
}

// #endregion format

// #region save-load

// Save serializes the engine's full window contents. The caller owns
// durability; the engine performs no I/O.
func (e *Engine) Save() ([]byte, error) {
	state := persistedState{
		Version:    StateVersion,
		WindowSize: e.config.WindowSize,
		Streams:    e.streams,
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal baseline state: %w", err)
	}
	return data, nil
}

// Load replaces the engine's windows with previously saved state. Window
// size follows the persisted value so restored scoring behavior matches the
// engine that saved it.
func (e *Engine) Load(data []byte) error {
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal baseline state: %w", err)
	}
	if state.Version != StateVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, state.Version, StateVersion)
	}
	if state.WindowSize > 0 {
		e.config.WindowSize = state.WindowSize
	}
	if state.Streams == nil {
		state.Streams = map[string]map[string]*window{}
	}
	e.streams = state.Streams
	return nil
}

// #endregion save-load
