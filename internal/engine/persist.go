package engine

// #region imports
import (
	"encoding/json"
	"fmt"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/biocontext"
)

// #endregion imports

// #region format

type persistedProcessor struct {
	Version  int                  `json:"version"`
	Wearable json.RawMessage      `json:"wearable"`
	Behavior json.RawMessage      `json:"behavior"`
	Snapshot *biocontext.Snapshot `json:"bio_context,omitempty"`
}

// #endregion format

// #region save-load

// SaveBaselines serializes both baseline engines and the bio context
// snapshot into one versioned blob. The host owns durability.
func (p *Processor) SaveBaselines() ([]byte, error) {
	wear, err := p.wearable.Save()
	if err != nil {
		return nil, err
	}
	behav, err := p.behavior.Save()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(persistedProcessor{
		Version:  baseline.StateVersion,
		Wearable: wear,
		Behavior: behav,
		Snapshot: p.snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal processor state: %w", err)
	}
	return data, nil
}

// LoadBaselines replaces the processor's baselines and bio context with
// previously saved state. Fails with ErrSchemaVersion when the blob was
// written by an incompatible format; current state is untouched on error.
func (p *Processor) LoadBaselines(data []byte) error {
	var state persistedProcessor
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal processor state: %w (%w)", err, baseline.ErrSchemaVersion)
	}
	if state.Version != baseline.StateVersion {
		return fmt.Errorf("%w: got %d, want %d", baseline.ErrSchemaVersion, state.Version, baseline.StateVersion)
	}

	wear := baseline.NewEngine(baseline.Config{WindowSize: p.config.WearableWindow})
	if err := wear.Load(state.Wearable); err != nil {
		return err
	}
	behav := baseline.NewEngine(baseline.Config{WindowSize: p.config.BehaviorWindow})
	if err := behav.Load(state.Behavior); err != nil {
		return err
	}

	p.wearable = wear
	p.behavior = behav
	p.snapshot = state.Snapshot
	return nil
}

// #endregion save-load
