package replay

// #region imports
import (
	"errors"
	"fmt"
	"time"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/behavior"
	"github.com/synheart/flux/go-engine/internal/engine"
	"github.com/synheart/flux/go-engine/internal/hsi"
	"github.com/synheart/flux/go-engine/internal/wearable"
)

// #endregion imports

// #region types

// StepResult captures the outcome of replaying one step.
type StepResult struct {
	Index     int
	Kind      string
	Documents []*hsi.Document
	Err       error
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Steps     int
	Documents int
	Errors    int
}

// #endregion types

// #region run

// Run replays every step of a fixture through a fresh processor, pinning
// the clock to each step's at_utc. Engine errors land in the step result;
// only a malformed fixture fails the run itself.
func Run(f *Fixture) ([]StepResult, Summary, error) {
	clock := time.Time{}
	cfg := f.Config.EngineConfig()
	cfg.Now = func() time.Time { return clock }
	p := engine.NewProcessor(cfg)

	results := make([]StepResult, 0, len(f.Steps))
	summary := Summary{Steps: len(f.Steps)}

	for i, step := range f.Steps {
		at, err := step.At()
		if err != nil {
			return nil, Summary{}, err
		}
		clock = at

		r := StepResult{Index: i, Kind: step.Kind}
		switch step.Kind {
		case "whoop":
			r.Documents, r.Err = p.ProcessWhoop(step.Payload, step.Timezone, step.DeviceID)
		case "garmin":
			r.Documents, r.Err = p.ProcessGarmin(step.Payload, step.Timezone, step.DeviceID)
		case "behavior":
			var doc *hsi.Document
			doc, r.Err = p.ProcessBehavior(step.Payload)
			if r.Err == nil {
				r.Documents = []*hsi.Document{doc}
			}
		case "snapshot":
			var doc *hsi.Document
			doc, r.Err = p.SnapshotNow(at, step.Payload)
			if r.Err == nil {
				r.Documents = []*hsi.Document{doc}
			}
		default:
			return nil, Summary{}, fmt.Errorf("step %d: unknown kind %q", i, step.Kind)
		}

		summary.Documents += len(r.Documents)
		if r.Err != nil {
			summary.Errors++
		}
		results = append(results, r)
	}

	return results, summary, nil
}

// #endregion run

// #region verify

// ErrorKind names an engine error for fixture expectations: "decode",
// "invalid_time_range", "no_bio_context", "schema_version", or "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, wearable.ErrDecode), errors.Is(err, behavior.ErrDecode):
		return "decode"
	case errors.Is(err, behavior.ErrInvalidTimeRange):
		return "invalid_time_range"
	case errors.Is(err, engine.ErrNoBioContext):
		return "no_bio_context"
	case errors.Is(err, baseline.ErrSchemaVersion):
		return "schema_version"
	default:
		return "other"
	}
}

// Verify compares step results against a fixture's expectations and
// returns one mismatch description per failed expectation.
func Verify(results []StepResult, expected []Expectation) []string {
	var mismatches []string
	for _, exp := range expected {
		if exp.Step < 0 || exp.Step >= len(results) {
			mismatches = append(mismatches, fmt.Sprintf("expectation references step %d of %d", exp.Step, len(results)))
			continue
		}
		r := results[exp.Step]
		if kind := ErrorKind(r.Err); kind != exp.Error {
			mismatches = append(mismatches, fmt.Sprintf("step %d: error %q, want %q", exp.Step, kind, exp.Error))
			continue
		}
		if exp.Error == "" && len(r.Documents) != exp.Documents {
			mismatches = append(mismatches, fmt.Sprintf("step %d: %d documents, want %d", exp.Step, len(r.Documents), exp.Documents))
		}
	}
	return mismatches
}

// #endregion verify
