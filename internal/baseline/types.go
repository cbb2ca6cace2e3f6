package baseline

// #region kinds

// Kind declares how a metric's deviation from its own baseline maps onto a
// relative score.
type Kind string

const (
	// Bidirectional metrics score 0.5 at baseline; deviation in either
	// direction moves the score symmetrically (e.g. HRV delta).
	Bidirectional Kind = "bidirectional"
	// HigherIsBetter metrics score above 0.5 when the value exceeds the
	// baseline mean (e.g. recovery).
	HigherIsBetter Kind = "higher_is_better"
	// LowerIsBetter metrics score above 0.5 when the value sits under the
	// baseline mean (e.g. resting heart rate).
	LowerIsBetter Kind = "lower_is_better"
)

// #endregion kinds

// #region config

// Config sizes a baseline engine.
type Config struct {
	// WindowSize is the maximum observations retained per (stream, metric).
	WindowSize int
}

// DefaultWearableConfig keeps one week of daily observations.
func DefaultWearableConfig() Config {
	return Config{WindowSize: 7}
}

// DefaultBehaviorConfig keeps the last twenty sessions.
func DefaultBehaviorConfig() Config {
	return Config{WindowSize: 20}
}

// #endregion config

// #region stats

// Stats summarizes the live window of one (stream, metric) pair.
type Stats struct {
	Mean   float64
	Stddev float64
	Count  int
}

// #endregion stats
