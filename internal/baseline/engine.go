// Package baseline maintains rolling per-metric statistics keyed by stream
// identity and converts absolute feature values into baseline-relative
// scores with fill-ratio confidence.
package baseline

// #region imports
import (
	"math"
)

// #endregion imports

// #region window

type window struct {
	Kind   Kind      `json:"kind"`
	Values []float64 `json:"values"`
}

func (w *window) push(value float64, capacity int) {
	w.Values = append(w.Values, value)
	if len(w.Values) > capacity {
		w.Values = w.Values[1:]
	}
}

func (w *window) stats() Stats {
	n := len(w.Values)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range w.Values {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range w.Values {
		d := v - mean
		sq += d * d
	}
	return Stats{Mean: mean, Stddev: math.Sqrt(sq / float64(n)), Count: n}
}

// #endregion window

// #region engine

// Engine holds rolling windows for every (stream, metric) pair it has seen.
// Mean and stddev are recomputed from the live window on every call rather
// than drifted incrementally.
//
// An Engine is not internally synchronized; the host serializes access.
type Engine struct {
	config  Config
	streams map[string]map[string]*window
}

// NewEngine creates an empty engine with the given window capacity.
func NewEngine(config Config) *Engine {
	if config.WindowSize <= 0 {
		config.WindowSize = DefaultWearableConfig().WindowSize
	}
	return &Engine{
		config:  config,
		streams: map[string]map[string]*window{},
	}
}

// WindowSize reports the engine's per-metric capacity.
func (e *Engine) WindowSize() int { return e.config.WindowSize }

// UpdateAndScore appends value to the metric's rolling window, evicting the
// oldest observation at capacity, then scores the value against the updated
// window. Confidence is the window fill ratio, so a near-empty baseline
// yields low-confidence output rather than an error.
func (e *Engine) UpdateAndScore(streamID, metric string, kind Kind, value float64) (score, confidence float64) {
	w := e.ensure(streamID, metric, kind)
	w.push(value, e.config.WindowSize)
	return e.scoreAgainst(w, kind, value)
}

// ScoreWithoutUpdate scores value against the current window without
// appending it. An empty window scores 0.5 with zero confidence.
func (e *Engine) ScoreWithoutUpdate(streamID, metric string, kind Kind, value float64) (score, confidence float64) {
	w := e.lookup(streamID, metric)
	if w == nil {
		return 0.5, 0
	}
	return e.scoreAgainst(w, kind, value)
}

// Stats reports mean, stddev and observation count for one (stream, metric)
// pair. Count is zero for unseen pairs.
func (e *Engine) Stats(streamID, metric string) Stats {
	w := e.lookup(streamID, metric)
	if w == nil {
		return Stats{}
	}
	return w.stats()
}

// Observations reports how many values the metric's window currently holds.
func (e *Engine) Observations(streamID, metric string) int {
	w := e.lookup(streamID, metric)
	if w == nil {
		return 0
	}
	return len(w.Values)
}

func (e *Engine) scoreAgainst(w *window, kind Kind, value float64) (float64, float64) {
	st := w.stats()
	confidence := math.Min(1, float64(st.Count)/float64(e.config.WindowSize))
	if st.Count == 0 {
		return 0.5, 0
	}

	var z float64
	if st.Stddev > 0 {
		z = (value - st.Mean) / st.Stddev
	}
	if kind == LowerIsBetter {
		z = -z
	}
	return logistic(z), confidence
}

func (e *Engine) ensure(streamID, metric string, kind Kind) *window {
	metrics, ok := e.streams[streamID]
	if !ok {
		metrics = map[string]*window{}
		e.streams[streamID] = metrics
	}
	w, ok := metrics[metric]
	if !ok {
		w = &window{Kind: kind}
		metrics[metric] = w
	}
	return w
}

func (e *Engine) lookup(streamID, metric string) *window {
	metrics, ok := e.streams[streamID]
	if !ok {
		return nil
	}
	return metrics[metric]
}

// #endregion engine

// #region math

func logistic(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// #endregion math
