// Package decay models staleness of previously captured context as an
// exponential confidence multiplier parameterized by a half-life.
package decay

// #region imports
import (
	"math"
	"time"
)

// #endregion imports

// #region constants

// DefaultHalfLife is how long captured bio context takes to lose half its
// confidence.
const DefaultHalfLife = 12 * time.Hour

// validityFactor is log2(10): the number of half-lives after which
// confidence has fallen below 10% of its base.
const validityFactor = 3.32

// #endregion constants

// #region decay

// Factor returns the confidence multiplier 0.5^(age/halfLife). It applies
// to a reading's confidence, never its score, and has no floor so a very
// stale value stays distinguishable from an absent one.
func Factor(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, age.Seconds()/halfLife.Seconds())
}

// StaleAfter reports the instant at which confidence in a value observed at
// observedAt falls below 10% of its base. Reporting only; Factor itself
// keeps decaying past this point.
func StaleAfter(observedAt time.Time, halfLife time.Duration) time.Time {
	valid := time.Duration(validityFactor * float64(halfLife))
	return observedAt.Add(valid)
}

// #endregion decay
