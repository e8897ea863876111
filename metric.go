package seqtune

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

//////
// Evaluation metrics.
//
// A metric turns a (actual, predicted) vector pair into one scalar. RMSLE
// is the built-in; any MetricFunc with the same contract plugs in through
// CrossValidator.Metric.
//////

// rmsleEpsilon is the smallest admissible value of predicted+1. Predictions
// at or below -1 are clamped so that log1p stays finite.
const rmsleEpsilon = 1e-15

// RMSLE computes the root-mean-squared logarithmic error:
//
//	sqrt(mean((log(predicted+1) - log(actual+1))^2))
//
// Lower is better; use it with Direction: Minimize.
//
// Domain policy:
//   - Every actual value must satisfy actual+1 > 0. A violation is a
//     *DataError: the dataset's target broke its contract and the run must
//     not continue.
//   - A predicted value with predicted+1 <= 0 is clamped to -1+ε rather
//     than propagated as ±Inf/NaN. A handful of non-positive predictions
//     should not silently disqualify an otherwise useful candidate; the
//     clamp count in the result makes the adjustment observable.
//
// Returns:
// - MetricResult: The loss and the number of clamped predictions
// - error: Length mismatch, empty input, or an actual-value domain violation
func RMSLE(actual, predicted []float64) (MetricResult, error) {
	if len(actual) != len(predicted) {
		return MetricResult{}, fmt.Errorf("rmsle: length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}

	if len(actual) == 0 {
		return MetricResult{}, fmt.Errorf("rmsle: empty input")
	}

	clamped := 0
	sq := make([]float64, len(actual))

	for i, a := range actual {
		if a+1 <= 0 {
			return MetricResult{}, &DataError{Reason: fmt.Sprintf("target[%d] = %v violates target+1 > 0", i, a)}
		}

		p := predicted[i]
		if p+1 <= 0 {
			p = -1 + rmsleEpsilon
			clamped++
		}

		diff := math.Log1p(p) - math.Log1p(a)
		sq[i] = diff * diff
	}

	return MetricResult{
		Value:   math.Sqrt(stat.Mean(sq, nil)),
		Clamped: clamped,
	}, nil
}

// canonicalScore converts a metric value to the canonical "higher is
// better" score every selection rule works with.
func canonicalScore(direction ScoreDirection, value float64) float64 {
	if direction == Minimize {
		return -value
	}

	return value
}
