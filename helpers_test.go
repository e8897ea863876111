package seqtune

import (
	"context"
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"
)

// makeDataset builds a small deterministic dataset: one feature column
// holding the row index and strictly positive targets.
func makeDataset(n int) *Dataset {
	ds := &Dataset{
		Features: make([][]float64, n),
		Target:   make([]float64, n),
	}

	for i := 0; i < n; i++ {
		ds.Features[i] = []float64{float64(i)}
		ds.Target[i] = float64(i%7) + 1
	}

	return ds
}

// constantDataset builds a dataset whose every target is the given value.
func constantDataset(n int, target float64) *Dataset {
	ds := makeDataset(n)
	for i := range ds.Target {
		ds.Target[i] = target
	}

	return ds
}

// meanModel predicts scale*mean(training target) + bias for every row.
type meanModel struct {
	value float64
}

func (m meanModel) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i := range out {
		out[i] = m.value
	}

	return out, nil
}

// meanTrainer is a deterministic stand-in for a real regression algorithm:
// it "fits" the training-target mean, scaled by the "shrink" parameter and
// shifted by the "bias" parameter when those dimensions are present.
//
// failFits > 0 makes the first failFits Fit calls fail, which simulates
// per-fold training failures.
type meanTrainer struct {
	failFits int32
	fits     atomic.Int32
}

func (tr *meanTrainer) Fit(ctx context.Context, features [][]float64, target []float64, params ParameterSet) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if tr.fits.Add(1) <= tr.failFits {
		return nil, fmt.Errorf("synthetic training failure")
	}

	shrink := 1.0
	if v, ok := params.Value("shrink"); ok {
		shrink = v
	}

	bias := 0.0
	if v, ok := params.Value("bias"); ok {
		bias = v
	}

	return meanModel{value: stat.Mean(target, nil)*shrink + bias}, nil
}

// scriptedEvaluator scores parameter sets directly from a function,
// bypassing models and metrics. It stands in for the cross-validation
// evaluator in coordinator tests.
type scriptedEvaluator struct {
	// score maps a parameter set to its canonical mean score.
	score func(params ParameterSet) float64

	// std maps a parameter set to its reported standard deviation.
	// Defaults to 0.
	std func(params ParameterSet) float64

	// invalid marks every candidate invalid when set.
	invalid bool
}

func (e *scriptedEvaluator) Evaluate(ctx context.Context, data *Dataset, params ParameterSet, plan FoldPlan) (CandidateResult, error) {
	mean := e.score(params)

	scores := make([]float64, plan.Folds())
	for i := range scores {
		scores[i] = mean
	}

	result := CandidateResult{
		Params:     params,
		FoldScores: scores,
		Mean:       mean,
		Valid:      !e.invalid,
	}

	if e.std != nil {
		result.Std = e.std(params)
	}

	return result, nil
}

func (e *scriptedEvaluator) Holdout(ctx context.Context, train, holdout *Dataset, params ParameterSet) (HoldoutResult, error) {
	score := e.score(params)

	return HoldoutResult{Value: -score, Score: score}, nil
}
