package seqtune

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

//////
// Cross-validation evaluation.
//////

// CandidateEvaluator scores one ParameterSet. The production implementation
// is CrossValidator; tests substitute their own to score parameter sets
// directly.
type CandidateEvaluator interface {
	// Evaluate fits and scores params across every fold of the plan. Fold
	// failures are isolated inside the CandidateResult; the returned error
	// is non-nil only for unrecoverable conditions.
	Evaluate(ctx context.Context, data *Dataset, params ParameterSet, plan FoldPlan) (CandidateResult, error)

	// Holdout fits params once on the full training partition and scores
	// the held-out partition. Called exactly once, after the last round.
	Holdout(ctx context.Context, train, holdout *Dataset, params ParameterSet) (HoldoutResult, error)
}

// CrossValidator evaluates a ParameterSet by k-fold cross-validation: for
// each fold it fits the Trainer on the fold's training partition, predicts
// the fold's validation partition, and scores the predictions with Metric.
//
// Folds are independent and run concurrently on a bounded pool. A fold
// whose fit, predict, or scoring fails (including cancellation or a
// FoldTimeout expiry) is recorded as a FoldError and excluded from
// aggregation; the candidate's mean and standard deviation are computed
// over the successful folds only. A candidate with no strict majority of
// successful folds is marked invalid.
//
// The model handle of each fold lives only until its score is recorded; at
// most one handle exists per concurrently running fold.
type CrossValidator struct {
	// Trainer is the opaque fit/predict capability under tuning.
	Trainer Trainer

	// Metric scores one fold's predictions. Defaults to RMSLE.
	Metric MetricFunc

	// Direction converts metric values to canonical scores. Defaults to
	// Minimize.
	Direction ScoreDirection

	// MaxParallel bounds concurrently evaluated folds. Defaults to
	// runtime.NumCPU().
	MaxParallel int

	// FoldTimeout is the per-fold fit+predict deadline. Zero disables it.
	FoldTimeout time.Duration
}

// foldOutcome is one fold's slot, written by exactly one goroutine.
type foldOutcome struct {
	score   float64
	clamped int
	err     error
}

// Evaluate implements CandidateEvaluator.
func (cv *CrossValidator) Evaluate(ctx context.Context, data *Dataset, params ParameterSet, plan FoldPlan) (CandidateResult, error) {
	k := plan.Folds()
	outcomes := make([]foldOutcome, k)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cv.parallelism())

	for i := 0; i < k; i++ {
		i := i
		g.Go(func() error {
			// Fold failures are recorded, never returned: one bad fold
			// must not cancel its siblings.
			score, clamped, err := cv.evaluateFold(gctx, data, params, plan, i)
			outcomes[i] = foldOutcome{score: score, clamped: clamped, err: err}

			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	result := CandidateResult{Params: params}

	for i, out := range outcomes {
		if out.err != nil {
			result.Failures = append(result.Failures, &FoldError{Fold: i, Err: out.err})

			continue
		}

		result.FoldScores = append(result.FoldScores, out.score)
		result.Clamped += out.clamped
	}

	result.Valid = 2*len(result.FoldScores) > k

	switch len(result.FoldScores) {
	case 0:
	case 1:
		result.Mean = result.FoldScores[0]
	default:
		result.Mean = stat.Mean(result.FoldScores, nil)
		result.Std = stat.StdDev(result.FoldScores, nil)
	}

	return result, nil
}

// Holdout implements CandidateEvaluator: one fit on the full training
// partition, one prediction of the held-out partition, one metric call.
func (cv *CrossValidator) Holdout(ctx context.Context, train, holdout *Dataset, params ParameterSet) (HoldoutResult, error) {
	model, err := cv.Trainer.Fit(ctx, train.Features, train.Target, params)
	if err != nil {
		return HoldoutResult{}, err
	}

	predictions, err := model.Predict(holdout.Features)
	if err != nil {
		return HoldoutResult{}, err
	}

	res, err := cv.metric()(holdout.Target, predictions)
	if err != nil {
		return HoldoutResult{}, err
	}

	return HoldoutResult{
		Value:   res.Value,
		Score:   canonicalScore(cv.Direction, res.Value),
		Clamped: res.Clamped,
	}, nil
}

// evaluateFold runs one fold end to end: fit on the training complement,
// predict the validation block, score the predictions.
func (cv *CrossValidator) evaluateFold(ctx context.Context, data *Dataset, params ParameterSet, plan FoldPlan, fold int) (score float64, clamped int, err error) {
	if cv.FoldTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cv.FoldTimeout)

		defer cancel()
	}

	// A fold that never starts because the round was cancelled fails like
	// any other fold.
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	trainIdx := plan.Training(fold)
	validationIdx := plan.Validation[fold]

	model, err := cv.Trainer.Fit(ctx, subsetRows(data.Features, trainIdx), subsetVector(data.Target, trainIdx), params)
	if err != nil {
		return 0, 0, err
	}

	predictions, err := model.Predict(subsetRows(data.Features, validationIdx))
	if err != nil {
		return 0, 0, err
	}

	res, err := cv.metric()(subsetVector(data.Target, validationIdx), predictions)
	if err != nil {
		return 0, 0, err
	}

	return canonicalScore(cv.Direction, res.Value), res.Clamped, nil
}

func (cv *CrossValidator) metric() MetricFunc {
	if cv.Metric != nil {
		return cv.Metric
	}

	return RMSLE
}

func (cv *CrossValidator) parallelism() int {
	if cv.MaxParallel > 0 {
		return cv.MaxParallel
	}

	return runtime.NumCPU()
}
