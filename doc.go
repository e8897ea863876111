// Package seqtune provides hyperparameter tuning for supervised regression
// models by combining k-fold cross-validation with a greedy, coordinate-wise
// grid search: one dimension is tuned per round, its winner is fixed, and
// the search moves to the next dimension. This keeps the evaluation budget
// linear in the number of candidates instead of exploding across the full
// cartesian product of all dimensions.
//
// # Features
//
// The package includes the following key features:
//
//   - Coordinate-wise Search: Tunes one dimension per round in a
//     caller-supplied priority order, holding earlier winners fixed
//   - K-fold Cross-validation: Deterministic, seeded fold plans with exact
//     disjointness and balance guarantees; every candidate of every round is
//     scored on identical folds
//   - RMSLE Metric: Root-mean-squared logarithmic error with an explicit,
//     observable clamp policy for out-of-domain predictions
//   - Failure Isolation: A failed or timed-out fold never sinks its
//     candidate; a candidate without a majority of successful folds never
//     sinks its round
//   - Bounded Parallelism: Folds within a round run concurrently on a
//     bounded pool; rounds stay strictly sequential
//   - Held-out Estimate: The winning ParameterSet is evaluated exactly once
//     on a partition no fold ever touched, for reporting only
//   - Progress Monitoring: Real-time updates on search progress via channels
//   - Pluggable Training: Any regression algorithm behind the Trainer
//     fit/predict capability can be tuned
//
// # Usage
//
// Declare the tuning dimensions in priority order, split the dataset, and
// run the search:
//
//	cfg := seqtune.DefaultConfig()
//	cfg.Dimensions = []seqtune.Dimension{
//	    {Name: "trees", Domain: seqtune.PositiveInt, Candidates: seqtune.Candidates(100, 300, 500), Default: 100},
//	    {Name: "max_depth", Domain: seqtune.PositiveInt, Candidates: seqtune.Candidates(3, 5, 7), Default: 5},
//	    {Name: "subsample", Domain: seqtune.UnitRatio, Candidates: seqtune.Candidates(0.5, 0.75, 1.0), Default: 1.0},
//	}
//
//	train, holdout, err := seqtune.SplitDataset(dataset, 0.2, cfg.Seed)
//	if err != nil {
//	    return err
//	}
//
//	report, err := seqtune.Tune(ctx, cfg, trainer, train, holdout)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println("best parameters:", report.Best)
//	fmt.Println("holdout RMSLE:", report.Holdout.Value)
//
// # Search order and its limits
//
// The search is greedy by design: a dimension, once fixed, is never
// revisited, and interactions between dimensions are ignored. When the
// objective is (approximately) separable across dimensions the greedy
// search finds the same optimum the full grid would, at a fraction of the
// cost; when it is not, the result is a good (not provably optimal)
// parameter set. Callers who want the classic multi-pass coordinate descent
// can set SearchConfig.Passes above 1 to re-sweep the dimensions against
// the latest winners.
//
// # Determinism
//
// Given identical data, dimensions, fold count, and seed, two searches
// produce identical fold plans, candidate results, and final reports. Fold
// evaluations run concurrently, but their aggregation is order-independent
// and every selection rule is a total, deterministic order (mean, then
// standard deviation, then candidate position).
//
// # Error handling
//
// Only two conditions abort a run, both before any fitting: a malformed
// dataset (*DataError) and an invalid grid (*GridError). A failing fold is
// isolated to that fold; a candidate with too many failed folds is marked
// invalid and skipped at selection; predictions outside the metric's domain
// are clamped and counted. All degraded conditions are visible in the
// structured report.
package seqtune
