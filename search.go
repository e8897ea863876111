package seqtune

import (
	"context"
	"fmt"
)

//////
// Sequential coordinate-wise search.
//////

// Coordinator drives the sequential search: one round per dimension, in the
// caller's priority order. Each round varies exactly one dimension while
// every previously won dimension stays at its winning value and every
// not-yet-tuned dimension stays at its declared default. The round winner
// fixes the dimension; the search never revisits it within the pass.
//
// This greedy order deliberately ignores inter-dimension interactions and
// does not guarantee a globally optimal ParameterSet: once a dimension is
// fixed, later rounds never reopen it, even if a later winner would have
// changed an earlier choice's optimality. That is the documented trade-off
// that keeps the evaluation count linear in the number of candidates
// instead of multiplicative across dimensions. SearchConfig.Passes > 1
// re-sweeps the dimension list against the latest winners for callers who
// want the classic multi-pass coordinate descent.
//
// Rounds are strictly sequential (each depends on the previous winner);
// parallelism lives inside a round, at fold granularity.
type Coordinator struct {
	cfg  SearchConfig
	eval CandidateEvaluator
}

// NewCoordinator validates the configuration and returns a ready
// coordinator.
//
// Returns a *GridError when a dimension's candidate list is empty or a
// candidate/default violates its domain, and a plain error for out-of-range
// Folds/Passes. Nothing is fitted before validation passes.
func NewCoordinator(cfg SearchConfig, eval CandidateEvaluator) (*Coordinator, error) {
	if eval == nil {
		return nil, fmt.Errorf("search: nil evaluator")
	}

	if cfg.Folds <= 1 {
		return nil, fmt.Errorf("search: fold count must be greater than 1, got %d", cfg.Folds)
	}

	if cfg.Passes == 0 {
		cfg.Passes = 1
	}

	if cfg.Passes < 1 {
		return nil, fmt.Errorf("search: pass count must be at least 1, got %d", cfg.Passes)
	}

	// Probe-build the full grid once so every candidate list and default
	// is domain-checked before the first round.
	if _, err := BuildGrid(cfg.Dimensions); err != nil {
		return nil, err
	}

	return &Coordinator{cfg: cfg, eval: eval}, nil
}

// Search runs the full sequential search over the training partition and
// finishes with a single evaluation of the winning ParameterSet on the
// held-out partition.
//
// Parameters:
// - ctx: Cancels the search; a cancelled search returns ctx's error
// - train: Training partition, used by every cross-validation round
// - holdout: Held-out partition, touched exactly once at the end
//
// Returns:
//   - *FinalReport: Winning ParameterSet, its CV score, the held-out
//     estimate, the total clamp count, and the per-round records
//   - error: *DataError for a malformed partition, ErrNoValidCandidate when
//     a whole round produced no valid candidate, or ctx's error
//
// Determinism: identical datasets, dimensions, folds, and seed produce
// identical reports, fold plans included.
func (c *Coordinator) Search(ctx context.Context, train, holdout *Dataset) (*FinalReport, error) {
	if err := validateDataset(train); err != nil {
		return nil, err
	}

	if err := validateDataset(holdout); err != nil {
		return nil, err
	}

	// One plan for the entire search: with a fixed seed, recomputing the
	// plan each round would yield the same folds, so every candidate of
	// every round is comparable.
	plan, err := KFold(train.Rows(), c.cfg.Folds, c.cfg.Seed)
	if err != nil {
		return nil, err
	}

	// current holds every dimension's effective value: the declared
	// default until the dimension's round, its winning value after.
	current := make(map[string]float64, len(c.cfg.Dimensions))
	for _, d := range c.cfg.Dimensions {
		current[d.Name] = d.Default
	}

	state := SearchState{Pending: dimensionNames(c.cfg.Dimensions)}
	totalRounds := c.cfg.Passes * len(c.cfg.Dimensions)

	report := &FinalReport{}

	c.sendProgress(RoundUpdate{
		Phase:       PhaseInitialized,
		TotalRounds: totalRounds,
		Best:        NewParameterSet(current),
	})

	round := 0

	for pass := 1; pass <= c.cfg.Passes; pass++ {
		for _, dim := range c.cfg.Dimensions {
			round++

			c.sendProgress(RoundUpdate{
				Phase:       PhaseRoundInProgress,
				Pass:        pass,
				Round:       round,
				TotalRounds: totalRounds,
				Dimension:   dim.Name,
				Best:        NewParameterSet(current),
			})

			record, err := c.runRound(ctx, train, plan, dim, current, pass, round)
			if err != nil {
				return nil, err
			}

			current[dim.Name] = record.WinnerValue
			state.Winners = append(state.Winners, RoundWinner{Dimension: dim.Name, Value: record.WinnerValue})
			state.Pending = removeName(state.Pending, dim.Name)

			report.Rounds = append(report.Rounds, record)
			report.CVScore = record.Winner().Mean
			for _, cand := range record.Candidates {
				report.Clamped += cand.Clamped
			}

			if c.cfg.Reporter != nil {
				c.cfg.Reporter.RoundComplete(record)
			}

			c.sendProgress(RoundUpdate{
				Phase:       PhaseRoundComplete,
				Pass:        pass,
				Round:       round,
				TotalRounds: totalRounds,
				Dimension:   dim.Name,
				Best:        NewParameterSet(current),
				BestScore:   record.Winner().Mean,
			})
		}
	}

	report.Best = NewParameterSet(current)
	report.State = state

	// One fit on the full training partition, one scoring of the held-out
	// rows. The estimate is reported, never used for selection.
	report.Holdout, err = c.eval.Holdout(ctx, train, holdout, report.Best)
	if err != nil {
		return nil, fmt.Errorf("holdout evaluation: %w", err)
	}
	report.Clamped += report.Holdout.Clamped

	if c.cfg.Reporter != nil {
		c.cfg.Reporter.SearchFinished(*report)
	}

	c.sendProgress(RoundUpdate{
		Phase:       PhaseFinished,
		Round:       round,
		TotalRounds: totalRounds,
		Best:        report.Best,
		BestScore:   report.CVScore,
	})

	return report, nil
}

// runRound tunes one dimension: builds the round's degenerate grid (the
// tuned dimension keeps its candidate list, every other dimension holds a
// single value), evaluates every expanded candidate on the shared fold
// plan, and selects the winner.
func (c *Coordinator) runRound(ctx context.Context, train *Dataset, plan FoldPlan, dim Dimension, current map[string]float64, pass, round int) (RoundRecord, error) {
	roundDims := make([]Dimension, 0, len(c.cfg.Dimensions))

	for _, d := range c.cfg.Dimensions {
		candidates := []float64{current[d.Name]}
		if d.Name == dim.Name {
			candidates = d.Candidates
		}

		roundDims = append(roundDims, Dimension{
			Name:       d.Name,
			Domain:     d.Domain,
			Candidates: candidates,
			Default:    d.Default,
		})
	}

	grid, err := BuildGrid(roundDims)
	if err != nil {
		return RoundRecord{}, err
	}

	record := RoundRecord{
		Pass:      pass,
		Round:     round,
		Dimension: dim.Name,
	}

	for i, params := range grid.Expand(ParameterSet{}) {
		if err := ctx.Err(); err != nil {
			return RoundRecord{}, err
		}

		result, err := c.eval.Evaluate(ctx, train, params, plan)
		if err != nil {
			return RoundRecord{}, err
		}

		result.Index = i
		record.Candidates = append(record.Candidates, result)
	}

	winner, err := selectWinner(record.Candidates)
	if err != nil {
		return RoundRecord{}, fmt.Errorf("round %d (%s): %w", round, dim.Name, err)
	}

	record.WinnerIndex = winner
	record.WinnerValue, _ = record.Candidates[winner].Params.Value(dim.Name)

	return record, nil
}

// selectWinner picks the valid candidate with the highest mean score. Ties
// break by lower standard deviation, then by earlier candidate position.
// The order is total and deterministic: iterating in index order, a later
// candidate wins only by being strictly better.
func selectWinner(candidates []CandidateResult) (int, error) {
	winner := -1

	for i, cand := range candidates {
		if !cand.Valid {
			continue
		}

		if winner < 0 {
			winner = i

			continue
		}

		best := candidates[winner]
		if cand.Mean > best.Mean || (cand.Mean == best.Mean && cand.Std < best.Std) {
			winner = i
		}
	}

	if winner < 0 {
		return 0, ErrNoValidCandidate
	}

	return winner, nil
}

// sendProgress emits a progress update without ever blocking the search.
func (c *Coordinator) sendProgress(update RoundUpdate) {
	if c.cfg.ProgressChan == nil {
		return
	}

	select {
	case c.cfg.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

// Tune is the convenience entry point: it wires a CrossValidator with the
// RMSLE metric around the given trainer and runs the full sequential search.
//
// Usage example:
//
//	cfg := DefaultConfig()
//	cfg.Dimensions = []Dimension{
//	    {Name: "trees", Domain: PositiveInt, Candidates: Candidates(100, 300, 500), Default: 100},
//	    {Name: "max_depth", Domain: PositiveInt, Candidates: Candidates(3, 5, 7), Default: 5},
//	    {Name: "subsample", Domain: UnitRatio, Candidates: Candidates(0.5, 0.75, 1.0), Default: 1.0},
//	}
//
//	train, holdout, err := SplitDataset(dataset, 0.2, cfg.Seed)
//	if err != nil {
//	    return err
//	}
//
//	report, err := Tune(ctx, cfg, trainer, train, holdout)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println("best:", report.Best, "holdout RMSLE:", report.Holdout.Value)
func Tune(ctx context.Context, cfg SearchConfig, trainer Trainer, train, holdout *Dataset) (*FinalReport, error) {
	coordinator, err := NewCoordinator(cfg, &CrossValidator{
		Trainer:     trainer,
		Metric:      RMSLE,
		Direction:   cfg.Direction,
		MaxParallel: cfg.MaxParallel,
		FoldTimeout: cfg.FoldTimeout,
	})
	if err != nil {
		return nil, err
	}

	return coordinator.Search(ctx, train, holdout)
}
