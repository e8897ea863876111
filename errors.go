package seqtune

import (
	"errors"
	"fmt"
)

//////
// Error taxonomy.
//
// Only DataError and GridError abort a run; everything else degrades
// gracefully and is visible in the structured report instead.
//////

// ErrNoValidCandidate is returned when every candidate of a round was
// invalid (a majority of folds failed for each of them), leaving nothing to
// select a winner from.
var ErrNoValidCandidate = errors.New("no valid candidate in round")

// DataError reports a malformed dataset or a target-domain violation. It is
// fatal: the dataset is validated once upfront and nothing is fitted when
// validation fails.
type DataError struct {
	// Reason describes the violation.
	Reason string
}

// Error implements error.
func (e *DataError) Error() string {
	return "invalid dataset: " + e.Reason
}

// GridError reports an invalid parameter grid: an empty candidate list, a
// duplicate dimension name, or a candidate/default value outside its
// declared domain. It is fatal and raised at grid-construction time, before
// any evaluation.
type GridError struct {
	// Dimension names the offending dimension ("" for grid-level
	// problems).
	Dimension string

	// Reason describes the violation.
	Reason string
}

// Error implements error.
func (e *GridError) Error() string {
	if e.Dimension == "" {
		return "invalid grid: " + e.Reason
	}

	return fmt.Sprintf("invalid grid: dimension %q: %s", e.Dimension, e.Reason)
}

// FoldError reports that a single fold's fit, predict, or scoring failed or
// was cancelled. It is recoverable: the fold is excluded from aggregation
// and the candidate proceeds with its remaining folds.
type FoldError struct {
	// Fold is the index of the failed fold.
	Fold int

	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *FoldError) Error() string {
	return fmt.Sprintf("fold %d: %v", e.Fold, e.Err)
}

// Unwrap exposes the underlying failure to errors.Is/As.
func (e *FoldError) Unwrap() error {
	return e.Err
}
