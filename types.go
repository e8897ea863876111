package seqtune

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

//////
// Const, vars, types.
//////

// ScoreDirection declares whether the configured metric improves when it
// decreases or when it increases. Internally every component works with a
// canonical "higher is better" score; the direction controls the conversion
// at the metric boundary.
type ScoreDirection int

const (
	// Minimize means lower metric values are better (loss-style metrics,
	// e.g. RMSLE). This is the default.
	Minimize ScoreDirection = iota

	// Maximize means higher metric values are better (reward-style metrics).
	Maximize
)

// DomainType declares the set of values a tuning dimension may take.
// Candidate lists and dimension defaults are checked against their domain
// once, when the grid is built, so the search loop never has to re-validate.
type DomainType int

const (
	// PositiveInt accepts integral values strictly greater than zero
	// (tree counts, depths, leaf minimums).
	PositiveInt DomainType = iota

	// UnitRatio accepts values in (0, 1] (subsample ratios and other
	// fractions that must stay within the unit interval).
	UnitRatio

	// NonNegative accepts finite values greater than or equal to zero
	// (regularization weights).
	NonNegative

	// Finite accepts any finite value.
	Finite
)

// String returns the domain's human-readable name.
func (d DomainType) String() string {
	switch d {
	case PositiveInt:
		return "positive integer"
	case UnitRatio:
		return "ratio in (0,1]"
	case NonNegative:
		return "non-negative"
	case Finite:
		return "finite"
	default:
		return fmt.Sprintf("DomainType(%d)", int(d))
	}
}

// Dimension declares one tunable hyperparameter: its name, the domain its
// values must satisfy, the ordered candidate values to try when the
// dimension's round comes up, and the default used while the dimension has
// not been tuned yet.
//
// Fields:
// - Name: Unique dimension name (e.g. "max_depth", "subsample")
// - Domain: Value domain checked at grid construction
// - Candidates: Ordered, non-empty candidate list for this dimension's round
// - Default: Value held until the dimension is tuned (must satisfy Domain)
//
// Usage:
//
//	depth := Dimension{
//	    Name:       "max_depth",
//	    Domain:     PositiveInt,
//	    Candidates: Candidates(3, 5, 7),
//	    Default:    5,
//	}
type Dimension struct {
	Name       string
	Domain     DomainType
	Candidates []float64
	Default    float64
}

// Candidates converts a list of numeric literals into the float64 candidate
// slice a Dimension carries. It exists purely for ergonomics, so integer
// candidate lists read naturally at call sites.
//
// Usage:
//
//	Candidates(50, 100, 200)     // integer candidates
//	Candidates(0.5, 0.75, 1.0)   // ratio candidates
func Candidates[T constraints.Integer | constraints.Float](values ...T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}

	return out
}

// Dataset is an immutable, fully numeric tabular dataset: one feature row
// per observation plus a target value per row. It is produced by the data
// preparation step and shared read-only by every component of the search;
// nothing in this package ever writes through it.
//
// Invariant: len(Features) == len(Target) > 0, and every feature row has
// the same width.
type Dataset struct {
	// Features holds one row of numeric-encoded feature values per
	// observation.
	Features [][]float64

	// Target holds the regression target for each row.
	Target []float64
}

// Rows returns the number of observations in the dataset.
func (d *Dataset) Rows() int {
	return len(d.Target)
}

// ParameterSet is an immutable assignment of one concrete value to every
// known dimension. Two sets are equal iff every dimension has the same
// value. Construction always copies, so a ParameterSet can be held, logged,
// and compared without defensive copying by the caller.
type ParameterSet struct {
	values map[string]float64
}

// NewParameterSet builds a ParameterSet from a dimension→value mapping.
// The input map is copied.
func NewParameterSet(values map[string]float64) ParameterSet {
	cp := make(map[string]float64, len(values))
	maps.Copy(cp, values)

	return ParameterSet{values: cp}
}

// Value returns the value assigned to the named dimension and whether the
// dimension is present.
func (p ParameterSet) Value(name string) (float64, bool) {
	v, ok := p.values[name]

	return v, ok
}

// Names returns the dimension names in sorted order.
func (p ParameterSet) Names() []string {
	names := maps.Keys(p.values)
	slices.Sort(names)

	return names
}

// Len returns the number of dimensions in the set.
func (p ParameterSet) Len() int {
	return len(p.values)
}

// Values returns a copy of the underlying dimension→value mapping.
func (p ParameterSet) Values() map[string]float64 {
	cp := make(map[string]float64, len(p.values))
	maps.Copy(cp, p.values)

	return cp
}

// Equal reports whether two ParameterSets assign the same value to the same
// dimensions. Also picked up by go-cmp in tests.
func (p ParameterSet) Equal(o ParameterSet) bool {
	return maps.Equal(p.values, o.values)
}

// String renders the set as "name=value" pairs in sorted name order.
func (p ParameterSet) String() string {
	parts := make([]string, 0, len(p.values))
	for _, name := range p.Names() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, p.values[name]))
	}

	return strings.Join(parts, " ")
}

// with returns a copy of the set with one dimension rebound.
func (p ParameterSet) with(name string, value float64) ParameterSet {
	cp := p.Values()
	cp[name] = value

	return ParameterSet{values: cp}
}

// Model is an opaque handle to one fitted model, produced by a Trainer and
// consumed to predict a validation partition. Implementations must not
// mutate the feature rows they are given.
type Model interface {
	// Predict returns one prediction per feature row, in row order.
	Predict(features [][]float64) ([]float64, error)
}

// Trainer is the opaque fit capability the engine tunes. The engine is
// agnostic to the algorithm behind it: anything that can fit a regression
// model from a feature matrix, a target vector, and a ParameterSet works.
//
// Contract:
//   - Fit must honor ctx cancellation; a fit abandoned due to ctx is
//     treated as a failed fold, never as a fatal error.
//   - Fit and Predict may run concurrently for different folds and must not
//     mutate the shared dataset.
type Trainer interface {
	Fit(ctx context.Context, features [][]float64, target []float64, params ParameterSet) (Model, error)
}

// MetricResult carries one metric evaluation: the metric value in its own
// units plus the number of predictions that had to be clamped into the
// metric's domain (observability for the clamp policy, see RMSLE).
type MetricResult struct {
	// Value is the metric value in metric units (for RMSLE: the loss,
	// lower is better).
	Value float64

	// Clamped counts predictions adjusted into the metric's valid domain.
	Clamped int
}

// MetricFunc computes a scalar evaluation metric from equal-length actual
// and predicted target vectors. Implementations return an error only for
// unrecoverable input problems (length mismatch, actual-value domain
// violations); prediction-domain problems are clamped and counted instead.
type MetricFunc func(actual, predicted []float64) (MetricResult, error)

// CandidateResult is the outcome of evaluating one ParameterSet across a
// FoldPlan.
//
// Scores are canonical: higher is always better, regardless of the
// configured ScoreDirection. Mean and Std are computed over the successful
// folds only.
type CandidateResult struct {
	// Params is the evaluated parameter set.
	Params ParameterSet

	// Index is the candidate's position in the round's expansion order.
	// It is the final tie-breaker in winner selection.
	Index int

	// FoldScores holds the canonical score of each successful fold.
	FoldScores []float64

	// Mean is the mean of FoldScores.
	Mean float64

	// Std is the sample standard deviation of FoldScores (0 when fewer
	// than two folds succeeded).
	Std float64

	// Valid reports whether a strict majority of folds succeeded. Invalid
	// candidates never win a round but stay in the round record.
	Valid bool

	// Failures lists the folds that failed, with their reasons.
	Failures []*FoldError

	// Clamped is the total clamped-prediction count across all folds.
	Clamped int
}

// HoldoutResult is the single final evaluation of the winning ParameterSet
// on the held-out partition. It is reported, never used for selection.
type HoldoutResult struct {
	// Value is the metric value in metric units.
	Value float64

	// Score is the canonical (higher is better) form of Value.
	Score float64

	// Clamped counts clamped predictions during the held-out evaluation.
	Clamped int
}

// RoundWinner is one fixed dimension: the round's dimension name and the
// candidate value that won it.
type RoundWinner struct {
	Dimension string
	Value     float64
}

// SearchState is the append-only history of the search: the ordered round
// winners plus the dimensions still waiting for their round. The
// coordinator only ever appends to Winners and shrinks Pending; nothing is
// rewritten.
type SearchState struct {
	// Winners holds one entry per completed round, in round order.
	Winners []RoundWinner

	// Pending holds the not-yet-tuned dimension names, in tuning order.
	Pending []string
}

// Fixed returns the most recently fixed value for a dimension, if any round
// has fixed it. With multiple passes the latest pass wins.
func (s SearchState) Fixed(dimension string) (float64, bool) {
	for i := len(s.Winners) - 1; i >= 0; i-- {
		if s.Winners[i].Dimension == dimension {
			return s.Winners[i].Value, true
		}
	}

	return 0, false
}

// RoundRecord is the full per-round report entry: every candidate tried for
// the round's dimension, with the winner identified by index.
type RoundRecord struct {
	// Pass is the 1-based coordinate-descent pass this round belongs to.
	Pass int

	// Round is the 1-based round number within the whole search.
	Round int

	// Dimension is the dimension tuned this round.
	Dimension string

	// Candidates holds one result per expanded candidate, in expansion
	// order.
	Candidates []CandidateResult

	// WinnerIndex is the index into Candidates of the round winner.
	WinnerIndex int

	// WinnerValue is the winning value for Dimension.
	WinnerValue float64
}

// Winner returns the winning candidate's result.
func (r RoundRecord) Winner() CandidateResult {
	return r.Candidates[r.WinnerIndex]
}

// FinalReport is the terminal output of a search.
type FinalReport struct {
	// Best is the final ParameterSet: every dimension at its winning
	// value.
	Best ParameterSet

	// CVScore is the winning candidate's mean cross-validation score from
	// the last round (canonical, higher is better).
	CVScore float64

	// Holdout is the single held-out evaluation of Best.
	Holdout HoldoutResult

	// Clamped is the total clamped-prediction count across every fold of
	// every candidate of every round, plus the held-out evaluation.
	Clamped int

	// Rounds holds the per-round records, in round order.
	Rounds []RoundRecord

	// State is the terminal SearchState (Pending is empty).
	State SearchState
}

// RoundUpdate is the progress event emitted over SearchConfig.ProgressChan
// as the search moves through its phases. Sends never block: if the channel
// is full the update is dropped.
type RoundUpdate struct {
	// Phase is one of PhaseInitialized, PhaseRoundInProgress,
	// PhaseRoundComplete, PhaseFinished.
	Phase string

	// Pass is the 1-based coordinate-descent pass (0 for PhaseInitialized
	// and PhaseFinished).
	Pass int

	// Round is the 1-based round number within the whole search.
	Round int

	// TotalRounds is the total number of rounds the search will run.
	TotalRounds int

	// Dimension is the dimension under tuning (empty outside rounds).
	Dimension string

	// Best is the best ParameterSet assembled so far.
	Best ParameterSet

	// BestScore is the mean CV score of the latest round winner
	// (canonical, higher is better).
	BestScore float64
}

// Search phases, in order of occurrence.
const (
	PhaseInitialized     = "Initialized"
	PhaseRoundInProgress = "RoundInProgress"
	PhaseRoundComplete   = "RoundComplete"
	PhaseFinished        = "Finished"
)

// SearchConfig holds every knob of the sequential search.
//
// Fields explanation:
// - Dimensions: Tuning dimensions in priority order (one round each)
// - Folds: k for k-fold cross-validation (1 < k ≤ training rows)
// - Seed: Seed for the fold permutation; same seed ⇒ same folds
// - Direction: Whether the metric is minimized or maximized
// - Passes: Coordinate-descent passes over the dimension list (default 1)
// - MaxParallel: Bound on concurrently evaluated folds
// - FoldTimeout: Per-fold fit/predict deadline (0 = none)
// - ProgressChan: Optional progress events; nil disables them
// - Reporter: Optional round/final summaries; nil disables them
//
// Usage example:
//
//	cfg := DefaultConfig()
//	cfg.Seed = 7
//	cfg.Dimensions = []Dimension{
//	    {Name: "trees", Domain: PositiveInt, Candidates: Candidates(100, 300), Default: 100},
//	    {Name: "subsample", Domain: UnitRatio, Candidates: Candidates(0.5, 1.0), Default: 1.0},
//	}
type SearchConfig struct {
	// Dimensions lists the tunable dimensions in priority order. Each
	// dimension gets exactly one round per pass; earlier dimensions are
	// fixed first and never revisited within a pass.
	Dimensions []Dimension

	// Folds is the number of cross-validation folds per round.
	Folds int

	// Seed drives the fold permutation. Every round of a search uses the
	// same seed, so all candidates in all rounds see identical folds.
	Seed int64

	// Direction declares whether the metric improves downward or upward.
	Direction ScoreDirection

	// Passes is the number of full sweeps over the dimension list. The
	// default of 1 is the classic fix-the-winner search; higher values
	// re-tune each dimension against the latest winners of the others.
	Passes int

	// MaxParallel bounds the number of folds fitted concurrently.
	// Defaults to runtime.NumCPU().
	MaxParallel int

	// FoldTimeout is the deadline for one fold's fit+predict. A fold that
	// exceeds it is recorded as failed; the candidate continues with its
	// remaining folds. Zero disables the deadline.
	FoldTimeout time.Duration

	// ProgressChan receives RoundUpdate events if non-nil. Sends are
	// non-blocking; slow consumers lose updates, never stall the search.
	ProgressChan chan<- RoundUpdate

	// Reporter receives round and final summaries if non-nil.
	Reporter Reporter
}

// DefaultConfig returns a configuration with sensible defaults: 5 folds,
// seed 1, a minimized metric, a single pass, and one concurrent fold per
// CPU. Dimensions must be filled in by the caller.
func DefaultConfig() SearchConfig {
	return SearchConfig{
		Folds:       5,
		Seed:        1,
		Direction:   Minimize,
		Passes:      1,
		MaxParallel: runtime.NumCPU(),
	}
}
