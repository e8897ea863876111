package seqtune

import (
	"fmt"
	"math"
)

//////
// Parameter grid construction and expansion.
//////

// gridDimension is one validated dimension of a ParameterGrid.
type gridDimension struct {
	name       string
	candidates []float64
}

// ParameterGrid is an ordered dimension→candidate-list mapping, validated
// at construction. Expansion enumerates the cartesian product of all
// candidate lists in lexicographic order: the first dimension varies
// slowest, the last varies fastest, and within a dimension candidates keep
// their input order.
//
// In the sequential search every round builds a fresh grid where all
// dimensions except the one under tuning hold a single value, so the
// product degenerates to that dimension's candidate list. Full
// multi-dimension expansion is supported regardless.
type ParameterGrid struct {
	dims []gridDimension
}

// BuildGrid validates the given dimensions and returns the grid. Candidate
// lists and defaults are checked against each dimension's declared domain.
//
// Returns a *GridError when:
//   - the grid has no dimensions, or a dimension name repeats;
//   - a candidate list is empty;
//   - a candidate or the default violates the dimension's domain.
func BuildGrid(dims []Dimension) (*ParameterGrid, error) {
	if len(dims) == 0 {
		return nil, &GridError{Reason: "no dimensions"}
	}

	seen := make(map[string]bool, len(dims))
	grid := &ParameterGrid{dims: make([]gridDimension, 0, len(dims))}

	for _, d := range dims {
		if d.Name == "" {
			return nil, &GridError{Reason: "empty dimension name"}
		}

		if seen[d.Name] {
			return nil, &GridError{Dimension: d.Name, Reason: "duplicate dimension"}
		}
		seen[d.Name] = true

		if len(d.Candidates) == 0 {
			return nil, &GridError{Dimension: d.Name, Reason: "empty candidate list"}
		}

		for _, v := range d.Candidates {
			if err := checkDomain(d.Domain, v); err != nil {
				return nil, &GridError{Dimension: d.Name, Reason: fmt.Sprintf("candidate %v: %v", v, err)}
			}
		}

		if err := checkDomain(d.Domain, d.Default); err != nil {
			return nil, &GridError{Dimension: d.Name, Reason: fmt.Sprintf("default %v: %v", d.Default, err)}
		}

		grid.dims = append(grid.dims, gridDimension{
			name:       d.Name,
			candidates: append([]float64(nil), d.Candidates...),
		})
	}

	return grid, nil
}

// Size returns the number of ParameterSets Expand will produce.
func (g *ParameterGrid) Size() int {
	size := 1
	for _, d := range g.dims {
		size *= len(d.candidates)
	}

	return size
}

// Expand enumerates the cartesian product of the grid's candidate lists,
// merged with the fixed dimensions, as a deterministic slice of
// ParameterSets. Calling Expand again yields the same sequence.
//
// Merging rule: fixed supplies values for dimensions absent from the grid;
// a dimension present in both takes its value from the grid.
func (g *ParameterGrid) Expand(fixed ParameterSet) []ParameterSet {
	out := make([]ParameterSet, 0, g.Size())

	// Odometer over candidate indices: last dimension ticks fastest, which
	// yields lexicographic (dimension order, candidate order) output.
	idx := make([]int, len(g.dims))

	for {
		values := fixed.Values()
		for i, d := range g.dims {
			values[d.name] = d.candidates[idx[i]]
		}
		out = append(out, ParameterSet{values: values})

		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(g.dims[pos].candidates) {
				break
			}
			idx[pos] = 0
			pos--
		}

		if pos < 0 {
			return out
		}
	}
}

// checkDomain validates one value against a domain.
func checkDomain(domain DomainType, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not finite")
	}

	switch domain {
	case PositiveInt:
		if v <= 0 || v != math.Trunc(v) {
			return fmt.Errorf("not a %s", domain)
		}
	case UnitRatio:
		if v <= 0 || v > 1 {
			return fmt.Errorf("not a %s", domain)
		}
	case NonNegative:
		if v < 0 {
			return fmt.Errorf("not %s", domain)
		}
	case Finite:
		// Finiteness already checked.
	default:
		return fmt.Errorf("unknown domain %v", domain)
	}

	return nil
}
