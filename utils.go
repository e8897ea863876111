package seqtune

import (
	"fmt"
	"math"
)

//////
// Helper functions.
//////

// validateDataset checks the dataset contract once, before any fitting:
// non-empty, one feature row per target, rows of equal width, finite
// values, and every target inside the logarithmic metric's domain
// (target+1 > 0).
//
// Returns a *DataError on the first violation.
func validateDataset(ds *Dataset) error {
	if ds == nil {
		return &DataError{Reason: "nil dataset"}
	}

	if ds.Rows() == 0 {
		return &DataError{Reason: "no rows"}
	}

	if len(ds.Features) != len(ds.Target) {
		return &DataError{Reason: fmt.Sprintf("%d feature rows vs %d targets", len(ds.Features), len(ds.Target))}
	}

	width := len(ds.Features[0])

	for i, row := range ds.Features {
		if len(row) != width {
			return &DataError{Reason: fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), width)}
		}

		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &DataError{Reason: fmt.Sprintf("feature[%d][%d] is not finite", i, j)}
			}
		}
	}

	for i, t := range ds.Target {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &DataError{Reason: fmt.Sprintf("target[%d] is not finite", i)}
		}

		if t+1 <= 0 {
			return &DataError{Reason: fmt.Sprintf("target[%d] = %v violates target+1 > 0", i, t)}
		}
	}

	return nil
}

// subsetRows returns the feature rows at the given indices. The outer slice
// is fresh; the rows themselves stay shared with the dataset, which is safe
// because nothing in the engine writes through them.
func subsetRows(features [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = features[idx]
	}

	return out
}

// subsetVector returns the vector values at the given indices.
func subsetVector(vector []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = vector[idx]
	}

	return out
}

// subsetDataset builds a dataset view holding the rows at the given
// indices.
func subsetDataset(ds *Dataset, indices []int) *Dataset {
	return &Dataset{
		Features: subsetRows(ds.Features, indices),
		Target:   subsetVector(ds.Target, indices),
	}
}

// dimensionNames returns the dimension names in declaration order.
func dimensionNames(dims []Dimension) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}

	return names
}

// removeName returns names without the first occurrence of name.
func removeName(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}

	return out
}
