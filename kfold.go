package seqtune

import (
	"fmt"
	"math/rand"
)

//////
// K-fold partitioning.
//////

// FoldPlan is an ordered sequence of k validation index-sets over [0, rows).
// The sets are pairwise disjoint, their union is the full index range, and
// their sizes differ by at most one.
type FoldPlan struct {
	// Rows is the row count the plan partitions.
	Rows int

	// Validation holds the validation indices of each fold, in fold order.
	Validation [][]int
}

// Folds returns k, the number of folds in the plan.
func (p FoldPlan) Folds() int {
	return len(p.Validation)
}

// Training returns fold i's training indices: the complement of its
// validation set, in ascending row order.
func (p FoldPlan) Training(i int) []int {
	inValidation := make([]bool, p.Rows)
	for _, row := range p.Validation[i] {
		inValidation[row] = true
	}

	train := make([]int, 0, p.Rows-len(p.Validation[i]))
	for row := 0; row < p.Rows; row++ {
		if !inValidation[row] {
			train = append(train, row)
		}
	}

	return train
}

// KFold deterministically splits the row indices [0, n) into k folds: a
// seeded pseudo-random permutation of the indices is cut into k contiguous
// blocks of size n/k or n/k+1, with the first n%k blocks taking the extra
// element. Block i is fold i's validation set.
//
// The same (n, k, seed) always yields the same plan, which is what makes a
// whole search reproducible: every candidate of every round is evaluated on
// identical folds.
//
// Requires 1 < k ≤ n.
func KFold(n, k int, seed int64) (FoldPlan, error) {
	if n <= 0 {
		return FoldPlan{}, fmt.Errorf("kfold: row count must be positive, got %d", n)
	}

	if k <= 1 || k > n {
		return FoldPlan{}, fmt.Errorf("kfold: fold count must satisfy 1 < k <= %d, got %d", n, k)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	plan := FoldPlan{
		Rows:       n,
		Validation: make([][]int, k),
	}

	base, extra := n/k, n%k
	start := 0

	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}

		block := make([]int, size)
		copy(block, perm[start:start+size])
		plan.Validation[i] = block

		start += size
	}

	return plan, nil
}

// SplitDataset splits a dataset into a training partition and a held-out
// partition using the same seeded-permutation technique as KFold. The
// held-out partition receives ceil(rows*holdoutRatio) rows, with at least
// one row left on each side.
//
// The held-out rows are touched exactly once, by the final evaluation of
// the winning ParameterSet; they never participate in any fold.
func SplitDataset(ds *Dataset, holdoutRatio float64, seed int64) (train, holdout *Dataset, err error) {
	if err := validateDataset(ds); err != nil {
		return nil, nil, err
	}

	if holdoutRatio <= 0 || holdoutRatio >= 1 {
		return nil, nil, fmt.Errorf("split: holdout ratio must be in (0,1), got %v", holdoutRatio)
	}

	n := ds.Rows()

	holdoutRows := int(float64(n)*holdoutRatio + 0.5)
	if holdoutRows < 1 {
		holdoutRows = 1
	}

	if holdoutRows >= n {
		holdoutRows = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	holdout = subsetDataset(ds, perm[:holdoutRows])
	train = subsetDataset(ds, perm[holdoutRows:])

	return train, holdout, nil
}
