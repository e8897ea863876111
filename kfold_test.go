package seqtune

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldSizes(t *testing.T) {
	plan, err := KFold(11, 5, 1)
	require.NoError(t, err)

	sizes := make([]int, plan.Folds())
	for i, fold := range plan.Validation {
		sizes[i] = len(fold)
	}

	// 11 rows over 5 folds: the first 11%5=1 fold takes the extra row.
	assert.Equal(t, []int{3, 2, 2, 2, 2}, sizes)
}

func TestKFoldDisjointAndExhaustive(t *testing.T) {
	cases := []struct{ n, k int }{
		{2, 2},
		{10, 2},
		{10, 3},
		{11, 5},
		{100, 7},
		{100, 100},
	}

	for _, tc := range cases {
		plan, err := KFold(tc.n, tc.k, 42)
		require.NoError(t, err)
		require.Equal(t, tc.k, plan.Folds())

		seen := make(map[int]int)
		minSize, maxSize := tc.n, 0

		for _, fold := range plan.Validation {
			if len(fold) < minSize {
				minSize = len(fold)
			}
			if len(fold) > maxSize {
				maxSize = len(fold)
			}

			for _, row := range fold {
				seen[row]++
			}
		}

		// Union is exactly [0, n) with every row in exactly one fold.
		assert.Len(t, seen, tc.n, "n=%d k=%d", tc.n, tc.k)
		for row, count := range seen {
			assert.GreaterOrEqual(t, row, 0)
			assert.Less(t, row, tc.n)
			assert.Equal(t, 1, count, "row %d appears %d times", row, count)
		}

		// Sizes differ by at most one.
		assert.LessOrEqual(t, maxSize-minSize, 1, "n=%d k=%d", tc.n, tc.k)
	}
}

func TestKFoldDeterministic(t *testing.T) {
	a, err := KFold(50, 5, 7)
	require.NoError(t, err)

	b, err := KFold(50, 5, 7)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a, b))

	c, err := KFold(50, 5, 8)
	require.NoError(t, err)

	assert.NotEmpty(t, cmp.Diff(a, c), "different seeds should permute differently")
}

func TestKFoldTrainingComplement(t *testing.T) {
	plan, err := KFold(11, 5, 3)
	require.NoError(t, err)

	for i := 0; i < plan.Folds(); i++ {
		train := plan.Training(i)
		assert.Len(t, train, 11-len(plan.Validation[i]))

		inValidation := make(map[int]bool)
		for _, row := range plan.Validation[i] {
			inValidation[row] = true
		}

		for _, row := range train {
			assert.False(t, inValidation[row], "fold %d: row %d in both partitions", i, row)
		}
	}
}

func TestKFoldRejectsBadArguments(t *testing.T) {
	_, err := KFold(0, 2, 1)
	assert.Error(t, err)

	_, err = KFold(10, 1, 1)
	assert.Error(t, err)

	_, err = KFold(10, 0, 1)
	assert.Error(t, err)

	_, err = KFold(10, 11, 1)
	assert.Error(t, err)
}

func TestSplitDataset(t *testing.T) {
	ds := makeDataset(10)

	train, holdout, err := SplitDataset(ds, 0.2, 1)
	require.NoError(t, err)

	assert.Equal(t, 8, train.Rows())
	assert.Equal(t, 2, holdout.Rows())

	// Every original row lands in exactly one partition; row identity is
	// recoverable from the single feature column.
	seen := make(map[float64]int)
	for _, row := range train.Features {
		seen[row[0]]++
	}
	for _, row := range holdout.Features {
		seen[row[0]]++
	}

	assert.Len(t, seen, 10)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestSplitDatasetDeterministic(t *testing.T) {
	ds := makeDataset(20)

	train1, holdout1, err := SplitDataset(ds, 0.25, 9)
	require.NoError(t, err)

	train2, holdout2, err := SplitDataset(ds, 0.25, 9)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(train1, train2))
	assert.Empty(t, cmp.Diff(holdout1, holdout2))
}

func TestSplitDatasetRejectsBadRatio(t *testing.T) {
	ds := makeDataset(10)

	_, _, err := SplitDataset(ds, 0, 1)
	assert.Error(t, err)

	_, _, err = SplitDataset(ds, 1, 1)
	assert.Error(t, err)
}
