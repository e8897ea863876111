package seqtune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameterSetEquality(t *testing.T) {
	a := NewParameterSet(map[string]float64{"x": 1, "y": 2})
	b := NewParameterSet(map[string]float64{"y": 2, "x": 1})
	c := NewParameterSet(map[string]float64{"x": 1, "y": 3})
	d := NewParameterSet(map[string]float64{"x": 1})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestParameterSetImmutable(t *testing.T) {
	source := map[string]float64{"x": 1}
	p := NewParameterSet(source)

	// Neither mutating the source map nor the Values copy reaches the set.
	source["x"] = 99
	p.Values()["x"] = 42

	v, ok := p.Value("x")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestParameterSetString(t *testing.T) {
	p := NewParameterSet(map[string]float64{"subsample": 0.5, "depth": 7})

	// Sorted name order keeps the rendering stable.
	assert.Equal(t, "depth=7 subsample=0.5", p.String())
	assert.Equal(t, []string{"depth", "subsample"}, p.Names())
	assert.Equal(t, 2, p.Len())
}

func TestCandidatesHelper(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Candidates(1, 2, 3))
	assert.Equal(t, []float64{0.5, 1}, Candidates(0.5, 1.0))
}

func TestSearchStateFixed(t *testing.T) {
	state := SearchState{
		Winners: []RoundWinner{{"x", 1}, {"y", 5}, {"x", 2}},
	}

	// The latest pass wins.
	v, ok := state.Fixed("x")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = state.Fixed("z")
	assert.False(t, ok)
}

func TestDomainTypeString(t *testing.T) {
	assert.Equal(t, "positive integer", PositiveInt.String())
	assert.Equal(t, "ratio in (0,1]", UnitRatio.String())
	assert.Equal(t, "non-negative", NonNegative.String())
	assert.Equal(t, "finite", Finite.String())
}

func TestValidateDataset(t *testing.T) {
	assert.Error(t, validateDataset(nil))
	assert.Error(t, validateDataset(&Dataset{}))

	ragged := makeDataset(3)
	ragged.Features[1] = []float64{1, 2}
	assert.Error(t, validateDataset(ragged))

	mismatched := makeDataset(3)
	mismatched.Target = mismatched.Target[:2]
	assert.Error(t, validateDataset(mismatched))

	badTarget := makeDataset(3)
	badTarget.Target[0] = -1
	assert.Error(t, validateDataset(badTarget))

	assert.NoError(t, validateDataset(makeDataset(3)))
}
