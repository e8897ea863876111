package seqtune

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.Dimensions = greedyDimensions()
	cfg.Reporter = &TextReporter{W: &buf}

	coordinator, err := NewCoordinator(cfg, &scriptedEvaluator{score: separableScore})
	require.NoError(t, err)

	_, err = coordinator.Search(context.Background(), makeDataset(10), makeDataset(4))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "round 1 [x]: 2 candidates")
	assert.Contains(t, out, "winner: x=2")
	assert.Contains(t, out, "round 2 [y]: 2 candidates")
	assert.Contains(t, out, "winner: y=10")
	assert.Contains(t, out, "final: x=2 y=10")
	assert.Contains(t, out, "clamped predictions: 0")
}

func TestTextReporterMarksInvalidCandidates(t *testing.T) {
	var buf bytes.Buffer

	reporter := &TextReporter{W: &buf}
	reporter.RoundComplete(RoundRecord{
		Round:     1,
		Dimension: "x",
		Candidates: []CandidateResult{
			{
				Params: NewParameterSet(map[string]float64{"x": 1}),
				Index:  0,
				Valid:  false,
				Failures: []*FoldError{
					{Fold: 0, Err: assert.AnError},
					{Fold: 1, Err: assert.AnError},
					{Fold: 2, Err: assert.AnError},
				},
				FoldScores: []float64{-0.5, -0.6},
			},
			{
				Params:     NewParameterSet(map[string]float64{"x": 2}),
				Index:      1,
				Valid:      true,
				FoldScores: []float64{-0.1, -0.2, -0.3, -0.2, -0.2},
				Mean:       -0.2,
			},
		},
		WinnerIndex: 1,
		WinnerValue: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "invalid (3/5 folds failed)")
	assert.Contains(t, out, "winner: x=2")
}
