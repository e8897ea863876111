package seqtune

import (
	"fmt"
	"io"
)

//////
// Result reporting.
//////

// Reporter receives the structured search output: one RoundRecord per
// completed round and the FinalReport once the held-out evaluation is done.
// Implementations are called from the search goroutine and should return
// promptly.
type Reporter interface {
	RoundComplete(record RoundRecord)
	SearchFinished(report FinalReport)
}

// TextReporter writes human-readable round and final summaries to W.
type TextReporter struct {
	W io.Writer
}

// RoundComplete implements Reporter.
func (r *TextReporter) RoundComplete(record RoundRecord) {
	fmt.Fprintf(r.W, "round %d [%s]: %d candidates\n", record.Round, record.Dimension, len(record.Candidates))

	for _, cand := range record.Candidates {
		marker := " "
		if cand.Index == record.WinnerIndex {
			marker = "*"
		}

		if !cand.Valid {
			fmt.Fprintf(r.W, "  %s %s  invalid (%d/%d folds failed)\n",
				marker, cand.Params, len(cand.Failures), len(cand.Failures)+len(cand.FoldScores))

			continue
		}

		fmt.Fprintf(r.W, "  %s %s  mean=%.6f std=%.6f folds=%d\n",
			marker, cand.Params, cand.Mean, cand.Std, len(cand.FoldScores))
	}

	fmt.Fprintf(r.W, "  winner: %s=%v\n", record.Dimension, record.WinnerValue)
}

// SearchFinished implements Reporter.
func (r *TextReporter) SearchFinished(report FinalReport) {
	fmt.Fprintf(r.W, "final: %s\n", report.Best)
	fmt.Fprintf(r.W, "  cv score: %.6f\n", report.CVScore)
	fmt.Fprintf(r.W, "  holdout:  %.6f\n", report.Holdout.Value)
	fmt.Fprintf(r.W, "  clamped predictions: %d\n", report.Clamped)
}
