package ctxengine

import "github.com/undergrid/recall/internal/provider"

// Estimator estimates the token cost of a turn sequence.
type Estimator interface {
	Estimate(turns []provider.Message) int
}

// CharEstimator estimates tokens from total content length using a
// characters-per-token ratio. A ratio of ~4 works well for English.
// Its only contract is determinism and monotonicity under append,
// which is what makes compaction savings reports meaningful.
type CharEstimator struct {
	CharsPerToken int
}

// NewCharEstimator creates a CharEstimator. If charsPerToken <= 0 it
// defaults to 4.
func NewCharEstimator(charsPerToken int) *CharEstimator {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return &CharEstimator{CharsPerToken: charsPerToken}
}

// Estimate returns the summed content length divided by the ratio,
// truncated toward zero. A turn with empty content contributes 0.
func (e *CharEstimator) Estimate(turns []provider.Message) int {
	total := 0
	for i := range turns {
		total += len(turns[i].Content)
	}
	return total / e.CharsPerToken
}

// Interface guard.
var _ Estimator = (*CharEstimator)(nil)
