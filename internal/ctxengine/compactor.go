package ctxengine

import (
	"context"
	"log/slog"

	"github.com/undergrid/recall/internal/completion"
	"github.com/undergrid/recall/internal/conversation"
	"github.com/undergrid/recall/internal/provider"
)

// Summarizer issues the summarization request. Satisfied by
// *completion.Adapter.
type Summarizer interface {
	Complete(ctx context.Context, turns []provider.Message) completion.Result
}

// Event reports one compaction for logging and metrics. It is derived,
// never persisted; the resulting conversation state is what gets saved.
type Event struct {
	TriggerCount int    // user-turn count that fired the compaction
	Messages     int    // turns summarized (the whole pre-compaction log)
	TokensBefore int    // estimate over the pre-replacement sequence
	TokensAfter  int    // estimate over the one-turn replacement
	Summary      string // summary text, or the flattened error string
	Failed       bool   // summarization call failed; Summary is an error string

	// Usage is the service-reported cost of the summarization call,
	// all-zero when the call failed.
	Usage provider.TokenUsage
}

// TokensSaved returns the estimated token reduction, never negative.
func (e Event) TokensSaved() int {
	if saved := e.TokensBefore - e.TokensAfter; saved > 0 {
		return saved
	}
	return 0
}

// Compactor condenses conversation history into a single system turn
// once the user-turn count reaches the configured threshold.
type Compactor struct {
	summarizer Summarizer
	estimator  Estimator
	config     Config
	logger     *slog.Logger
}

// NewCompactor creates a Compactor.
func NewCompactor(summarizer Summarizer, estimator Estimator, cfg Config, logger *slog.Logger) *Compactor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compactor{
		summarizer: summarizer,
		estimator:  estimator,
		config:     cfg.withDefaults(),
		logger:     logger,
	}
}

// ShouldCompact reports whether the state's user-turn count is a
// positive multiple of the threshold. Counting user turns instead of
// total turns makes each user/assistant pair count once, so the
// trigger is evaluated once per completed exchange.
func (c *Compactor) ShouldCompact(state *conversation.State) bool {
	users := state.UserTurnCount()
	return users > 0 && users%c.config.Threshold == 0
}

// MaybeCompact evaluates the trigger and, if it fires, replaces the
// state's entire turn log with a single system summary turn. It
// returns the compaction event, or nil if the trigger did not fire.
//
// A failed summarization call does not abort the compaction: the
// flattened error string is committed as the summary, so no turns are
// ever lost silently and no error surfaces to the caller. Re-invoking
// immediately afterwards is a no-op, because the replaced log contains
// no user turns.
func (c *Compactor) MaybeCompact(ctx context.Context, state *conversation.State) *Event {
	if !c.ShouldCompact(state) {
		return nil
	}

	before := state.Turns()
	res := c.summarizer.Complete(ctx, buildSummaryRequest(before))
	if res.Failed() {
		c.logger.Warn("compaction summary call failed, committing error summary",
			"error", res.Err,
		)
	}

	replacement := []provider.Message{{
		Role:    provider.MessageRoleSystem,
		Content: summaryTurnContent(len(before), res.Display()),
	}}

	ev := &Event{
		TriggerCount: state.UserTurnCount(),
		Messages:     len(before),
		TokensBefore: c.estimator.Estimate(before),
		TokensAfter:  c.estimator.Estimate(replacement),
		Summary:      res.Display(),
		Failed:       res.Failed(),
		Usage:        res.Usage,
	}

	state.Replace(replacement)

	c.logger.Info("conversation compacted",
		"messages", ev.Messages,
		"tokens_before", ev.TokensBefore,
		"tokens_after", ev.TokensAfter,
		"failed", ev.Failed,
	)
	return ev
}

// Threshold returns the effective compaction threshold.
func (c *Compactor) Threshold() int {
	return c.config.Threshold
}
