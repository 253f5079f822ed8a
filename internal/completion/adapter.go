// Package completion wraps a provider.Provider in the best-effort
// calling convention the rest of the system relies on: one blocking
// call, no retries, and every failure converted into a normal return
// value so callers never need error handling for a single exchange.
package completion

import (
	"context"
	"log/slog"

	"github.com/undergrid/recall/internal/provider"
)

// Default generation options, applied when the config leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// Options are the generation knobs sent with every completion request.
// Temperature is a pointer so an explicit 0 is distinguishable from
// unset.
type Options struct {
	Temperature *float64
	MaxTokens   int
}

func (o Options) withDefaults() Options {
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}

// Adapter issues completion requests against a single provider.
// It holds no conversation state.
type Adapter struct {
	provider provider.Provider
	opts     Options
	logger   *slog.Logger
}

// NewAdapter creates an Adapter. Zero-valued options fall back to the
// package defaults.
func NewAdapter(p provider.Provider, opts Options, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{provider: p, opts: opts.withDefaults(), logger: logger}
}

// Complete sends the ordered turn sequence to the completion service.
// It never returns an error: transport, authentication, and
// malformed-response failures are all captured in the Result with
// all-zero usage, so a single failed exchange cannot crash a session.
func (a *Adapter) Complete(ctx context.Context, turns []provider.Message) Result {
	resp, err := a.provider.Complete(ctx, provider.CompletionRequest{
		Messages:    turns,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		a.logger.Warn("completion call failed",
			"model", a.provider.ModelName(),
			"error", err,
		)
		return Result{Err: err}
	}
	return Result{Text: resp.Content, Usage: resp.Usage}
}

// ModelName reports the underlying provider's model identifier.
func (a *Adapter) ModelName() string {
	return a.provider.ModelName()
}
