// Package provider defines the interface for communicating with an LLM
// completion service and the message types shared across the codebase.
package provider

import "context"

// Provider is the interface for communicating with an LLM completion
// service. Concrete implementations live in separate packages
// (e.g. modules/provider/deepseek).
type Provider interface {
	// Complete sends a completion request and returns the full response.
	// Exactly one outbound network call per invocation; no retries.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support active availability probing.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
