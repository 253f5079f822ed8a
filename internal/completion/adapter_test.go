package completion_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/undergrid/recall/internal/completion"
	"github.com/undergrid/recall/internal/provider"
	"github.com/undergrid/recall/internal/provider/providertest"
)

func TestAdapter_Complete_Success(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{
				Content: "hello",
				Usage:   provider.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			}, nil
		},
	}
	a := completion.NewAdapter(mock, completion.Options{}, nil)

	res := a.Complete(context.Background(), []provider.Message{
		{Role: provider.MessageRoleUser, Content: "hi"},
	})

	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Text != "hello" {
		t.Errorf("Text = %q, want %q", res.Text, "hello")
	}
	if res.Usage.TotalTokens != 15 {
		t.Errorf("Usage.TotalTokens = %d, want 15", res.Usage.TotalTokens)
	}
	if res.Display() != "hello" {
		t.Errorf("Display() = %q, want %q", res.Display(), "hello")
	}
}

func TestAdapter_Complete_DefaultOptions(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{}, nil
		},
	}
	a := completion.NewAdapter(mock, completion.Options{}, nil)
	a.Complete(context.Background(), []provider.Message{{Role: provider.MessageRoleUser, Content: "x"}})

	req := mock.LastRequest()
	if req.MaxTokens != completion.DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, completion.DefaultMaxTokens)
	}
	if req.Temperature == nil || *req.Temperature != completion.DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", req.Temperature, completion.DefaultTemperature)
	}
}

func TestAdapter_Complete_ZeroTemperatureKept(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{}, nil
		},
	}
	zero := 0.0
	a := completion.NewAdapter(mock, completion.Options{Temperature: &zero}, nil)
	a.Complete(context.Background(), []provider.Message{{Role: provider.MessageRoleUser, Content: "x"}})

	req := mock.LastRequest()
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("Temperature = %v, want explicit 0", req.Temperature)
	}
}

func TestAdapter_Complete_FailureBecomesResult(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{}, boom
		},
	}
	a := completion.NewAdapter(mock, completion.Options{}, nil)

	res := a.Complete(context.Background(), []provider.Message{
		{Role: provider.MessageRoleUser, Content: "hi"},
	})

	if !res.Failed() {
		t.Fatal("expected failure result")
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("Err = %v, want wrapped %v", res.Err, boom)
	}
	if res.Usage != (provider.TokenUsage{}) {
		t.Errorf("Usage = %+v, want all-zero", res.Usage)
	}
	if !strings.HasPrefix(res.Display(), "Error: ") {
		t.Errorf("Display() = %q, want Error: prefix", res.Display())
	}
}
