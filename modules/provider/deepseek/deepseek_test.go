package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/undergrid/recall/internal/provider"
)

func newTestProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()
	p, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{
				Message:      chatMessage{Role: "assistant", Content: "bonjour"},
				FinishReason: "stop",
			}},
			Usage: chatUsage{PromptTokens: 10, CompletionTokens: 3, TotalTokens: 13},
		})
	}))
	defer srv.Close()

	p := newTestProvider(t, Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "deepseek-chat"})

	temp := 0.7
	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.MessageRoleUser, Content: "say hello in french"},
		},
		MaxTokens:   500,
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != "bonjour" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("TotalTokens = %d, want 13", resp.Usage.TotalTokens)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "deepseek-chat" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != 500 {
		t.Errorf("request max_tokens = %d", gotReq.MaxTokens)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.7 {
		t.Errorf("request temperature = %v", gotReq.Temperature)
	}
}

func TestComplete_UsesConfigMaxTokensFallback(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	p := newTestProvider(t, Config{BaseURL: srv.URL, APIKey: "k", MaxTokens: 256})

	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.MessageRoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotReq.MaxTokens != 256 {
		t.Errorf("request max_tokens = %d, want config fallback 256", gotReq.MaxTokens)
	}
}

func TestComplete_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, provider.ErrRateLimit},
		{"server error", http.StatusInternalServerError, provider.ErrProviderDown},
		{"bad gateway", http.StatusBadGateway, provider.ErrProviderDown},
		{"unauthorized", http.StatusUnauthorized, provider.ErrAuthentication},
		{"forbidden", http.StatusForbidden, provider.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p := newTestProvider(t, Config{BaseURL: srv.URL, APIKey: "k"})
			_, err := p.Complete(context.Background(), provider.CompletionRequest{
				Messages: []provider.Message{{Role: provider.MessageRoleUser, Content: "hi"}},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComplete_ConnectionRefused(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.MessageRoleUser, Content: "hi"}},
	})
	if !errors.Is(err, provider.ErrProviderDown) {
		t.Errorf("error = %v, want ErrProviderDown", err)
	}
}

func TestComplete_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProvider(t, Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	_, err := p.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.MessageRoleUser, Content: "hi"}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, provider.ErrProviderDown) {
		t.Error("cancellation must not classify as provider failure")
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProvider(t, Config{BaseURL: srv.URL, APIKey: "k"})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	down := newTestProvider(t, Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	if err := down.HealthCheck(context.Background()); !errors.Is(err, provider.ErrProviderDown) {
		t.Errorf("HealthCheck() error = %v, want ErrProviderDown", err)
	}
}

func TestNew_ResolvesAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("DEEPSEEK_TEST_KEY", "sk-env")

	p, err := New(Config{APIKeyEnv: "DEEPSEEK_TEST_KEY"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.apiKey != "sk-env" {
		t.Errorf("apiKey = %q, want sk-env", p.apiKey)
	}
	if p.config.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("BaseURL = %q", p.config.BaseURL)
	}
	if p.ModelName() != "deepseek-chat" {
		t.Errorf("ModelName() = %q", p.ModelName())
	}
}

func TestNew_MissingKeyFails(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, nil); err == nil {
		t.Error("New() succeeded without an API key")
	}
}
