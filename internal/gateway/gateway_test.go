package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/undergrid/recall/internal/session"
)

type fakeSource struct{ status session.Status }

func (f fakeSource) Status() session.Status { return f.status }

func newTestGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()
	return New(cfg, fakeSource{status: session.Status{
		Model:           "deepseek-chat",
		Turns:           4,
		UserTurns:       2,
		EstimatedTokens: 128,
		CreatedAt:       time.Now(),
	}}, NewMetrics(), NewEventHub(nil), nil)
}

func TestHandleHealth_ReturnsHostInfo(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var info HostInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Goroutines <= 0 {
		t.Errorf("Goroutines = %d, want > 0", info.Goroutines)
	}
	if !strings.Contains(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestHandleStatus_ReflectsSessionAndMetrics(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	g.metrics.RecordExchange(150, 200*time.Millisecond)
	g.metrics.RecordCompaction(70, false)

	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Session.Model != "deepseek-chat" {
		t.Errorf("Session.Model = %q", status.Session.Model)
	}
	if status.Metrics.Exchanges != 1 || status.Metrics.TotalTokens != 150 {
		t.Errorf("Metrics = %+v", status.Metrics)
	}
	if status.Metrics.Compactions != 1 || status.Metrics.TokensSaved != 70 {
		t.Errorf("Metrics = %+v", status.Metrics)
	}
}

func TestStatus_RequiresBearerTokenWhenConfigured(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{BearerToken: "secret"})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated /status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated /status = %d, want 200", resp.StatusCode)
	}

	// /health stays public.
	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint_ExposesCounters(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	g.metrics.RecordExchange(42, 50*time.Millisecond)

	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	if !strings.Contains(body, "recall_exchanges_total 1") {
		t.Errorf("metrics output missing exchange counter:\n%s", body)
	}
	if !strings.Contains(body, "recall_tokens_total 42") {
		t.Errorf("metrics output missing token counter")
	}
}
