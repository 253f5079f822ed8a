package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/undergrid/recall/internal/session"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	Session       session.Status  `json:"session"`
	Metrics       MetricsSnapshot `json:"metrics"`
	EventClients  int             `json:"event_clients"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: int64(time.Since(g.startedAt) / time.Second),
		}
		if g.source != nil {
			resp.Session = g.source.Status()
		}
		if g.metrics != nil {
			resp.Metrics = g.metrics.Snapshot()
		}
		if g.hub != nil {
			resp.EventClients = g.hub.Len()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// handleHealth returns an http.HandlerFunc for GET /health.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CollectHost(g.startedAt))
	}
}
