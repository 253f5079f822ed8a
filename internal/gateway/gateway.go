// Package gateway exposes the HTTP status surface: host metrics,
// session status, Prometheus scraping, and a live event feed. It is a
// leaf component — nothing imports it except the entry point.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/undergrid/recall/internal/session"
)

// StatusSource provides the live conversation view for GET /status.
// Implemented by *session.Session.
type StatusSource interface {
	Status() session.Status
}

// Gateway is the HTTP status server.
type Gateway struct {
	config    Config
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	hub       *EventHub
	source    StatusSource
	startedAt time.Time
}

// New creates a Gateway around the given collaborators.
func New(cfg Config, source StatusSource, metrics *Metrics, hub *EventHub, logger *slog.Logger) *Gateway {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		hub:       hub,
		source:    source,
		startedAt: time.Now(),
	}
}

// Start begins serving in a background goroutine.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	go func() {
		g.logger.Info("gateway listening", "bind", g.config.Bind)
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway server failed", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (g *Gateway) Stop() error {
	if g.hub != nil {
		g.hub.Close()
	}
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.config.ShutdownTimeout)
	defer cancel()
	return g.server.Shutdown(ctx)
}
