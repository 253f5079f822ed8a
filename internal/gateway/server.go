package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — host metrics, no auth required.
	r.Get("/health", g.handleHealth())

	// Protected when a bearer token is configured.
	r.Group(func(r chi.Router) {
		if g.config.BearerToken != "" {
			r.Use(authMiddleware(g.config.BearerToken))
		}
		r.Get("/status", g.handleStatus())
		if g.metrics != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
				g.metrics.Registry(), promhttp.HandlerOpts{},
			))
		}
		if g.hub != nil {
			r.Handle("/ws/events", g.hub)
		}
	})

	return r
}
