package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/monitoring"
)

// NewRouter mounts the page, the JSON API and the health check.
func NewRouter(h *Handler, metrics *monitoring.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.HTTPLoggingMiddleware)
	if metrics != nil {
		r.Use(instrument(metrics))
	}

	r.Get("/", h.HandlerIndex)
	r.Get("/health", h.HandlerHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.HandlerSearch)
		r.Get("/discover", h.HandlerDiscover)
		r.Get("/tags", h.HandlerTags)
	})
	return r
}

func instrument(m *monitoring.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			m.HandlerDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
