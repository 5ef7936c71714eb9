// Package web serves the search page, the JSON API and the operational endpoints.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/service"
)

const searchTimeout = 30 * time.Second

// Searcher runs one address search.
type Searcher interface {
	Search(ctx context.Context, address string) (*service.Result, error)
}

// Catalog exposes the national reference data.
type Catalog interface {
	Deposits() []models.Deposit
	Statistics() models.Statistics
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Logger   *slog.Logger
	Searcher Searcher
	Catalog  Catalog
	Gatherer prometheus.Gatherer
	Health   Pinger // Health is checked by /healthz when set.
}

// NewRouter wires the pages, API and monitoring endpoints.
func NewRouter(opts Options) (http.Handler, error) {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}

	h, err := newHandler(opts)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Index)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/stats", h.Stats)
		r.Get("/map/overview", h.Overview)
	})

	return r, nil
}

// accessLog logs one line per request.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.InfoContext(r.Context(), "HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
