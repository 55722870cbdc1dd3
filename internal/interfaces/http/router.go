package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/prometheus"
	"github.com/probite-fr/probite/internal/interfaces/http/handlers"
	"github.com/probite-fr/probite/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// operator API route tree.
type RouterConfig struct {
	DiscoveryHandler *handlers.DiscoveryHandler
	DedupHandler     *handlers.DedupHandler
	HealthHandler    *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.PipelineMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the complete operator API: global middleware, public
// probes, the metrics scrape endpoint, and the /api/v1 resource group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.RequestMetrics(cfg.Metrics))
	}

	// Probes stay outside /api/v1 so orchestration never needs the API
	// surface.
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.DiscoveryHandler != nil {
			api.Post("/discovery/run", cfg.DiscoveryHandler.Run)
		}
		if cfg.DedupHandler != nil {
			api.Get("/subjects/{subjectID}/duplicates", cfg.DedupHandler.ScanSubject)
		}
	})

	return r
}
