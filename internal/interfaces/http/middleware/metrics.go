package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/prometheus"
)

// RequestMetrics records one observation per request on the pipeline metrics
// set.  The path label uses the chi route pattern, not the raw URL, so
// per-subject endpoints do not explode the label cardinality.
func RequestMetrics(metrics *prometheus.PipelineMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := newWrappedResponseWriter(w)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			prometheus.RecordHTTPRequest(metrics, r.Method, path,
				ww.statusCode, time.Since(start))
		})
	}
}
