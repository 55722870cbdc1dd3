package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	collector, err := NewMetricsCollector(CollectorConfig{Namespace: "probite"}, logging.NewNopLogger())
	require.NoError(t, err)
	return collector
}

func scrape(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounterIsIdempotent(t *testing.T) {
	collector := newTestCollector(t)

	first := collector.RegisterCounter("affairs_created_total", "help", "phase", "publication_status")
	second := collector.RegisterCounter("affairs_created_total", "help", "phase", "publication_status")

	first.WithLabelValues("structured", "published").Inc()
	second.WithLabelValues("structured", "published").Inc()

	body := scrape(t, collector)
	assert.Contains(t, body, `probite_affairs_created_total{phase="structured",publication_status="published"} 2`)
}

func TestPipelineMetricsExposedUnderNamespace(t *testing.T) {
	collector := newTestCollector(t)
	m := NewPipelineMetrics(collector)

	m.SubjectsProcessedTotal.WithLabelValues().Add(12)
	m.DuplicatesSkippedTotal.WithLabelValues().Inc()
	m.PipelineRunDuration.WithLabelValues().Observe(42)

	body := scrape(t, collector)
	assert.Contains(t, body, "probite_subjects_processed_total 12")
	assert.Contains(t, body, "probite_duplicates_skipped_total 1")
	assert.Contains(t, body, "probite_pipeline_run_duration_seconds_count 1")
}

func TestRecordHTTPRequest(t *testing.T) {
	collector := newTestCollector(t)
	m := NewPipelineMetrics(collector)

	RecordHTTPRequest(m, http.MethodPost, "/api/v1/discovery/run", 202, 120*time.Millisecond)

	body := scrape(t, collector)
	assert.Contains(t, body, `probite_http_requests_total{method="POST",path="/api/v1/discovery/run",status_code="202"} 1`)
}

func TestRecordExternalCall(t *testing.T) {
	collector := newTestCollector(t)
	m := NewPipelineMetrics(collector)

	RecordExternalCall(m, "knowledge", "get_claims", nil)
	RecordExternalCall(m, "extraction", "extract", assert.AnError)

	body := scrape(t, collector)
	assert.Contains(t, body, `probite_knowledge_requests_total{operation="get_claims",status="success"} 1`)
	assert.Contains(t, body, `probite_extraction_requests_total{operation="extract",status="failure"} 1`)
	assert.Contains(t, body, `probite_external_errors_total{component="extraction"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	collector := newTestCollector(t)
	m := NewPipelineMetrics(collector)

	RecordCacheAccess(m, "labels", true)
	RecordCacheAccess(m, "labels", true)
	RecordCacheAccess(m, "labels", false)

	body := scrape(t, collector)
	assert.Contains(t, body, `probite_cache_hits_total{cache="labels"} 2`)
	assert.Contains(t, body, `probite_cache_misses_total{cache="labels"} 1`)
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordHTTPRequest(nil, http.MethodGet, "/", 200, time.Second)
		RecordAffairCreated(nil, "structured", "published")
		RecordExternalCall(nil, "knowledge", "get_claims", nil)
		RecordCacheAccess(nil, "labels", true)
	})
}

func TestTimerObservesElapsed(t *testing.T) {
	collector := newTestCollector(t)
	hist := collector.RegisterHistogram("op_duration_seconds", "help", nil)

	timer := NewTimer(hist.WithLabelValues())
	timer.ObserveDuration()

	body := scrape(t, collector)
	assert.Contains(t, body, "probite_op_duration_seconds_count 1")
	assert.False(t, strings.Contains(body, "probite_op_duration_seconds_count 0"))
}
