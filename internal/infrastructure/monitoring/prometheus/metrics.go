package prometheus

import (
	"strconv"
	"time"
)

// PipelineMetrics holds every metric the discovery pipeline and the HTTP
// layer emit.
type PipelineMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Discovery pipeline
	PipelineRunsTotal         CounterVec
	PipelineRunDuration       HistogramVec
	SubjectsProcessedTotal    CounterVec
	StructuredCandidatesTotal CounterVec
	TextCandidatesTotal       CounterVec
	DuplicatesSkippedTotal    CounterVec
	AffairsCreatedTotal       CounterVec
	SlugRetriesTotal          CounterVec

	// External dependencies
	KnowledgeRequestsTotal  CounterVec
	ExtractionRequestsTotal CounterVec
	ExternalErrorsTotal     CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	LockWaitDuration HistogramVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRunDurationBuckets  = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewPipelineMetrics registers all metrics on the collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.PipelineRunsTotal = collector.RegisterCounter("pipeline_runs_total", "Discovery pipeline runs", "status")
	m.PipelineRunDuration = collector.RegisterHistogram("pipeline_run_duration_seconds", "Discovery pipeline run duration", DefaultRunDurationBuckets)
	m.SubjectsProcessedTotal = collector.RegisterCounter("subjects_processed_total", "Subjects processed by the pipeline")
	m.StructuredCandidatesTotal = collector.RegisterCounter("structured_candidates_total", "Candidate affairs from knowledge graph claims")
	m.TextCandidatesTotal = collector.RegisterCounter("text_candidates_total", "Candidate affairs from text extraction")
	m.DuplicatesSkippedTotal = collector.RegisterCounter("duplicates_skipped_total", "Candidates discarded as duplicates of existing affairs")
	m.AffairsCreatedTotal = collector.RegisterCounter("affairs_created_total", "Affairs persisted by reconciliation", "phase", "publication_status")
	m.SlugRetriesTotal = collector.RegisterCounter("slug_retries_total", "Slug collisions resolved with a numeric suffix")

	m.KnowledgeRequestsTotal = collector.RegisterCounter("knowledge_requests_total", "Knowledge graph API requests", "operation", "status")
	m.ExtractionRequestsTotal = collector.RegisterCounter("extraction_requests_total", "Text extraction API requests", "operation", "status")
	m.ExternalErrorsTotal = collector.RegisterCounter("external_errors_total", "Errors from external services", "component")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.LockWaitDuration = collector.RegisterHistogram("lock_wait_duration_seconds", "Time spent waiting on subject locks", DefaultDBDurationBuckets)

	return m
}

// RecordHTTPRequest observes one completed HTTP request.
func RecordHTTPRequest(m *PipelineMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAffairCreated counts a persisted affair by origin phase and status.
func RecordAffairCreated(m *PipelineMetrics, phase, publicationStatus string) {
	if m == nil {
		return
	}
	m.AffairsCreatedTotal.WithLabelValues(phase, publicationStatus).Inc()
}

// RecordExternalCall counts one upstream request and its failure if any.
func RecordExternalCall(m *PipelineMetrics, component, operation string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		m.ExternalErrorsTotal.WithLabelValues(component).Inc()
	}
	switch component {
	case "knowledge":
		m.KnowledgeRequestsTotal.WithLabelValues(operation, status).Inc()
	case "extraction":
		m.ExtractionRequestsTotal.WithLabelValues(operation, status).Inc()
	}
}

// RecordCacheAccess counts a cache hit or miss.
func RecordCacheAccess(m *PipelineMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}
