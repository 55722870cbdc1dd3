package discovery

import (
	"context"
	"time"

	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/prometheus"
	"github.com/probite-fr/probite/pkg/errors"
)

// BatchSummary is the outcome of one full pipeline run.
type BatchSummary struct {
	SubjectsProcessed         int      `json:"subjects_processed"`
	StructuredCandidatesFound int      `json:"structured_candidates_found"`
	TextCandidatesFound       int      `json:"text_candidates_found"`
	DuplicatesSkipped         int      `json:"duplicates_skipped"`
	AffairsCreated            int      `json:"affairs_created"`
	Errors                    []string `json:"errors,omitempty"`
}

// Pipeline orchestrates the three discovery phases over all subjects.
type Pipeline struct {
	subjects   subject.Repository
	structured *StructuredIngester
	textual    *TextExtractor
	reconciler *Reconciler
	publisher  EventPublisher // may be nil
	metrics    *prometheus.PipelineMetrics
	logger     logging.Logger
}

// NewPipeline wires the orchestrator.
func NewPipeline(subjects subject.Repository, structured *StructuredIngester,
	textual *TextExtractor, reconciler *Reconciler, publisher EventPublisher,
	metrics *prometheus.PipelineMetrics, log logging.Logger) *Pipeline {
	return &Pipeline{
		subjects:   subjects,
		structured: structured,
		textual:    textual,
		reconciler: reconciler,
		publisher:  publisher,
		metrics:    metrics,
		logger:     log,
	}
}

// Run executes one full discovery batch.  Only the inability to list subjects
// is fatal; every other failure degrades into the summary's error list.
func (p *Pipeline) Run(ctx context.Context) (*BatchSummary, error) {
	startedAt := time.Now().UTC()
	p.logger.Info("discovery run started")

	subjects, err := p.subjects.List(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list subjects")
	}

	summary := &BatchSummary{SubjectsProcessed: len(subjects)}

	// Phase 1 — structured claims.
	structuredCandidates, errs := p.structured.Ingest(ctx, subjects)
	summary.StructuredCandidatesFound = len(structuredCandidates)
	summary.Errors = append(summary.Errors, errs...)

	// Phase 2 — text extraction, deduplicated against Phase 1 by
	// (subject, category).
	seen := make(map[string]struct{}, len(structuredCandidates))
	for i := range structuredCandidates {
		seen[structuredCandidates[i].DedupKey()] = struct{}{}
	}
	textCandidates, errs := p.textual.Extract(ctx, subjects, seen)
	summary.TextCandidatesFound = len(textCandidates)
	summary.Errors = append(summary.Errors, errs...)

	// Phase 3 — reconciliation, structured candidates first.
	candidates := make([]affair.CandidateAffair, 0, len(structuredCandidates)+len(textCandidates))
	candidates = append(candidates, structuredCandidates...)
	candidates = append(candidates, textCandidates...)

	result := p.reconciler.Reconcile(ctx, candidates)
	summary.DuplicatesSkipped = result.DuplicatesSkipped
	summary.AffairsCreated = result.Created
	summary.Errors = append(summary.Errors, result.Errors...)

	finishedAt := time.Now().UTC()
	p.observeRun(summary, startedAt, finishedAt)
	p.publishCompleted(ctx, summary, startedAt, finishedAt)

	p.logger.Info("discovery run finished",
		logging.Int("subjects", summary.SubjectsProcessed),
		logging.Int("structured_candidates", summary.StructuredCandidatesFound),
		logging.Int("text_candidates", summary.TextCandidatesFound),
		logging.Int("duplicates_skipped", summary.DuplicatesSkipped),
		logging.Int("affairs_created", summary.AffairsCreated),
		logging.Int("errors", len(summary.Errors)),
		logging.Duration("took", finishedAt.Sub(startedAt)))
	return summary, nil
}

func (p *Pipeline) observeRun(summary *BatchSummary, startedAt, finishedAt time.Time) {
	if p.metrics == nil {
		return
	}
	status := "succeeded"
	if len(summary.Errors) > 0 {
		status = "degraded"
	}
	p.metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	p.metrics.PipelineRunDuration.WithLabelValues().Observe(finishedAt.Sub(startedAt).Seconds())
	p.metrics.SubjectsProcessedTotal.WithLabelValues().Add(float64(summary.SubjectsProcessed))
	p.metrics.StructuredCandidatesTotal.WithLabelValues().Add(float64(summary.StructuredCandidatesFound))
	p.metrics.TextCandidatesTotal.WithLabelValues().Add(float64(summary.TextCandidatesFound))
}

// publishCompleted emits the discovery.completed event; failures are
// non-fatal.
func (p *Pipeline) publishCompleted(ctx context.Context, summary *BatchSummary, startedAt, finishedAt time.Time) {
	if p.publisher == nil {
		return
	}
	payload := kafka.DiscoveryCompletedPayload{
		SubjectsProcessed:         summary.SubjectsProcessed,
		StructuredCandidatesFound: summary.StructuredCandidatesFound,
		TextCandidatesFound:       summary.TextCandidatesFound,
		DuplicatesSkipped:         summary.DuplicatesSkipped,
		AffairsCreated:            summary.AffairsCreated,
		ErrorCount:                len(summary.Errors),
		StartedAt:                 startedAt,
		FinishedAt:                finishedAt,
	}
	if _, err := p.publisher.Publish(ctx, kafka.TopicDiscoveryCompleted, "", payload); err != nil {
		p.logger.Warn("failed to publish discovery.completed event", logging.Err(err))
	}
}
