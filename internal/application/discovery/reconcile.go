package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/infrastructure/database/redis"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/prometheus"
	"github.com/probite-fr/probite/pkg/errors"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// EventPublisher is the slice of the kafka producer the pipeline needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) (*kafka.EventEnvelope, error)
}

// Reconciler persists candidates that do not duplicate an existing affair
// (Phase 3).
type Reconciler struct {
	affairs   affair.Repository
	locks     redis.LockFactory
	scorer    *affair.Scorer
	publisher EventPublisher // may be nil
	metrics   *prometheus.PipelineMetrics
	cfg       config.PipelineConfig
	logger    logging.Logger
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Created           int
	DuplicatesSkipped int
	Errors            []string
}

// NewReconciler wires the Phase-3 engine.  publisher and metrics may be nil.
func NewReconciler(affairs affair.Repository, locks redis.LockFactory, scorer *affair.Scorer,
	publisher EventPublisher, metrics *prometheus.PipelineMetrics,
	cfg config.PipelineConfig, log logging.Logger) *Reconciler {
	if cfg.SlugMaxLength == 0 {
		cfg.SlugMaxLength = config.DefaultSlugMaxLength
	}
	if cfg.SlugMaxAttempts == 0 {
		cfg.SlugMaxAttempts = config.DefaultSlugMaxAttempts
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = config.DefaultLockTTL
	}
	return &Reconciler{
		affairs:   affairs,
		locks:     locks,
		scorer:    scorer,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		logger:    log,
	}
}

// Reconcile processes candidates in arrival order.  Every candidate either
// becomes a persisted affair, is silently skipped as a duplicate, or lands in
// the error list; nothing stops the batch.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []affair.CandidateAffair) ReconcileResult {
	var result ReconcileResult

	for i := range candidates {
		candidate := &candidates[i]
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reconciliation interrupted: %v", err))
			return result
		}

		created, skipped, err := r.reconcileOne(ctx, candidate)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("affair %q: %v", candidate.Title, err))
		case skipped:
			result.DuplicatesSkipped++
			if r.metrics != nil {
				r.metrics.DuplicatesSkippedTotal.WithLabelValues().Inc()
			}
		case created:
			result.Created++
			prometheus.RecordAffairCreated(r.metrics, string(candidate.Origin), candidate.Publication.String())
		}
	}
	return result
}

// reconcileOne holds the subject lock across the duplicate check and the
// insert, so two concurrent runs cannot both persist the same candidate.
func (r *Reconciler) reconcileOne(ctx context.Context, candidate *affair.CandidateAffair) (created, skipped bool, err error) {
	mutex := r.locks.NewMutex("subject:"+candidate.SubjectID.String(), redis.WithLockTTL(r.cfg.LockTTL))
	lockTimer := prometheus.NewTimer(lockHistogram(r.metrics))
	if err := mutex.Lock(ctx); err != nil {
		return false, false, errors.Wrap(err, errors.ErrCodeConflict, "failed to lock subject")
	}
	lockTimer.ObserveDuration()
	defer func() {
		if unlockErr := mutex.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			r.logger.Warn("failed to release subject lock",
				logging.String("subject_id", candidate.SubjectID.String()),
				logging.Err(unlockErr))
		}
	}()

	existing, err := r.affairs.FindBySubject(ctx, candidate.SubjectID)
	if err != nil {
		return false, false, err
	}

	if r.isDuplicate(candidate, existing) {
		return false, true, nil
	}

	slug, err := r.uniqueSlug(ctx, candidate)
	if err != nil {
		return false, false, err
	}

	persisted := candidate.ToPersisted(slug, time.Now())
	if err := r.affairs.Create(ctx, persisted); err != nil {
		return false, false, err
	}

	r.logger.Info("affair created",
		logging.String("subject_id", persisted.SubjectID.String()),
		logging.String("slug", persisted.Slug),
		logging.String("category", persisted.Category.String()),
		logging.String("publication", persisted.Publication.String()))

	r.publishCreated(ctx, persisted, candidate.Origin)
	return true, false, nil
}

// isDuplicate checks the candidate against every existing affair of the
// subject and discards it when the best match is high-confidence or better.
func (r *Reconciler) isDuplicate(candidate *affair.CandidateAffair, existing []*affair.PersistedAffair) bool {
	record := candidate.ScoringRecord()
	best := 0
	for _, persisted := range existing {
		if score := r.scorer.Score(record, persisted.ScoringRecord()); score != nil && score.Score > best {
			best = score.Score
		}
	}
	return r.scorer.Confidence(best).AtLeast(atypes.MatchHigh)
}

// uniqueSlug derives the candidate's slug, retrying with numeric suffixes on
// collision until the attempt limit is reached.
func (r *Reconciler) uniqueSlug(ctx context.Context, candidate *affair.CandidateAffair) (string, error) {
	base := affair.Slugify(candidate.Title, r.cfg.SlugMaxLength)

	for attempt := 1; attempt <= r.cfg.SlugMaxAttempts; attempt++ {
		slug := base
		if attempt > 1 {
			slug = affair.SlugWithSuffix(base, attempt, r.cfg.SlugMaxLength)
			if r.metrics != nil {
				r.metrics.SlugRetriesTotal.WithLabelValues().Inc()
			}
		}
		exists, err := r.affairs.SlugExists(ctx, candidate.SubjectID, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", errors.New(errors.ErrCodeAffairSlugExhausted,
		fmt.Sprintf("no free slug after %d attempts for base %q", r.cfg.SlugMaxAttempts, base))
}

// publishCreated emits the affair.created event; failures are non-fatal.
func (r *Reconciler) publishCreated(ctx context.Context, persisted *affair.PersistedAffair, origin affair.Phase) {
	if r.publisher == nil {
		return
	}
	payload := kafka.AffairCreatedPayload{
		AffairID:          persisted.ID.String(),
		SubjectID:         persisted.SubjectID.String(),
		Slug:              persisted.Slug,
		Title:             persisted.Title,
		Category:          persisted.Category.String(),
		PublicationStatus: persisted.Publication.String(),
		OriginPhase:       string(origin),
		CreatedAt:         persisted.CreatedAt,
	}
	if _, err := r.publisher.Publish(ctx, kafka.TopicAffairCreated, persisted.SubjectID.String(), payload); err != nil {
		r.logger.Warn("failed to publish affair.created event",
			logging.String("slug", persisted.Slug),
			logging.Err(err))
	}
}

func lockHistogram(m *prometheus.PipelineMetrics) prometheus.Histogram {
	if m == nil {
		return nil
	}
	return m.LockWaitDuration.WithLabelValues()
}
