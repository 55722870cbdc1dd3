// Package repositories provides the PostgreSQL-backed implementations of the
// domain repository interfaces.
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domaff "github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE for unique-constraint violations.
const pgUniqueViolation = "23505"

// AffairRepository is the PostgreSQL implementation of affair.Repository.
// Every method uses parameterised queries and propagates the caller's
// context.
type AffairRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAffairRepository constructs a ready-to-use AffairRepository.
func NewAffairRepository(pool *pgxpool.Pool, log logging.Logger) *AffairRepository {
	return &AffairRepository{pool: pool, logger: log}
}

// FindBySubject loads every affair of one subject with its sources, ordered
// by creation time.
func (r *AffairRepository) FindBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domaff.PersistedAffair, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subject_id, slug, title, description,
		       category, status, involvement, publication_status,
		       ecli, appeal_number, case_numbers,
		       facts_date, proceeding_start_date, verdict_date, verified_at,
		       created_at, updated_at
		FROM affairs
		WHERE subject_id = $1
		ORDER BY created_at, id`,
		subjectID,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to query affairs")
	}
	defer rows.Close()

	var affairs []*domaff.PersistedAffair
	byID := make(map[uuid.UUID]*domaff.PersistedAffair)
	for rows.Next() {
		a := &domaff.PersistedAffair{}
		err := rows.Scan(
			&a.ID, &a.SubjectID, &a.Slug, &a.Title, &a.Description,
			&a.Category, &a.Status, &a.Involvement, &a.Publication,
			&a.ECLI, &a.AppealNumber, &a.CaseNumbers,
			&a.FactsDate, &a.ProceedingStartDate, &a.VerdictDate, &a.VerifiedAt,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan affair")
		}
		affairs = append(affairs, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to iterate affairs")
	}
	if len(affairs) == 0 {
		return nil, nil
	}

	if err := r.loadSources(ctx, subjectID, byID); err != nil {
		return nil, err
	}
	return affairs, nil
}

func (r *AffairRepository) loadSources(ctx context.Context, subjectID uuid.UUID, byID map[uuid.UUID]*domaff.PersistedAffair) error {
	rows, err := r.pool.Query(ctx, `
		SELECT s.affair_id, s.url, s.title, s.publisher, s.source_type
		FROM affair_sources s
		JOIN affairs a ON a.id = s.affair_id
		WHERE a.subject_id = $1
		ORDER BY s.affair_id, s.position`,
		subjectID,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to query affair sources")
	}
	defer rows.Close()

	for rows.Next() {
		var affairID uuid.UUID
		var src domaff.Source
		if err := rows.Scan(&affairID, &src.URL, &src.Title, &src.Publisher, &src.Type); err != nil {
			return errors.Wrap(err, errors.CodeDBQueryError, "failed to scan affair source")
		}
		if a, ok := byID[affairID]; ok {
			a.Sources = append(a.Sources, src)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to iterate affair sources")
	}
	return nil
}

// Create inserts the affair and its sources in one transaction.  A slug
// collision surfaces as ErrCodeAffairAlreadyExists so the reconciliation
// engine can retry with a suffixed slug.
func (r *AffairRepository) Create(ctx context.Context, a *domaff.PersistedAffair) error {
	if err := a.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO affairs (
			id, subject_id, slug, title, description,
			category, status, involvement, publication_status,
			ecli, appeal_number, case_numbers,
			facts_date, proceeding_start_date, verdict_date, verified_at,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12,
			$13,$14,$15,$16,
			$17,$18
		)`,
		a.ID, a.SubjectID, a.Slug, a.Title, a.Description,
		a.Category, a.Status, a.Involvement, a.Publication,
		a.ECLI, a.AppealNumber, a.CaseNumbers,
		a.FactsDate, a.ProceedingStartDate, a.VerdictDate, a.VerifiedAt,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return errors.New(errors.ErrCodeAffairAlreadyExists,
				"affair slug already exists for subject: "+a.Slug)
		}
		return errors.Wrap(err, errors.ErrCodeAffairPersistFailed, "failed to insert affair")
	}

	for i := range a.Sources {
		src := &a.Sources[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO affair_sources (affair_id, position, url, title, publisher, source_type)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			a.ID, i, src.URL, src.Title, src.Publisher, src.Type,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeAffairPersistFailed, "failed to insert affair source")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeAffairPersistFailed, "failed to commit affair")
	}

	r.logger.Debug("Affair persisted",
		logging.String("affair_id", a.ID.String()),
		logging.String("slug", a.Slug),
	)
	return nil
}

// SlugExists reports whether the subject already has an affair with the slug.
func (r *AffairRepository) SlugExists(ctx context.Context, subjectID uuid.UUID, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM affairs WHERE subject_id = $1 AND slug = $2)`,
		subjectID, slug,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeDBQueryError, "failed to check slug existence")
	}
	return exists, nil
}

// GetBySlug loads one affair of a subject by slug, with its sources.
func (r *AffairRepository) GetBySlug(ctx context.Context, subjectID uuid.UUID, slug string) (*domaff.PersistedAffair, error) {
	a := &domaff.PersistedAffair{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, subject_id, slug, title, description,
		       category, status, involvement, publication_status,
		       ecli, appeal_number, case_numbers,
		       facts_date, proceeding_start_date, verdict_date, verified_at,
		       created_at, updated_at
		FROM affairs
		WHERE subject_id = $1 AND slug = $2`,
		subjectID, slug,
	).Scan(
		&a.ID, &a.SubjectID, &a.Slug, &a.Title, &a.Description,
		&a.Category, &a.Status, &a.Involvement, &a.Publication,
		&a.ECLI, &a.AppealNumber, &a.CaseNumbers,
		&a.FactsDate, &a.ProceedingStartDate, &a.VerdictDate, &a.VerifiedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.NewNotFoundError("affair", slug)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to query affair")
	}

	byID := map[uuid.UUID]*domaff.PersistedAffair{a.ID: a}
	if err := r.loadSources(ctx, subjectID, byID); err != nil {
		return nil, err
	}
	return a, nil
}
