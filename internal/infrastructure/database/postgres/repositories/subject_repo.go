package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

// SubjectRepository is the PostgreSQL implementation of subject.Repository.
type SubjectRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewSubjectRepository constructs a ready-to-use SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool, log logging.Logger) *SubjectRepository {
	return &SubjectRepository{pool: pool, logger: log}
}

// List returns every subject ordered by full name.
func (r *SubjectRepository) List(ctx context.Context) ([]*subject.Subject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, COALESCE(knowledge_graph_id, ''), COALESCE(encyclopedia_url, '')
		FROM subjects
		ORDER BY full_name, id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to query subjects")
	}
	defer rows.Close()

	var subjects []*subject.Subject
	for rows.Next() {
		s := &subject.Subject{}
		if err := rows.Scan(&s.ID, &s.FullName, &s.KnowledgeGraphID, &s.EncyclopediaURL); err != nil {
			return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to scan subject")
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to iterate subjects")
	}
	return subjects, nil
}

// GetByID returns one subject or an ErrCodeSubjectNotFound error.
func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*subject.Subject, error) {
	s := &subject.Subject{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, COALESCE(knowledge_graph_id, ''), COALESCE(encyclopedia_url, '')
		FROM subjects
		WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.FullName, &s.KnowledgeGraphID, &s.EncyclopediaURL)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeSubjectNotFound, "subject not found: "+id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "failed to query subject")
	}
	return s, nil
}
