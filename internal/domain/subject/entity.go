// Package subject holds the politician subject entity and its repository
// contract.  The discovery pipeline iterates subjects; everything else about
// politicians (mandates, parties, votes) lives in other systems.
package subject

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/pkg/errors"
)

// Subject is a politician whose judicial record the pipeline maintains.
type Subject struct {
	ID uuid.UUID `json:"id"`

	// FullName as displayed publicly, e.g. "Jean Dupont".
	FullName string `json:"full_name"`

	// KnowledgeGraphID is the subject's external knowledge-graph entity id
	// (e.g. "Q12345").  Empty when the subject has no known entity; Phase 1
	// then skips the subject.
	KnowledgeGraphID string `json:"knowledge_graph_id,omitempty"`

	// EncyclopediaURL is the subject's encyclopedia page, used as the text
	// source reference by Phase 2.
	EncyclopediaURL string `json:"encyclopedia_url,omitempty"`
}

// HasKnowledgeGraphID reports whether structured-claim ingestion applies.
func (s *Subject) HasKnowledgeGraphID() bool {
	return strings.TrimSpace(s.KnowledgeGraphID) != ""
}

// Validate checks the structural integrity of a subject.
func (s *Subject) Validate() error {
	if s.ID == uuid.Nil {
		return errors.NewValidationError("id", "subject id must not be empty")
	}
	if strings.TrimSpace(s.FullName) == "" {
		return errors.NewValidationError("full_name", "subject full name must not be empty")
	}
	return nil
}

// Repository is the read contract of the subject context.  Subjects are
// administered elsewhere; the pipeline only lists and resolves them.
type Repository interface {
	// List returns every subject, ordered by full name.
	List(ctx context.Context) ([]*Subject, error)

	// GetByID returns one subject or an ErrCodeSubjectNotFound error.
	GetByID(ctx context.Context, id uuid.UUID) (*Subject, error)
}
