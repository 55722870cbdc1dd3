package affair

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract of the affair bounded context.  The
// postgres adapter implements it; the reconciliation engine and the admin
// duplicate scan consume it.
type Repository interface {
	// FindBySubject returns every affair of one subject, including nested
	// sources, ordered by creation time.
	FindBySubject(ctx context.Context, subjectID uuid.UUID) ([]*PersistedAffair, error)

	// Create inserts the affair together with its nested sources in a single
	// transaction.
	Create(ctx context.Context, a *PersistedAffair) error

	// SlugExists reports whether the subject already has an affair under the
	// given slug.
	SlugExists(ctx context.Context, subjectID uuid.UUID, slug string) (bool, error)
}
