// Package affair implements the judicial-affair bounded context: the durable
// affair aggregate, the ephemeral candidate records produced by the discovery
// ingesters, the similarity scorer used for both automatic reconciliation and
// operator-facing duplicate review, and slug generation.  All business rules
// about what makes two affair records "the same real-world proceeding" live
// here; persistence and external services are handled by adapter layers.
package affair

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/pkg/errors"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// ─────────────────────────────────────────────────────────────────────────────
// Source value object
// ─────────────────────────────────────────────────────────────────────────────

// Source is a document backing an affair record: a knowledge-graph entity
// page, an encyclopedia article, or a press citation.
type Source struct {
	// URL locates the document.  Never empty.
	URL string `json:"url"`

	// Title is the document's own title, when known.
	Title string `json:"title,omitempty"`

	// Publisher names the publishing organ (newspaper, court registry …).
	Publisher string `json:"publisher,omitempty"`

	// Type classifies the provenance of the document.
	Type atypes.SourceType `json:"type"`
}

// Validate checks the structural integrity of a source.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return errors.NewValidationError("url", "source URL must not be empty")
	}
	if !s.Type.IsValid() {
		return errors.NewValidationError("type", "unknown source type: "+s.Type.String())
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PersistedAffair aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// PersistedAffair is the durable affair record owned by the persistence
// gateway.  It is created once by the reconciliation engine (or by an
// administrator), updated by later syncs, and never auto-deleted by the
// pipeline.
//
// Invariant: if two persisted affairs share a non-empty stable identifier
// (ECLI or appeal-filing number), they describe the same real-world
// proceeding.  The scorer relies on this to short-circuit.
type PersistedAffair struct {
	// ── Identity ─────────────────────────────────────────────────────────────
	ID        uuid.UUID `json:"id"`
	SubjectID uuid.UUID `json:"subject_id"`

	// Slug is the URL-safe identifier, unique per subject.
	Slug string `json:"slug"`

	// ── Content ──────────────────────────────────────────────────────────────
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Category    atypes.Category          `json:"category"`
	Status      atypes.ProceedingStatus  `json:"status"`
	Involvement atypes.Involvement       `json:"involvement"`
	Publication atypes.PublicationStatus `json:"publication_status"`

	// ── Stable identifiers (jurisdiction-issued) ─────────────────────────────
	ECLI         string   `json:"ecli,omitempty"`
	AppealNumber string   `json:"appeal_number,omitempty"`
	CaseNumbers  []string `json:"case_numbers,omitempty"`

	// ── Dates ────────────────────────────────────────────────────────────────
	FactsDate           *time.Time `json:"facts_date,omitempty"`
	ProceedingStartDate *time.Time `json:"proceeding_start_date,omitempty"`
	VerdictDate         *time.Time `json:"verdict_date,omitempty"`

	// VerifiedAt is stamped when the record is published.
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	// ── Sources ──────────────────────────────────────────────────────────────
	Sources []Source `json:"sources"`

	// ── Audit ────────────────────────────────────────────────────────────────
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces the structural invariants of a persisted affair.  It is
// called by the repository before any insert or update.
func (a *PersistedAffair) Validate() error {
	if a.SubjectID == uuid.Nil {
		return errors.NewValidationError("subject_id", "subject id must not be empty")
	}
	if strings.TrimSpace(a.Title) == "" {
		return errors.NewValidationError("title", "title must not be empty")
	}
	if strings.TrimSpace(a.Slug) == "" {
		return errors.NewValidationError("slug", "slug must not be empty")
	}
	if !a.Category.IsValid() {
		return errors.NewValidationError("category", "unknown category: "+a.Category.String())
	}
	if !a.Status.IsValid() {
		return errors.NewValidationError("status", "unknown proceeding status: "+a.Status.String())
	}
	if !a.Involvement.IsValid() {
		return errors.NewValidationError("involvement", "unknown involvement: "+a.Involvement.String())
	}
	if !a.Publication.IsValid() {
		return errors.NewValidationError("publication_status", "unknown publication status: "+a.Publication.String())
	}
	if a.Publication == atypes.PublicationPublished && !a.Involvement.Publishable() {
		return errors.New(errors.ErrCodeAffairInvalid,
			"affair with involvement "+a.Involvement.String()+" must not be published")
	}
	if len(a.Sources) == 0 {
		return errors.New(errors.ErrCodeAffairSourceMissing, "affair must carry at least one source")
	}
	for i := range a.Sources {
		if err := a.Sources[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PrimaryDate returns the most authoritative date of the affair: the date of
// the underlying facts when known, else the proceeding start, else the
// verdict.  Nil when none is set.
func (a *PersistedAffair) PrimaryDate() *time.Time {
	switch {
	case a.FactsDate != nil:
		return a.FactsDate
	case a.ProceedingStartDate != nil:
		return a.ProceedingStartDate
	default:
		return a.VerdictDate
	}
}

// MarkVerified stamps the verification timestamp.  Idempotent.
func (a *PersistedAffair) MarkVerified(at time.Time) {
	if a.VerifiedAt == nil {
		t := at.UTC()
		a.VerifiedAt = &t
	}
}

// SourceURLs returns the URLs of every source, in order.
func (a *PersistedAffair) SourceURLs() []string {
	urls := make([]string, 0, len(a.Sources))
	for i := range a.Sources {
		urls = append(urls, a.Sources[i].URL)
	}
	return urls
}

// Summary reduces the affair to the fields shown in duplicate-review output.
func (a *PersistedAffair) Summary() Summary {
	return Summary{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Category:    a.Category,
		Status:      a.Status,
		Publication: a.Publication,
		PrimaryDate: a.PrimaryDate(),
	}
}

// ScoringRecord projects the affair onto the scorer's input shape.
func (a *PersistedAffair) ScoringRecord() Record {
	return Record{
		Title:               a.Title,
		Category:            a.Category,
		ECLI:                a.ECLI,
		AppealNumber:        a.AppealNumber,
		CaseNumbers:         a.CaseNumbers,
		FactsDate:           a.FactsDate,
		ProceedingStartDate: a.ProceedingStartDate,
		VerdictDate:         a.VerdictDate,
		SourceURLs:          a.SourceURLs(),
		Summary:             a.Summary(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Summary and duplicate-group value objects
// ─────────────────────────────────────────────────────────────────────────────

// Summary is the compact affair view embedded in duplicate groups.
type Summary struct {
	ID          uuid.UUID                `json:"id,omitempty"`
	Slug        string                   `json:"slug,omitempty"`
	Title       string                   `json:"title"`
	Category    atypes.Category          `json:"category"`
	Status      atypes.ProceedingStatus  `json:"status,omitempty"`
	Publication atypes.PublicationStatus `json:"publication_status,omitempty"`
	PrimaryDate *time.Time               `json:"primary_date,omitempty"`
}

// DuplicateGroup is a scored pair of affair records believed to describe the
// same real-world proceeding.  Computed per request, never persisted.
type DuplicateGroup struct {
	Score   int        `json:"score"`
	Reasons []string   `json:"reasons"`
	Affairs [2]Summary `json:"affairs"`
}
