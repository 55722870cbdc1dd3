package affair

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/pkg/errors"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// Phase identifies which discovery phase produced a candidate.
type Phase string

const (
	// PhaseStructured marks candidates built from knowledge-graph claims.
	PhaseStructured Phase = "structured"

	// PhaseText marks candidates extracted from encyclopedia prose.
	PhaseText Phase = "text"
)

// UnverifiedPrefix flags titles and descriptions of records that have not
// been confirmed against a primary source.  Operators see it verbatim.
const UnverifiedPrefix = "À vérifier — "

// CandidateAffair is an ephemeral affair record produced by one of the
// discovery ingesters during a pipeline run.  It is consumed exactly once by
// the reconciliation engine, never mutated after creation, and either
// discarded as a duplicate or converted into a PersistedAffair.
type CandidateAffair struct {
	SubjectID uuid.UUID `json:"subject_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Category    atypes.Category          `json:"category"`
	Status      atypes.ProceedingStatus  `json:"status"`
	Involvement atypes.Involvement       `json:"involvement"`
	Publication atypes.PublicationStatus `json:"publication_status"`

	// Stable identifiers, when the source carried them.
	ECLI         string   `json:"ecli,omitempty"`
	AppealNumber string   `json:"appeal_number,omitempty"`
	CaseNumbers  []string `json:"case_numbers,omitempty"`

	// Court is the extracting model's court attribution, informational only.
	Court string `json:"court,omitempty"`

	FactsDate *time.Time `json:"facts_date,omitempty"`

	// ConfidenceScore expresses how strongly this candidate is believed to
	// describe a real, well-documented affair (0–100).  Structured claims
	// carry a fixed band per claim kind; text extractions carry the model's
	// own estimate.
	ConfidenceScore int `json:"confidence_score"`

	Sources []Source `json:"sources"`

	// Origin records the producing phase; text candidates are always drafts.
	Origin Phase `json:"origin"`
}

// Validate enforces the construction invariants of a candidate.  Ingesters
// call it once at emission; the reconciliation engine trusts validated
// candidates afterwards.
func (c *CandidateAffair) Validate() error {
	if c.SubjectID == uuid.Nil {
		return errors.NewValidationError("subject_id", "subject id must not be empty")
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.NewValidationError("title", "title must not be empty")
	}
	if !c.Category.IsValid() {
		return errors.NewValidationError("category", "unknown category: "+c.Category.String())
	}
	if !c.Status.IsValid() {
		return errors.NewValidationError("status", "unknown proceeding status: "+c.Status.String())
	}
	if !c.Involvement.IsValid() {
		return errors.NewValidationError("involvement", "unknown involvement: "+c.Involvement.String())
	}
	if !c.Publication.IsValid() {
		return errors.NewValidationError("publication_status", "unknown publication status: "+c.Publication.String())
	}
	if c.ConfidenceScore < 0 || c.ConfidenceScore > 100 {
		return errors.NewValidationError("confidence_score", "confidence score must be within 0..100")
	}
	if len(c.Sources) == 0 {
		return errors.New(errors.ErrCodeAffairSourceMissing, "candidate must carry at least one source")
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return err
		}
	}
	if c.Origin != PhaseStructured && c.Origin != PhaseText {
		return errors.NewValidationError("origin", "unknown origin phase: "+string(c.Origin))
	}

	// Presumption of innocence: merely-mentioned subjects are never published,
	// and prose-extracted records stay drafts until an operator verifies them.
	if c.Publication == atypes.PublicationPublished {
		if !c.Involvement.Publishable() {
			return errors.New(errors.ErrCodeAffairInvalid,
				"candidate with involvement "+c.Involvement.String()+" must not be published")
		}
		if c.Origin == PhaseText {
			return errors.New(errors.ErrCodeAffairInvalid,
				"text-extracted candidate must stay in draft")
		}
	}
	return nil
}

// DedupKey is the in-memory key used to drop text extractions that duplicate
// a structured claim from the same run.
func (c *CandidateAffair) DedupKey() string {
	return c.SubjectID.String() + "/" + c.Category.String()
}

// SourceURLs returns the URLs of every source, in order.
func (c *CandidateAffair) SourceURLs() []string {
	urls := make([]string, 0, len(c.Sources))
	for i := range c.Sources {
		urls = append(urls, c.Sources[i].URL)
	}
	return urls
}

// ScoringRecord projects the candidate onto the scorer's input shape.
func (c *CandidateAffair) ScoringRecord() Record {
	return Record{
		Title:        c.Title,
		Category:     c.Category,
		ECLI:         c.ECLI,
		AppealNumber: c.AppealNumber,
		CaseNumbers:  c.CaseNumbers,
		FactsDate:    c.FactsDate,
		SourceURLs:   c.SourceURLs(),
		Summary: Summary{
			Title:       c.Title,
			Category:    c.Category,
			Status:      c.Status,
			Publication: c.Publication,
			PrimaryDate: c.FactsDate,
		},
	}
}

// ToPersisted converts the candidate into a durable affair record under the
// given slug.  The caller owns slug uniqueness and timestamp stamping.
func (c *CandidateAffair) ToPersisted(slug string, now time.Time) *PersistedAffair {
	now = now.UTC()
	a := &PersistedAffair{
		ID:           uuid.New(),
		SubjectID:    c.SubjectID,
		Slug:         slug,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Status:       c.Status,
		Involvement:  c.Involvement,
		Publication:  c.Publication,
		ECLI:         c.ECLI,
		AppealNumber: c.AppealNumber,
		CaseNumbers:  append([]string(nil), c.CaseNumbers...),
		FactsDate:    c.FactsDate,
		Sources:      append([]Source(nil), c.Sources...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if a.Publication == atypes.PublicationPublished {
		a.MarkVerified(now)
	}
	return a
}
