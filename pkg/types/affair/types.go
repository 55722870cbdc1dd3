// Package affair defines the closed enumerations shared by every layer that
// handles judicial-affair records.  Each enumeration is a typed string with
// IsValid / String / Parse helpers so that classifiers and the similarity
// scorer can be matched exhaustively instead of passing raw strings around.
package affair

import (
	"github.com/probite-fr/probite/pkg/errors"
)

// Category is the offense category of an affair.
type Category string

const (
	CategoryCorruption        Category = "corruption"
	CategoryEmbezzlement      Category = "detournement_fonds"
	CategoryIllegalFinancing  Category = "financement_illegal"
	CategoryFavoritism        Category = "favoritisme"
	CategoryInfluencePeddling Category = "trafic_influence"
	CategoryTaxFraud          Category = "fraude_fiscale"
	CategoryElectoralFraud    Category = "fraude_electorale"
	CategoryDefamation        Category = "diffamation"
	CategoryViolence          Category = "violences"
	CategorySexualOffense     Category = "infraction_sexuelle"
	CategoryOther             Category = "autre"
)

// IsValid checks if the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCorruption, CategoryEmbezzlement, CategoryIllegalFinancing,
		CategoryFavoritism, CategoryInfluencePeddling, CategoryTaxFraud,
		CategoryElectoralFraud, CategoryDefamation, CategoryViolence,
		CategorySexualOffense, CategoryOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.IsValid() {
		return c, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unknown affair category: "+s)
}

// ProceedingStatus is the stage of the legal proceeding.
type ProceedingStatus string

const (
	StatusInvestigation ProceedingStatus = "enquete"
	StatusInstruction   ProceedingStatus = "instruction"
	StatusCharged       ProceedingStatus = "mise_en_examen"
	StatusTrial         ProceedingStatus = "proces"
	StatusConvicted     ProceedingStatus = "condamnation"
	StatusAcquitted     ProceedingStatus = "relaxe"
	StatusAppeal        ProceedingStatus = "appel"
	StatusDismissed     ProceedingStatus = "non_lieu"
	StatusPardoned      ProceedingStatus = "amnistie"
)

// IsValid checks if the proceeding status is a known value.
func (s ProceedingStatus) IsValid() bool {
	switch s {
	case StatusInvestigation, StatusInstruction, StatusCharged, StatusTrial,
		StatusConvicted, StatusAcquitted, StatusAppeal, StatusDismissed,
		StatusPardoned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the proceeding status.
func (s ProceedingStatus) String() string {
	return string(s)
}

// ParseProceedingStatus parses a string into a ProceedingStatus.
func ParseProceedingStatus(v string) (ProceedingStatus, error) {
	s := ProceedingStatus(v)
	if s.IsValid() {
		return s, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unknown proceeding status: "+v)
}

// Involvement is the subject's legal role in the affair.
type Involvement string

const (
	InvolvementDirect    Involvement = "mis_en_cause"
	InvolvementVictim    Involvement = "victime"
	InvolvementPlaintiff Involvement = "partie_civile"
	InvolvementMentioned Involvement = "mentionne"
)

// IsValid checks if the involvement is a known value.
func (i Involvement) IsValid() bool {
	switch i {
	case InvolvementDirect, InvolvementVictim, InvolvementPlaintiff, InvolvementMentioned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the involvement.
func (i Involvement) String() string {
	return string(i)
}

// Publishable reports whether the involvement allows the affair to be made
// publicly visible.  Subjects who are merely mentioned in an affair must
// never have it published under their profile (presumption of innocence).
func (i Involvement) Publishable() bool {
	switch i {
	case InvolvementDirect, InvolvementVictim, InvolvementPlaintiff:
		return true
	default:
		return false
	}
}

// ParseInvolvement parses a string into an Involvement.
func ParseInvolvement(v string) (Involvement, error) {
	i := Involvement(v)
	if i.IsValid() {
		return i, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unknown involvement: "+v)
}

// SourceType classifies where a source document comes from.
type SourceType string

const (
	SourceStructured SourceType = "structured"
	SourceText       SourceType = "text"
	SourcePress      SourceType = "press"
)

// IsValid checks if the source type is a known value.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceStructured, SourceText, SourcePress:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source type.
func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType.
func ParseSourceType(v string) (SourceType, error) {
	s := SourceType(v)
	if s.IsValid() {
		return s, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unknown source type: "+v)
}

// PublicationStatus is the operator-facing visibility of an affair record.
type PublicationStatus string

const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationPublished PublicationStatus = "published"
)

// IsValid checks if the publication status is a known value.
func (p PublicationStatus) IsValid() bool {
	switch p {
	case PublicationDraft, PublicationPublished:
		return true
	default:
		return false
	}
}

// String returns the string representation of the publication status.
func (p PublicationStatus) String() string {
	return string(p)
}

// ParsePublicationStatus parses a string into a PublicationStatus.
func ParsePublicationStatus(v string) (PublicationStatus, error) {
	p := PublicationStatus(v)
	if p.IsValid() {
		return p, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "unknown publication status: "+v)
}

// MatchConfidence buckets a similarity score for reconciliation decisions.
type MatchConfidence string

const (
	MatchNone    MatchConfidence = "none"
	MatchLow     MatchConfidence = "low"
	MatchHigh    MatchConfidence = "high"
	MatchCertain MatchConfidence = "certain"
)

// String returns the string representation of the match confidence.
func (m MatchConfidence) String() string {
	return string(m)
}

// AtLeast reports whether m is at least as confident as other.
func (m MatchConfidence) AtLeast(other MatchConfidence) bool {
	return m.rank() >= other.rank()
}

func (m MatchConfidence) rank() int {
	switch m {
	case MatchLow:
		return 1
	case MatchHigh:
		return 2
	case MatchCertain:
		return 3
	default:
		return 0
	}
}

// ClaimKind distinguishes the two knowledge-graph relations the structured
// ingester consumes.
type ClaimKind string

const (
	ClaimConvictedOf ClaimKind = "convicted_of"
	ClaimChargedWith ClaimKind = "charged_with"
)

// IsValid checks if the claim kind is a known value.
func (k ClaimKind) IsValid() bool {
	switch k {
	case ClaimConvictedOf, ClaimChargedWith:
		return true
	default:
		return false
	}
}

// String returns the string representation of the claim kind.
func (k ClaimKind) String() string {
	return string(k)
}
