// Package offense maps external knowledge-graph offense entities onto the
// internal affair taxonomy.  The mapping is a static lookup: unmapped
// identifiers degrade to the generic category so that a taxonomy gap never
// stalls the discovery pipeline.
package offense

import (
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// entry couples an offense's French label with its internal category.
type entry struct {
	label    string
	category atypes.Category
}

// offenseTable maps well-known knowledge-graph offense entity ids.  The ids
// follow the graph's Q-identifier convention; extend the table as new
// offenses show up in claims.
var offenseTable = map[string]entry{
	// Probity offenses
	"Q25437":   {"corruption", atypes.CategoryCorruption},
	"Q2334719": {"corruption passive", atypes.CategoryCorruption},
	"Q6452239": {"corruption active", atypes.CategoryCorruption},
	"Q1129474": {"détournement de fonds publics", atypes.CategoryEmbezzlement},
	"Q175331":  {"détournement de fonds", atypes.CategoryEmbezzlement},
	"Q2920427": {"prise illégale d'intérêts", atypes.CategoryFavoritism},
	"Q2159907": {"favoritisme", atypes.CategoryFavoritism},
	"Q1143761": {"trafic d'influence", atypes.CategoryInfluencePeddling},
	"Q3563215": {"financement illégal de parti politique", atypes.CategoryIllegalFinancing},
	"Q2332392": {"abus de biens sociaux", atypes.CategoryEmbezzlement},
	"Q1931388": {"recel", atypes.CategoryEmbezzlement},

	// Fiscal and electoral offenses
	"Q2317887":  {"fraude fiscale", atypes.CategoryTaxFraud},
	"Q8161":     {"fraude", atypes.CategoryTaxFraud},
	"Q18034763": {"fraude électorale", atypes.CategoryElectoralFraud},

	// Against persons
	"Q41397":   {"diffamation", atypes.CategoryDefamation},
	"Q170382":  {"injure publique", atypes.CategoryDefamation},
	"Q124490":  {"violences", atypes.CategoryViolence},
	"Q365680":  {"agression sexuelle", atypes.CategorySexualOffense},
	"Q47092":   {"viol", atypes.CategorySexualOffense},
	"Q1414353": {"harcèlement sexuel", atypes.CategorySexualOffense},
}

// defaultLabel is used for identifiers absent from the table.
const defaultLabel = "infraction"

// Classifier resolves external offense identifiers to internal (category,
// status) pairs.  It is a pure lookup with no dependencies and never fails.
type Classifier struct{}

// NewClassifier returns the shared offense classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps an offense identifier and the claim kind it arrived under to
// the internal taxonomy.  Unknown identifiers land in the generic category;
// the proceeding status follows the claim kind alone, since the graph does
// not carry per-claim stage detail.
func (c *Classifier) Classify(externalOffenseID string, kind atypes.ClaimKind) (atypes.Category, atypes.ProceedingStatus) {
	category := atypes.CategoryOther
	if e, ok := offenseTable[externalOffenseID]; ok {
		category = e.category
	}

	status := atypes.StatusCharged
	if kind == atypes.ClaimConvictedOf {
		status = atypes.StatusConvicted
	}
	return category, status
}

// Label returns the French display label of the offense, or a generic label
// for unmapped identifiers.
func (c *Classifier) Label(externalOffenseID string) string {
	if e, ok := offenseTable[externalOffenseID]; ok {
		return e.label
	}
	return defaultLabel
}

// Known reports whether the identifier is in the mapping table.
func (c *Classifier) Known(externalOffenseID string) bool {
	_, ok := offenseTable[externalOffenseID]
	return ok
}
