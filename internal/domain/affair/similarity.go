package affair

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/probite-fr/probite/internal/config"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// ─────────────────────────────────────────────────────────────────────────────
// Scoring input and output shapes
// ─────────────────────────────────────────────────────────────────────────────

// Record is the scorer's view of an affair-like record.  Both candidates and
// persisted affairs project onto it, so the same scoring code serves the
// automatic pipeline and the operator-facing duplicate scan.
type Record struct {
	Title        string
	Category     atypes.Category
	ECLI         string
	AppealNumber string
	CaseNumbers  []string

	FactsDate           *time.Time
	ProceedingStartDate *time.Time
	VerdictDate         *time.Time

	SourceURLs []string

	// Summary is carried through into duplicate groups for display.
	Summary Summary
}

// PrimaryDate mirrors PersistedAffair.PrimaryDate for records.
func (r *Record) PrimaryDate() *time.Time {
	switch {
	case r.FactsDate != nil:
		return r.FactsDate
	case r.ProceedingStartDate != nil:
		return r.ProceedingStartDate
	default:
		return r.VerdictDate
	}
}

// DuplicateScore is the scorer's verdict on one pair: a bounded score and the
// human-readable evidence behind it.
type DuplicateScore struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Title normalization
// ─────────────────────────────────────────────────────────────────────────────

// frenchStopwords are dropped during title tokenization; they carry no
// discriminating power between affair titles.
var frenchStopwords = map[string]bool{
	"de": true, "du": true, "des": true,
	"le": true, "la": true, "les": true,
	"un": true, "une": true,
	"et": true, "en": true,
	"au": true, "aux": true,
	"pour": true, "par": true, "sur": true, "dans": true, "avec": true,
	"son": true, "sa": true, "ses": true,
	"ce": true, "cette": true,
	"qui": true, "que": true, "est": true,
	"a": true, "d": true, "l": true,
}

// diacriticStripper removes combining marks after canonical decomposition, so
// "détournement" and "detournement" tokenize identically.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// stripDiacritics folds accented characters to their base form.  On transform
// failure the input is returned unchanged; scoring then degrades to exact
// matching, which is safe.
func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// titleTokens normalizes a title into its significant tokens: lowercase,
// diacritics stripped, non-alphanumerics treated as separators, single-letter
// tokens and French stopwords dropped.
func titleTokens(title string) []string {
	lowered := strings.ToLower(stripDiacritics(title))
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) <= 1 || frenchStopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// titleOverlapRatio computes |common tokens| / max(|a|, |b|) over the
// normalized token sets.  Zero when either side has no significant tokens.
func titleOverlapRatio(titleA, titleB string) float64 {
	tokensA := titleTokens(titleA)
	tokensB := titleTokens(titleB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	common := 0
	for t := range setA {
		if setB[t] {
			common++
		}
	}

	maxLen := len(setA)
	if len(setB) > maxLen {
		maxLen = len(setB)
	}
	return float64(common) / float64(maxLen)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scorer
// ─────────────────────────────────────────────────────────────────────────────

// Scorer computes the multi-factor similarity between two affair records.  It
// is deterministic, symmetric, and side-effect-free: the single point of
// truth for both automatic reconciliation and operator duplicate review.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer builds a scorer from the given weights.  Zero-valued weights are
// filled with the calibrated defaults.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	config.ApplyScoringDefaults(&cfg)
	return &Scorer{cfg: cfg}
}

// Config returns the effective scoring configuration.
func (s *Scorer) Config() config.ScoringConfig {
	return s.cfg
}

// Score compares two records and returns a bounded 0–100 score with the list
// of evidence reasons, or nil when the pair falls below the match floor.
//
// Exact stable identifiers short-circuit: a shared ECLI is a proof of
// identity regardless of every other field, a shared appeal-filing number is
// near-proof.  Otherwise independent dimensions accumulate additively and the
// total is capped at 100.
func (s *Scorer) Score(a, b Record) *DuplicateScore {
	// ── Exact stable identifiers ──────────────────────────────────────────────
	if ecliA := strings.TrimSpace(a.ECLI); ecliA != "" && ecliA == strings.TrimSpace(b.ECLI) {
		return &DuplicateScore{Score: 100, Reasons: []string{"ECLI identique"}}
	}
	if appealA := strings.TrimSpace(a.AppealNumber); appealA != "" && appealA == strings.TrimSpace(b.AppealNumber) {
		return &DuplicateScore{Score: 95, Reasons: []string{"Numéro de pourvoi identique"}}
	}

	total := 0
	var reasons []string

	// ── Case-number overlap ───────────────────────────────────────────────────
	if shared := sharedStrings(a.CaseNumbers, b.CaseNumbers); len(shared) > 0 {
		total += s.cfg.CaseNumberWeight
		reasons = append(reasons, "Numéros de dossier communs : "+strings.Join(shared, ", "))
	}

	// ── Title similarity ──────────────────────────────────────────────────────
	if ratio := titleOverlapRatio(a.Title, b.Title); ratio >= s.cfg.TitleMinRatio {
		total += int(math.Round(ratio * float64(s.cfg.TitleWeight)))
		reasons = append(reasons, fmt.Sprintf("Titres similaires à %d%%", int(math.Round(ratio*100))))
	}

	// ── Category ──────────────────────────────────────────────────────────────
	if a.Category != "" && a.Category == b.Category {
		total += s.cfg.CategoryWeight
		reasons = append(reasons, "Même catégorie d'infraction")
	}

	// ── Date proximity (tightest bracket only) ────────────────────────────────
	if dateA, dateB := a.PrimaryDate(), b.PrimaryDate(); dateA != nil && dateB != nil {
		days := int(math.Abs(dateA.Sub(*dateB).Hours()) / 24)
		switch {
		case days <= s.cfg.DateBracketTight:
			total += s.cfg.DateWeightTight
			reasons = append(reasons, fmt.Sprintf("Dates distantes de %d jours", days))
		case days <= s.cfg.DateBracketMedium:
			total += s.cfg.DateWeightMedium
			reasons = append(reasons, fmt.Sprintf("Dates distantes de %d jours", days))
		case days <= s.cfg.DateBracketWide:
			total += s.cfg.DateWeightWide
			reasons = append(reasons, fmt.Sprintf("Dates distantes de %d jours", days))
		}
	}

	// ── Shared source URLs ────────────────────────────────────────────────────
	if shared := sharedStrings(a.SourceURLs, b.SourceURLs); len(shared) > 0 {
		total += s.cfg.SourceOverlapWeight
		reasons = append(reasons, fmt.Sprintf("%d source(s) commune(s)", len(shared)))
	}

	if total < s.cfg.MatchFloor {
		return nil
	}
	if total > 100 {
		total = 100
	}
	return &DuplicateScore{Score: total, Reasons: reasons}
}

// Confidence buckets a score into a match-confidence level.  Reconciliation
// discards candidates at MatchHigh or above.
func (s *Scorer) Confidence(score int) atypes.MatchConfidence {
	switch {
	case score >= s.cfg.CertainThreshold:
		return atypes.MatchCertain
	case score >= s.cfg.HighThreshold:
		return atypes.MatchHigh
	case score >= s.cfg.MatchFloor:
		return atypes.MatchLow
	default:
		return atypes.MatchNone
	}
}

// sharedStrings returns the trimmed, non-empty values present in both lists,
// sorted for stable reason output.
func sharedStrings(listA, listB []string) []string {
	if len(listA) == 0 || len(listB) == 0 {
		return nil
	}
	setB := make(map[string]bool, len(listB))
	for _, v := range listB {
		if v = strings.TrimSpace(v); v != "" {
			setB[v] = true
		}
	}

	seen := make(map[string]bool)
	var shared []string
	for _, v := range listA {
		if v = strings.TrimSpace(v); v != "" && setB[v] && !seen[v] {
			seen[v] = true
			shared = append(shared, v)
		}
	}
	sort.Strings(shared)
	return shared
}
