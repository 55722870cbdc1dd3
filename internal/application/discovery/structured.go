// Package discovery implements the three-phase judicial-affair discovery
// pipeline: structured claim ingestion, unstructured text extraction, and
// reconciliation against the persisted affair store.
package discovery

import (
	"context"
	"fmt"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/offense"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/knowledge"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// claimRelations are the knowledge-graph relations the ingester consumes.
var claimRelations = []string{knowledge.RelationConvictedOf, knowledge.RelationChargedWith}

// StructuredIngester turns knowledge-graph judicial claims into candidate
// affairs (Phase 1).
type StructuredIngester struct {
	kg         knowledge.Client
	classifier *offense.Classifier
	cfg        config.PipelineConfig
	logger     logging.Logger
}

// NewStructuredIngester wires the Phase-1 ingester.
func NewStructuredIngester(kg knowledge.Client, classifier *offense.Classifier,
	cfg config.PipelineConfig, log logging.Logger) *StructuredIngester {
	if cfg.ConvictionConfidence == 0 {
		cfg.ConvictionConfidence = config.DefaultConvictionConfidence
	}
	if cfg.ChargeConfidence == 0 {
		cfg.ChargeConfidence = config.DefaultChargeConfidence
	}
	return &StructuredIngester{kg: kg, classifier: classifier, cfg: cfg, logger: log}
}

// Ingest processes every subject that carries a knowledge-graph id.  One
// failing subject does not stop the batch: its error is collected and the
// next subject is processed.
func (s *StructuredIngester) Ingest(ctx context.Context, subjects []*subject.Subject) ([]affair.CandidateAffair, []string) {
	var candidates []affair.CandidateAffair
	var errs []string

	for _, subj := range subjects {
		if !subj.HasKnowledgeGraphID() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("structured ingestion interrupted: %v", err))
			return candidates, errs
		}

		subjectCandidates, err := s.ingestSubject(ctx, subj)
		if err != nil {
			errs = append(errs, fmt.Sprintf("subject %s: %v", subj.FullName, err))
			continue
		}
		candidates = append(candidates, subjectCandidates...)
	}
	return candidates, errs
}

func (s *StructuredIngester) ingestSubject(ctx context.Context, subj *subject.Subject) ([]affair.CandidateAffair, error) {
	claims, err := s.kg.GetClaims(ctx, subj.KnowledgeGraphID, claimRelations)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, nil
	}

	// Resolve offense labels in one batched, cached call.
	ids := make([]string, 0, len(claims))
	seen := map[string]struct{}{}
	for _, claim := range claims {
		if _, ok := seen[claim.OffenseEntityID]; ok {
			continue
		}
		seen[claim.OffenseEntityID] = struct{}{}
		ids = append(ids, claim.OffenseEntityID)
	}
	labels, err := s.kg.GetEntityLabels(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]affair.CandidateAffair, 0, len(claims))
	for _, claim := range claims {
		label := labels[claim.OffenseEntityID]
		if label == "" {
			label = s.classifier.Label(claim.OffenseEntityID)
		}

		candidate := s.buildCandidate(subj, claim, label)
		if err := candidate.Validate(); err != nil {
			s.logger.Warn("dropping invalid structured candidate",
				logging.String("subject", subj.FullName),
				logging.String("offense", claim.OffenseEntityID),
				logging.Err(err))
			continue
		}
		candidates = append(candidates, candidate)
	}

	s.logger.Debug("structured claims ingested",
		logging.String("subject", subj.FullName),
		logging.Int("claims", len(claims)),
		logging.Int("candidates", len(candidates)))
	return candidates, nil
}

func (s *StructuredIngester) buildCandidate(subj *subject.Subject, claim knowledge.Claim, label string) affair.CandidateAffair {
	category, status := s.classifier.Classify(claim.OffenseEntityID, claim.Relation)

	candidate := affair.CandidateAffair{
		SubjectID: subj.ID,
		Category:  category,
		Status:    status,
		Origin:    affair.PhaseStructured,
		Sources: []affair.Source{{
			URL:       claim.EntityURL,
			Title:     label,
			Publisher: "base de connaissances",
			Type:      atypes.SourceStructured,
		}},
	}

	if claim.Relation == atypes.ClaimConvictedOf {
		candidate.Title = "Condamnation pour " + label
		candidate.Description = fmt.Sprintf("%s a été condamné·e pour %s selon les données structurées publiques.", subj.FullName, label)
		candidate.Involvement = atypes.InvolvementDirect
		candidate.Publication = atypes.PublicationPublished
		candidate.ConfidenceScore = s.cfg.ConvictionConfidence
	} else {
		candidate.Title = affair.UnverifiedPrefix + "Mise en examen pour " + label
		candidate.Description = affair.UnverifiedPrefix + fmt.Sprintf("%s serait mis·e en examen pour %s ; information non confirmée par une source primaire.", subj.FullName, label)
		candidate.Involvement = atypes.InvolvementMentioned
		candidate.Publication = atypes.PublicationDraft
		candidate.ConfidenceScore = s.cfg.ChargeConfidence
	}
	return candidate
}
