package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/offense"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/knowledge"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

func newTestSubject(name, kgID string) *subject.Subject {
	return &subject.Subject{
		ID:               uuid.New(),
		FullName:         name,
		KnowledgeGraphID: kgID,
		EncyclopediaURL:  "https://fr.wikipedia.org/wiki/" + strings.ReplaceAll(name, " ", "_"),
	}
}

func newStructuredIngester(kg knowledge.Client) *StructuredIngester {
	return NewStructuredIngester(kg, offense.NewClassifier(), config.PipelineConfig{}, logging.NewNopLogger())
}

func TestStructuredIngestConvictionClaim(t *testing.T) {
	subj := newTestSubject("Jean Dupont", "Q290244")
	kg := &mockKnowledgeClient{
		getClaimsFn: func(_ context.Context, externalID string, relations []string) ([]knowledge.Claim, error) {
			assert.Equal(t, "Q290244", externalID)
			assert.Equal(t, []string{knowledge.RelationConvictedOf, knowledge.RelationChargedWith}, relations)
			return []knowledge.Claim{{
				Relation:        atypes.ClaimConvictedOf,
				OffenseEntityID: "Q25437",
				EntityURL:       "https://kg.example.org/Q290244",
			}}, nil
		},
		getEntityLabelsFn: func(_ context.Context, ids []string) (map[string]string, error) {
			assert.Equal(t, []string{"Q25437"}, ids)
			return map[string]string{"Q25437": "corruption"}, nil
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	require.Empty(t, errs)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, subj.ID, got.SubjectID)
	assert.Equal(t, "Condamnation pour corruption", got.Title)
	assert.Equal(t, atypes.CategoryCorruption, got.Category)
	assert.Equal(t, atypes.StatusConvicted, got.Status)
	assert.Equal(t, atypes.InvolvementDirect, got.Involvement)
	assert.Equal(t, atypes.PublicationPublished, got.Publication)
	assert.Equal(t, 95, got.ConfidenceScore)
	assert.Equal(t, affair.PhaseStructured, got.Origin)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://kg.example.org/Q290244", got.Sources[0].URL)
	assert.Equal(t, atypes.SourceStructured, got.Sources[0].Type)
}

func TestStructuredIngestChargeClaim(t *testing.T) {
	subj := newTestSubject("Jean Dupont", "Q290244")
	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return []knowledge.Claim{{
				Relation:        atypes.ClaimChargedWith,
				OffenseEntityID: "Q1143761",
				EntityURL:       "https://kg.example.org/Q290244",
			}}, nil
		},
		getEntityLabelsFn: func(context.Context, []string) (map[string]string, error) {
			return map[string]string{"Q1143761": "trafic d'influence"}, nil
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	require.Empty(t, errs)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.True(t, strings.HasPrefix(got.Title, affair.UnverifiedPrefix))
	assert.True(t, strings.HasPrefix(got.Description, affair.UnverifiedPrefix))
	assert.Equal(t, atypes.StatusCharged, got.Status)
	assert.Equal(t, atypes.InvolvementMentioned, got.Involvement)
	assert.Equal(t, atypes.PublicationDraft, got.Publication)
	assert.Equal(t, 75, got.ConfidenceScore)
}

func TestStructuredIngestSkipsSubjectsWithoutKnowledgeGraphID(t *testing.T) {
	called := false
	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			called = true
			return nil, nil
		},
	}

	subj := newTestSubject("Anonyme Personne", "")
	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	assert.Empty(t, candidates)
	assert.Empty(t, errs)
	assert.False(t, called)
}

func TestStructuredIngestCollectsPerSubjectErrors(t *testing.T) {
	failing := newTestSubject("Jean Dupont", "Q1")
	working := newTestSubject("Marie Durand", "Q2")

	kg := &mockKnowledgeClient{
		getClaimsFn: func(_ context.Context, externalID string, _ []string) ([]knowledge.Claim, error) {
			if externalID == "Q1" {
				return nil, assert.AnError
			}
			return []knowledge.Claim{{
				Relation:        atypes.ClaimConvictedOf,
				OffenseEntityID: "Q2317887",
				EntityURL:       "https://kg.example.org/Q2",
			}}, nil
		},
		getEntityLabelsFn: func(context.Context, []string) (map[string]string, error) {
			return map[string]string{"Q2317887": "fraude fiscale"}, nil
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{failing, working})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Jean Dupont")
	require.Len(t, candidates, 1)
	assert.Equal(t, working.ID, candidates[0].SubjectID)
}

func TestStructuredIngestFallsBackToClassifierLabel(t *testing.T) {
	subj := newTestSubject("Jean Dupont", "Q290244")
	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return []knowledge.Claim{{
				Relation:        atypes.ClaimConvictedOf,
				OffenseEntityID: "Q1129474",
				EntityURL:       "https://kg.example.org/Q290244",
			}}, nil
		},
		getEntityLabelsFn: func(context.Context, []string) (map[string]string, error) {
			return map[string]string{}, nil // label service returned nothing
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	require.Empty(t, errs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Condamnation pour détournement de fonds publics", candidates[0].Title)
	assert.Equal(t, atypes.CategoryEmbezzlement, candidates[0].Category)
}

func TestStructuredIngestDropsClaimsWithoutEntityURL(t *testing.T) {
	subj := newTestSubject("Jean Dupont", "Q290244")
	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return []knowledge.Claim{{
				Relation:        atypes.ClaimConvictedOf,
				OffenseEntityID: "Q25437",
				EntityURL:       "",
			}}, nil
		},
		getEntityLabelsFn: func(context.Context, []string) (map[string]string, error) {
			return map[string]string{"Q25437": "corruption"}, nil
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	assert.Empty(t, errs)
	assert.Empty(t, candidates)
}

func TestStructuredIngestBatchesLabelLookup(t *testing.T) {
	subj := newTestSubject("Jean Dupont", "Q290244")
	var lookups int
	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return []knowledge.Claim{
				{Relation: atypes.ClaimConvictedOf, OffenseEntityID: "Q25437", EntityURL: "https://kg.example.org/a"},
				{Relation: atypes.ClaimConvictedOf, OffenseEntityID: "Q25437", EntityURL: "https://kg.example.org/b"},
				{Relation: atypes.ClaimChargedWith, OffenseEntityID: "Q41397", EntityURL: "https://kg.example.org/c"},
			}, nil
		},
		getEntityLabelsFn: func(_ context.Context, ids []string) (map[string]string, error) {
			lookups++
			assert.ElementsMatch(t, []string{"Q25437", "Q41397"}, ids)
			return map[string]string{"Q25437": "corruption", "Q41397": "diffamation"}, nil
		},
	}

	candidates, errs := newStructuredIngester(kg).Ingest(context.Background(), []*subject.Subject{subj})
	require.Empty(t, errs)
	assert.Len(t, candidates, 3)
	assert.Equal(t, 1, lookups)
}
