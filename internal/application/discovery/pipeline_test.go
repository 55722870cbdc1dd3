package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/offense"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/knowledge"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/intelligence/extraction"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// fullPipeline wires a pipeline whose knowledge graph yields one conviction
// for Jean Dupont and whose extraction yields one corruption record (same
// category, dropped by dedup) plus one tax-fraud record.
func fullPipeline(t *testing.T) (*Pipeline, *mockAffairRepo, *mockPublisher) {
	t.Helper()

	jean := newTestSubject("Jean Dupont", "Q100")
	marie := newTestSubject("Marie Durand", "") // no knowledge-graph id

	subjects := &mockSubjectRepo{subjects: []*subject.Subject{jean, marie}}

	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return []knowledge.Claim{{
				Relation:        atypes.ClaimConvictedOf,
				OffenseEntityID: "Q25437",
				EntityURL:       "https://kg.example.org/Q100",
			}}, nil
		},
		getEntityLabelsFn: func(context.Context, []string) (map[string]string, error) {
			return map[string]string{"Q25437": "corruption"}, nil
		},
	}

	extractor := &mockExtractionClient{
		findSectionsFn: func(_ context.Context, name string) ([]extraction.Section, error) {
			if name != "Jean Dupont" {
				return nil, nil
			}
			return []extraction.Section{{
				Heading: "Affaires judiciaires",
				RawText: "Texte.",
				PageURL: "https://fr.wikipedia.org/wiki/Jean_Dupont",
			}}, nil
		},
		extractFn: func(context.Context, string, string, string, string) ([]extraction.Extraction, error) {
			corruption := validExtraction() // duplicates the structured claim
			taxFraud := validExtraction()
			taxFraud.Title = "Redressement pour fraude fiscale"
			taxFraud.Category = atypes.CategoryTaxFraud
			return []extraction.Extraction{corruption, taxFraud}, nil
		},
	}

	repo := newMockAffairRepo()
	publisher := &mockPublisher{}
	log := logging.NewNopLogger()

	structured := NewStructuredIngester(kg, offense.NewClassifier(), config.PipelineConfig{}, log)
	textual := NewTextExtractor(extractor, nil, config.PipelineConfig{}, log)
	reconciler := NewReconciler(repo, &mockLockFactory{}, affair.NewScorer(config.DefaultScoring()),
		publisher, nil, config.PipelineConfig{}, log)

	return NewPipeline(subjects, structured, textual, reconciler, publisher, nil, log), repo, publisher
}

func TestPipelineRunEndToEnd(t *testing.T) {
	pipeline, repo, publisher := fullPipeline(t)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	// One affair.created per persisted affair plus the batch completion event.
	assert.Len(t, publisher.byTopic(kafka.TopicAffairCreated), 2)
	assert.Equal(t, 2, summary.SubjectsProcessed)
	assert.Equal(t, 1, summary.StructuredCandidatesFound)
	// The corruption extraction duplicates the structured claim by
	// (subject, category); only the tax-fraud one survives Phase 2.
	assert.Equal(t, 1, summary.TextCandidatesFound)
	assert.Equal(t, 2, summary.AffairsCreated)
	assert.Zero(t, summary.DuplicatesSkipped)
	assert.Empty(t, summary.Errors)

	require.Len(t, repo.created, 2)
	assert.Equal(t, "condamnation-pour-corruption", repo.created[0].Slug)
	assert.Equal(t, atypes.PublicationPublished, repo.created[0].Publication)
	assert.Equal(t, "a-verifier-redressement-pour-fraude-fiscale", repo.created[1].Slug)
	assert.Equal(t, atypes.PublicationDraft, repo.created[1].Publication)
}

func TestPipelineRunPublishesCompletionEvent(t *testing.T) {
	pipeline, _, publisher := fullPipeline(t)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	events := publisher.byTopic(kafka.TopicDiscoveryCompleted)
	require.Len(t, events, 1)
	payload := events[0].payload.(kafka.DiscoveryCompletedPayload)
	assert.Equal(t, summary.SubjectsProcessed, payload.SubjectsProcessed)
	assert.Equal(t, summary.AffairsCreated, payload.AffairsCreated)
	assert.False(t, payload.FinishedAt.Before(payload.StartedAt))

	created := publisher.byTopic(kafka.TopicAffairCreated)
	assert.Len(t, created, 2)
}

func TestPipelineRunIsIdempotentOnRerun(t *testing.T) {
	pipeline, repo, _ := fullPipeline(t)

	first, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.AffairsCreated)

	second, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.AffairsCreated)
	assert.Equal(t, 2, second.DuplicatesSkipped)
	assert.Len(t, repo.created, 2)
}

func TestPipelineRunSubjectListFailureIsFatal(t *testing.T) {
	log := logging.NewNopLogger()
	subjects := &mockSubjectRepo{listErr: assert.AnError}
	pipeline := NewPipeline(subjects, nil, nil, nil, nil, nil, log)

	_, err := pipeline.Run(context.Background())
	require.Error(t, err)
}

func TestPipelineRunAggregatesPhaseErrors(t *testing.T) {
	jean := newTestSubject("Jean Dupont", "Q100")
	subjects := &mockSubjectRepo{subjects: []*subject.Subject{jean}}

	kg := &mockKnowledgeClient{
		getClaimsFn: func(context.Context, string, []string) ([]knowledge.Claim, error) {
			return nil, assert.AnError
		},
	}
	extractor := &mockExtractionClient{
		findSectionsFn: func(context.Context, string) ([]extraction.Section, error) {
			return nil, assert.AnError
		},
	}

	log := logging.NewNopLogger()
	pipeline := NewPipeline(subjects,
		NewStructuredIngester(kg, offense.NewClassifier(), config.PipelineConfig{}, log),
		NewTextExtractor(extractor, nil, config.PipelineConfig{}, log),
		NewReconciler(newMockAffairRepo(), &mockLockFactory{}, affair.NewScorer(config.DefaultScoring()),
			nil, nil, config.PipelineConfig{}, log),
		nil, nil, log)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Errors, 2)
	assert.Zero(t, summary.AffairsCreated)
}
