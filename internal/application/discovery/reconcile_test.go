package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

func newReconcilerWith(repo *mockAffairRepo, locks *mockLockFactory, publisher EventPublisher) *Reconciler {
	scorer := affair.NewScorer(config.DefaultScoring())
	return NewReconciler(repo, locks, scorer, publisher, nil, config.PipelineConfig{}, logging.NewNopLogger())
}

func structuredCandidate(subjectID uuid.UUID, title string, category atypes.Category) affair.CandidateAffair {
	return affair.CandidateAffair{
		SubjectID:       subjectID,
		Title:           title,
		Description:     "Description.",
		Category:        category,
		Status:          atypes.StatusConvicted,
		Involvement:     atypes.InvolvementDirect,
		Publication:     atypes.PublicationPublished,
		ConfidenceScore: 95,
		Origin:          affair.PhaseStructured,
		Sources: []affair.Source{{
			URL:  "https://kg.example.org/entity",
			Type: atypes.SourceStructured,
		}},
	}
}

func TestReconcileCreatesAffair(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()
	locks := &mockLockFactory{}
	publisher := &mockPublisher{}
	reconciler := newReconcilerWith(repo, locks, publisher)

	result := reconciler.Reconcile(context.Background(),
		[]affair.CandidateAffair{structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)})

	assert.Equal(t, 1, result.Created)
	assert.Zero(t, result.DuplicatesSkipped)
	assert.Empty(t, result.Errors)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "condamnation-pour-corruption", created.Slug)
	assert.Equal(t, subjectID, created.SubjectID)
	require.NotNil(t, created.VerifiedAt) // published on creation

	// Lock taken and released around the check-and-insert.
	assert.Equal(t, []string{"subject:" + subjectID.String()}, locks.names)
	assert.Equal(t, 1, locks.locks)
	assert.Equal(t, 1, locks.unlocks)

	events := publisher.byTopic(kafka.TopicAffairCreated)
	require.Len(t, events, 1)
	payload := events[0].payload.(kafka.AffairCreatedPayload)
	assert.Equal(t, "condamnation-pour-corruption", payload.Slug)
	assert.Equal(t, subjectID.String(), events[0].key)
}

func TestReconcileDraftHasNoVerifiedAt(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()
	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)

	candidate := structuredCandidate(subjectID, affair.UnverifiedPrefix+"Mise en examen pour fraude", atypes.CategoryTaxFraud)
	candidate.Publication = atypes.PublicationDraft
	candidate.Involvement = atypes.InvolvementMentioned
	candidate.Status = atypes.StatusCharged
	candidate.ConfidenceScore = 75

	result := reconciler.Reconcile(context.Background(), []affair.CandidateAffair{candidate})
	assert.Equal(t, 1, result.Created)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].VerifiedAt)
}

func TestReconcileSkipsHighConfidenceDuplicate(t *testing.T) {
	subjectID := uuid.New()
	candidate := structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)
	candidate.ECLI = "ECLI:FR:CCASS:2019:CR01234"

	existing := candidate.ToPersisted("condamnation-pour-corruption", time.Now())
	repo := newMockAffairRepo()
	repo.existing[subjectID] = []*affair.PersistedAffair{existing}

	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)
	result := reconciler.Reconcile(context.Background(), []affair.CandidateAffair{candidate})

	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Empty(t, result.Errors)
	assert.Empty(t, repo.created)
}

func TestReconcileLowConfidenceMatchStillCreates(t *testing.T) {
	subjectID := uuid.New()
	candidate := structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)

	// Same category only: +15, below the floor, not a duplicate.
	other := structuredCandidate(subjectID, "Affaire des marchés publics lyonnais", atypes.CategoryCorruption)
	repo := newMockAffairRepo()
	repo.existing[subjectID] = []*affair.PersistedAffair{other.ToPersisted("affaire-des-marches-publics-lyonnais", time.Now())}

	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)
	result := reconciler.Reconcile(context.Background(), []affair.CandidateAffair{candidate})

	assert.Equal(t, 1, result.Created)
	assert.Zero(t, result.DuplicatesSkipped)
}

func TestReconcileResolvesSlugCollision(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()

	// An unrelated affair already owns the base slug.
	occupant := structuredCandidate(subjectID, "Affaire distincte", atypes.CategoryDefamation)
	persisted := occupant.ToPersisted("condamnation-pour-corruption", time.Now())
	repo.existing[subjectID] = []*affair.PersistedAffair{persisted}

	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)
	result := reconciler.Reconcile(context.Background(),
		[]affair.CandidateAffair{structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)})

	assert.Equal(t, 1, result.Created)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "condamnation-pour-corruption-2", repo.created[0].Slug)
}

func TestReconcileSlugAttemptsExhausted(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()
	repo.slugExistsFn = func(uuid.UUID, string) (bool, error) { return true, nil }

	scorer := affair.NewScorer(config.DefaultScoring())
	reconciler := NewReconciler(repo, &mockLockFactory{}, scorer, nil, nil,
		config.PipelineConfig{SlugMaxAttempts: 3}, logging.NewNopLogger())

	result := reconciler.Reconcile(context.Background(),
		[]affair.CandidateAffair{structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)})

	assert.Zero(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Condamnation pour corruption")
	assert.Empty(t, repo.created)
}

func TestReconcileCreateFailureIsReportedAndBatchContinues(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()
	repo.createErr = assert.AnError

	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)
	result := reconciler.Reconcile(context.Background(), []affair.CandidateAffair{
		structuredCandidate(subjectID, "Première affaire", atypes.CategoryCorruption),
		structuredCandidate(uuid.New(), "Seconde affaire", atypes.CategoryTaxFraud),
	})

	assert.Zero(t, result.Created)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Première affaire")
	assert.Contains(t, result.Errors[1], "Seconde affaire")
}

func TestReconcileLockFailureIsReported(t *testing.T) {
	repo := newMockAffairRepo()
	locks := &mockLockFactory{lockErr: assert.AnError}

	reconciler := newReconcilerWith(repo, locks, nil)
	result := reconciler.Reconcile(context.Background(),
		[]affair.CandidateAffair{structuredCandidate(uuid.New(), "Affaire verrouillée", atypes.CategoryCorruption)})

	assert.Zero(t, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Empty(t, repo.created)
}

func TestReconcilePublishFailureIsNonFatal(t *testing.T) {
	repo := newMockAffairRepo()
	publisher := &mockPublisher{publishErr: assert.AnError}

	reconciler := newReconcilerWith(repo, &mockLockFactory{}, publisher)
	result := reconciler.Reconcile(context.Background(),
		[]affair.CandidateAffair{structuredCandidate(uuid.New(), "Affaire sans événement", atypes.CategoryCorruption)})

	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
}

func TestReconcileSecondCandidateSeesFirstInsert(t *testing.T) {
	subjectID := uuid.New()
	repo := newMockAffairRepo()
	reconciler := newReconcilerWith(repo, &mockLockFactory{}, nil)

	first := structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)
	second := structuredCandidate(subjectID, "Condamnation pour corruption", atypes.CategoryCorruption)

	result := reconciler.Reconcile(context.Background(), []affair.CandidateAffair{first, second})

	// The second identical candidate matches the one just created.
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.DuplicatesSkipped)
}
