package discovery

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/database/redis"
	"github.com/probite-fr/probite/internal/infrastructure/knowledge"
	"github.com/probite-fr/probite/internal/infrastructure/messaging/kafka"
	"github.com/probite-fr/probite/internal/infrastructure/storage/minio"
	"github.com/probite-fr/probite/internal/intelligence/extraction"
)

// ─────────────────────────────── knowledge ───────────────────────────────

type mockKnowledgeClient struct {
	getClaimsFn       func(ctx context.Context, externalID string, relations []string) ([]knowledge.Claim, error)
	getEntityLabelsFn func(ctx context.Context, ids []string) (map[string]string, error)
}

func (m *mockKnowledgeClient) GetClaims(ctx context.Context, externalID string, relations []string) ([]knowledge.Claim, error) {
	return m.getClaimsFn(ctx, externalID, relations)
}

func (m *mockKnowledgeClient) GetEntityLabels(ctx context.Context, ids []string) (map[string]string, error) {
	if m.getEntityLabelsFn == nil {
		return map[string]string{}, nil
	}
	return m.getEntityLabelsFn(ctx, ids)
}

// ─────────────────────────────── extraction ───────────────────────────────

type mockExtractionClient struct {
	findSectionsFn func(ctx context.Context, subjectName string) ([]extraction.Section, error)
	extractFn      func(ctx context.Context, subjectName, heading, rawText, pageURL string) ([]extraction.Extraction, error)
}

func (m *mockExtractionClient) FindJudicialSections(ctx context.Context, subjectName string) ([]extraction.Section, error) {
	return m.findSectionsFn(ctx, subjectName)
}

func (m *mockExtractionClient) Extract(ctx context.Context, subjectName, heading, rawText, pageURL string) ([]extraction.Extraction, error) {
	return m.extractFn(ctx, subjectName, heading, rawText, pageURL)
}

// ─────────────────────────────── archive ───────────────────────────────

type mockArchive struct {
	archived   []string
	archiveErr error
}

func (m *mockArchive) ArchiveSection(_ context.Context, subjectRef, heading, _, _ string) (string, error) {
	if m.archiveErr != nil {
		return "", m.archiveErr
	}
	key := subjectRef + "/" + heading
	m.archived = append(m.archived, key)
	return key, nil
}

func (m *mockArchive) FetchSection(context.Context, string) ([]byte, error) { return nil, nil }

func (m *mockArchive) StatSection(context.Context, string) (*minio.ArchivedSection, error) {
	return nil, nil
}

func (m *mockArchive) RemoveSection(context.Context, string) error { return nil }

// ─────────────────────────────── repositories ───────────────────────────────

type mockAffairRepo struct {
	mu           sync.Mutex
	existing     map[uuid.UUID][]*affair.PersistedAffair
	created      []*affair.PersistedAffair
	createErr    error
	slugExistsFn func(subjectID uuid.UUID, slug string) (bool, error)
	findErr      error
}

func newMockAffairRepo() *mockAffairRepo {
	return &mockAffairRepo{existing: map[uuid.UUID][]*affair.PersistedAffair{}}
}

func (m *mockAffairRepo) FindBySubject(_ context.Context, subjectID uuid.UUID) ([]*affair.PersistedAffair, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existing[subjectID], nil
}

func (m *mockAffairRepo) Create(_ context.Context, a *affair.PersistedAffair) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, a)
	m.existing[a.SubjectID] = append(m.existing[a.SubjectID], a)
	return nil
}

func (m *mockAffairRepo) SlugExists(_ context.Context, subjectID uuid.UUID, slug string) (bool, error) {
	if m.slugExistsFn != nil {
		return m.slugExistsFn(subjectID, slug)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.existing[subjectID] {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type mockSubjectRepo struct {
	subjects []*subject.Subject
	listErr  error
}

func (m *mockSubjectRepo) List(context.Context) ([]*subject.Subject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.subjects, nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id uuid.UUID) (*subject.Subject, error) {
	for _, s := range m.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

// ─────────────────────────────── locks ───────────────────────────────

type mockMutex struct {
	lockErr  error
	locks    *int
	unlocks  *int
	lockedMu *sync.Mutex
}

func (m *mockMutex) Lock(context.Context) error {
	if m.lockErr != nil {
		return m.lockErr
	}
	m.lockedMu.Lock()
	*m.locks++
	m.lockedMu.Unlock()
	return nil
}

func (m *mockMutex) TryLock(context.Context) (bool, error) { return m.lockErr == nil, m.lockErr }

func (m *mockMutex) Unlock(context.Context) error {
	m.lockedMu.Lock()
	*m.unlocks++
	m.lockedMu.Unlock()
	return nil
}

type mockLockFactory struct {
	mu      sync.Mutex
	names   []string
	locks   int
	unlocks int
	lockErr error
}

func (f *mockLockFactory) NewMutex(name string, _ ...redis.LockOption) redis.Mutex {
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()
	return &mockMutex{lockErr: f.lockErr, locks: &f.locks, unlocks: &f.unlocks, lockedMu: &f.mu}
}

// ─────────────────────────────── events ───────────────────────────────

type publishedEvent struct {
	topic   string
	key     string
	payload interface{}
}

type mockPublisher struct {
	mu         sync.Mutex
	events     []publishedEvent
	publishErr error
}

func (m *mockPublisher) Publish(_ context.Context, topic, key string, payload interface{}) (*kafka.EventEnvelope, error) {
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{topic: topic, key: key, payload: payload})
	return &kafka.EventEnvelope{EventType: topic}, nil
}

func (m *mockPublisher) byTopic(topic string) []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedEvent
	for _, e := range m.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}
