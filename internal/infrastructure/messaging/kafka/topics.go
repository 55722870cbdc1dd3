// Package kafka publishes pipeline lifecycle events.  Downstream consumers
// (cache invalidation, notifications) live outside this system; only the
// producer side is implemented here.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/pkg/errors"
)

// Topics emitted by the discovery pipeline.
const (
	// TopicAffairCreated fires for every affair the reconciliation engine
	// persists.
	TopicAffairCreated = "affair.created"

	// TopicDiscoveryCompleted fires once per pipeline run with the batch
	// summary.
	TopicDiscoveryCompleted = "discovery.completed"
)

// EventEnvelope standardizes event messages across topics.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// AffairCreatedPayload is the payload of TopicAffairCreated.
type AffairCreatedPayload struct {
	AffairID          string    `json:"affair_id"`
	SubjectID         string    `json:"subject_id"`
	Slug              string    `json:"slug"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	PublicationStatus string    `json:"publication_status"`
	OriginPhase       string    `json:"origin_phase"`
	CreatedAt         time.Time `json:"created_at"`
}

// DiscoveryCompletedPayload is the payload of TopicDiscoveryCompleted.
type DiscoveryCompletedPayload struct {
	SubjectsProcessed         int       `json:"subjects_processed"`
	StructuredCandidatesFound int       `json:"structured_candidates_found"`
	TextCandidatesFound       int       `json:"text_candidates_found"`
	DuplicatesSkipped         int       `json:"duplicates_skipped"`
	AffairsCreated            int       `json:"affairs_created"`
	ErrorCount                int       `json:"error_count"`
	StartedAt                 time.Time `json:"started_at"`
	FinishedAt                time.Time `json:"finished_at"`
}

// NewEventEnvelope wraps a payload in a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "envelope payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload")
	}
	return nil
}
