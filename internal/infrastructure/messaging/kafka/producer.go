package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

// WriterInterface abstracts the kafka writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ProducerMetrics tracks publish outcomes.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// Producer publishes event envelopes to kafka topics.
type Producer struct {
	writer  WriterInterface
	source  string
	logger  logging.Logger
	metrics ProducerMetrics
	closed  atomic.Bool
}

// NewProducer builds a Producer backed by a kafka-go writer.
func NewProducer(cfg config.KafkaConfig, source string, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers must not be empty")
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		WriteTimeout: writeTimeout,
		BatchSize:    batchSize,
		MaxAttempts:  retries,
		RequiredAcks: kafkago.RequireAll,
		Compression:  kafkago.Snappy,
	}
	return &Producer{writer: writer, source: source, logger: logger}, nil
}

// NewProducerWithWriter is used in tests to inject a mock writer.
func NewProducerWithWriter(writer WriterInterface, source string, logger logging.Logger) *Producer {
	return &Producer{writer: writer, source: source, logger: logger}
}

// Publish wraps payload in an envelope keyed by key and writes it to topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) (*EventEnvelope, error) {
	if p.closed.Load() {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "kafka producer is closed")
	}
	envelope, err := NewEventEnvelope(topic, p.source, payload)
	if err != nil {
		return nil, err
	}
	if err := p.publishEnvelope(ctx, topic, key, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

func (p *Producer) publishEnvelope(ctx context.Context, topic, key string, envelope *EventEnvelope) error {
	msg, err := toKafkaMessage(topic, key, envelope)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		p.logger.Error("kafka publish failed",
			logging.String("topic", topic),
			logging.String("event_id", envelope.EventID),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish event")
	}
	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", envelope.EventID),
		logging.String("event_type", envelope.EventType))
	return nil
}

// Metrics returns a snapshot of publish counters.
func (p *Producer) Metrics() (sent, failed, bytes int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load(), p.metrics.BytesSent.Load()
}

// Close shuts down the underlying writer.  Safe to call more than once.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to close kafka writer")
	}
	return nil
}

func toKafkaMessage(topic, key string, envelope *EventEnvelope) (kafkago.Message, error) {
	value, err := json.Marshal(envelope)
	if err != nil {
		return kafkago.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	msg := kafkago.Message{
		Topic: topic,
		Value: value,
		Time:  envelope.Timestamp,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(envelope.EventID)},
			{Key: "event_type", Value: []byte(envelope.EventType)},
			{Key: "schema_version", Value: []byte(envelope.SchemaVersion)},
		},
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}
