package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventAnalysisRequested = "analysis.requested"
	EventAnalysisCompleted = "analysis.completed"

	SchemaVersion = "1"
)

// EventEnvelope wraps every event payload.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       raw,
	}, nil
}

// DecodeEnvelope parses a message value and unmarshals its payload into dest
// after checking the event type.
func DecodeEnvelope(value []byte, eventType string, dest interface{}) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal event envelope")
	}
	if env.EventType != eventType {
		return nil, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q, want %q", env.EventType, eventType)
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal event payload")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Publisher
// ─────────────────────────────────────────────────────────────────────────────

// Publisher is the subset of Producer used by EventPublisher.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// EventPublisher emits analysis events.
type EventPublisher struct {
	producer       Publisher
	source         string
	requestedTopic string
	completedTopic string
}

// NewEventPublisher binds producer to the topics configured in cfg.
func NewEventPublisher(producer Publisher, cfg config.KafkaConfig, source string) *EventPublisher {
	p := &EventPublisher{
		producer:       producer,
		source:         source,
		requestedTopic: cfg.RequestedTopic,
		completedTopic: cfg.CompletedTopic,
	}
	if p.requestedTopic == "" {
		p.requestedTopic = compound.TopicAnalysisRequested
	}
	if p.completedTopic == "" {
		p.completedTopic = compound.TopicAnalysisCompleted
	}
	return p
}

// PublishRequested queues an uploaded file for analysis, keyed by object key.
func (p *EventPublisher) PublishRequested(ctx context.Context, evt compound.AnalysisRequested) error {
	return p.publish(ctx, p.requestedTopic, EventAnalysisRequested, evt.ObjectKey, evt)
}

// PublishCompleted announces a finished run, keyed by run ID.
func (p *EventPublisher) PublishCompleted(ctx context.Context, evt compound.AnalysisCompleted) error {
	return p.publish(ctx, p.completedTopic, EventAnalysisCompleted, evt.RunID, evt)
}

func (p *EventPublisher) publish(ctx context.Context, topic, eventType, key string, payload interface{}) error {
	env, err := NewEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}
	return p.producer.Publish(ctx, &Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"event_type": eventType,
			"event_id":   env.EventID,
		},
		Timestamp: env.Timestamp,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Request handling
// ─────────────────────────────────────────────────────────────────────────────

// RequestedHandler adapts fn into a Handler for the requested topic.
// Undecodable messages are logged and dropped since a retry cannot fix them.
func RequestedHandler(fn func(ctx context.Context, req compound.AnalysisRequested) error, log logging.Logger) Handler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(ctx context.Context, msg *Message) error {
		var req compound.AnalysisRequested
		env, err := DecodeEnvelope(msg.Value, EventAnalysisRequested, &req)
		if err != nil {
			log.Warn("Dropping malformed analysis request",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			return nil
		}
		if req.ObjectKey == "" {
			log.Warn("Dropping analysis request without object key", logging.String("event_id", env.EventID))
			return nil
		}
		return fn(ctx, req)
	}
}

//Personal.AI order the ending
