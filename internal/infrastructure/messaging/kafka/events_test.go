package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lipinski-analyzer/internal/config"
	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/testutil"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

func TestEventPublisher_PublishCompleted(t *testing.T) {
	w := &mockKafkaWriter{}
	pub := NewEventPublisher(newProducer(w, ProducerConfig{Brokers: []string{"b"}}, nil), config.KafkaConfig{}, "apiserver")

	evt := compound.AnalysisCompleted{
		RunID:        "run-1",
		FileName:     "in.csv",
		SmilesColumn: "SMILES",
		Counts:       compound.Counts{Total: 3, Valid: 2, Invalid: 1, Pass: 2},
		CompletedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, pub.PublishCompleted(context.Background(), evt))

	sent := w.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, compound.TopicAnalysisCompleted, sent[0].Topic)
	assert.Equal(t, "run-1", string(sent[0].Key))

	var got compound.AnalysisCompleted
	env, err := DecodeEnvelope(sent[0].Value, EventAnalysisCompleted, &got)
	require.NoError(t, err)
	assert.Equal(t, "apiserver", env.Source)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, evt, got)
}

func TestEventPublisher_ConfiguredTopics(t *testing.T) {
	w := &mockKafkaWriter{}
	pub := NewEventPublisher(newProducer(w, ProducerConfig{Brokers: []string{"b"}}, nil),
		config.KafkaConfig{RequestedTopic: "req", CompletedTopic: "done"}, "test")

	require.NoError(t, pub.PublishRequested(context.Background(), compound.AnalysisRequested{ObjectKey: "uploads/x.csv"}))
	sent := w.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "req", sent[0].Topic)
	assert.Equal(t, "uploads/x.csv", string(sent[0].Key))
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	var req compound.AnalysisRequested

	_, err := DecodeEnvelope([]byte("{"), EventAnalysisRequested, &req)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	env, err := NewEnvelope(EventAnalysisCompleted, "s", map[string]string{})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)
	_, err = DecodeEnvelope(raw, EventAnalysisRequested, &req)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestRequestedHandler(t *testing.T) {
	logger := testutil.NewMockLogger()
	var got []compound.AnalysisRequested
	h := RequestedHandler(func(_ context.Context, req compound.AnalysisRequested) error {
		got = append(got, req)
		return nil
	}, logger)

	env, err := NewEnvelope(EventAnalysisRequested, "s", compound.AnalysisRequested{ObjectKey: "k", FileName: "a.csv", Column: "smi"})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)

	require.NoError(t, h(context.Background(), &Message{Topic: "in", Value: raw}))
	require.Len(t, got, 1)
	assert.Equal(t, "smi", got[0].Column)

	require.NoError(t, h(context.Background(), &Message{Topic: "in", Value: []byte("junk")}))
	assert.True(t, logger.HasMessage("warn", "Dropping malformed analysis request"))

	env, _ = NewEnvelope(EventAnalysisRequested, "s", compound.AnalysisRequested{})
	raw, _ = json.Marshal(env)
	require.NoError(t, h(context.Background(), &Message{Topic: "in", Value: raw}))
	assert.True(t, logger.HasMessage("warn", "Dropping analysis request without object key"))
	assert.Len(t, got, 1)
}

func TestRequestedHandler_PropagatesErrors(t *testing.T) {
	h := RequestedHandler(func(context.Context, compound.AnalysisRequested) error { return assert.AnError }, nil)
	env, _ := NewEnvelope(EventAnalysisRequested, "s", compound.AnalysisRequested{ObjectKey: "k"})
	raw, _ := json.Marshal(env)
	assert.ErrorIs(t, h(context.Background(), &Message{Value: raw}), assert.AnError)
}

//Personal.AI order the ending
