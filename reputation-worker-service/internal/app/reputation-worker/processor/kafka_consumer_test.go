package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

// ===================== NewKafkaConsumer Tests =====================

func TestNewKafkaConsumer(t *testing.T) {
	reputationSvc := new(MockReputationService)

	consumer := NewKafkaConsumer(
		[]string{"localhost:9092"},
		"request_events",
		"test-group",
		1,
		10e6,
		reputationSvc,
	)

	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.reputationSvc)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)

	consumer.reader.Close()
}

// ===================== processMessage Tests =====================

func TestKafkaConsumer_ProcessMessage_FeedbackTriggersRecompute(t *testing.T) {
	reputationSvc := new(MockReputationService)
	consumer := &KafkaConsumer{
		reputationSvc: reputationSvc,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}

	ctx := context.Background()
	requestID := uuid.New()
	expertID := uuid.New()
	rating := 5

	event := entity.RequestEvent{
		EventType: entity.EventRequestFeedback,
		RequestID: requestID,
		UserID:    uuid.New(),
		ExpertID:  uuidPtr(expertID),
		Status:    "done",
		Rating:    &rating,
		Timestamp: time.Now(),
	}
	eventJSON, _ := json.Marshal(event)

	message := kafka.Message{
		Topic:     "request_events",
		Partition: 0,
		Offset:    1,
		Key:       []byte(requestID.String()),
		Value:     eventJSON,
	}

	reputationSvc.On("RecomputeExpert", ctx, expertID).Return(nil)

	err := consumer.processMessage(ctx, message)

	assert.NoError(t, err)
	reputationSvc.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_NonFeedbackEventsAreSkipped(t *testing.T) {
	reputationSvc := new(MockReputationService)
	consumer := &KafkaConsumer{reputationSvc: reputationSvc}

	ctx := context.Background()

	skipped := []string{
		entity.EventRequestCreated,
		entity.EventRequestAccepted,
		entity.EventRequestCompleted,
		entity.EventRequestRejected,
	}

	for _, eventType := range skipped {
		event := entity.RequestEvent{
			EventType: eventType,
			RequestID: uuid.New(),
			ExpertID:  uuidPtr(uuid.New()),
		}
		eventJSON, _ := json.Marshal(event)

		err := consumer.processMessage(ctx, kafka.Message{Value: eventJSON})
		assert.NoError(t, err, "event %s should be skipped without error", eventType)
	}

	reputationSvc.AssertNotCalled(t, "RecomputeExpert", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_FeedbackWithoutExpertIsSkipped(t *testing.T) {
	reputationSvc := new(MockReputationService)
	consumer := &KafkaConsumer{reputationSvc: reputationSvc}

	ctx := context.Background()

	event := entity.RequestEvent{
		EventType: entity.EventRequestFeedback,
		RequestID: uuid.New(),
		ExpertID:  nil,
	}
	eventJSON, _ := json.Marshal(event)

	err := consumer.processMessage(ctx, kafka.Message{Value: eventJSON})

	assert.NoError(t, err)
	reputationSvc.AssertNotCalled(t, "RecomputeExpert", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	reputationSvc := new(MockReputationService)
	consumer := &KafkaConsumer{reputationSvc: reputationSvc}

	ctx := context.Background()

	err := consumer.processMessage(ctx, kafka.Message{Value: []byte("invalid json {{{")})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
	reputationSvc.AssertNotCalled(t, "RecomputeExpert", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_RecomputeError(t *testing.T) {
	reputationSvc := new(MockReputationService)
	consumer := &KafkaConsumer{reputationSvc: reputationSvc}

	ctx := context.Background()
	expertID := uuid.New()

	event := entity.RequestEvent{
		EventType: entity.EventRequestFeedback,
		RequestID: uuid.New(),
		ExpertID:  uuidPtr(expertID),
	}
	eventJSON, _ := json.Marshal(event)

	reputationSvc.On("RecomputeExpert", ctx, expertID).Return(errors.New("db down"))

	err := consumer.processMessage(ctx, kafka.Message{Value: eventJSON})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to recompute")
}

// ===================== Start/Stop Tests =====================

func TestKafkaConsumer_StartStop(t *testing.T) {
	// Graceful shutdown без реального Kafka
	reputationSvc := new(MockReputationService)

	consumer := &KafkaConsumer{
		reputationSvc: reputationSvc,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}

	go func() {
		<-consumer.stopChan
		close(consumer.doneChan)
	}()

	close(consumer.stopChan)
	<-consumer.doneChan

	assert.NotNil(t, consumer)
}

// ===================== GetStats Tests =====================

func TestKafkaConsumer_GetStats(t *testing.T) {
	reputationSvc := new(MockReputationService)

	consumer := NewKafkaConsumer(
		[]string{"localhost:9092"},
		"request_events",
		"test-group",
		1,
		10e6,
		reputationSvc,
	)

	stats := consumer.GetStats()

	assert.Equal(t, "request_events", stats.Topic)

	consumer.reader.Close()
}
