package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"expertaid/pkg/metrics"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/service"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer обрабатывает события из топика request_events.
// Репутация пересчитывается на REQUEST_FEEDBACK; остальные типы
// событий подтверждаются и пропускаются
type KafkaConsumer struct {
	reader        *kafka.Reader
	reputationSvc service.ReputationServiceInterface
	stopChan      chan struct{}
	doneChan      chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	reputationSvc service.ReputationServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:        reader,
		reputationSvc: reputationSvc,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	log.Println("Starting Kafka consumer...")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	log.Println("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	log.Println("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}

				log.Printf("Error fetching message: %v", err)
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				log.Printf("Error processing message: %v", err)
				// Offset не коммитится - сообщение будет обработано повторно
			} else {
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					log.Printf("Error committing message: %v", err)
				}
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.RequestEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		metrics.WorkerEventsProcessed.WithLabelValues("unknown", "failed").Inc()
		return fmt.Errorf("failed to unmarshal request event: %w", err)
	}

	log.Printf("Received %s event for request %s (offset: %d, partition: %d)",
		event.EventType, event.RequestID, message.Offset, message.Partition)

	// Репутацию меняет только отзыв
	if event.EventType != entity.EventRequestFeedback {
		metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "skipped").Inc()
		return nil
	}

	// Отзыв без эксперта невозможен при нормальной работе producer
	if event.ExpertID == nil {
		metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "skipped").Inc()
		log.Printf("WARNING: %s event for request %s has no expert_id, skipping", event.EventType, event.RequestID)
		return nil
	}

	if err := c.reputationSvc.RecomputeExpert(ctx, *event.ExpertID); err != nil {
		metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "failed").Inc()
		return fmt.Errorf("failed to recompute reputation: %w", err)
	}

	metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "success").Inc()
	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
