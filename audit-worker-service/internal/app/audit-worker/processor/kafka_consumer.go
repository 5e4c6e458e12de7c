package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pinemarket/audit-worker-service/internal/app/audit-worker/entity"
	"pinemarket/audit-worker-service/internal/app/audit-worker/service"
	"pinemarket/pkg/logger"
	"pinemarket/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer читает события каталога из топика catalog_events
// и передает их в сервис журнала аудита
type KafkaConsumer struct {
	reader   *kafka.Reader
	auditSvc service.AuditServiceInterface
	topic    string
	group    string
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	auditSvc service.AuditServiceInterface,
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
		reader:   reader,
		auditSvc: auditSvc,
		topic:    topic,
		group:    groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.group).Msg("starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и дожидается завершения цикла чтения
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
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
				// Таймаут чтения при пустом топике - штатная ситуация
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}

				metrics.KafkaErrors.WithLabelValues("audit-worker", c.topic, "consume").Inc()
				logger.Error().Err(err).Msg("failed to fetch message")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Msg("failed to process message")

				// Сообщение с неизвестным типом или без ID никогда не станет
				// валидным, его offset коммитится, чтобы не зациклиться
				if !errors.Is(err, service.ErrUnknownEventType) && !errors.Is(err, service.ErrEmptyRecordID) {
					continue
				}
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				metrics.KafkaErrors.WithLabelValues("audit-worker", c.topic, "consume").Inc()
				logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.CatalogEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		// Нечитаемое сообщение тоже не станет валидным при повторе
		logger.Warn().
			Err(err).
			Int64("offset", message.Offset).
			Msg("skipping malformed catalog event")
		return nil
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("record_id", event.RecordID).
		Int64("offset", message.Offset).
		Msg("received catalog event")

	if err := c.auditSvc.RecordEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to record catalog event: %w", err)
	}

	metrics.KafkaMessagesConsumed.WithLabelValues("audit-worker", c.topic, c.group).Inc()
	return nil
}

// GetStats возвращает статистику consumer для healthcheck
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
