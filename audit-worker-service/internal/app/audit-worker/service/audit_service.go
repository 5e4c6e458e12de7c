package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pinemarket/audit-worker-service/internal/app/audit-worker/entity"
	"pinemarket/audit-worker-service/internal/app/audit-worker/repository"
	"pinemarket/pkg/logger"
)

var (
	// ErrUnknownEventType - событие с неизвестным типом не пишется в журнал
	ErrUnknownEventType = errors.New("unknown catalog event type")
	// ErrEmptyRecordID - событие без идентификатора записи бесполезно в журнале
	ErrEmptyRecordID = errors.New("catalog event has empty record id")
)

// AuditService складывает события каталога в журнал аудита
// и чистит журнал по политике хранения
type AuditService struct {
	repo          repository.AuditRepository
	retentionDays int
}

// NewAuditService создает сервис журнала аудита
func NewAuditService(repo repository.AuditRepository, retentionDays int) *AuditService {
	return &AuditService{
		repo:          repo,
		retentionDays: retentionDays,
	}
}

// RecordEvent валидирует событие каталога и пишет его в журнал.
// Время события сохраняется как есть; если источник его не проставил,
// берется момент записи.
func (s *AuditService) RecordEvent(ctx context.Context, event *entity.CatalogEvent) error {
	if !entity.KnownEventTypes[event.EventType] {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, event.EventType)
	}
	if event.RecordID == "" {
		return ErrEmptyRecordID
	}

	occurredAt := event.Timestamp
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	entry := &entity.AuditEntry{
		EventType:  event.EventType,
		Resource:   event.Resource,
		RecordID:   event.RecordID,
		RecordName: event.Name,
		OccurredAt: occurredAt,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	logger.Info().
		Str("event_type", event.EventType).
		Str("resource", event.Resource).
		Str("record_id", event.RecordID).
		Msg("catalog event recorded in audit log")

	return nil
}

// GetRecent возвращает последние записи журнала
func (s *AuditService) GetRecent(ctx context.Context, limit int64) ([]entity.AuditEntry, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.repo.GetRecent(ctx, limit)
}

// GetRecordHistory возвращает историю изменений одной записи каталога
func (s *AuditService) GetRecordHistory(ctx context.Context, recordID string) ([]entity.AuditEntry, error) {
	if recordID == "" {
		return nil, ErrEmptyRecordID
	}
	return s.repo.GetByRecordID(ctx, recordID)
}

// PurgeExpired удаляет записи старше срока хранения
func (s *AuditService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit log: %w", err)
	}

	if deleted > 0 {
		logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("purged expired audit entries")
	}

	return deleted, nil
}
