package service

import (
	"context"

	"pinemarket/audit-worker-service/internal/app/audit-worker/entity"
)

// AuditServiceInterface определяет контракт сервиса журнала аудита
type AuditServiceInterface interface {
	RecordEvent(ctx context.Context, event *entity.CatalogEvent) error
	GetRecent(ctx context.Context, limit int64) ([]entity.AuditEntry, error)
	GetRecordHistory(ctx context.Context, recordID string) ([]entity.AuditEntry, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
