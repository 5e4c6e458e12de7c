package repository

import (
	"context"
	"time"

	"pinemarket/audit-worker-service/internal/app/audit-worker/entity"
)

// AuditRepository определяет интерфейс для работы с журналом аудита
type AuditRepository interface {
	Insert(ctx context.Context, entry *entity.AuditEntry) error
	GetRecent(ctx context.Context, limit int64) ([]entity.AuditEntry, error)
	GetByRecordID(ctx context.Context, recordID string) ([]entity.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
