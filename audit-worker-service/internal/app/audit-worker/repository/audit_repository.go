package repository

import (
	"context"
	"fmt"
	"time"

	"pinemarket/audit-worker-service/internal/app/audit-worker/entity"
	"pinemarket/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type auditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository создает репозиторий журнала аудита.
// Автоматически создает индексы по record_id и recorded_at:
// первый для истории записи, второй для чистки по retention.
func NewAuditRepository(db *mongo.Database) AuditRepository {
	collection := db.Collection("audit_log")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "record_id", Value: 1}},
			Options: options.Index().SetName("record_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "recorded_at", Value: -1}},
			Options: options.Index().SetName("recorded_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу это не блокирует
		logger.Warn().Err(err).Msg("failed to create audit_log indexes")
	}

	return &auditRepository{collection: collection}
}

// Insert добавляет запись в журнал аудита
func (r *auditRepository) Insert(ctx context.Context, entry *entity.AuditEntry) error {
	entry.RecordedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}

	return nil
}

// GetRecent возвращает последние записи журнала, свежие первыми
func (r *auditRepository) GetRecent(ctx context.Context, limit int64) ([]entity.AuditEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []entity.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}

// GetByRecordID возвращает историю изменений одной записи каталога.
// Использует индекс record_id_idx.
func (r *auditRepository) GetByRecordID(ctx context.Context, recordID string) ([]entity.AuditEntry, error) {
	filter := bson.M{"record_id": recordID}
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []entity.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}

// DeleteOlderThan удаляет записи старше cutoff и возвращает их число
func (r *auditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"recorded_at": bson.M{"$lt": cutoff}}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", err)
	}

	return result.DeletedCount, nil
}
