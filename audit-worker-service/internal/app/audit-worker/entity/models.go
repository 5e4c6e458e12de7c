package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogEvent - событие изменения каталога из топика catalog_events.
// Формат определяет catalog-service, здесь только его зеркальное чтение.
type CatalogEvent struct {
	EventType string    `json:"event_type"`
	Resource  string    `json:"resource"` // products | categories
	RecordID  string    `json:"record_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventProductCreated  = "PRODUCT_CREATED"
	EventProductUpdated  = "PRODUCT_UPDATED"
	EventProductDeleted  = "PRODUCT_DELETED"
	EventCategoryCreated = "CATEGORY_CREATED"
	EventCategoryUpdated = "CATEGORY_UPDATED"
	EventCategoryDeleted = "CATEGORY_DELETED"
)

// KnownEventTypes - события, которые попадают в журнал.
// Неизвестный тип события логируется и пропускается, а не роняет consumer.
var KnownEventTypes = map[string]bool{
	EventProductCreated:  true,
	EventProductUpdated:  true,
	EventProductDeleted:  true,
	EventCategoryCreated: true,
	EventCategoryUpdated: true,
	EventCategoryDeleted: true,
}

// AuditEntry - запись журнала аудита в MongoDB
type AuditEntry struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventType  string             `json:"event_type" bson:"event_type"`
	Resource   string             `json:"resource" bson:"resource"`
	RecordID   string             `json:"record_id" bson:"record_id"`
	RecordName string             `json:"record_name" bson:"record_name"`
	OccurredAt time.Time          `json:"occurred_at" bson:"occurred_at"`
	RecordedAt time.Time          `json:"recorded_at" bson:"recorded_at"`
}
