package entity

import "time"

// Status - статус записи каталога. Неактивные записи остаются в каталоге,
// но витрина их не показывает.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Category представляет категорию товаров.
// ID - непрозрачная строка, которую генерирует клиент (админ-панель)
// и которую бэкенд принимает как есть.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description string    `json:"description,omitempty" gorm:"size:2000"`
	Status      Status    `json:"status" gorm:"size:16;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product представляет товар в каталоге.
// CategoryID ссылается на Category.ID; Image - URL картинки в Cloudinary.
type Product struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	Code       string    `json:"code" gorm:"size:64;index"`
	Name       string    `json:"name" gorm:"size:200;not null"`
	CategoryID string    `json:"category" gorm:"column:category_id;size:64;index"`
	Price      float64   `json:"price"`
	Image      string    `json:"image,omitempty" gorm:"size:500"`
	Status     Status    `json:"status" gorm:"size:16;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CatalogEvent - событие изменения каталога для Kafka.
// Его читает audit-worker-service и складывает в журнал аудита.
type CatalogEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, CATEGORY_*
	Resource  string    `json:"resource"`   // products | categories
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
