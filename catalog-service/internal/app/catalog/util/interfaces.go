package util

import (
	"context"
	"time"

	"pinemarket/catalog-service/internal/app/catalog/entity"
)

// CategoryCache интерфейс кеша категорий.
// Вынесен в интерфейс для dependency injection и тестирования.
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс отправки событий каталога в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
