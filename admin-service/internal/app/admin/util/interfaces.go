package util

import (
	"context"
	"io"
	"time"
)

// SessionStore - хранилище сессий редактирования.
// Get возвращает (nil, nil), если ключа нет.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// ImageUploader - загрузка изображения во внешний хостинг.
// Возвращает постоянный URL загруженного файла.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}
