package gateway

import (
	"context"
	"errors"
)

var (
	// ErrNotFound - бэкенд каталога не нашел запись
	ErrNotFound = errors.New("record not found in catalog backend")
	// ErrConflict - запись с таким ID уже существует
	ErrConflict = errors.New("record id conflict in catalog backend")
	// ErrBackend - любая другая ошибка бэкенда или сети
	ErrBackend = errors.New("catalog backend request failed")
)

// ResourceGateway - шлюз к одному REST ресурсу бэкенда каталога.
// Единственная точка, из которой admin-service ходит по сети за данными.
type ResourceGateway[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id string, record T) (T, error)
	Delete(ctx context.Context, id string) error
}
