package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/gateway"

	"github.com/google/uuid"
)

var (
	// ErrConfirmationRequired - удаление требует явного подтверждения.
	// Политика настраивается на ресурс; по умолчанию подтверждение
	// обязательно и для товаров, и для категорий.
	ErrConfirmationRequired = errors.New("delete confirmation required")
	// ErrRecordNotFound - записи нет ни локально, ни на бэкенде
	ErrRecordNotFound = errors.New("record not found")
)

// ListController владеет коллекцией одного ресурса каталога.
// Коллекция загружается с бэкенда целиком один раз и дальше правится
// локально после каждого успешного удаленного вызова - повторных полных
// загрузок нет, локальное состояние и есть источник истины для отображения.
type ListController[T entity.Record[T]] struct {
	mu sync.Mutex

	gw            gateway.ResourceGateway[T]
	pageSize      int
	confirmDelete bool

	loaded bool
	items  []T
	view   entity.ViewState
}

// ControllerOptions - политика контроллера на один ресурс
type ControllerOptions struct {
	PageSize      int
	ConfirmDelete bool
}

// NewListController создает контроллер списка для одного ресурса
func NewListController[T entity.Record[T]](gw gateway.ResourceGateway[T], opts ControllerOptions) *ListController[T] {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 5
	}
	return &ListController[T]{
		gw:            gw,
		pageSize:      pageSize,
		confirmDelete: opts.ConfirmDelete,
		view:          entity.ViewState{Page: 1},
	}
}

// Load загружает коллекцию с бэкенда целиком. Повторный вызов
// ничего не делает - после первой загрузки коллекция правится локально.
func (c *ListController[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLoaded(ctx)
}

// Refresh принудительно перечитывает коллекцию с бэкенда.
// Страница сбрасывается на первую: старый номер может указывать в пустоту.
func (c *ListController[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.gw.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	c.items = items
	c.loaded = true
	c.view.Page = 1
	return nil
}

// View возвращает видимую страницу: фильтрация и пагинация поверх
// текущего состояния отображения. При первом обращении коллекция
// загружается с бэкенда.
func (c *ListController[T]) View(ctx context.Context) (entity.ViewPage[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return entity.ViewPage[T]{}, err
	}

	return c.derivePage(), nil
}

// UpdateView применяет частичное изменение состояния отображения
// и возвращает новую видимую страницу. Смена поиска или фильтра
// сбрасывает страницу на первую, иначе можно остаться на пустой странице
// за концом отфильтрованного списка.
func (c *ListController[T]) UpdateView(ctx context.Context, q entity.ViewQuery) (entity.ViewPage[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return entity.ViewPage[T]{}, err
	}

	if q.SearchText != nil && *q.SearchText != c.view.SearchText {
		c.view.SearchText = *q.SearchText
		c.view.Page = 1
	}
	if q.StatusFilter != nil && *q.StatusFilter != c.view.StatusFilter {
		c.view.StatusFilter = *q.StatusFilter
		c.view.Page = 1
	}
	if q.Page != nil && *q.Page >= 1 {
		c.view.Page = *q.Page
	}

	return c.derivePage(), nil
}

// Add назначает черновику свежий уникальный ID, создает запись на бэкенде
// и при успехе добавляет ее в конец коллекции
func (c *ListController[T]) Add(ctx context.Context, draft T) (T, error) {
	record := draft.WithID(uuid.NewString())

	created, err := c.gw.Create(ctx, record)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to create record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, created)

	return created, nil
}

// Update заменяет запись на бэкенде и при успехе - в коллекции (по ID)
func (c *ListController[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	var zero T

	c.mu.Lock()
	idx := c.indexOf(id)
	c.mu.Unlock()
	if idx < 0 {
		return zero, ErrRecordNotFound
	}

	updated, err := c.gw.Update(ctx, id, draft.WithID(id))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return zero, ErrRecordNotFound
		}
		return zero, fmt.Errorf("failed to update record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx = c.indexOf(id); idx >= 0 {
		c.items[idx] = updated
	}

	return updated, nil
}

// Remove удаляет запись на бэкенде и при успехе - из коллекции.
// Если политика ресурса требует подтверждения, вызов без confirmed
// отклоняется до любого сетевого обращения.
func (c *ListController[T]) Remove(ctx context.Context, id string, confirmed bool) error {
	if c.confirmDelete && !confirmed {
		return ErrConfirmationRequired
	}

	c.mu.Lock()
	idx := c.indexOf(id)
	c.mu.Unlock()
	if idx < 0 {
		return ErrRecordNotFound
	}

	if err := c.gw.Delete(ctx, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx = c.indexOf(id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}

	return nil
}

// Get возвращает запись коллекции по ID
func (c *ListController[T]) Get(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], nil
	}

	var zero T
	return zero, ErrRecordNotFound
}

// === внутреннее, вызывается под mu ===

func (c *ListController[T]) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	items, err := c.gw.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	c.items = items
	c.loaded = true
	return nil
}

func (c *ListController[T]) derivePage() entity.ViewPage[T] {
	filtered := Filter(c.items, c.view.SearchText, c.view.StatusFilter)
	pageItems, total := Paginate(filtered, c.view.Page, c.pageSize)

	return entity.ViewPage[T]{
		Items:    pageItems,
		Total:    total,
		View:     c.view,
		PageSize: c.pageSize,
	}
}

func (c *ListController[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
