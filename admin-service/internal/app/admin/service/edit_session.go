package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/util"

	"github.com/google/uuid"
)

var (
	// ErrNoSession - форма не открыта
	ErrNoSession = errors.New("no active edit session")
	// ErrSessionExists - форма уже открыта; сначала закройте текущую
	ErrSessionExists = errors.New("edit session already open")
	// ErrStaleUpload - результат загрузки пришел после закрытия сессии,
	// которая ее запускала, и отброшен
	ErrStaleUpload = errors.New("upload result arrived for a closed edit session")
)

// SessionMode - режим сессии редактирования
type SessionMode string

const (
	ModeCreate SessionMode = "create"
	ModeEdit   SessionMode = "edit"
)

// EditSession - состояние открытой формы: черновик правится по значению
// и попадает в коллекцию только при подтвержденной отправке.
// Generation растет при каждом открытии формы; результат загрузки
// изображения, запущенной в прошлом поколении, отбрасывается.
type EditSession[D any] struct {
	ID          string      `json:"id"`
	Mode        SessionMode `json:"mode"`
	RecordID    string      `json:"record_id,omitempty"` // только для mode=edit
	Draft       D           `json:"draft"`
	StagedImage string      `json:"staged_image,omitempty"`
	Generation  uint64      `json:"generation"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EditSessionManager управляет сессией редактирования одного ресурса.
// Одновременно открыта максимум одна форма на ресурс; состояние лежит
// в Redis с TTL, чтобы пережить перезапуск сервиса.
type EditSessionManager[T entity.Record[T], D any] struct {
	store    util.SessionStore
	resource string
	ttl      time.Duration

	blankDraft func() D
	fromRecord func(T) D
}

// NewEditSessionManager создает менеджер сессий для одного ресурса.
// blankDraft дает пустой черновик для создания (со статусом active
// по умолчанию), fromRecord снимает черновик с записи для редактирования.
func NewEditSessionManager[T entity.Record[T], D any](
	store util.SessionStore,
	resource string,
	ttl time.Duration,
	blankDraft func() D,
	fromRecord func(T) D,
) *EditSessionManager[T, D] {
	return &EditSessionManager[T, D]{
		store:      store,
		resource:   resource,
		ttl:        ttl,
		blankDraft: blankDraft,
		fromRecord: fromRecord,
	}
}

// OpenCreate переводит Closed -> Creating: пустой черновик
func (m *EditSessionManager[T, D]) OpenCreate(ctx context.Context) (*EditSession[D], error) {
	if _, err := m.Current(ctx); err == nil {
		return nil, ErrSessionExists
	}

	return m.open(ctx, EditSession[D]{
		Mode:  ModeCreate,
		Draft: m.blankDraft(),
	})
}

// OpenEdit переводит Closed -> Editing(record): черновик - копия записи,
// закрепленное изображение берется из самой записи
func (m *EditSessionManager[T, D]) OpenEdit(ctx context.Context, record T) (*EditSession[D], error) {
	if _, err := m.Current(ctx); err == nil {
		return nil, ErrSessionExists
	}

	return m.open(ctx, EditSession[D]{
		Mode:     ModeEdit,
		RecordID: record.RecordID(),
		Draft:    m.fromRecord(record),
	})
}

// Current возвращает открытую сессию или ErrNoSession
func (m *EditSessionManager[T, D]) Current(ctx context.Context) (*EditSession[D], error) {
	data, err := m.store.Get(ctx, m.key())
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if data == nil {
		return nil, ErrNoSession
	}

	var session EditSession[D]
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// UpdateDraft заменяет черновик открытой сессии.
// Загрузка изображения никогда не блокирует правку текстовых полей.
func (m *EditSessionManager[T, D]) UpdateDraft(ctx context.Context, draft D) (*EditSession[D], error) {
	session, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	session.Draft = draft
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// StageImage закрепляет URL загруженного изображения за сессией.
// generation - поколение сессии на момент старта загрузки: если форма
// с тех пор закрылась или переоткрылась, результат отбрасывается
// с ErrStaleUpload, а не пишется в чужой черновик.
func (m *EditSessionManager[T, D]) StageImage(ctx context.Context, generation uint64, imageURL string) (*EditSession[D], error) {
	session, err := m.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrStaleUpload
		}
		return nil, err
	}

	if session.Generation != generation {
		return nil, ErrStaleUpload
	}

	session.StagedImage = imageURL
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Close переводит сессию в Closed, отбрасывая черновик.
// Вызывается и при отмене, и после успешной отправки.
func (m *EditSessionManager[T, D]) Close(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key()); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// === внутреннее ===

func (m *EditSessionManager[T, D]) open(ctx context.Context, session EditSession[D]) (*EditSession[D], error) {
	generation, err := m.store.Incr(ctx, m.generationKey())
	if err != nil {
		return nil, fmt.Errorf("failed to advance session generation: %w", err)
	}

	session.ID = uuid.NewString()
	session.Generation = uint64(generation)
	session.CreatedAt = time.Now()

	if err := m.save(ctx, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (m *EditSessionManager[T, D]) save(ctx context.Context, session *EditSession[D]) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.store.Set(ctx, m.key(), data, m.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (m *EditSessionManager[T, D]) key() string {
	return "admin:session:" + m.resource
}

func (m *EditSessionManager[T, D]) generationKey() string {
	return "admin:session:" + m.resource + ":generation"
}
