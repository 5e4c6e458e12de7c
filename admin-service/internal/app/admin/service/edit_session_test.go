package service

import (
	"context"
	"testing"
	"time"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *EditSessionManager[entity.Product, entity.ProductDraft] {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := util.NewRedisSessionStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewEditSessionManager[entity.Product, entity.ProductDraft](
		store, "products", time.Minute,
		func() entity.ProductDraft { return entity.ProductDraft{Status: entity.StatusActive} },
		entity.ProductDraftFrom,
	)
}

func TestEditSessionManager_OpenCreate(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	session, err := m.OpenCreate(ctx)

	require.NoError(t, err)
	assert.Equal(t, ModeCreate, session.Mode)
	assert.Empty(t, session.RecordID)
	// Пустой черновик создается со статусом active
	assert.Equal(t, entity.StatusActive, session.Draft.Status)
	assert.NotEmpty(t, session.ID)
}

func TestEditSessionManager_OpenEditCopiesRecord(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	record := entity.Product{
		ID: "p1", Code: "A1", Name: "Pen",
		CategoryID: "cat-1", Price: 2.50,
		Image: "https://res.cloudinary.com/demo/pen.png", Status: entity.StatusActive,
	}

	session, err := m.OpenEdit(ctx, record)

	require.NoError(t, err)
	assert.Equal(t, ModeEdit, session.Mode)
	assert.Equal(t, "p1", session.RecordID)
	assert.Equal(t, "Pen", session.Draft.Name)
	require.NotNil(t, session.Draft.Price)
	assert.Equal(t, 2.50, *session.Draft.Price)
	assert.Equal(t, "https://res.cloudinary.com/demo/pen.png", session.Draft.Image)
}

func TestEditSessionManager_SecondOpenRejected(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	_, err := m.OpenCreate(ctx)
	require.NoError(t, err)

	_, err = m.OpenCreate(ctx)
	assert.ErrorIs(t, err, ErrSessionExists)

	_, err = m.OpenEdit(ctx, entity.Product{ID: "p1"})
	assert.ErrorIs(t, err, ErrSessionExists)
}

func TestEditSessionManager_CurrentWithoutSession(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	_, err := m.Current(ctx)

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEditSessionManager_SessionSurvivesReread(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	opened, err := m.OpenCreate(ctx)
	require.NoError(t, err)

	// Сессия читается из Redis, а не из памяти процесса
	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, current.ID)
	assert.Equal(t, opened.Generation, current.Generation)
}

func TestEditSessionManager_UpdateDraft(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	_, err := m.OpenCreate(ctx)
	require.NoError(t, err)

	price := 9.99
	draft := entity.ProductDraft{
		Code: "A9", Name: "Marker", CategoryID: "cat-1",
		Price: &price, Status: entity.StatusInactive,
	}

	session, err := m.UpdateDraft(ctx, draft)

	require.NoError(t, err)
	assert.Equal(t, "Marker", session.Draft.Name)

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, draft, current.Draft)
}

func TestEditSessionManager_UpdateDraftWithoutSession(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	_, err := m.UpdateDraft(ctx, entity.ProductDraft{Name: "Marker"})

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEditSessionManager_StageImage(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	session, err := m.OpenCreate(ctx)
	require.NoError(t, err)

	staged, err := m.StageImage(ctx, session.Generation, "https://res.cloudinary.com/demo/new.png")

	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/new.png", staged.StagedImage)
}

func TestEditSessionManager_StageImageAfterCloseDiscarded(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	session, err := m.OpenCreate(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))

	// Загрузка стартовала при живой форме, завершилась после закрытия
	_, err = m.StageImage(ctx, session.Generation, "https://res.cloudinary.com/demo/late.png")

	assert.ErrorIs(t, err, ErrStaleUpload)
}

func TestEditSessionManager_StageImageIntoReopenedFormDiscarded(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	first, err := m.OpenCreate(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))

	// Форму открыли заново: у новой сессии другое поколение
	second, err := m.OpenCreate(ctx)
	require.NoError(t, err)
	require.Greater(t, second.Generation, first.Generation)

	_, err = m.StageImage(ctx, first.Generation, "https://res.cloudinary.com/demo/late.png")
	assert.ErrorIs(t, err, ErrStaleUpload)

	// Черновик новой формы не задела чужая загрузка
	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.StagedImage)
}

func TestEditSessionManager_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestSessionManager(t)

	_, err := m.OpenCreate(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	require.NoError(t, m.Close(ctx))

	_, err = m.Current(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEditSessionManager_ResourcesAreIndependent(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	store, err := util.NewRedisSessionStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	products := NewEditSessionManager[entity.Product, entity.ProductDraft](
		store, "products", time.Minute,
		func() entity.ProductDraft { return entity.ProductDraft{Status: entity.StatusActive} },
		entity.ProductDraftFrom,
	)
	categories := NewEditSessionManager[entity.Category, entity.CategoryDraft](
		store, "categories", time.Minute,
		func() entity.CategoryDraft { return entity.CategoryDraft{Status: entity.StatusActive} },
		entity.CategoryDraftFrom,
	)

	_, err = products.OpenCreate(ctx)
	require.NoError(t, err)

	// Открытая форма товара не мешает открыть форму категории
	_, err = categories.OpenCreate(ctx)
	assert.NoError(t, err)
}
