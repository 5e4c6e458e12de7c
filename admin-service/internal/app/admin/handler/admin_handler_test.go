package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pinemarket/admin-service/internal/app/admin/entity"
	"pinemarket/admin-service/internal/app/admin/gateway"
	"pinemarket/admin-service/internal/app/admin/gateway/mocks"
	"pinemarket/admin-service/internal/app/admin/service"
	"pinemarket/admin-service/internal/app/admin/util"
	"pinemarket/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("admin-handler-test", "error", io.Discard)
}

// stubUploader позволяет подменить загрузку изображения в тестах
type stubUploader struct {
	upload func(ctx context.Context, file io.Reader, filename string) (string, error)
}

func (s *stubUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	return s.upload(ctx, file, filename)
}

// Хелперы для создания тестового окружения

type testEnv struct {
	router           *gin.Engine
	productGW        *mocks.MockResourceGateway[entity.Product]
	categoryGW       *mocks.MockResourceGateway[entity.Category]
	productSessions  *service.EditSessionManager[entity.Product, entity.ProductDraft]
	categorySessions *service.EditSessionManager[entity.Category, entity.CategoryDraft]
	uploader         *stubUploader
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := util.NewRedisSessionStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	productGW := new(mocks.MockResourceGateway[entity.Product])
	categoryGW := new(mocks.MockResourceGateway[entity.Category])

	productController := service.NewListController[entity.Product](productGW, service.ControllerOptions{
		PageSize:      5,
		ConfirmDelete: true,
	})
	categoryController := service.NewListController[entity.Category](categoryGW, service.ControllerOptions{
		PageSize:      5,
		ConfirmDelete: true,
	})

	productSessions := service.NewEditSessionManager[entity.Product, entity.ProductDraft](
		store, "products", time.Minute,
		func() entity.ProductDraft { return entity.ProductDraft{Status: entity.StatusActive} },
		entity.ProductDraftFrom,
	)
	categorySessions := service.NewEditSessionManager[entity.Category, entity.CategoryDraft](
		store, "categories", time.Minute,
		func() entity.CategoryDraft { return entity.CategoryDraft{Status: entity.StatusActive} },
		entity.CategoryDraftFrom,
	)

	uploader := &stubUploader{
		upload: func(ctx context.Context, file io.Reader, filename string) (string, error) {
			return "https://res.cloudinary.com/demo/uploaded.png", nil
		},
	}

	productHandler := NewResourceHandler(
		productController, productSessions,
		entity.ProductDraft.ToRecord,
		func(d entity.ProductDraft, imageURL string) entity.ProductDraft {
			d.Image = imageURL
			return d
		},
	)
	categoryHandler := NewResourceHandler(
		categoryController, categorySessions,
		entity.CategoryDraft.ToRecord,
		nil,
	)
	uploadHandler := NewUploadHandler(productSessions, uploader)

	router := SetupRoutes(productHandler, categoryHandler, uploadHandler, []string{"http://localhost:5173"})

	return &testEnv{
		router:           router,
		productGW:        productGW,
		categoryGW:       categoryGW,
		productSessions:  productSessions,
		categorySessions: categorySessions,
		uploader:         uploader,
	}
}

func testProducts() []entity.Product {
	return []entity.Product{
		{ID: "p1", Code: "A1", Name: "Pen", CategoryID: "cat-1", Price: 2.50, Status: entity.StatusActive},
		{ID: "p2", Code: "A2", Name: "Notebook", CategoryID: "cat-1", Price: 5, Status: entity.StatusInactive},
	}
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doUpload(router *gin.Engine, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "pen.png")
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/products/session/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ==================== Список ====================

func TestAdminHandler_GetView(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()

	// Act
	w := doRequest(env.router, http.MethodGet, "/admin/products/view", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var page entity.ViewPage[entity.Product]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 5, page.PageSize)
	assert.Equal(t, 1, page.View.Page)
	env.productGW.AssertExpectations(t)
}

func TestAdminHandler_UpdateViewFiltersAndResetsPage(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/view", map[string]interface{}{
		"search_text": "PEN",
	})

	// Assert: поиск без учета регистра, страница сброшена на первую
	assert.Equal(t, http.StatusOK, w.Code)

	var page entity.ViewPage[entity.Product]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "p1", page.Items[0].ID)
	assert.Equal(t, 1, page.View.Page)
}

func TestAdminHandler_UpdateViewRejectsUnknownStatus(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/view", map[string]interface{}{
		"status_filter": "archived",
	})

	// Assert: валидация срабатывает до обращения к бэкенду
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.productGW.AssertNotCalled(t, "List", mock.Anything)
}

func TestAdminHandler_GetViewBackendDown(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(nil, gateway.ErrBackend)

	// Act
	w := doRequest(env.router, http.MethodGet, "/admin/products/view", nil)

	// Assert: недоступный бэкенд - явная ошибка, а не пустой список
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAdminHandler_Refresh(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/refresh", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	env.productGW.AssertExpectations(t)
}

// ==================== Удаление ====================

func TestAdminHandler_DeleteWithoutConfirmation(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)

	// Act
	w := doRequest(env.router, http.MethodDelete, "/admin/products/p1", nil)

	// Assert: без confirm=true удаление не доходит до бэкенда
	assert.Equal(t, http.StatusConflict, w.Code)
	env.productGW.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAdminHandler_DeleteConfirmed(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	env.productGW.On("Delete", mock.Anything, "p1").Return(nil)
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)

	// Act
	w := doRequest(env.router, http.MethodDelete, "/admin/products/p1?confirm=true", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	page := doRequest(env.router, http.MethodGet, "/admin/products/view", nil)
	var view entity.ViewPage[entity.Product]
	require.NoError(t, json.Unmarshal(page.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Total)
}

func TestAdminHandler_DeleteUnknownRecord(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)

	// Act
	w := doRequest(env.router, http.MethodDelete, "/admin/products/ghost?confirm=true", nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== Сессия редактирования ====================

func TestAdminHandler_OpenCreateSession(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{
		"mode": "create",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var session service.EditSession[entity.ProductDraft]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, service.ModeCreate, session.Mode)
	assert.Equal(t, entity.StatusActive, session.Draft.Status)
}

func TestAdminHandler_OpenEditSession(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{
		"mode":      "edit",
		"record_id": "p2",
	})

	// Assert: черновик снят с существующей записи
	assert.Equal(t, http.StatusCreated, w.Code)

	var session service.EditSession[entity.ProductDraft]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, service.ModeEdit, session.Mode)
	assert.Equal(t, "p2", session.RecordID)
	assert.Equal(t, "Notebook", session.Draft.Name)
}

func TestAdminHandler_OpenEditUnknownRecord(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{
		"mode":      "edit",
		"record_id": "ghost",
	})

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_SecondSessionRejected(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{"mode": "create"}).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{
		"mode": "create",
	})

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminHandler_GetSessionWithoutOpenForm(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)

	// Act
	w := doRequest(env.router, http.MethodGet, "/admin/products/session", nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_CancelSessionDiscardsDraft(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{"mode": "create"}).Code)

	// Act
	w := doRequest(env.router, http.MethodDelete, "/admin/products/session", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, doRequest(env.router, http.MethodGet, "/admin/products/session", nil).Code)
	// Отмена не трогает бэкенд
	env.productGW.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ==================== Отправка формы ====================

func TestAdminHandler_SubmitCreateProduct(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	env.productGW.On("Create", mock.Anything, mock.MatchedBy(func(p entity.Product) bool {
		return p.ID != "" && p.Name == "Marker"
	})).Return(entity.Product{ID: "p3", Code: "A3", Name: "Marker", CategoryID: "cat-1", Price: 1.20, Status: entity.StatusActive}, nil)

	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{"mode": "create"}).Code)

	draft := map[string]interface{}{
		"code": "A3", "name": "Marker", "category": "cat-1",
		"price": 1.20, "status": "active",
	}
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodPut, "/admin/products/session/draft", draft).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session/submit", nil)

	// Assert: запись создана, сессия закрыта
	assert.Equal(t, http.StatusOK, w.Code)

	var created entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "p3", created.ID)

	assert.Equal(t, http.StatusNotFound, doRequest(env.router, http.MethodGet, "/admin/products/session", nil).Code)
	env.productGW.AssertExpectations(t)
}

func TestAdminHandler_SubmitRejectsInvalidDraft(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{"mode": "create"}).Code)

	// Черновик без имени и цены
	draft := map[string]interface{}{"code": "A3", "category": "cat-1", "status": "active"}
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodPut, "/admin/products/session/draft", draft).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session/submit", nil)

	// Assert: невалидная форма не доходит до бэкенда и не закрывается
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.productGW.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/session", nil).Code)
}

func TestAdminHandler_SubmitEditCategory(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	categories := []entity.Category{{ID: "cat-1", Name: "Stationery", Status: entity.StatusActive}}
	env.categoryGW.On("List", mock.Anything).Return(categories, nil).Once()

	updated := entity.Category{ID: "cat-1", Name: "Office Supplies", Status: entity.StatusInactive}
	env.categoryGW.On("Update", mock.Anything, "cat-1", mock.MatchedBy(func(c entity.Category) bool {
		return c.ID == "cat-1" && c.Name == "Office Supplies"
	})).Return(updated, nil)

	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/categories/view", nil).Code)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/categories/session", map[string]interface{}{
		"mode": "edit", "record_id": "cat-1",
	}).Code)

	draft := map[string]interface{}{"name": "Office Supplies", "status": "inactive"}
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodPut, "/admin/categories/session/draft", draft).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/categories/session/submit", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var result entity.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Office Supplies", result.Name)
	env.categoryGW.AssertExpectations(t)
}

func TestAdminHandler_SubmitBackendFailureKeepsSession(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.productGW.On("List", mock.Anything).Return(testProducts(), nil).Once()
	env.productGW.On("Create", mock.Anything, mock.Anything).Return(nil, gateway.ErrBackend)

	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/view", nil).Code)
	require.Equal(t, http.StatusCreated, doRequest(env.router, http.MethodPost, "/admin/products/session", map[string]interface{}{"mode": "create"}).Code)

	draft := map[string]interface{}{
		"code": "A3", "name": "Marker", "category": "cat-1",
		"price": 1.20, "status": "active",
	}
	require.Equal(t, http.StatusOK, doRequest(env.router, http.MethodPut, "/admin/products/session/draft", draft).Code)

	// Act
	w := doRequest(env.router, http.MethodPost, "/admin/products/session/submit", nil)

	// Assert: форма остается открытой, черновик не потерян
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, http.StatusOK, doRequest(env.router, http.MethodGet, "/admin/products/session", nil).Code)
}
