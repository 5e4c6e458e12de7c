package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pinemarket/catalog-service/internal/app/catalog/entity"
	"pinemarket/catalog-service/internal/app/catalog/repository"
	"pinemarket/catalog-service/internal/app/catalog/repository/mocks"
	"pinemarket/catalog-service/internal/app/catalog/service"
	"pinemarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("catalog-handler-test", "error", io.Discard)
}

// Хелперы для создания тестового окружения

func setupTestRouter() (*gin.Engine, *mocks.MockCategoryRepository, *mocks.MockProductRepository, *mocks.MockCategoryCache, *mocks.MockMessagePublisher) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCategoryCache)
	publisher := new(mocks.MockMessagePublisher)

	svc := service.NewCatalogService(categoryRepo, productRepo, cache, publisher)
	router := SetupRoutes(NewCatalogHandler(svc))

	return router, categoryRepo, productRepo, cache, publisher
}

func newTestCategory() *entity.Category {
	return &entity.Category{
		ID:        "cat-1",
		Name:      "Stationery",
		Status:    entity.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newTestProduct() *entity.Product {
	return &entity.Product{
		ID:         "prod-1",
		Code:       "A1",
		Name:       "Pen",
		CategoryID: "cat-1",
		Price:      2.50,
		Status:     entity.StatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
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

// ==================== Products ====================

func TestCatalogHandler_GetAllProducts_ReturnsBareArray(t *testing.T) {
	// Arrange
	router, _, productRepo, _, _ := setupTestRouter()
	productRepo.On("GetAll", mock.Anything).Return([]entity.Product{*newTestProduct()}, nil)

	// Act
	w := doRequest(router, http.MethodGet, "/products", nil)

	// Assert: список отдается голым массивом, без обертки
	assert.Equal(t, http.StatusOK, w.Code)

	var products []entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "prod-1", products[0].ID)
	assert.Equal(t, "A1", products[0].Code)
}

func TestCatalogHandler_CreateProduct_Success(t *testing.T) {
	// Arrange
	router, categoryRepo, productRepo, _, publisher := setupTestRouter()
	categoryRepo.On("GetByID", mock.Anything, "cat-1").Return(newTestCategory(), nil)
	productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil)
	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := entity.CreateProductRequest{
		ID:         "prod-7",
		Code:       "B2",
		Name:       "Notebook",
		CategoryID: "cat-1",
		Price:      4.99,
		Status:     entity.StatusActive,
	}

	// Act
	w := doRequest(router, http.MethodPost, "/products", body)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var product entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "prod-7", product.ID)
	assert.Equal(t, "Notebook", product.Name)
}

func TestCatalogHandler_CreateProduct_MissingName(t *testing.T) {
	// Arrange
	router, _, productRepo, _, _ := setupTestRouter()

	body := entity.CreateProductRequest{
		Code:       "B2",
		CategoryID: "cat-1",
		Price:      4.99,
		Status:     entity.StatusActive,
	}

	// Act
	w := doRequest(router, http.MethodPost, "/products", body)

	// Assert: валидация отсекает запрос до обращения к репозиторию
	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogHandler_CreateProduct_NegativePrice(t *testing.T) {
	// Arrange
	router, _, productRepo, _, _ := setupTestRouter()

	body := entity.CreateProductRequest{
		Code:       "B2",
		Name:       "Notebook",
		CategoryID: "cat-1",
		Price:      -1,
		Status:     entity.StatusActive,
	}

	// Act
	w := doRequest(router, http.MethodPost, "/products", body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogHandler_UpdateProduct_NotFound(t *testing.T) {
	// Arrange
	router, _, productRepo, _, _ := setupTestRouter()
	productRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrProductNotFound)

	body := entity.UpdateProductRequest{
		Code:       "A1",
		Name:       "Pen",
		CategoryID: "cat-1",
		Price:      2.50,
		Status:     entity.StatusActive,
	}

	// Act
	w := doRequest(router, http.MethodPut, "/products/missing", body)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_DeleteProduct_Success(t *testing.T) {
	// Arrange
	router, _, productRepo, _, publisher := setupTestRouter()
	productRepo.On("GetByID", mock.Anything, "prod-1").Return(newTestProduct(), nil)
	productRepo.On("Delete", mock.Anything, "prod-1").Return(nil)
	publisher.On("PublishMessage", mock.Anything, "prod-1", mock.Anything).Return(nil)

	// Act
	w := doRequest(router, http.MethodDelete, "/products/prod-1", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	productRepo.AssertExpectations(t)
}

// ==================== Categories ====================

func TestCatalogHandler_GetAllCategories_UsesCache(t *testing.T) {
	// Arrange
	router, categoryRepo, _, cache, _ := setupTestRouter()
	cache.On("GetCategories", mock.Anything).Return([]entity.Category{*newTestCategory()}, nil)

	// Act
	w := doRequest(router, http.MethodGet, "/categories", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var categories []entity.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	categoryRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestCatalogHandler_CreateCategory_InvalidJSON(t *testing.T) {
	// Arrange
	router, _, _, _, _ := setupTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_CreateCategory_InvalidStatus(t *testing.T) {
	// Arrange
	router, categoryRepo, _, _, _ := setupTestRouter()

	body := entity.CreateCategoryRequest{Name: "Stationery", Status: "archived"}

	// Act
	w := doRequest(router, http.MethodPost, "/categories", body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogHandler_DeleteCategory_NotFound(t *testing.T) {
	// Arrange
	router, categoryRepo, _, _, _ := setupTestRouter()
	categoryRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrCategoryNotFound)

	// Act
	w := doRequest(router, http.MethodDelete, "/categories/missing", nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_Health(t *testing.T) {
	// Arrange
	router, _, _, _, _ := setupTestRouter()

	// Act
	w := doRequest(router, http.MethodGet, "/health", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog-service")
}
