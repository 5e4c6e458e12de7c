package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pinemarket/catalog-service/internal/app/catalog/entity"
	"pinemarket/catalog-service/internal/app/catalog/repository"
	"pinemarket/catalog-service/internal/app/catalog/util"
	"pinemarket/pkg/logger"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateID      = errors.New("record with this id already exists")
)

// Список категорий живет в кеше час; любая запись по категориям его сбрасывает.
const categoriesCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога товаров.
// Координирует репозитории PostgreSQL, кеш категорий в Redis
// и отправку событий изменения каталога в Kafka.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CategoryCache
	publisher    util.MessagePublisher
}

// NewCatalogService создает сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
	}
}

// === CATEGORIES ===

// CreateCategory создает категорию и инвалидирует кеш.
// Клиентский ID принимается как есть; если клиент ID не прислал,
// генерируем свой.
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	category := &entity.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoryCache(ctx)
	s.publishEvent(ctx, entity.EventCategoryCreated, "categories", category.ID, category.Name)

	return category, nil
}

// GetCategory получает категорию по ID без кеша
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllCategories получает все категории, сначала пробуя кеш Redis
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && categories != nil {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if categories == nil {
		categories = []entity.Category{}
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные уже получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// UpdateCategory полностью заменяет категорию (семантика PUT) и инвалидирует кеш
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Status = req.Status
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoryCache(ctx)
	s.publishEvent(ctx, entity.EventCategoryUpdated, "categories", category.ID, category.Name)

	return category, nil
}

// DeleteCategory удаляет категорию и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategoryCache(ctx)
	s.publishEvent(ctx, entity.EventCategoryDeleted, "categories", id, category.Name)

	return nil
}

// === PRODUCTS ===

// CreateProduct создает товар, проверив существование категории.
// Клиентский ID принимается как есть.
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	product := &entity.Product{
		ID:         id,
		Code:       req.Code,
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Price:      req.Price,
		Image:      req.Image,
		Status:     req.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishEvent(ctx, entity.EventProductCreated, "products", product.ID, product.Name)

	return product, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetAllProducts получает полный список товаров.
// Админ-панель забирает его целиком и дальше фильтрует у себя.
func (s *CatalogService) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	return products, nil
}

// UpdateProduct полностью заменяет товар (семантика PUT)
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
	}

	product.Code = req.Code
	product.Name = req.Name
	product.CategoryID = req.CategoryID
	product.Price = req.Price
	product.Image = req.Image
	product.Status = req.Status
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishEvent(ctx, entity.EventProductUpdated, "products", product.ID, product.Name)

	return product, nil
}

// DeleteProduct удаляет товар
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishEvent(ctx, entity.EventProductDeleted, "products", id, product.Name)

	return nil
}

// === HELPERS ===

func (s *CatalogService) invalidateCategoryCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		// Запись уже сохранена, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

// publishEvent отправляет событие изменения каталога в Kafka.
// Ошибки Kafka не прерывают основную операцию: запись уже в БД,
// аудит догонит при восстановлении брокера.
func (s *CatalogService) publishEvent(ctx context.Context, eventType, resource, recordID, name string) {
	event := entity.CatalogEvent{
		EventType: eventType,
		Resource:  resource,
		RecordID:  recordID,
		Name:      name,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal catalog event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, recordID, data); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish catalog event")
	}
}
