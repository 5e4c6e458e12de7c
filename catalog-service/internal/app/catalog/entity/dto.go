package entity

// CreateCategoryRequest - тело POST /categories.
// ID опционален: админ-панель генерирует его сама, бэкенд принимает как есть.
type CreateCategoryRequest struct {
	ID          string `json:"id" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      Status `json:"status" validate:"required,oneof=active inactive"`
}

// UpdateCategoryRequest - тело PUT /categories/:id (полная замена записи).
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      Status `json:"status" validate:"required,oneof=active inactive"`
}

// CreateProductRequest - тело POST /products.
type CreateProductRequest struct {
	ID         string  `json:"id" validate:"omitempty,max=64"`
	Code       string  `json:"code" validate:"required,min=1,max=64"`
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	CategoryID string  `json:"category" validate:"required,max=64"`
	Price      float64 `json:"price" validate:"gte=0"`
	Image      string  `json:"image" validate:"omitempty,url,max=500"`
	Status     Status  `json:"status" validate:"required,oneof=active inactive"`
}

// UpdateProductRequest - тело PUT /products/:id (полная замена записи).
type UpdateProductRequest struct {
	Code       string  `json:"code" validate:"required,min=1,max=64"`
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	CategoryID string  `json:"category" validate:"required,max=64"`
	Price      float64 `json:"price" validate:"gte=0"`
	Image      string  `json:"image" validate:"omitempty,url,max=500"`
	Status     Status  `json:"status" validate:"required,oneof=active inactive"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
