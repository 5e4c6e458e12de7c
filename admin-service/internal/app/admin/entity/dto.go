package entity

// ViewState - состояние отображения списка: строка поиска, фильтр по статусу
// и номер текущей страницы (нумерация с 1). Живет в контроллере списка,
// не персистится.
type ViewState struct {
	SearchText   string `json:"search_text"`
	StatusFilter Status `json:"status_filter"`
	Page         int    `json:"page"`
}

// ViewQuery - частичное обновление состояния отображения.
// nil-поле означает "не менять".
type ViewQuery struct {
	SearchText   *string `json:"search_text"`
	StatusFilter *Status `json:"status_filter" validate:"omitempty,oneof=active inactive"`
	Page         *int    `json:"page" validate:"omitempty,min=1"`
}

// ViewPage - видимая страница списка: срез записей после фильтрации
// и пагинации плюс общее число совпадений.
type ViewPage[T any] struct {
	Items    []T       `json:"items"`
	Total    int       `json:"total"`
	View     ViewState `json:"view"`
	PageSize int       `json:"page_size"`
}

// ProductDraft - черновик товара в сессии редактирования.
// Правила валидации повторяют клиентскую проверку формы:
// code, name, category и status обязательны, price - число >= 0.
type ProductDraft struct {
	Code       string   `json:"code" validate:"required,min=1,max=64"`
	Name       string   `json:"name" validate:"required,min=1,max=200"`
	CategoryID string   `json:"category" validate:"required,max=64"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
	Image      string   `json:"image" validate:"omitempty,url,max=500"`
	Status     Status   `json:"status" validate:"required,oneof=active inactive"`
}

// ToRecord собирает товар из черновика (без ID - его назначает контроллер)
func (d ProductDraft) ToRecord() Product {
	var price float64
	if d.Price != nil {
		price = *d.Price
	}
	return Product{
		Code:       d.Code,
		Name:       d.Name,
		CategoryID: d.CategoryID,
		Price:      price,
		Image:      d.Image,
		Status:     d.Status,
	}
}

// ProductDraftFrom снимает черновик с существующего товара
func ProductDraftFrom(p Product) ProductDraft {
	price := p.Price
	return ProductDraft{
		Code:       p.Code,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Price:      &price,
		Image:      p.Image,
		Status:     p.Status,
	}
}

// CategoryDraft - черновик категории в сессии редактирования
type CategoryDraft struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      Status `json:"status" validate:"required,oneof=active inactive"`
}

// ToRecord собирает категорию из черновика
func (d CategoryDraft) ToRecord() Category {
	return Category{
		Name:        d.Name,
		Description: d.Description,
		Status:      d.Status,
	}
}

// CategoryDraftFrom снимает черновик с существующей категории
func CategoryDraftFrom(c Category) CategoryDraft {
	return CategoryDraft{
		Name:        c.Name,
		Description: c.Description,
		Status:      c.Status,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UploadResponse - результат загрузки изображения: URL, закрепленный
// за черновиком до отправки формы
type UploadResponse struct {
	ImageURL string `json:"image_url"`
}
