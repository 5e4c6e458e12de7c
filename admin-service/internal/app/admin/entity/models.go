package entity

import "strings"

// Status - статус записи каталога
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Record - общий контракт записи каталога для обобщенного списочного модуля.
// Экраны товаров и категорий идентичны по логике, поэтому контроллер списка,
// движок фильтрации и сессия редактирования написаны один раз поверх этого
// интерфейса и инстанцируются на каждый тип ресурса.
type Record[T any] interface {
	// RecordID возвращает непрозрачный идентификатор записи
	RecordID() string
	// WithID возвращает копию записи с подставленным идентификатором
	WithID(id string) T
	// SearchText возвращает конкатенацию полей, по которым работает поиск
	SearchText() string
	// RecordStatus возвращает статус для фильтра по статусу
	RecordStatus() Status
}

// Product - товар каталога. JSON-поля совпадают с форматом бэкенда каталога.
type Product struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	CategoryID string  `json:"category"`
	Price      float64 `json:"price"`
	Image      string  `json:"image,omitempty"`
	Status     Status  `json:"status"`
}

func (p Product) RecordID() string { return p.ID }

func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}

// SearchText - поиск по товарам идет по имени и артикулу
func (p Product) SearchText() string {
	return strings.ToLower(p.Name + " " + p.Code)
}

func (p Product) RecordStatus() Status { return p.Status }

// Category - категория каталога
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
}

func (c Category) RecordID() string { return c.ID }

func (c Category) WithID(id string) Category {
	c.ID = id
	return c
}

// SearchText - поиск по категориям идет только по имени
func (c Category) SearchText() string {
	return strings.ToLower(c.Name)
}

func (c Category) RecordStatus() Status { return c.Status }
