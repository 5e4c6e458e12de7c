package service

import (
	"strings"

	"pinemarket/admin-service/internal/app/admin/entity"
)

// Движок фильтрации и пагинации списка. Чистые детерминированные функции:
// коллекции маленькие, пересчет на каждый запрос дешевле любого кеша.

// Filter возвращает записи, у которых поисковый текст содержит search
// (без учета регистра) И статус совпадает с status. Пустой search и пустой
// status пропускают все. Порядок записей сохраняется.
func Filter[T entity.Record[T]](items []T, search string, status entity.Status) []T {
	needle := strings.ToLower(strings.TrimSpace(search))

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(item.SearchText(), needle) {
			continue
		}
		if status != "" && item.RecordStatus() != status {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// Paginate возвращает срез одной страницы (нумерация с 1) и общее число
// записей. Страница за пределами списка дает пустой срез, не ошибку.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []T{}, total
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return items[start:end], total
}
