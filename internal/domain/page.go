package domain

// Pagination - номер страницы (с единицы) и размер страницы
type Pagination struct {
	Page  int
	Limit int
}

// Offset возвращает смещение для SQL запроса
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page - одна страница выдачи и общее число элементов
type Page[T any] struct {
	Count   int
	Results []T
}
