package domain

// Tag представляет тег рецепта, соответствует таблице tags в бд
type Tag struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
	Slug  string `json:"slug" db:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}
