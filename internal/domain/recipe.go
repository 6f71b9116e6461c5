package domain

import (
	"time"
)

// Ограничения полей рецепта
const (
	RecipeNameMaxLen = 200
	MinCookingTime   = 1
	MaxCookingTime   = 32767
	MinAmount        = 1
	MaxAmount        = 32767
)

// Recipe представляет рецепт вместе со связанными данными,
// в таком виде он отдается клиентам
type Recipe struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           Profile            `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	CreatedAt        time.Time          `json:"created_at"`
}

// RecipeIngredient - строка рецепта: ингредиент и его количество
type RecipeIngredient struct {
	ID              int64  `json:"id" db:"ingredient_id"`
	Name            string `json:"name" db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
	Amount          int    `json:"amount" db:"amount"`
}

// RecipeRecord соответствует строке таблицы recipes
type RecipeRecord struct {
	ID          int64     `db:"id"`
	AuthorID    int64     `db:"author_id"`
	Name        string    `db:"name"`
	Image       string    `db:"image"`
	Text        string    `db:"text"`
	CookingTime int       `db:"cooking_time"`
	CreatedAt   time.Time `db:"created_at"`
}

// IngredientAmount - входная строка рецепта: id ингредиента и количество
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// RecipeInput - данные для создания или обновления рецепта.
// Image - ссылка на уже сохраненную картинку; пустая строка при обновлении оставляет текущую.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []int64
	Ingredients []IngredientAmount
}

// RecipeShort - короткое представление рецепта (избранное, корзина, подписки)
type RecipeShort struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Image       string `json:"image" db:"image"`
	CookingTime int    `json:"cooking_time" db:"cooking_time"`
}

// Short возвращает короткое представление рецепта
func (r *Recipe) Short() RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// RecipeFilter - фильтры списка рецептов.
// IsFavorited и IsInShoppingCart ограничивают выдачу записями зрителя (ViewerID).
type RecipeFilter struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	ViewerID         int64
	Pagination
}
