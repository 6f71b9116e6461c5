package domain

import "time"

// Subscription - подписка UserID на автора AuthorID
type Subscription struct {
	UserID    int64     `db:"user_id"`
	AuthorID  int64     `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
}

// AuthorSummary - автор в списке подписок: профиль, последние рецепты и их общее число
type AuthorSummary struct {
	Profile
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}
