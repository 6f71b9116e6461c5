package domain

import "time"

// EntryKind - вид записи в журнале пользователя
type EntryKind string

const (
	KindFavorite     EntryKind = "favorite"
	KindShoppingCart EntryKind = "shopping_cart"
)

// Valid проверяет, что вид записи известен
func (k EntryKind) Valid() bool {
	return k == KindFavorite || k == KindShoppingCart
}

// LedgerEntry - запись избранного или корзины, уникальна для (user, recipe, kind)
type LedgerEntry struct {
	Kind      EntryKind `json:"-"`
	UserID    int64     `json:"user_id" db:"user_id"`
	RecipeID  int64     `json:"recipe_id" db:"recipe_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
