package ports

import (
	"context"
	"errors"

	"github.com/GoArmGo/foodgram/internal/domain"
)

// ErrDuplicate возвращается хранилищем, когда вставка нарушает ограничение уникальности
var ErrDuplicate = errors.New("duplicate entry")

// Методы Get* возвращают (nil, nil), если запись не найдена.

// TagStorage определяет методы для работы с тегами
type TagStorage interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTagByID(ctx context.Context, id int64) (*domain.Tag, error)
	// GetTagsByIDs возвращает только существующие теги, порядок не гарантирован
	GetTagsByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
}

// IngredientStorage определяет методы для работы со справочником ингредиентов
type IngredientStorage interface {
	// ListIngredients ищет по началу названия без учета регистра, пустой префикс отдает все
	ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error)
	GetIngredientByID(ctx context.Context, id int64) (*domain.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error)
}

// RecipeStorage определяет методы для работы с рецептами
type RecipeStorage interface {
	// CreateRecipe в одной транзакции сохраняет рецепт, его теги и строки ингредиентов.
	// Заполняет rec.ID.
	CreateRecipe(ctx context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error

	// UpdateRecipe в одной транзакции обновляет рецепт и полностью заменяет его теги и строки
	UpdateRecipe(ctx context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error

	// DeleteRecipe удаляет рецепт вместе со связями, false - рецепта не было
	DeleteRecipe(ctx context.Context, id int64) (bool, error)

	GetRecipeRecord(ctx context.Context, id int64) (*domain.RecipeRecord, error)

	// GetRecipe возвращает рецепт с тегами, ингредиентами и флагами для зрителя viewerID
	GetRecipe(ctx context.Context, id, viewerID int64) (*domain.Recipe, error)

	ListRecipes(ctx context.Context, filter domain.RecipeFilter) (domain.Page[domain.Recipe], error)

	// ListAuthorRecipes отдает не больше limit последних рецептов автора и их общее число
	ListAuthorRecipes(ctx context.Context, authorID int64, limit int) ([]domain.RecipeShort, int, error)
}

// LedgerStorage определяет методы для избранного и корзины
type LedgerStorage interface {
	// AddEntry возвращает ErrDuplicate, если запись уже есть
	AddEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (*domain.LedgerEntry, error)
	RemoveEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error)
	HasEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error)

	// ListCartLines возвращает все строки ингредиентов рецептов из корзины пользователя
	ListCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
}

// SubscriptionStorage определяет методы для подписок
type SubscriptionStorage interface {
	// AddSubscription возвращает ErrDuplicate, если подписка уже есть
	AddSubscription(ctx context.Context, userID, authorID int64) (*domain.Subscription, error)
	RemoveSubscription(ctx context.Context, userID, authorID int64) (bool, error)
	IsSubscribed(ctx context.Context, userID, authorID int64) (bool, error)

	// ListSubscriptions отдает авторов, на которых подписан userID, по возрастанию id
	ListSubscriptions(ctx context.Context, userID int64, p domain.Pagination) (domain.Page[domain.User], error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// GetOrCreateUser находит пользователя по id или заводит его по данным токена
	GetOrCreateUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	// ListUsers отдает страницу пользователей по возрастанию id с признаком подписки viewerID
	ListUsers(ctx context.Context, p domain.Pagination, viewerID int64) (domain.Page[domain.Profile], error)
}

// Storage объединяет все хранилища, его реализуют storage.PostgresStorage и memory.Store
type Storage interface {
	TagStorage
	IngredientStorage
	RecipeStorage
	LedgerStorage
	SubscriptionStorage
	UserStorage
}
