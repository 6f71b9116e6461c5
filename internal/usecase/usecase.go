package usecase

import (
	"context"
	"math"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

const (
	// MaxPageSize ограничивает limit, присланный клиентом
	MaxPageSize = 100

	// MaxPage ограничивает номер страницы, чтобы смещение не переполнялось
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ImageStore сохраняет картинку рецепта, присланную как data URI, и отдает ее URL
type ImageStore interface {
	Store(ctx context.Context, dataURI string) (string, error)
}

// Authorizer решает, может ли editor менять рецепт автора authorID
type Authorizer interface {
	CanModify(editor domain.Identity, authorID int64) error
}

// RecipeUseCase определяет бизнес-логику создания, изменения и чтения рецептов
type RecipeUseCase interface {
	// CreateRecipe проверяет ввод и в одной транзакции сохраняет рецепт, теги и ингредиенты
	CreateRecipe(ctx context.Context, author domain.Identity, in domain.RecipeInput) (*domain.Recipe, error)

	// UpdateRecipe доступен только автору, теги и ингредиенты заменяются целиком
	UpdateRecipe(ctx context.Context, recipeID int64, editor domain.Identity, in domain.RecipeInput) (*domain.Recipe, error)

	DeleteRecipe(ctx context.Context, recipeID int64, editor domain.Identity) error

	GetRecipe(ctx context.Context, recipeID int64, viewer domain.Identity) (*domain.Recipe, error)

	// ListRecipes отдает страницу рецептов, новые первыми.
	// Флаги избранного и корзины считаются для viewer.
	ListRecipes(ctx context.Context, filter domain.RecipeFilter, viewer domain.Identity) (domain.Page[domain.Recipe], error)
}

// LedgerUseCase определяет логику избранного и корзины
type LedgerUseCase interface {
	// AddEntry возвращает CONFLICT, если рецепт уже добавлен
	AddEntry(ctx context.Context, kind domain.EntryKind, user domain.Identity, recipeID int64) (*domain.RecipeShort, error)

	// RemoveEntry возвращает NOT_FOUND, если записи нет
	RemoveEntry(ctx context.Context, kind domain.EntryKind, user domain.Identity, recipeID int64) error
}

// ShoppingUseCase собирает список покупок из корзины пользователя
type ShoppingUseCase interface {
	BuildShoppingList(ctx context.Context, user domain.Identity) ([]domain.ShoppingItem, error)
	RenderShoppingList(items []domain.ShoppingItem) []byte
}

// SubscriptionUseCase определяет логику подписок на авторов
type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, follower domain.Identity, authorID int64, recipesLimit int) (*domain.AuthorSummary, error)
	Unsubscribe(ctx context.Context, follower domain.Identity, authorID int64) error
	ListSubscriptions(ctx context.Context, follower domain.Identity, p domain.Pagination, recipesLimit int) (domain.Page[domain.AuthorSummary], error)
}

// CatalogUseCase отдает справочники тегов и ингредиентов
type CatalogUseCase interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
}

// UserUseCase заводит пользователей по токену и отдает профили
type UserUseCase interface {
	EnsureUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
	GetProfile(ctx context.Context, id int64, viewer domain.Identity) (*domain.Profile, error)
	ListUsers(ctx context.Context, p domain.Pagination, viewer domain.Identity) (domain.Page[domain.Profile], error)
}

// recipeStore - часть хранилища, нужная рецептам
type recipeStore interface {
	ports.RecipeStorage
	ports.TagStorage
	ports.IngredientStorage
}

// subscriptionStore - часть хранилища, нужная подпискам
type subscriptionStore interface {
	ports.SubscriptionStorage
	ports.UserStorage
	ListAuthorRecipes(ctx context.Context, authorID int64, limit int) ([]domain.RecipeShort, int, error)
}

// normalizePage приводит номер страницы и размер к допустимым значениям
func normalizePage(p domain.Pagination, defaultSize int) domain.Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}
