package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

type catalogStore interface {
	ports.TagStorage
	ports.IngredientStorage
}

// catalogUseCase implements CatalogUseCase
type catalogUseCase struct {
	store catalogStore
}

func NewCatalogUseCase(store catalogStore) CatalogUseCase {
	return &catalogUseCase{store: store}
}

func (uc *catalogUseCase) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := uc.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

func (uc *catalogUseCase) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := uc.store.GetTagByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении тега %d: %w", id, err)
	}
	if tag == nil {
		return nil, apperrors.NotFound("tag %d not found", id)
	}
	return tag, nil
}

// ListIngredients ищет ингредиенты по началу названия
func (uc *catalogUseCase) ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	ingredients, err := uc.store.ListIngredients(ctx, strings.TrimSpace(namePrefix))
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске ингредиентов: %w", err)
	}
	return ingredients, nil
}

func (uc *catalogUseCase) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ingredient, err := uc.store.GetIngredientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении ингредиента %d: %w", id, err)
	}
	if ingredient == nil {
		return nil, apperrors.NotFound("ingredient %d not found", id)
	}
	return ingredient, nil
}
