package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/metrics"
)

type cartLineStore interface {
	ListCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
}

// shoppingUseCase implements ShoppingUseCase
type shoppingUseCase struct {
	store  cartLineStore
	logger *slog.Logger
}

func NewShoppingUseCase(store cartLineStore, logger *slog.Logger) ShoppingUseCase {
	return &shoppingUseCase{store: store, logger: logger}
}

// BuildShoppingList суммирует ингредиенты всех рецептов из корзины пользователя
func (uc *shoppingUseCase) BuildShoppingList(ctx context.Context, user domain.Identity) ([]domain.ShoppingItem, error) {
	if user.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	lines, err := uc.store.ListCartLines(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении корзины: %w", err)
	}

	items := domain.AggregateShoppingList(lines)
	metrics.RecordShoppingList(len(items))
	uc.logger.Debug("shopping list built", "user_id", user.UserID, "lines", len(lines), "items", len(items))
	return items, nil
}

func (uc *shoppingUseCase) RenderShoppingList(items []domain.ShoppingItem) []byte {
	return domain.RenderShoppingList(items)
}
