package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/metrics"
)

type ledgerStore interface {
	ports.LedgerStorage
	GetRecipeRecord(ctx context.Context, id int64) (*domain.RecipeRecord, error)
}

// ledgerUseCase implements LedgerUseCase
type ledgerUseCase struct {
	store  ledgerStore
	logger *slog.Logger
}

func NewLedgerUseCase(store ledgerStore, logger *slog.Logger) LedgerUseCase {
	return &ledgerUseCase{store: store, logger: logger}
}

// AddEntry добавляет рецепт в избранное или корзину
func (uc *ledgerUseCase) AddEntry(ctx context.Context, kind domain.EntryKind, user domain.Identity, recipeID int64) (short *domain.RecipeShort, err error) {
	defer func() { metrics.RecordLedgerOperation(string(kind), "add", err) }()

	rec, err := uc.recipe(ctx, kind, user, recipeID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.store.AddEntry(ctx, kind, user.UserID, recipeID); err != nil {
		// уникальный ключ ловит и параллельные вставки
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperrors.Conflict("recipe %d is already in %s", recipeID, kind)
		}
		return nil, fmt.Errorf("usecase: ошибка при добавлении рецепта %d в %s: %w", recipeID, kind, err)
	}

	uc.logger.Info("ledger entry added", "kind", kind, "user_id", user.UserID, "recipe_id", recipeID)
	return &domain.RecipeShort{ID: rec.ID, Name: rec.Name, Image: rec.Image, CookingTime: rec.CookingTime}, nil
}

// RemoveEntry убирает рецепт из избранного или корзины
func (uc *ledgerUseCase) RemoveEntry(ctx context.Context, kind domain.EntryKind, user domain.Identity, recipeID int64) (err error) {
	defer func() { metrics.RecordLedgerOperation(string(kind), "remove", err) }()

	if _, err := uc.recipe(ctx, kind, user, recipeID); err != nil {
		return err
	}

	removed, err := uc.store.RemoveEntry(ctx, kind, user.UserID, recipeID)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при удалении рецепта %d из %s: %w", recipeID, kind, err)
	}
	if !removed {
		return apperrors.NotFound("recipe %d is not in %s", recipeID, kind)
	}

	uc.logger.Info("ledger entry removed", "kind", kind, "user_id", user.UserID, "recipe_id", recipeID)
	return nil
}

func (uc *ledgerUseCase) recipe(ctx context.Context, kind domain.EntryKind, user domain.Identity, recipeID int64) (*domain.RecipeRecord, error) {
	if !kind.Valid() {
		return nil, apperrors.Validation("unknown entry kind %q", kind)
	}
	if user.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	rec, err := uc.store.GetRecipeRecord(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении рецепта %d: %w", recipeID, err)
	}
	if rec == nil {
		return nil, apperrors.NotFound("recipe %d not found", recipeID)
	}
	return rec, nil
}
