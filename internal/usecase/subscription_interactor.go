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

// subscriptionUseCase implements SubscriptionUseCase
type subscriptionUseCase struct {
	store    subscriptionStore
	pageSize int
	logger   *slog.Logger
}

func NewSubscriptionUseCase(store subscriptionStore, pageSize int, logger *slog.Logger) SubscriptionUseCase {
	return &subscriptionUseCase{store: store, pageSize: pageSize, logger: logger}
}

// Subscribe подписывает follower на автора и возвращает сводку по автору
func (uc *subscriptionUseCase) Subscribe(ctx context.Context, follower domain.Identity, authorID int64, recipesLimit int) (summary *domain.AuthorSummary, err error) {
	defer func() { metrics.RecordSubscriptionOperation("subscribe", err) }()

	if follower.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}
	if follower.UserID == authorID {
		return nil, apperrors.Validation("cannot follow self")
	}
	if recipesLimit < 0 {
		return nil, apperrors.Validation("recipes_limit must not be negative")
	}

	author, err := uc.author(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.store.AddSubscription(ctx, follower.UserID, authorID); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperrors.Conflict("already subscribed to user %d", authorID)
		}
		return nil, fmt.Errorf("usecase: ошибка при подписке на %d: %w", authorID, err)
	}

	uc.logger.Info("subscribed", "user_id", follower.UserID, "author_id", authorID)
	return uc.summary(ctx, *author, recipesLimit)
}

// Unsubscribe отписывает follower от автора
func (uc *subscriptionUseCase) Unsubscribe(ctx context.Context, follower domain.Identity, authorID int64) (err error) {
	defer func() { metrics.RecordSubscriptionOperation("unsubscribe", err) }()

	if follower.Anonymous() {
		return apperrors.ErrUnauthorized
	}
	if _, err := uc.author(ctx, authorID); err != nil {
		return err
	}

	removed, err := uc.store.RemoveSubscription(ctx, follower.UserID, authorID)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при отписке от %d: %w", authorID, err)
	}
	if !removed {
		return apperrors.NotFound("not subscribed to user %d", authorID)
	}

	uc.logger.Info("unsubscribed", "user_id", follower.UserID, "author_id", authorID)
	return nil
}

// ListSubscriptions отдает страницу авторов, на которых подписан follower
func (uc *subscriptionUseCase) ListSubscriptions(ctx context.Context, follower domain.Identity, p domain.Pagination, recipesLimit int) (domain.Page[domain.AuthorSummary], error) {
	result := domain.Page[domain.AuthorSummary]{Results: []domain.AuthorSummary{}}
	if follower.Anonymous() {
		return result, apperrors.ErrUnauthorized
	}
	if recipesLimit < 0 {
		return result, apperrors.Validation("recipes_limit must not be negative")
	}

	authors, err := uc.store.ListSubscriptions(ctx, follower.UserID, normalizePage(p, uc.pageSize))
	if err != nil {
		return result, fmt.Errorf("usecase: ошибка при получении подписок: %w", err)
	}

	result.Count = authors.Count
	for _, author := range authors.Results {
		summary, err := uc.summary(ctx, author, recipesLimit)
		if err != nil {
			return result, err
		}
		result.Results = append(result.Results, *summary)
	}
	return result, nil
}

func (uc *subscriptionUseCase) author(ctx context.Context, authorID int64) (*domain.User, error) {
	author, err := uc.store.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя %d: %w", authorID, err)
	}
	if author == nil {
		return nil, apperrors.NotFound("user %d not found", authorID)
	}
	return author, nil
}

// summary собирает сводку по автору, на которого подписан зритель
func (uc *subscriptionUseCase) summary(ctx context.Context, author domain.User, recipesLimit int) (*domain.AuthorSummary, error) {
	recipes, count, err := uc.store.ListAuthorRecipes(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении рецептов автора %d: %w", author.ID, err)
	}
	return &domain.AuthorSummary{
		Profile:      domain.Profile{User: author, IsSubscribed: true},
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}
