package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

type userStore interface {
	ports.UserStorage
	IsSubscribed(ctx context.Context, userID, authorID int64) (bool, error)
}

// userUseCase implements UserUseCase
type userUseCase struct {
	store    userStore
	pageSize int
	logger   *slog.Logger
}

func NewUserUseCase(store userStore, pageSize int, logger *slog.Logger) UserUseCase {
	return &userUseCase{store: store, pageSize: pageSize, logger: logger}
}

// EnsureUser заводит пользователя при первом запросе с его токеном
func (uc *userUseCase) EnsureUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if identity.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := uc.store.GetOrCreateUser(ctx, identity)
	if errors.Is(err, ports.ErrDuplicate) {
		uc.logger.Warn("token identity clashes with another user", "user_id", identity.UserID, "username", identity.Username)
		return nil, apperrors.Conflict("username or email of user %d is already taken", identity.UserID)
	}
	if err != nil {
		uc.logger.Error("failed to ensure user", "user_id", identity.UserID, "error", err)
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя %d: %w", identity.UserID, err)
	}
	return user, nil
}

// GetProfile отдает пользователя и признак подписки зрителя на него
func (uc *userUseCase) GetProfile(ctx context.Context, id int64, viewer domain.Identity) (*domain.Profile, error) {
	user, err := uc.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя %d: %w", id, err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user %d not found", id)
	}

	profile := &domain.Profile{User: *user}
	if !viewer.Anonymous() && viewer.UserID != id {
		profile.IsSubscribed, err = uc.store.IsSubscribed(ctx, viewer.UserID, id)
		if err != nil {
			return nil, fmt.Errorf("usecase: ошибка при проверке подписки: %w", err)
		}
	}
	return profile, nil
}

// ListUsers отдает страницу пользователей глазами зрителя
func (uc *userUseCase) ListUsers(ctx context.Context, p domain.Pagination, viewer domain.Identity) (domain.Page[domain.Profile], error) {
	page, err := uc.store.ListUsers(ctx, normalizePage(p, uc.pageSize), viewer.UserID)
	if err != nil {
		return page, fmt.Errorf("usecase: ошибка при получении списка пользователей: %w", err)
	}
	return page, nil
}
