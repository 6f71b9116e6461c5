package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

// GetOrCreateUser получает пользователя по id или создает его по данным токена
func (s *PostgresStorage) GetOrCreateUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	start := time.Now()

	user, err := s.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	s.logger.Warn("user not found, creating new one", "user_id", identity.UserID, "username", identity.Username)

	newUser := domain.User{
		ID:        identity.UserID,
		Email:     identity.Email,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		CreatedAt: time.Now().UTC(),
	}

	// параллельный запрос мог успеть создать пользователя, тогда вставка ничего не делает.
	// Занятые email или username тоже не вставляются, это видно по отсутствию строки ниже.
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, first_name, last_name, created_at)
		VALUES (:id, :email, :username, :first_name, :last_name, :created_at)
		ON CONFLICT DO NOTHING
	`, &newUser)
	if err != nil {
		s.logger.Error("failed to insert user", "user_id", identity.UserID, "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user, err = s.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("user insert skipped, email or username is taken", "user_id", identity.UserID, "username", identity.Username)
		return nil, fmt.Errorf("insert user %d: %w", identity.UserID, ports.ErrDuplicate)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return user, nil
}

// GetUserByID получает пользователя по id
func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	q := s.db.Rebind(`SELECT id, email, username, first_name, last_name, created_at FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &user, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to select user", "user_id", id, "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// ListUsers возвращает страницу пользователей по возрастанию id
func (s *PostgresStorage) ListUsers(ctx context.Context, p domain.Pagination, viewerID int64) (domain.Page[domain.Profile], error) {
	start := time.Now()
	page := domain.Page[domain.Profile]{Results: []domain.Profile{}}

	if err := s.db.GetContext(ctx, &page.Count, `SELECT COUNT(*) FROM users`); err != nil {
		s.logger.Error("failed to count users", "error", err)
		return page, fmt.Errorf("ошибка при подсчете пользователей: %w", err)
	}
	if page.Count == 0 {
		return page, nil
	}

	var ids []int64
	q := s.db.Rebind(`SELECT id FROM users ORDER BY id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &ids, q, p.Limit, p.Offset()); err != nil {
		s.logger.Error("failed to list users", "error", err)
		return page, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	profiles, err := s.profiles(ctx, ids, viewerID)
	if err != nil {
		return page, err
	}
	for _, id := range ids {
		if profile, ok := profiles[id]; ok {
			page.Results = append(page.Results, profile)
		}
	}

	s.logger.Debug("listed users",
		"count", len(page.Results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}

// profiles загружает пользователей и отмечает, на кого из них подписан viewerID
func (s *PostgresStorage) profiles(ctx context.Context, ids []int64, viewerID int64) (map[int64]domain.Profile, error) {
	out := make(map[int64]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q, args, err := s.in(`SELECT id, email, username, first_name, last_name, created_at FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := s.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	subscribed := map[int64]bool{}
	if viewerID != 0 {
		q, args, err := s.in(`SELECT author_id FROM subscriptions WHERE user_id = ? AND author_id IN (?)`, viewerID, ids)
		if err != nil {
			return nil, err
		}
		var authorIDs []int64
		if err := s.db.SelectContext(ctx, &authorIDs, q, args...); err != nil {
			return nil, fmt.Errorf("select subscriptions: %w", err)
		}
		for _, id := range authorIDs {
			subscribed[id] = true
		}
	}

	for _, u := range users {
		out[u.ID] = domain.Profile{User: u, IsSubscribed: subscribed[u.ID]}
	}
	return out, nil
}
