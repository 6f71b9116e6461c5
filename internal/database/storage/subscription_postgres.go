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

// AddSubscription подписывает userID на authorID
func (s *PostgresStorage) AddSubscription(ctx context.Context, userID, authorID int64) (*domain.Subscription, error) {
	sub := &domain.Subscription{UserID: userID, AuthorID: authorID, CreatedAt: time.Now().UTC()}
	q := s.db.Rebind(`
	INSERT INTO subscriptions (user_id, author_id, created_at) VALUES (?, ?, ?)
	ON CONFLICT (user_id, author_id) DO NOTHING
	RETURNING user_id
	`)

	var inserted int64
	if err := s.db.GetContext(ctx, &inserted, q, userID, authorID, sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrDuplicate
		}
		s.logger.Error("failed to add subscription", "user_id", userID, "author_id", authorID, "error", err)
		return nil, fmt.Errorf("ошибка при сохранении подписки: %w", err)
	}

	s.logger.Info("subscription added", "user_id", userID, "author_id", authorID)
	return sub, nil
}

// RemoveSubscription удаляет подписку, false - подписки не было
func (s *PostgresStorage) RemoveSubscription(ctx context.Context, userID, authorID int64) (bool, error) {
	q := s.db.Rebind(`DELETE FROM subscriptions WHERE user_id = ? AND author_id = ?`)
	res, err := s.db.ExecContext(ctx, q, userID, authorID)
	if err != nil {
		s.logger.Error("failed to remove subscription", "user_id", userID, "author_id", authorID, "error", err)
		return false, fmt.Errorf("ошибка при удалении подписки: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при удалении подписки: %w", err)
	}
	return n > 0, nil
}

// IsSubscribed проверяет, подписан ли userID на authorID
func (s *PostgresStorage) IsSubscribed(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	q := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = ? AND author_id = ?)`)
	if err := s.db.GetContext(ctx, &exists, q, userID, authorID); err != nil {
		return false, fmt.Errorf("ошибка при проверке подписки: %w", err)
	}
	return exists, nil
}

// ListSubscriptions возвращает страницу авторов, на которых подписан userID
func (s *PostgresStorage) ListSubscriptions(ctx context.Context, userID int64, p domain.Pagination) (domain.Page[domain.User], error) {
	start := time.Now()
	page := domain.Page[domain.User]{Results: []domain.User{}}

	if err := s.db.GetContext(ctx, &page.Count, s.db.Rebind(`SELECT COUNT(*) FROM subscriptions WHERE user_id = ?`), userID); err != nil {
		s.logger.Error("failed to count subscriptions", "user_id", userID, "error", err)
		return page, fmt.Errorf("ошибка при подсчете подписок: %w", err)
	}
	if page.Count == 0 {
		return page, nil
	}

	q := s.db.Rebind(`
	SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.created_at
	FROM subscriptions s JOIN users u ON u.id = s.author_id
	WHERE s.user_id = ?
	ORDER BY u.id
	LIMIT ? OFFSET ?
	`)
	if err := s.db.SelectContext(ctx, &page.Results, q, userID, p.Limit, p.Offset()); err != nil {
		s.logger.Error("failed to list subscriptions", "user_id", userID, "error", err)
		return page, fmt.Errorf("ошибка при получении подписок: %w", err)
	}

	s.logger.Debug("listed subscriptions",
		"user_id", userID,
		"count", len(page.Results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}
