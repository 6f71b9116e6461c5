package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GoArmGo/foodgram/internal/domain"
)

// ListTags возвращает все теги по порядку создания
func (s *PostgresStorage) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if err := s.db.SelectContext(ctx, &tags, `SELECT id, name, color, slug FROM tags ORDER BY id`); err != nil {
		s.logger.Error("failed to list tags", "error", err)
		return nil, fmt.Errorf("ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

// GetTagByID получает тег по ID
func (s *PostgresStorage) GetTagByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var tag domain.Tag
	q := s.db.Rebind(`SELECT id, name, color, slug FROM tags WHERE id = ?`)
	if err := s.db.GetContext(ctx, &tag, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to get tag by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении тега по ID: %w", err)
	}
	return &tag, nil
}

// GetTagsByIDs получает существующие теги из списка
func (s *PostgresStorage) GetTagsByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}

	q, args, err := s.in(`SELECT id, name, color, slug FROM tags WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &tags, q, args...); err != nil {
		s.logger.Error("failed to get tags by ids", "ids", ids, "error", err)
		return nil, fmt.Errorf("ошибка при получении тегов по ID: %w", err)
	}
	return tags, nil
}
