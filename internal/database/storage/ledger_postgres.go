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

var ledgerTables = map[domain.EntryKind]string{
	domain.KindFavorite:     "favorites",
	domain.KindShoppingCart: "shopping_cart",
}

func ledgerTable(kind domain.EntryKind) (string, error) {
	table, ok := ledgerTables[kind]
	if !ok {
		return "", fmt.Errorf("неизвестный вид записи: %q", kind)
	}
	return table, nil
}

// AddEntry добавляет рецепт в избранное или корзину пользователя
func (s *PostgresStorage) AddEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (*domain.LedgerEntry, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{Kind: kind, UserID: userID, RecipeID: recipeID, CreatedAt: time.Now().UTC()}
	q := s.db.Rebind(`
	INSERT INTO ` + table + ` (user_id, recipe_id, created_at) VALUES (?, ?, ?)
	ON CONFLICT (user_id, recipe_id) DO NOTHING
	RETURNING user_id
	`)

	var inserted int64
	if err := s.db.GetContext(ctx, &inserted, q, userID, recipeID, entry.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrDuplicate
		}
		s.logger.Error("failed to add ledger entry", "kind", kind, "user_id", userID, "recipe_id", recipeID, "error", err)
		return nil, fmt.Errorf("ошибка при добавлении записи %s: %w", kind, err)
	}

	s.logger.Info("ledger entry added", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return entry, nil
}

// RemoveEntry удаляет запись, false - записи не было
func (s *PostgresStorage) RemoveEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM `+table+` WHERE user_id = ? AND recipe_id = ?`), userID, recipeID)
	if err != nil {
		s.logger.Error("failed to remove ledger entry", "kind", kind, "user_id", userID, "recipe_id", recipeID, "error", err)
		return false, fmt.Errorf("ошибка при удалении записи %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при удалении записи %s: %w", kind, err)
	}

	s.logger.Info("ledger entry removed", "kind", kind, "user_id", userID, "recipe_id", recipeID, "removed", n > 0)
	return n > 0, nil
}

// HasEntry проверяет наличие записи
func (s *PostgresStorage) HasEntry(ctx context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	q := s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE user_id = ? AND recipe_id = ?)`)
	if err := s.db.GetContext(ctx, &exists, q, userID, recipeID); err != nil {
		return false, fmt.Errorf("ошибка при проверке записи %s: %w", kind, err)
	}
	return exists, nil
}

// ListCartLines возвращает строки ингредиентов всех рецептов из корзины пользователя
func (s *PostgresStorage) ListCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	start := time.Now()

	q := s.db.Rebind(`
	SELECT i.name, i.measurement_unit, ri.amount
	FROM shopping_cart c
	JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id
	JOIN ingredients i ON i.id = ri.ingredient_id
	WHERE c.user_id = ?
	`)

	lines := []domain.CartLine{}
	if err := s.db.SelectContext(ctx, &lines, q, userID); err != nil {
		s.logger.Error("failed to list cart lines", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении корзины: %w", err)
	}

	s.logger.Debug("cart lines loaded",
		"user_id", userID,
		"lines", len(lines),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return lines, nil
}
