package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoArmGo/foodgram/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListIngredients ищет ингредиенты по началу названия без учета регистра
func (s *PostgresStorage) ListIngredients(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	start := time.Now()

	// регистр снимается в базе с обеих сторон
	pattern := likeEscaper.Replace(namePrefix) + "%"
	q := s.db.Rebind(`
	SELECT id, name, measurement_unit FROM ingredients
	WHERE LOWER(name) LIKE LOWER(?) ESCAPE '\'
	ORDER BY name, id
	`)

	ingredients := []domain.Ingredient{}
	if err := s.db.SelectContext(ctx, &ingredients, q, pattern); err != nil {
		s.logger.Error("failed to list ingredients", "prefix", namePrefix, "error", err)
		return nil, fmt.Errorf("ошибка при поиске ингредиентов: %w", err)
	}

	s.logger.Debug("ingredients search completed",
		"prefix", namePrefix,
		"found", len(ingredients),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ingredients, nil
}

// GetIngredientByID получает ингредиент по ID
func (s *PostgresStorage) GetIngredientByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	q := s.db.Rebind(`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`)
	if err := s.db.GetContext(ctx, &ingredient, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to get ingredient by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении ингредиента по ID: %w", err)
	}
	return &ingredient, nil
}

// GetIngredientsByIDs получает существующие ингредиенты из списка
func (s *PostgresStorage) GetIngredientsByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error) {
	ingredients := []domain.Ingredient{}
	if len(ids) == 0 {
		return ingredients, nil
	}

	q, args, err := s.in(`SELECT id, name, measurement_unit FROM ingredients WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &ingredients, q, args...); err != nil {
		s.logger.Error("failed to get ingredients by ids", "ids", ids, "error", err)
		return nil, fmt.Errorf("ошибка при получении ингредиентов по ID: %w", err)
	}
	return ingredients, nil
}
