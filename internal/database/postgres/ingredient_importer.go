package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/foodgram/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// ingredientItem - элемент JSON файла справочника
type ingredientItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ParseIngredients читает JSON массив {"name", "measurement_unit"}.
// Пробелы по краям обрезаются, повторы внутри файла схлопываются.
func ParseIngredients(r io.Reader) ([]domain.Ingredient, error) {
	var items []ingredientItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
	}

	type key struct{ name, unit string }
	seen := make(map[key]struct{}, len(items))
	out := make([]domain.Ingredient, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		unit := strings.TrimSpace(item.MeasurementUnit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("элемент %d: пустое название или единица измерения", i)
		}
		k := key{name, unit}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, domain.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}

// IngredientImporter загружает справочник ингредиентов пачками через GORM
type IngredientImporter struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewIngredientImporter(db *gorm.DB, logger *slog.Logger) *IngredientImporter {
	return &IngredientImporter{db: db, logger: logger}
}

// Import вставляет ингредиенты, уже существующие пары (name, unit) пропускаются.
// Возвращает число реально добавленных строк.
func (i *IngredientImporter) Import(ctx context.Context, ingredients []domain.Ingredient) (int64, error) {
	start := time.Now()
	if len(ingredients) == 0 {
		return 0, nil
	}

	result := i.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&ingredients, importBatchSize)
	if result.Error != nil {
		i.logger.Error("failed to import ingredients", "error", result.Error)
		return 0, fmt.Errorf("ошибка при загрузке ингредиентов с помощью GORM: %w", result.Error)
	}

	i.logger.Info("ingredients imported",
		"total", len(ingredients),
		"inserted", result.RowsAffected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result.RowsAffected, nil
}
