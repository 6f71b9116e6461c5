package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/jmoiron/sqlx"
)

// recipeColumns ожидает два аргумента: id зрителя для избранного и для корзины
const recipeColumns = `
	r.id, r.author_id, r.name, r.image, r.text, r.cooking_time, r.created_at,
	EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = ?) AS is_favorited,
	EXISTS (SELECT 1 FROM shopping_cart c WHERE c.recipe_id = r.id AND c.user_id = ?) AS is_in_shopping_cart`

type recipeRow struct {
	domain.RecipeRecord
	IsFavorited      bool `db:"is_favorited"`
	IsInShoppingCart bool `db:"is_in_shopping_cart"`
}

type recipeTagRow struct {
	RecipeID int64 `db:"recipe_id"`
	domain.Tag
}

type recipeIngredientRow struct {
	RecipeID int64 `db:"recipe_id"`
	domain.RecipeIngredient
}

type recipeTagLink struct {
	RecipeID int64 `db:"recipe_id"`
	TagID    int64 `db:"tag_id"`
}

type recipeIngredientLink struct {
	RecipeID     int64 `db:"recipe_id"`
	IngredientID int64 `db:"ingredient_id"`
	Amount       int   `db:"amount"`
}

// CreateRecipe сохраняет рецепт, его теги и ингредиенты в одной транзакции
func (s *PostgresStorage) CreateRecipe(ctx context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error {
	start := time.Now()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`
		INSERT INTO recipes (author_id, name, image, text, cooking_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
		`)
		if err := tx.GetContext(ctx, &id, q, rec.AuthorID, rec.Name, rec.Image, rec.Text, rec.CookingTime, rec.CreatedAt); err != nil {
			return fmt.Errorf("ошибка при сохранении рецепта: %w", err)
		}
		if err := insertRecipeTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return insertRecipeIngredients(ctx, tx, id, lines)
	})
	if err != nil {
		s.logger.Error("failed to create recipe", "author_id", rec.AuthorID, "error", err)
		return err
	}

	rec.ID = id
	s.logger.Info("recipe saved successfully",
		"id", rec.ID,
		"author_id", rec.AuthorID,
		"tags", len(tagIDs),
		"ingredients", len(lines),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// UpdateRecipe обновляет рецепт и заменяет его теги и ингредиенты целиком.
// Старые строки удаляются и вставляются новые в той же транзакции,
// поэтому читатели никогда не видят рецепт без ингредиентов.
func (s *PostgresStorage) UpdateRecipe(ctx context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error {
	start := time.Now()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE recipes SET name = ?, image = ?, text = ?, cooking_time = ? WHERE id = ?`)
		res, err := tx.ExecContext(ctx, q, rec.Name, rec.Image, rec.Text, rec.CookingTime, rec.ID)
		if err != nil {
			return fmt.Errorf("ошибка при обновлении рецепта: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("рецепт %d: %w", rec.ID, sql.ErrNoRows)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipe_tags WHERE recipe_id = ?`), rec.ID); err != nil {
			return fmt.Errorf("ошибка при удалении тегов рецепта: %w", err)
		}
		if err := insertRecipeTags(ctx, tx, rec.ID, tagIDs); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`), rec.ID); err != nil {
			return fmt.Errorf("ошибка при удалении ингредиентов рецепта: %w", err)
		}
		return insertRecipeIngredients(ctx, tx, rec.ID, lines)
	})
	if err != nil {
		s.logger.Error("failed to update recipe", "id", rec.ID, "error", err)
		return err
	}

	s.logger.Info("recipe updated successfully",
		"id", rec.ID,
		"tags", len(tagIDs),
		"ingredients", len(lines),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteRecipe удаляет рецепт и все ссылки на него
func (s *PostgresStorage) DeleteRecipe(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"recipe_tags", "recipe_ingredients", "favorites", "shopping_cart"} {
			q := tx.Rebind(`DELETE FROM ` + table + ` WHERE recipe_id = ?`)
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("ошибка при удалении из %s: %w", table, err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipes WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("ошибка при удалении рецепта: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("ошибка при удалении рецепта: %w", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete recipe", "id", id, "error", err)
		return false, err
	}

	s.logger.Info("recipe deleted", "id", id, "deleted", deleted)
	return deleted, nil
}

// GetRecipeRecord получает строку рецепта без связанных данных
func (s *PostgresStorage) GetRecipeRecord(ctx context.Context, id int64) (*domain.RecipeRecord, error) {
	var rec domain.RecipeRecord
	q := s.db.Rebind(`SELECT id, author_id, name, image, text, cooking_time, created_at FROM recipes WHERE id = ?`)
	if err := s.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to get recipe record", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении рецепта по ID: %w", err)
	}
	return &rec, nil
}

// GetRecipe получает рецепт со всеми связанными данными
func (s *PostgresStorage) GetRecipe(ctx context.Context, id, viewerID int64) (*domain.Recipe, error) {
	start := time.Now()

	var row recipeRow
	q := s.db.Rebind(`SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = ?`)
	if err := s.db.GetContext(ctx, &row, q, viewerID, viewerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("recipe not found by id", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get recipe by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении рецепта по ID: %w", err)
	}

	recipes, err := s.hydrate(ctx, []recipeRow{row}, viewerID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("recipe retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &recipes[0], nil
}

// ListRecipes возвращает страницу рецептов, новые первыми
func (s *PostgresStorage) ListRecipes(ctx context.Context, f domain.RecipeFilter) (domain.Page[domain.Recipe], error) {
	start := time.Now()
	page := domain.Page[domain.Recipe]{Results: []domain.Recipe{}}

	// фильтры по записям зрителя для анонима всегда пусты
	if (f.IsFavorited || f.IsInShoppingCart) && f.ViewerID == 0 {
		return page, nil
	}

	where := []string{"1 = 1"}
	var args []any
	if f.AuthorID != 0 {
		where = append(where, "r.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug IN (?))`)
		args = append(args, f.TagSlugs)
	}
	if f.IsFavorited {
		where = append(where, "EXISTS (SELECT 1 FROM favorites fv WHERE fv.recipe_id = r.id AND fv.user_id = ?)")
		args = append(args, f.ViewerID)
	}
	if f.IsInShoppingCart {
		where = append(where, "EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = ?)")
		args = append(args, f.ViewerID)
	}
	whereSQL := strings.Join(where, " AND ")

	countQ, countArgs, err := s.in(`SELECT COUNT(*) FROM recipes r WHERE `+whereSQL, args...)
	if err != nil {
		return page, err
	}
	if err := s.db.GetContext(ctx, &page.Count, countQ, countArgs...); err != nil {
		s.logger.Error("failed to count recipes", "error", err)
		return page, fmt.Errorf("ошибка при подсчете рецептов: %w", err)
	}
	if page.Count == 0 {
		return page, nil
	}

	listArgs := append([]any{f.ViewerID, f.ViewerID}, args...)
	listArgs = append(listArgs, f.Limit, f.Offset())
	listQ, listArgs, err := s.in(`SELECT `+recipeColumns+` FROM recipes r WHERE `+whereSQL+` ORDER BY r.id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return page, err
	}

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, listQ, listArgs...); err != nil {
		s.logger.Error("failed to list recipes", "page", f.Page, "limit", f.Limit, "error", err)
		return page, fmt.Errorf("ошибка при получении списка рецептов: %w", err)
	}

	recipes, err := s.hydrate(ctx, rows, f.ViewerID)
	if err != nil {
		return page, err
	}
	page.Results = recipes

	s.logger.Debug("listed recipes successfully",
		"page", f.Page,
		"limit", f.Limit,
		"count", len(recipes),
		"total", page.Count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}

// ListAuthorRecipes возвращает последние рецепты автора и их общее число
func (s *PostgresStorage) ListAuthorRecipes(ctx context.Context, authorID int64, limit int) ([]domain.RecipeShort, int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM recipes WHERE author_id = ?`), authorID); err != nil {
		s.logger.Error("failed to count author recipes", "author_id", authorID, "error", err)
		return nil, 0, fmt.Errorf("ошибка при подсчете рецептов автора: %w", err)
	}

	recipes := []domain.RecipeShort{}
	if count == 0 || limit <= 0 {
		return recipes, count, nil
	}

	q := s.db.Rebind(`
	SELECT id, name, image, cooking_time FROM recipes
	WHERE author_id = ?
	ORDER BY id DESC
	LIMIT ?
	`)
	if err := s.db.SelectContext(ctx, &recipes, q, authorID, limit); err != nil {
		s.logger.Error("failed to list author recipes", "author_id", authorID, "error", err)
		return nil, 0, fmt.Errorf("ошибка при получении рецептов автора: %w", err)
	}
	return recipes, count, nil
}

// hydrate подгружает теги, ингредиенты и авторов для строк рецептов, сохраняя их порядок
func (s *PostgresStorage) hydrate(ctx context.Context, rows []recipeRow, viewerID int64) ([]domain.Recipe, error) {
	recipes := make([]domain.Recipe, len(rows))
	if len(rows) == 0 {
		return recipes, nil
	}

	recipeIDs := make([]int64, 0, len(rows))
	authorIDs := make([]int64, 0, len(rows))
	seenAuthors := make(map[int64]struct{}, len(rows))
	index := make(map[int64]int, len(rows))
	for i, row := range rows {
		recipes[i] = domain.Recipe{
			ID:               row.ID,
			Name:             row.Name,
			Image:            row.Image,
			Text:             row.Text,
			CookingTime:      row.CookingTime,
			CreatedAt:        row.CreatedAt,
			IsFavorited:      row.IsFavorited,
			IsInShoppingCart: row.IsInShoppingCart,
			Tags:             []domain.Tag{},
			Ingredients:      []domain.RecipeIngredient{},
		}
		recipeIDs = append(recipeIDs, row.ID)
		index[row.ID] = i
		if _, ok := seenAuthors[row.AuthorID]; !ok {
			seenAuthors[row.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, row.AuthorID)
		}
	}

	// теги
	q, args, err := s.in(`
	SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
	FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
	WHERE rt.recipe_id IN (?)
	ORDER BY t.id`, recipeIDs)
	if err != nil {
		return nil, err
	}
	var tagRows []recipeTagRow
	if err := s.db.SelectContext(ctx, &tagRows, q, args...); err != nil {
		return nil, fmt.Errorf("ошибка при получении тегов рецептов: %w", err)
	}
	for _, tr := range tagRows {
		r := &recipes[index[tr.RecipeID]]
		r.Tags = append(r.Tags, tr.Tag)
	}

	// ингредиенты
	q, args, err = s.in(`
	SELECT ri.recipe_id, ri.ingredient_id, i.name, i.measurement_unit, ri.amount
	FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
	WHERE ri.recipe_id IN (?)
	ORDER BY i.name, i.id`, recipeIDs)
	if err != nil {
		return nil, err
	}
	var ingredientRows []recipeIngredientRow
	if err := s.db.SelectContext(ctx, &ingredientRows, q, args...); err != nil {
		return nil, fmt.Errorf("ошибка при получении ингредиентов рецептов: %w", err)
	}
	for _, ir := range ingredientRows {
		r := &recipes[index[ir.RecipeID]]
		r.Ingredients = append(r.Ingredients, ir.RecipeIngredient)
	}

	// авторы
	authors, err := s.profiles(ctx, authorIDs, viewerID)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if p, ok := authors[row.AuthorID]; ok {
			recipes[i].Author = p
		} else {
			recipes[i].Author = domain.Profile{User: domain.User{ID: row.AuthorID}}
		}
	}

	return recipes, nil
}

func insertRecipeTags(ctx context.Context, tx *sqlx.Tx, recipeID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]recipeTagLink, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, recipeTagLink{RecipeID: recipeID, TagID: id})
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (:recipe_id, :tag_id)`, links); err != nil {
		return fmt.Errorf("ошибка при сохранении тегов рецепта: %w", err)
	}
	return nil
}

func insertRecipeIngredients(ctx context.Context, tx *sqlx.Tx, recipeID int64, lines []domain.IngredientAmount) error {
	if len(lines) == 0 {
		return nil
	}
	links := make([]recipeIngredientLink, 0, len(lines))
	for _, l := range lines {
		links = append(links, recipeIngredientLink{RecipeID: recipeID, IngredientID: l.IngredientID, Amount: l.Amount})
	}
	q := `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES (:recipe_id, :ingredient_id, :amount)`
	if _, err := tx.NamedExecContext(ctx, q, links); err != nil {
		return fmt.Errorf("ошибка при сохранении ингредиентов рецепта: %w", err)
	}
	return nil
}
