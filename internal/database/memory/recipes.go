package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/GoArmGo/foodgram/internal/domain"
)

// checkLinks повторяет внешние ключи и первичные ключи таблиц связей
func (s *Store) checkLinks(tagIDs []int64, lines []domain.IngredientAmount) error {
	for _, id := range tagIDs {
		if _, ok := s.tags[id]; !ok {
			return fmt.Errorf("тег %d не существует", id)
		}
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := s.ingredients[l.IngredientID]; !ok {
			return fmt.Errorf("ингредиент %d не существует", l.IngredientID)
		}
		if _, dup := seen[l.IngredientID]; dup {
			return fmt.Errorf("ингредиент %d повторяется в рецепте", l.IngredientID)
		}
		seen[l.IngredientID] = struct{}{}
		if l.Amount < domain.MinAmount || l.Amount > domain.MaxAmount {
			return fmt.Errorf("количество ингредиента %d вне диапазона [%d, %d]", l.IngredientID, domain.MinAmount, domain.MaxAmount)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Store) CreateRecipe(_ context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.AuthorID]; !ok {
		return fmt.Errorf("автор %d не существует", rec.AuthorID)
	}
	if err := s.checkLinks(tagIDs, lines); err != nil {
		return fmt.Errorf("ошибка при сохранении рецепта: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.nextRecipeID++
	rec.ID = s.nextRecipeID
	s.recipes[rec.ID] = &recipeState{
		record: *rec,
		tagIDs: uniqueIDs(tagIDs),
		lines:  append([]domain.IngredientAmount(nil), lines...),
	}

	s.logger.Info("recipe saved successfully", "id", rec.ID, "author_id", rec.AuthorID)
	return nil
}

func (s *Store) UpdateRecipe(_ context.Context, rec *domain.RecipeRecord, tagIDs []int64, lines []domain.IngredientAmount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.recipes[rec.ID]
	if !ok {
		return fmt.Errorf("рецепт %d: %w", rec.ID, sql.ErrNoRows)
	}
	if err := s.checkLinks(tagIDs, lines); err != nil {
		return fmt.Errorf("ошибка при обновлении рецепта: %w", err)
	}

	state.record.Name = rec.Name
	state.record.Image = rec.Image
	state.record.Text = rec.Text
	state.record.CookingTime = rec.CookingTime
	state.tagIDs = uniqueIDs(tagIDs)
	state.lines = append([]domain.IngredientAmount(nil), lines...)

	s.logger.Info("recipe updated successfully", "id", rec.ID)
	return nil
}

func (s *Store) DeleteRecipe(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return false, nil
	}
	delete(s.recipes, id)
	for _, entries := range s.ledger {
		for k := range entries {
			if k.targetID == id {
				delete(entries, k)
			}
		}
	}

	s.logger.Info("recipe deleted", "id", id)
	return true, nil
}

func (s *Store) GetRecipeRecord(_ context.Context, id int64) (*domain.RecipeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.recipes[id]
	if !ok {
		return nil, nil
	}
	rec := state.record
	return &rec, nil
}

func (s *Store) GetRecipe(_ context.Context, id, viewerID int64) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.recipes[id]
	if !ok {
		return nil, nil
	}
	recipe := s.hydrate(state, viewerID)
	return &recipe, nil
}

func (s *Store) ListRecipes(_ context.Context, f domain.RecipeFilter) (domain.Page[domain.Recipe], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := domain.Page[domain.Recipe]{Results: []domain.Recipe{}}
	if (f.IsFavorited || f.IsInShoppingCart) && f.ViewerID == 0 {
		return page, nil
	}

	slugs := make(map[string]struct{}, len(f.TagSlugs))
	for _, slug := range f.TagSlugs {
		slugs[slug] = struct{}{}
	}

	var matched []*recipeState
	for _, state := range s.recipes {
		if f.AuthorID != 0 && state.record.AuthorID != f.AuthorID {
			continue
		}
		if len(slugs) > 0 && !s.hasAnySlug(state, slugs) {
			continue
		}
		key := pairKey{userID: f.ViewerID, targetID: state.record.ID}
		if f.IsFavorited {
			if _, ok := s.ledger[domain.KindFavorite][key]; !ok {
				continue
			}
		}
		if f.IsInShoppingCart {
			if _, ok := s.ledger[domain.KindShoppingCart][key]; !ok {
				continue
			}
		}
		matched = append(matched, state)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].record.ID > matched[j].record.ID })

	page.Count = len(matched)
	from, to := bounds(f.Pagination, len(matched))
	for _, state := range matched[from:to] {
		page.Results = append(page.Results, s.hydrate(state, f.ViewerID))
	}
	return page, nil
}

func (s *Store) ListAuthorRecipes(_ context.Context, authorID int64, limit int) ([]domain.RecipeShort, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var own []domain.RecipeRecord
	for _, state := range s.recipes {
		if state.record.AuthorID == authorID {
			own = append(own, state.record)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].ID > own[j].ID })

	out := []domain.RecipeShort{}
	for i, rec := range own {
		if i >= limit {
			break
		}
		out = append(out, domain.RecipeShort{ID: rec.ID, Name: rec.Name, Image: rec.Image, CookingTime: rec.CookingTime})
	}
	return out, len(own), nil
}

func (s *Store) hasAnySlug(state *recipeState, slugs map[string]struct{}) bool {
	for _, id := range state.tagIDs {
		if _, ok := slugs[s.tags[id].Slug]; ok {
			return true
		}
	}
	return false
}

func (s *Store) hydrate(state *recipeState, viewerID int64) domain.Recipe {
	rec := state.record
	recipe := domain.Recipe{
		ID:          rec.ID,
		Tags:        s.tagsByIDs(state.tagIDs),
		Author:      s.profile(rec.AuthorID, viewerID),
		Ingredients: make([]domain.RecipeIngredient, 0, len(state.lines)),
		Name:        rec.Name,
		Image:       rec.Image,
		Text:        rec.Text,
		CookingTime: rec.CookingTime,
		CreatedAt:   rec.CreatedAt,
	}
	for _, l := range state.lines {
		i := s.ingredients[l.IngredientID]
		recipe.Ingredients = append(recipe.Ingredients, domain.RecipeIngredient{
			ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit, Amount: l.Amount,
		})
	}
	sort.Slice(recipe.Ingredients, func(a, b int) bool {
		x, y := recipe.Ingredients[a], recipe.Ingredients[b]
		if x.Name != y.Name {
			return x.Name < y.Name
		}
		return x.ID < y.ID
	})
	if viewerID != 0 {
		key := pairKey{userID: viewerID, targetID: rec.ID}
		_, recipe.IsFavorited = s.ledger[domain.KindFavorite][key]
		_, recipe.IsInShoppingCart = s.ledger[domain.KindShoppingCart][key]
	}
	return recipe
}

// bounds переводит страницу в границы среза длины n
func bounds(p domain.Pagination, n int) (int, int) {
	from := p.Offset()
	if from < 0 || from > n {
		from = n
	}
	to := n
	if p.Limit > 0 && from+p.Limit < n {
		to = from + p.Limit
	}
	return from, to
}
