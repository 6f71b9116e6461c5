package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/messaging/payloads"
	"github.com/GoArmGo/foodgram/internal/metrics"
)

// recipeUseCase implements RecipeUseCase
type recipeUseCase struct {
	store    recipeStore
	images   ImageStore
	events   ports.ImageEventPublisher
	policy   Authorizer
	pageSize int
	logger   *slog.Logger
}

// NewRecipeUseCase создает RecipeUseCase.
// events может быть nil, тогда старые картинки не удаляются.
func NewRecipeUseCase(
	store recipeStore,
	images ImageStore,
	events ports.ImageEventPublisher,
	policy Authorizer,
	pageSize int,
	logger *slog.Logger,
) RecipeUseCase {
	return &recipeUseCase{
		store:    store,
		images:   images,
		events:   events,
		policy:   policy,
		pageSize: pageSize,
		logger:   logger,
	}
}

// CreateRecipe проверяет ввод, сохраняет картинку и рецепт
func (uc *recipeUseCase) CreateRecipe(ctx context.Context, author domain.Identity, in domain.RecipeInput) (recipe *domain.Recipe, err error) {
	defer func() { metrics.RecordRecipeOperation("create", err) }()

	if author.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}
	tagIDs, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Image) == "" {
		return nil, fieldError("image", "image is required")
	}

	imageURL, err := uc.images.Store(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	rec := &domain.RecipeRecord{
		AuthorID:    author.UserID,
		Name:        strings.TrimSpace(in.Name),
		Image:       imageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	if err := uc.store.CreateRecipe(ctx, rec, tagIDs, in.Ingredients); err != nil {
		uc.releaseImage(ctx, 0, imageURL, payloads.ReasonWriteFailed)
		return nil, fmt.Errorf("usecase: ошибка при сохранении рецепта: %w", err)
	}

	uc.logger.Info("recipe created", "recipe_id", rec.ID, "author_id", author.UserID)
	return uc.load(ctx, rec.ID, author.UserID)
}

// UpdateRecipe меняет рецепт автора, пустая картинка оставляет текущую
func (uc *recipeUseCase) UpdateRecipe(ctx context.Context, recipeID int64, editor domain.Identity, in domain.RecipeInput) (recipe *domain.Recipe, err error) {
	defer func() { metrics.RecordRecipeOperation("update", err) }()

	rec, err := uc.authorize(ctx, recipeID, editor)
	if err != nil {
		return nil, err
	}

	tagIDs, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	oldImage := rec.Image
	newImage := strings.TrimSpace(in.Image)
	if newImage == "" || newImage == oldImage {
		newImage = oldImage
	} else if newImage, err = uc.images.Store(ctx, newImage); err != nil {
		return nil, err
	}

	rec.Name = strings.TrimSpace(in.Name)
	rec.Text = in.Text
	rec.CookingTime = in.CookingTime
	rec.Image = newImage
	if err := uc.store.UpdateRecipe(ctx, rec, tagIDs, in.Ingredients); err != nil {
		if newImage != oldImage {
			uc.releaseImage(ctx, recipeID, newImage, payloads.ReasonWriteFailed)
		}
		return nil, fmt.Errorf("usecase: ошибка при обновлении рецепта %d: %w", recipeID, err)
	}
	if newImage != oldImage {
		uc.releaseImage(ctx, recipeID, oldImage, payloads.ReasonImageReplaced)
	}

	uc.logger.Info("recipe updated", "recipe_id", recipeID, "editor_id", editor.UserID)
	return uc.load(ctx, recipeID, editor.UserID)
}

// DeleteRecipe удаляет рецепт автора вместе с записями избранного и корзины
func (uc *recipeUseCase) DeleteRecipe(ctx context.Context, recipeID int64, editor domain.Identity) (err error) {
	defer func() { metrics.RecordRecipeOperation("delete", err) }()

	rec, err := uc.authorize(ctx, recipeID, editor)
	if err != nil {
		return err
	}

	deleted, err := uc.store.DeleteRecipe(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при удалении рецепта %d: %w", recipeID, err)
	}
	if !deleted {
		return apperrors.NotFound("recipe %d not found", recipeID)
	}
	uc.releaseImage(ctx, recipeID, rec.Image, payloads.ReasonRecipeDeleted)

	uc.logger.Info("recipe deleted", "recipe_id", recipeID, "editor_id", editor.UserID)
	return nil
}

func (uc *recipeUseCase) GetRecipe(ctx context.Context, recipeID int64, viewer domain.Identity) (*domain.Recipe, error) {
	return uc.load(ctx, recipeID, viewer.UserID)
}

func (uc *recipeUseCase) ListRecipes(ctx context.Context, filter domain.RecipeFilter, viewer domain.Identity) (domain.Page[domain.Recipe], error) {
	filter.ViewerID = viewer.UserID
	filter.Pagination = normalizePage(filter.Pagination, uc.pageSize)

	page, err := uc.store.ListRecipes(ctx, filter)
	if err != nil {
		return page, fmt.Errorf("usecase: ошибка при получении списка рецептов: %w", err)
	}
	return page, nil
}

func (uc *recipeUseCase) load(ctx context.Context, recipeID, viewerID int64) (*domain.Recipe, error) {
	recipe, err := uc.store.GetRecipe(ctx, recipeID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении рецепта %d: %w", recipeID, err)
	}
	if recipe == nil {
		return nil, apperrors.NotFound("recipe %d not found", recipeID)
	}
	return recipe, nil
}

// authorize находит рецепт и проверяет, что editor - его автор
func (uc *recipeUseCase) authorize(ctx context.Context, recipeID int64, editor domain.Identity) (*domain.RecipeRecord, error) {
	if editor.Anonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	rec, err := uc.store.GetRecipeRecord(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении рецепта %d: %w", recipeID, err)
	}
	if rec == nil {
		return nil, apperrors.NotFound("recipe %d not found", recipeID)
	}
	if err := uc.policy.CanModify(editor, rec.AuthorID); err != nil {
		uc.logger.Warn("recipe modification denied", "recipe_id", recipeID, "editor_id", editor.UserID, "author_id", rec.AuthorID)
		return nil, err
	}
	return rec, nil
}

// validate проверяет поля, затем существование тегов и ингредиентов.
// Возвращает id тегов без повторов.
func (uc *recipeUseCase) validate(ctx context.Context, in domain.RecipeInput) ([]int64, error) {
	if err := validateFields(in); err != nil {
		return nil, err
	}

	tagIDs := uniqueIDs(in.TagIDs)
	tags, err := uc.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке тегов: %w", err)
	}
	if id, missing := firstMissing(tagIDs, tags, func(t domain.Tag) int64 { return t.ID }); missing {
		return nil, apperrors.NotFound("tag %d not found", id)
	}

	ingredientIDs := make([]int64, 0, len(in.Ingredients))
	for _, l := range in.Ingredients {
		ingredientIDs = append(ingredientIDs, l.IngredientID)
	}
	ingredients, err := uc.store.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке ингредиентов: %w", err)
	}
	if id, missing := firstMissing(ingredientIDs, ingredients, func(i domain.Ingredient) int64 { return i.ID }); missing {
		return nil, apperrors.NotFound("ingredient %d not found", id)
	}

	return tagIDs, nil
}

// validateFields проверяет ввод без обращения к хранилищу, первая ошибка побеждает
func validateFields(in domain.RecipeInput) error {
	if in.CookingTime < domain.MinCookingTime {
		return fieldError("cooking_time", fmt.Sprintf("cooking time must be at least %d", domain.MinCookingTime))
	}
	if in.CookingTime > domain.MaxCookingTime {
		return fieldError("cooking_time", fmt.Sprintf("cooking time must be at most %d", domain.MaxCookingTime))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fieldError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > domain.RecipeNameMaxLen {
		return fieldError("name", fmt.Sprintf("name must be at most %d characters", domain.RecipeNameMaxLen))
	}
	if strings.TrimSpace(in.Text) == "" {
		return fieldError("text", "text is required")
	}
	if len(in.TagIDs) == 0 {
		return fieldError("tags", "at least one tag is required")
	}
	if len(in.Ingredients) == 0 {
		return fieldError("ingredients", "at least one ingredient is required")
	}

	seen := make(map[int64]struct{}, len(in.Ingredients))
	for _, l := range in.Ingredients {
		if _, dup := seen[l.IngredientID]; dup {
			return fieldError("ingredients", fmt.Sprintf("ingredient %d is listed more than once", l.IngredientID))
		}
		seen[l.IngredientID] = struct{}{}
	}
	for _, l := range in.Ingredients {
		if l.Amount < domain.MinAmount {
			return fieldError("ingredients", fmt.Sprintf("amount of ingredient %d must be at least %d", l.IngredientID, domain.MinAmount))
		}
		if l.Amount > domain.MaxAmount {
			return fieldError("ingredients", fmt.Sprintf("amount of ingredient %d must be at most %d", l.IngredientID, domain.MaxAmount))
		}
	}
	return nil
}

func fieldError(field, msg string) error {
	return apperrors.ValidationWithDetails(msg, map[string]string{field: msg})
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

// firstMissing возвращает первый id из want, которого нет среди found
func firstMissing[T any](want []int64, found []T, id func(T) int64) (int64, bool) {
	present := make(map[int64]struct{}, len(found))
	for _, f := range found {
		present[id(f)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := present[w]; !ok {
			return w, true
		}
	}
	return 0, false
}

// releaseImage публикует задачу на удаление картинки. Ошибка публикации только логируется.
func (uc *recipeUseCase) releaseImage(ctx context.Context, recipeID int64, url, reason string) {
	if uc.events == nil || url == "" {
		return
	}
	err := uc.events.PublishImageReleased(ctx, payloads.ImageReleasedPayload{
		RecipeID: recipeID,
		ImageURL: url,
		Reason:   reason,
	})
	metrics.RecordImageEvent("publish", err)
	if err != nil {
		uc.logger.Warn("failed to publish image release", "recipe_id", recipeID, "reason", reason, "error", err)
	}
}
