package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/usecase"
	"github.com/GoArmGo/foodgram/internal/validation"
)

// shoppingListFilename - имя файла выгрузки списка покупок
const shoppingListFilename = "shopping_cart.txt"

// RecipeHandler - обработчик HTTP-запросов для рецептов, избранного и корзины.
type RecipeHandler struct {
	recipes   usecase.RecipeUseCase
	ledger    usecase.LedgerUseCase
	shopping  usecase.ShoppingUseCase
	validator *validation.Validator
	pageSize  int
	logger    *slog.Logger
}

func NewRecipeHandler(
	recipes usecase.RecipeUseCase,
	ledger usecase.LedgerUseCase,
	shopping usecase.ShoppingUseCase,
	validator *validation.Validator,
	pageSize int,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		ledger:    ledger,
		shopping:  shopping,
		validator: validator,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// ListRecipes - отдает страницу рецептов с фильтрами author, tags, is_favorited, is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := pagination(r, h.pageSize)

	filter := domain.RecipeFilter{
		TagSlugs:         q["tags"],
		IsFavorited:      queryBool(r, "is_favorited"),
		IsInShoppingCart: queryBool(r, "is_in_shopping_cart"),
		Pagination:       p,
	}
	if raw := q.Get("author"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, r, apperrors.Validation("author must be a user id"), h.logger)
			return
		}
		filter.AuthorID = authorID
	}

	page, err := h.recipes.ListRecipes(r.Context(), filter, IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, p, page), h.logger)
}

// GetRecipe - отдает рецепт по id.
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "recipeID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	recipe, err := h.recipes.GetRecipe(r.Context(), id, IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, recipe, h.logger)
}

// CreateRecipe - создает рецепт от имени вызывающего.
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readRecipe(w, r, true)
	if !ok {
		return
	}

	recipe, err := h.recipes.CreateRecipe(r.Context(), IdentityFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, recipe, h.logger)
}

// UpdateRecipe - меняет рецепт, теги и ингредиенты заменяются целиком.
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "recipeID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	// поля проверяет usecase после проверки автора
	in, ok := h.readRecipe(w, r, false)
	if !ok {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(r.Context(), id, IdentityFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, recipe, h.logger)
}

// DeleteRecipe - удаляет рецепт автора.
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "recipeID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	if err := h.recipes.DeleteRecipe(r.Context(), id, IdentityFromContext(r.Context())); err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondNoContent(w)
}

// AddEntry возвращает обработчик добавления рецепта в избранное или корзину
func (h *RecipeHandler) AddEntry(kind domain.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "recipeID")
		if err != nil {
			respondWithError(w, r, err, h.logger)
			return
		}

		short, err := h.ledger.AddEntry(r.Context(), kind, IdentityFromContext(r.Context()), id)
		if err != nil {
			respondWithError(w, r, err, h.logger)
			return
		}
		respondWithJSON(w, http.StatusCreated, short, h.logger)
	}
}

// RemoveEntry возвращает обработчик удаления рецепта из избранного или корзины
func (h *RecipeHandler) RemoveEntry(kind domain.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "recipeID")
		if err != nil {
			respondWithError(w, r, err, h.logger)
			return
		}

		if err := h.ledger.RemoveEntry(r.Context(), kind, IdentityFromContext(r.Context()), id); err != nil {
			respondWithError(w, r, err, h.logger)
			return
		}
		respondNoContent(w)
	}
}

// DownloadShoppingCart - отдает список покупок текстовым файлом.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	items, err := h.shopping.BuildShoppingList(r.Context(), identity)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	body := h.shopping.RenderShoppingList(items)

	h.logger.Info("shopping list downloaded", "user_id", identity.UserID, "items", len(items))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write shopping list", "error", err)
	}
}

// readRecipe читает и проверяет тело запроса, при ошибке сам пишет ответ
// readRecipe читает тело рецепта. Без validate поля проверяет только usecase,
// уже после поиска рецепта и проверки автора.
func (h *RecipeHandler) readRecipe(w http.ResponseWriter, r *http.Request, validate bool) (domain.RecipeInput, bool) {
	var req RecipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err, h.logger)
		return domain.RecipeInput{}, false
	}
	if validate {
		if err := h.validator.Validate(req); err != nil {
			respondWithError(w, r, err, h.logger)
			return domain.RecipeInput{}, false
		}
	}
	return req.toInput(), true
}
