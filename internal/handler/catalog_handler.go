package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/foodgram/internal/usecase"
)

// CatalogHandler - обработчик справочников тегов и ингредиентов.
type CatalogHandler struct {
	catalog usecase.CatalogUseCase
	logger  *slog.Logger
}

func NewCatalogHandler(catalog usecase.CatalogUseCase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tags, h.logger)
}

func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tagID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	tag, err := h.catalog.GetTag(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tag, h.logger)
}

// ListIngredients - поиск по началу названия (?name=), без фильтра отдает весь справочник.
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, ingredients, h.logger)
}

func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "ingredientID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	ingredient, err := h.catalog.GetIngredient(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, ingredient, h.logger)
}
