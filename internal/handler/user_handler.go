package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/usecase"
)

// UserHandler - обработчик профилей и подписок.
type UserHandler struct {
	users         usecase.UserUseCase
	subscriptions usecase.SubscriptionUseCase
	pageSize      int
	recipesLimit  int
	logger        *slog.Logger
}

func NewUserHandler(
	users usecase.UserUseCase,
	subscriptions usecase.SubscriptionUseCase,
	pageSize int,
	recipesLimit int,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		pageSize:      pageSize,
		recipesLimit:  recipesLimit,
		logger:        logger,
	}
}

// Me - профиль вызывающего.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	profile, err := h.users.GetProfile(r.Context(), identity.UserID, identity)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

// ListUsers - страница пользователей, для анонима is_subscribed всегда false.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := pagination(r, h.pageSize)

	page, err := h.users.ListUsers(r.Context(), p, IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, p, page), h.logger)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), id, IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

// Subscribe - подписка на автора, в ответе сводка по автору.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	limit, err := h.recipesLimitParam(r)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	summary, err := h.subscriptions.Subscribe(r.Context(), IdentityFromContext(r.Context()), id, limit)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, summary, h.logger)
}

func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}

	if err := h.subscriptions.Unsubscribe(r.Context(), IdentityFromContext(r.Context()), id); err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondNoContent(w)
}

// ListSubscriptions - страница авторов, на которых подписан вызывающий.
func (h *UserHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit, err := h.recipesLimitParam(r)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	p := pagination(r, h.pageSize)

	page, err := h.subscriptions.ListSubscriptions(r.Context(), IdentityFromContext(r.Context()), p, limit)
	if err != nil {
		respondWithError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, p, page), h.logger)
}

// recipesLimitParam читает recipes_limit, без параметра берется значение из конфигурации
func (h *UserHandler) recipesLimitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return h.recipesLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("recipes_limit must be an integer")
	}
	return limit, nil
}
