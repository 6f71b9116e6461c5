package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes ограничивает тело запроса: картинка до 10 МБ в base64 плюс поля рецепта
const maxBodyBytes = 16 << 20

// respondWithJSON - отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError - переводит ошибку в {code, message, details} и нужный статус.
// Внутренние ошибки логируются, клиент видит только общий INTERNAL.
func respondWithError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code == apperrors.CodeInternal {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondWithJSON(w, http.StatusInternalServerError, apperrors.ErrInternal, logger)
		return
	}

	if appErr.Code == apperrors.CodeForbidden || appErr.Code == apperrors.CodeUnauthorized {
		logger.Warn("request rejected", "path", r.URL.Path, "code", appErr.Code, "message", appErr.Message)
	}
	respondWithJSON(w, appErr.HTTPStatus(), appErr, logger)
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON читает тело запроса в dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperrors.Validation("request body is larger than %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return apperrors.Validation("request body is empty")
		default:
			return apperrors.Validation("invalid JSON body: %v", err)
		}
	}
	return nil
}

// pathID достает положительный id из параметра маршрута
func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NotFound("%s %q not found", param, raw)
	}
	return id, nil
}

// pagination читает page и limit. Некорректные значения заменяются значениями по умолчанию.
func pagination(r *http.Request, defaultSize int) domain.Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	if page > usecase.MaxPage {
		page = usecase.MaxPage
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultSize
	}
	if limit > usecase.MaxPageSize {
		limit = usecase.MaxPageSize
	}
	return domain.Pagination{Page: page, Limit: limit}
}

// queryBool понимает 1/0 и true/false
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// pageResponse - постраничная выдача в формате {count, next, previous, results}
type pageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T any](r *http.Request, p domain.Pagination, page domain.Page[T]) pageResponse[T] {
	resp := pageResponse[T]{Count: page.Count, Results: page.Results}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if p.Page*p.Limit < page.Count {
		next := pageURL(r, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(r, p.Page-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL строит абсолютную ссылку на ту же выдачу с другим номером страницы
func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + u.RequestURI()
}
