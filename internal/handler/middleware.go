package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/auth"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/metrics"
	"github.com/GoArmGo/foodgram/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger - middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Metrics пишет счетчики и длительность запросов с меткой шаблона маршрута chi
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RecordAPIRequest(r.Method, route, ww.statusCode, time.Since(start))
	})
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type identityKey struct{}

// WithIdentity кладет личность вызывающего в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext возвращает личность вызывающего, для анонима - нулевую
func IdentityFromContext(ctx context.Context) domain.Identity {
	identity, _ := ctx.Value(identityKey{}).(domain.Identity)
	return identity
}

// TokenVerifier проверяет заголовок Authorization
type TokenVerifier interface {
	VerifyHeader(header string) (domain.Identity, error)
}

// Authenticator определяет вызывающего по токену и заводит его в хранилище
type Authenticator struct {
	verifier TokenVerifier
	users    usecase.UserUseCase
	logger   *slog.Logger
}

func NewAuthenticator(verifier TokenVerifier, users usecase.UserUseCase, logger *slog.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, logger: logger}
}

// Middleware пропускает запросы без заголовка как анонимные,
// с неверным токеном отвечает 401
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.verifier.VerifyHeader(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, auth.ErrNoCredentials):
			next.ServeHTTP(w, r)
			return
		case err != nil:
			a.logger.Warn("token rejected", "path", r.URL.Path, "error", err)
			respondWithError(w, r, apperrors.Unauthorized("invalid token"), a.logger)
			return
		}

		if _, err := a.users.EnsureUser(r.Context(), identity); err != nil {
			respondWithError(w, r, err, a.logger)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAuth отвечает 401 анонимным запросам
func RequireAuth(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFromContext(r.Context()).Anonymous() {
				respondWithError(w, r, apperrors.ErrUnauthorized, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
