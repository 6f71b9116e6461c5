// Package auth проверяет токены внешнего сервиса авторизации
// и решает, кто может менять рецепт.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredentials - заголовок Authorization отсутствует
var ErrNoCredentials = errors.New("authorization header is missing")

// Схемы заголовка Authorization
const (
	SchemeBearer = "Bearer"
	SchemeToken  = "Token"
)

// Claims - полезная нагрузка токена. Subject содержит id пользователя.
type Claims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier проверяет HS256 токены общим секретом
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Verify проверяет подпись и сроки токена и извлекает личность пользователя
func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return domain.Identity{}, fmt.Errorf("invalid token claims")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Identity{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	if claims.Username == "" || claims.Email == "" {
		return domain.Identity{}, fmt.Errorf("username and email claims are required")
	}

	return domain.Identity{
		UserID:    id,
		Email:     claims.Email,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

// VerifyHeader разбирает заголовок "Bearer <jwt>" или "Token <jwt>".
// Пустой заголовок дает ErrNoCredentials.
func (v *Verifier) VerifyHeader(header string) (domain.Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return domain.Identity{}, ErrNoCredentials
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || strings.TrimSpace(token) == "" {
		return domain.Identity{}, fmt.Errorf("malformed authorization header")
	}
	if !strings.EqualFold(scheme, SchemeBearer) && !strings.EqualFold(scheme, SchemeToken) {
		return domain.Identity{}, fmt.Errorf("unsupported authorization scheme %q", scheme)
	}
	return v.Verify(strings.TrimSpace(token))
}
