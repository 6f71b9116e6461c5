package auth

import (
	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
)

// AuthorPolicy разрешает менять рецепт только его автору
type AuthorPolicy struct{}

// CanModify возвращает FORBIDDEN, если editor не автор, и UNAUTHORIZED для анонима
func (AuthorPolicy) CanModify(editor domain.Identity, authorID int64) error {
	if editor.Anonymous() {
		return apperrors.ErrUnauthorized
	}
	if editor.UserID != authorID {
		return apperrors.Forbidden("only the author can modify this recipe")
	}
	return nil
}
