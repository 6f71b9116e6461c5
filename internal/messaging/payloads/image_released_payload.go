package payloads

// ImageReleasedPayload - картинка рецепта больше никем не используется
// и должна быть удалена из файлового хранилища воркером.
type ImageReleasedPayload struct {
	RecipeID int64  `json:"recipe_id"`
	ImageURL string `json:"image_url"`
	Reason   string `json:"reason"`
}

// Причины освобождения картинки
const (
	ReasonRecipeDeleted = "recipe_deleted"
	ReasonImageReplaced = "image_replaced"
	// ReasonWriteFailed - картинка загружена, но рецепт не сохранился
	ReasonWriteFailed = "write_failed"
)
