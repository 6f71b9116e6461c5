package handler

import "github.com/GoArmGo/foodgram/internal/domain"

// IngredientLineRequest - строка рецепта в теле запроса
type IngredientLineRequest struct {
	ID     int64 `json:"id" validate:"gt=0"`
	Amount int   `json:"amount" validate:"gte=1,lte=32767"`
}

// RecipeRequest - тело запроса создания и изменения рецепта.
// Image - base64 data URI, при изменении может быть пустым.
type RecipeRequest struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time" validate:"gte=1,lte=32767"`
	Image       string                  `json:"image"`
	Tags        []int64                 `json:"tags" validate:"min=1"`
	Ingredients []IngredientLineRequest `json:"ingredients" validate:"min=1,dive"`
}

func (req RecipeRequest) toInput() domain.RecipeInput {
	lines := make([]domain.IngredientAmount, 0, len(req.Ingredients))
	for _, l := range req.Ingredients {
		lines = append(lines, domain.IngredientAmount{IngredientID: l.ID, Amount: l.Amount})
	}
	return domain.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: lines,
	}
}
