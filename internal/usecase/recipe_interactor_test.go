package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineSet(recipe *domain.Recipe) map[int64]int {
	out := map[int64]int{}
	for _, l := range recipe.Ingredients {
		out[l.ID] = l.Amount
	}
	return out
}

func TestCreateRecipe_PersistsExactSets(t *testing.T) {
	e := newEnv(t)
	in := e.input(
		domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 200},
		domain.IngredientAmount{IngredientID: e.egg.ID, Amount: 2},
	)
	in.TagIDs = []int64{1, 3, 1}

	recipe, err := e.recipes.CreateRecipe(context.Background(), alice, in)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{e.flour.ID: 200, e.egg.ID: 2}, lineSet(recipe))
	require.Len(t, recipe.Tags, 2)
	assert.Equal(t, int64(1), recipe.Tags[0].ID)
	assert.Equal(t, int64(3), recipe.Tags[1].ID)
	assert.Equal(t, alice.UserID, recipe.Author.ID)
	assert.Equal(t, "http://files/data:image/png;base64,AAAA", recipe.Image)

	stored, err := e.recipes.GetRecipe(context.Background(), recipe.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, lineSet(recipe), lineSet(stored))
}

func TestCreateRecipe_ValidationErrors(t *testing.T) {
	e := newEnv(t)
	valid := func() domain.RecipeInput {
		return e.input(domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 1})
	}

	tests := []struct {
		name   string
		mutate func(*domain.RecipeInput)
		field  string
	}{
		{"zero cooking time", func(in *domain.RecipeInput) { in.CookingTime = 0 }, "cooking_time"},
		{"cooking time out of range", func(in *domain.RecipeInput) { in.CookingTime = domain.MaxCookingTime + 1 }, "cooking_time"},
		{"empty name", func(in *domain.RecipeInput) { in.Name = "  " }, "name"},
		{"empty text", func(in *domain.RecipeInput) { in.Text = "" }, "text"},
		{"no tags", func(in *domain.RecipeInput) { in.TagIDs = nil }, "tags"},
		{"no ingredients", func(in *domain.RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"duplicate ingredient", func(in *domain.RecipeInput) {
			in.Ingredients = append(in.Ingredients, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 3})
		}, "ingredients"},
		{"zero amount", func(in *domain.RecipeInput) { in.Ingredients[0].Amount = 0 }, "ingredients"},
		{"amount out of range", func(in *domain.RecipeInput) { in.Ingredients[0].Amount = 3000000000 }, "ingredients"},
		{"no image", func(in *domain.RecipeInput) { in.Image = "" }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := e.recipes.CreateRecipe(context.Background(), alice, in)
			require.ErrorIs(t, err, apperrors.ErrValidation)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}

	page, err := e.recipes.ListRecipes(context.Background(), domain.RecipeFilter{}, alice)
	require.NoError(t, err)
	assert.Zero(t, page.Count, "failed validation must not persist anything")
	assert.Empty(t, e.images.stored, "image must not be uploaded before validation passes")
}

func TestCreateRecipe_DuplicateIngredientNamesID(t *testing.T) {
	e := newEnv(t)
	in := e.input(
		domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 1},
		domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 2},
	)

	_, err := e.recipes.CreateRecipe(context.Background(), alice, in)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "ingredient 2")
}

func TestCreateRecipe_UnknownReferences(t *testing.T) {
	e := newEnv(t)

	in := e.input(domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 1})
	in.TagIDs = []int64{1, 99}
	_, err := e.recipes.CreateRecipe(context.Background(), alice, in)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "tag 99")

	in = e.input(domain.IngredientAmount{IngredientID: 42, Amount: 1})
	_, err = e.recipes.CreateRecipe(context.Background(), alice, in)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "ingredient 42")
}

func TestCreateRecipe_Anonymous(t *testing.T) {
	e := newEnv(t)

	_, err := e.recipes.CreateRecipe(context.Background(), domain.Identity{}, e.input(domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 1}))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateRecipe_ImageStoreFailure(t *testing.T) {
	e := newEnv(t)
	e.images.err = errStorage

	_, err := e.recipes.CreateRecipe(context.Background(), alice, e.input(domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 1}))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

func TestUpdateRecipe_ReplacesLines(t *testing.T) {
	e := newEnv(t)
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})

	in := e.input(domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 3})
	in.Image = ""
	in.TagIDs = []int64{2}
	updated, err := e.recipes.UpdateRecipe(context.Background(), recipe.ID, alice, in)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{e.salt.ID: 3}, lineSet(updated))
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, int64(2), updated.Tags[0].ID)
	assert.Equal(t, recipe.Image, updated.Image, "empty image keeps the current one")
	assert.Empty(t, e.events.published)
}

func TestUpdateRecipe_ReplacedImageIsReleased(t *testing.T) {
	e := newEnv(t)
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})

	in := e.input(domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})
	in.Image = "data:image/png;base64,BBBB"
	updated, err := e.recipes.UpdateRecipe(context.Background(), recipe.ID, alice, in)
	require.NoError(t, err)

	assert.NotEqual(t, recipe.Image, updated.Image)
	require.Len(t, e.events.published, 1)
	assert.Equal(t, payloads.ImageReleasedPayload{
		RecipeID: recipe.ID,
		ImageURL: recipe.Image,
		Reason:   payloads.ReasonImageReplaced,
	}, e.events.published[0])
}

func TestUpdateRecipe_Permissions(t *testing.T) {
	e := newEnv(t)
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})
	in := e.input(domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 3})

	_, err := e.recipes.UpdateRecipe(context.Background(), recipe.ID, bob, in)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = e.recipes.UpdateRecipe(context.Background(), 404, alice, in)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := e.recipes.GetRecipe(context.Background(), recipe.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{e.flour.ID: 2}, lineSet(stored))
}

func TestUpdateRecipe_InvalidInputKeepsRecipe(t *testing.T) {
	e := newEnv(t)
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})

	in := e.input(
		domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 3},
		domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 1},
	)
	_, err := e.recipes.UpdateRecipe(context.Background(), recipe.ID, alice, in)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	stored, err := e.recipes.GetRecipe(context.Background(), recipe.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{e.flour.ID: 2}, lineSet(stored))
}

func TestDeleteRecipe(t *testing.T) {
	e := newEnv(t)
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})

	assert.ErrorIs(t, e.recipes.DeleteRecipe(context.Background(), recipe.ID, bob), apperrors.ErrForbidden)
	require.NoError(t, e.recipes.DeleteRecipe(context.Background(), recipe.ID, alice))

	_, err := e.recipes.GetRecipe(context.Background(), recipe.ID, alice)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.Len(t, e.events.published, 1)
	assert.Equal(t, payloads.ReasonRecipeDeleted, e.events.published[0].Reason)

	assert.ErrorIs(t, e.recipes.DeleteRecipe(context.Background(), recipe.ID, alice), apperrors.ErrNotFound)
}

func TestDeleteRecipe_PublishFailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	e.events.err = errStorage
	recipe := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})

	assert.NoError(t, e.recipes.DeleteRecipe(context.Background(), recipe.ID, alice))
}

func TestListRecipes_ViewerFlags(t *testing.T) {
	e := newEnv(t)
	first := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 2})
	second := e.create(t, alice, domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 1})

	_, err := e.ledger.AddEntry(context.Background(), domain.KindFavorite, bob, first.ID)
	require.NoError(t, err)

	page, err := e.recipes.ListRecipes(context.Background(), domain.RecipeFilter{}, bob)
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, second.ID, page.Results[0].ID)
	assert.False(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[1].IsFavorited)

	page, err = e.recipes.ListRecipes(context.Background(), domain.RecipeFilter{IsFavorited: true}, bob)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, first.ID, page.Results[0].ID)

	page, err = e.recipes.ListRecipes(context.Background(), domain.RecipeFilter{IsFavorited: true}, domain.Identity{})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 6}, normalizePage(domain.Pagination{}, 6))
	assert.Equal(t, domain.Pagination{Page: 3, Limit: MaxPageSize}, normalizePage(domain.Pagination{Page: 3, Limit: 1000}, 6))

	huge := normalizePage(domain.Pagination{Page: 3074457345618258603, Limit: MaxPageSize}, 6)
	assert.Equal(t, MaxPage, huge.Page)
	assert.Positive(t, huge.Offset())
}
