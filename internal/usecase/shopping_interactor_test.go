package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/foodgram/internal/apperrors"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShoppingList_SumsAcrossRecipes(t *testing.T) {
	e := newEnv(t)
	shopping := NewShoppingUseCase(e.store, logger.Discard())
	ctx := context.Background()

	r1 := e.create(t, alice, domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 200})
	r2 := e.create(t, alice,
		domain.IngredientAmount{IngredientID: e.flour.ID, Amount: 100},
		domain.IngredientAmount{IngredientID: e.salt.ID, Amount: 5},
	)
	for _, id := range []int64{r1.ID, r2.ID} {
		_, err := e.ledger.AddEntry(ctx, domain.KindShoppingCart, bob, id)
		require.NoError(t, err)
	}

	items, err := shopping.BuildShoppingList(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []domain.ShoppingItem{
		{Name: "flour", Amount: 300, Unit: "g"},
		{Name: "salt", Amount: 5, Unit: "g"},
	}, items)
	assert.Equal(t, "flour — 300 g\nsalt — 5 g\n", string(shopping.RenderShoppingList(items)))
}

func TestBuildShoppingList_EmptyCart(t *testing.T) {
	e := newEnv(t)
	shopping := NewShoppingUseCase(e.store, logger.Discard())

	items, err := shopping.BuildShoppingList(context.Background(), bob)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, shopping.RenderShoppingList(items))
}

func TestBuildShoppingList_Anonymous(t *testing.T) {
	e := newEnv(t)
	shopping := NewShoppingUseCase(e.store, logger.Discard())

	_, err := shopping.BuildShoppingList(context.Background(), domain.Identity{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
