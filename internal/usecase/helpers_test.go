package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GoArmGo/foodgram/internal/auth"
	"github.com/GoArmGo/foodgram/internal/database/memory"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/GoArmGo/foodgram/internal/messaging/payloads"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Identity{UserID: 1, Email: "alice@example.com", Username: "alice"}
	bob   = domain.Identity{UserID: 2, Email: "bob@example.com", Username: "bob"}
)

type fakeImages struct {
	stored []string
	err    error
}

func (f *fakeImages) Store(_ context.Context, dataURI string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := "http://files/" + dataURI
	f.stored = append(f.stored, url)
	return url, nil
}

type fakeEvents struct {
	mu        sync.Mutex
	published []payloads.ImageReleasedPayload
	err       error
}

func (f *fakeEvents) PublishImageReleased(_ context.Context, p payloads.ImageReleasedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, p)
	return f.err
}

type env struct {
	store   *memory.Store
	images  *fakeImages
	events  *fakeEvents
	recipes RecipeUseCase
	ledger  LedgerUseCase
	flour   domain.Ingredient
	salt    domain.Ingredient
	egg     domain.Ingredient
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.Discard()
	store := memory.NewStore(log)
	require.NoError(t, store.SeedDefaultTags())

	e := &env{store: store, images: &fakeImages{}, events: &fakeEvents{}}
	var err error
	e.flour, err = store.AddIngredient("flour", "g")
	require.NoError(t, err)
	e.salt, err = store.AddIngredient("salt", "g")
	require.NoError(t, err)
	e.egg, err = store.AddIngredient("egg", "pcs")
	require.NoError(t, err)

	for _, id := range []domain.Identity{alice, bob} {
		_, err := store.GetOrCreateUser(context.Background(), id)
		require.NoError(t, err)
	}

	e.recipes = NewRecipeUseCase(store, e.images, e.events, auth.AuthorPolicy{}, 6, log)
	e.ledger = NewLedgerUseCase(store, log)
	return e
}

func (e *env) input(lines ...domain.IngredientAmount) domain.RecipeInput {
	return domain.RecipeInput{
		Name:        "pancakes",
		Text:        "mix and fry",
		Image:       "data:image/png;base64,AAAA",
		CookingTime: 15,
		TagIDs:      []int64{1},
		Ingredients: lines,
	}
}

func (e *env) create(t *testing.T, author domain.Identity, lines ...domain.IngredientAmount) *domain.Recipe {
	t.Helper()
	recipe, err := e.recipes.CreateRecipe(context.Background(), author, e.input(lines...))
	require.NoError(t, err)
	return recipe
}

var errStorage = errors.New("storage is down")
