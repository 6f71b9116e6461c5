package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// newTestStorage поднимает хранилище поверх sqlite во временной директории
func newTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "foodgram.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("testdata", "schema_sqlite.sql"))
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return NewPostgresStorage(db, logger.Discard())
}

type fixture struct {
	breakfast, lunch domain.Tag
	flour, salt, egg domain.Ingredient
	alice, bob       *domain.User
}

func seed(t *testing.T, s *PostgresStorage) fixture {
	t.Helper()
	ctx := context.Background()

	s.db.MustExec(`INSERT INTO tags (name, color, slug) VALUES ('Breakfast', '#E26C2D', 'breakfast'), ('Lunch', '#49B64E', 'lunch')`)
	s.db.MustExec(`INSERT INTO ingredients (name, measurement_unit) VALUES ('flour', 'g'), ('salt', 'g'), ('egg', 'pcs')`)

	var f fixture
	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	f.breakfast, f.lunch = tags[0], tags[1]

	ingredients, err := s.ListIngredients(ctx, "")
	require.NoError(t, err)
	require.Len(t, ingredients, 3)
	// сортировка по имени: egg, flour, salt
	f.egg, f.flour, f.salt = ingredients[0], ingredients[1], ingredients[2]

	f.alice, err = s.GetOrCreateUser(ctx, domain.Identity{UserID: 1, Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)
	f.bob, err = s.GetOrCreateUser(ctx, domain.Identity{UserID: 2, Email: "bob@example.com", Username: "bob"})
	require.NoError(t, err)
	return f
}

func createRecipe(t *testing.T, s *PostgresStorage, authorID int64, name string, tagIDs []int64, lines []domain.IngredientAmount) int64 {
	t.Helper()
	rec := &domain.RecipeRecord{AuthorID: authorID, Name: name, Image: "http://img/" + name, Text: "text", CookingTime: 10}
	require.NoError(t, s.CreateRecipe(context.Background(), rec, tagIDs, lines))
	require.NotZero(t, rec.ID)
	return rec.ID
}

func TestCreateRecipe_StoresTagsAndLines(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	id := createRecipe(t, s, f.alice.ID, "pancakes",
		[]int64{f.breakfast.ID, f.lunch.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 200}, {IngredientID: f.egg.ID, Amount: 2}},
	)

	recipe, err := s.GetRecipe(ctx, id, 0)
	require.NoError(t, err)
	require.NotNil(t, recipe)

	assert.Equal(t, "pancakes", recipe.Name)
	assert.Equal(t, []domain.Tag{f.breakfast, f.lunch}, recipe.Tags)
	assert.Equal(t, []domain.RecipeIngredient{
		{ID: f.egg.ID, Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200},
	}, recipe.Ingredients)
	assert.Equal(t, f.alice.ID, recipe.Author.ID)
	assert.Equal(t, "alice", recipe.Author.Username)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
}

func TestCreateRecipe_DuplicateLineRollsBack(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	rec := &domain.RecipeRecord{AuthorID: f.alice.ID, Name: "broken", Image: "img", Text: "t", CookingTime: 5}
	err := s.CreateRecipe(ctx, rec, []int64{f.breakfast.ID}, []domain.IngredientAmount{
		{IngredientID: f.flour.ID, Amount: 1},
		{IngredientID: f.flour.ID, Amount: 2},
	})
	require.Error(t, err)

	page, err := s.ListRecipes(ctx, domain.RecipeFilter{Pagination: domain.Pagination{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestUpdateRecipe_ReplacesLines(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	id := createRecipe(t, s, f.alice.ID, "bread", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 2}})

	rec, err := s.GetRecipeRecord(ctx, id)
	require.NoError(t, err)
	rec.Name = "salted bread"
	require.NoError(t, s.UpdateRecipe(ctx, rec, []int64{f.lunch.ID},
		[]domain.IngredientAmount{{IngredientID: f.salt.ID, Amount: 3}}))

	recipe, err := s.GetRecipe(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "salted bread", recipe.Name)
	assert.Equal(t, []domain.Tag{f.lunch}, recipe.Tags)
	assert.Equal(t, []domain.RecipeIngredient{
		{ID: f.salt.ID, Name: "salt", MeasurementUnit: "g", Amount: 3},
	}, recipe.Ingredients)
}

func TestUpdateRecipe_FailureRollsBack(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	id := createRecipe(t, s, f.alice.ID, "bread", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 2}})

	rec, err := s.GetRecipeRecord(ctx, id)
	require.NoError(t, err)
	rec.Name = "broken bread"
	err = s.UpdateRecipe(ctx, rec, []int64{f.lunch.ID}, []domain.IngredientAmount{
		{IngredientID: f.salt.ID, Amount: 1},
		{IngredientID: f.salt.ID, Amount: 2},
	})
	require.Error(t, err)

	recipe, err := s.GetRecipe(ctx, id, 0)
	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "bread", recipe.Name)
	assert.Equal(t, []domain.Tag{f.breakfast}, recipe.Tags)
	assert.Equal(t, []domain.RecipeIngredient{
		{ID: f.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 2},
	}, recipe.Ingredients)
}

func TestUpdateRecipe_Missing(t *testing.T) {
	s := newTestStorage(t)
	seed(t, s)

	err := s.UpdateRecipe(context.Background(), &domain.RecipeRecord{ID: 404, Name: "x", Image: "i", Text: "t", CookingTime: 1}, nil, nil)
	assert.Error(t, err)
}

func TestDeleteRecipe(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	id := createRecipe(t, s, f.alice.ID, "soup", []int64{f.lunch.ID},
		[]domain.IngredientAmount{{IngredientID: f.salt.ID, Amount: 1}})
	_, err := s.AddEntry(ctx, domain.KindShoppingCart, f.bob.ID, id)
	require.NoError(t, err)

	deleted, err := s.DeleteRecipe(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	recipe, err := s.GetRecipe(ctx, id, 0)
	require.NoError(t, err)
	assert.Nil(t, recipe)

	lines, err := s.ListCartLines(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	deleted, err = s.DeleteRecipe(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListRecipes_Filters(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()
	line := []domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 1}}

	r1 := createRecipe(t, s, f.alice.ID, "r1", []int64{f.breakfast.ID}, line)
	r2 := createRecipe(t, s, f.bob.ID, "r2", []int64{f.lunch.ID}, line)
	r3 := createRecipe(t, s, f.alice.ID, "r3", []int64{f.breakfast.ID, f.lunch.ID}, line)

	_, err := s.AddEntry(ctx, domain.KindFavorite, f.bob.ID, r1)
	require.NoError(t, err)

	ids := func(p domain.Page[domain.Recipe]) []int64 {
		out := []int64{}
		for _, r := range p.Results {
			out = append(out, r.ID)
		}
		return out
	}
	all := domain.Pagination{Page: 1, Limit: 10}

	page, err := s.ListRecipes(ctx, domain.RecipeFilter{Pagination: all})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, []int64{r3, r2, r1}, ids(page), "newest first")

	page, err = s.ListRecipes(ctx, domain.RecipeFilter{AuthorID: f.alice.ID, Pagination: all})
	require.NoError(t, err)
	assert.Equal(t, []int64{r3, r1}, ids(page))

	page, err = s.ListRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"lunch"}, Pagination: all})
	require.NoError(t, err)
	assert.Equal(t, []int64{r3, r2}, ids(page))

	page, err = s.ListRecipes(ctx, domain.RecipeFilter{IsFavorited: true, ViewerID: f.bob.ID, Pagination: all})
	require.NoError(t, err)
	assert.Equal(t, []int64{r1}, ids(page))
	assert.True(t, page.Results[0].IsFavorited)

	page, err = s.ListRecipes(ctx, domain.RecipeFilter{IsFavorited: true, Pagination: all})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.NotNil(t, page.Results)

	page, err = s.ListRecipes(ctx, domain.RecipeFilter{Pagination: domain.Pagination{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, []int64{r1}, ids(page))
}

func TestLedger_AddTwiceIsDuplicate(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	id := createRecipe(t, s, f.alice.ID, "cake", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 1}})

	entry, err := s.AddEntry(ctx, domain.KindFavorite, f.bob.ID, id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.RecipeID)

	_, err = s.AddEntry(ctx, domain.KindFavorite, f.bob.ID, id)
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	var count int
	require.NoError(t, s.db.Get(&count, `SELECT COUNT(*) FROM favorites`))
	assert.Equal(t, 1, count)

	has, err := s.HasEntry(ctx, domain.KindFavorite, f.bob.ID, id)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasEntry(ctx, domain.KindShoppingCart, f.bob.ID, id)
	require.NoError(t, err)
	assert.False(t, has)

	removed, err := s.RemoveEntry(ctx, domain.KindFavorite, f.bob.ID, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveEntry(ctx, domain.KindFavorite, f.bob.ID, id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLedger_UnknownKind(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.AddEntry(context.Background(), domain.EntryKind("wishlist"), 1, 1)
	assert.Error(t, err)
}

func TestListCartLines(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	r1 := createRecipe(t, s, f.alice.ID, "r1", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 200}})
	r2 := createRecipe(t, s, f.alice.ID, "r2", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 100}, {IngredientID: f.salt.ID, Amount: 5}})

	for _, id := range []int64{r1, r2} {
		_, err := s.AddEntry(ctx, domain.KindShoppingCart, f.bob.ID, id)
		require.NoError(t, err)
	}

	lines, err := s.ListCartLines(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ShoppingItem{
		{Name: "flour", Amount: 300, Unit: "g"},
		{Name: "salt", Amount: 5, Unit: "g"},
	}, domain.AggregateShoppingList(lines))

	empty, err := s.ListCartLines(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSubscriptions(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.AddSubscription(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)

	_, err = s.AddSubscription(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	ok, err := s.IsSubscribed(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	page, err := s.ListSubscriptions(ctx, f.bob.ID, domain.Pagination{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "alice", page.Results[0].Username)

	id := createRecipe(t, s, f.alice.ID, "pie", []int64{f.breakfast.ID},
		[]domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 1}})
	recipe, err := s.GetRecipe(ctx, id, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, recipe.Author.IsSubscribed)

	removed, err := s.RemoveSubscription(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	page, err = s.ListSubscriptions(ctx, f.bob.ID, domain.Pagination{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Results)
}

func TestListAuthorRecipes(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	line := []domain.IngredientAmount{{IngredientID: f.flour.ID, Amount: 1}}

	createRecipe(t, s, f.alice.ID, "a", []int64{f.breakfast.ID}, line)
	b := createRecipe(t, s, f.alice.ID, "b", []int64{f.breakfast.ID}, line)
	c := createRecipe(t, s, f.alice.ID, "c", []int64{f.breakfast.ID}, line)

	recipes, count, err := s.ListAuthorRecipes(context.Background(), f.alice.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, recipes, 2)
	assert.Equal(t, c, recipes[0].ID)
	assert.Equal(t, b, recipes[1].ID)
}

func TestGetOrCreateUser_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	identity := domain.Identity{UserID: 7, Email: "carol@example.com", Username: "carol", FirstName: "Carol"}

	first, err := s.GetOrCreateUser(ctx, identity)
	require.NoError(t, err)
	second, err := s.GetOrCreateUser(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Carol", second.FirstName)

	missing, err := s.GetUserByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetOrCreateUser_TakenUsername(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, domain.Identity{UserID: 3, Email: "other@example.com", Username: f.alice.Username})
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	_, err = s.GetOrCreateUser(ctx, domain.Identity{UserID: 4, Email: f.bob.Email, Username: "bobby"})
	assert.ErrorIs(t, err, ports.ErrDuplicate)

	missing, err := s.GetUserByID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListUsers(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, domain.Identity{UserID: 3, Email: "carol@example.com", Username: "carol"})
	require.NoError(t, err)
	_, err = s.AddSubscription(ctx, f.bob.ID, f.alice.ID)
	require.NoError(t, err)

	page, err := s.ListUsers(ctx, domain.Pagination{Page: 1, Limit: 2}, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alice", page.Results[0].Username)
	assert.True(t, page.Results[0].IsSubscribed)
	assert.Equal(t, "bob", page.Results[1].Username)
	assert.False(t, page.Results[1].IsSubscribed)

	page, err = s.ListUsers(ctx, domain.Pagination{Page: 2, Limit: 2}, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "carol", page.Results[0].Username)
}

func TestCatalog(t *testing.T) {
	s := newTestStorage(t)
	f := seed(t, s)
	ctx := context.Background()

	found, err := s.ListIngredients(ctx, "FL")
	require.NoError(t, err)
	assert.Equal(t, []domain.Ingredient{f.flour}, found)

	found, err = s.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)

	s.db.MustExec(`INSERT INTO ingredients (name, measurement_unit) VALUES ('Мука ржаная', 'г')`)
	found, err = s.ListIngredients(ctx, "Мук")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Мука ржаная", found[0].Name)

	tag, err := s.GetTagByID(ctx, f.lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", tag.Slug)

	tag, err = s.GetTagByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, tag)

	tags, err := s.GetTagsByIDs(ctx, []int64{f.breakfast.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{f.breakfast}, tags)

	ingredients, err := s.GetIngredientsByIDs(ctx, []int64{f.salt.ID})
	require.NoError(t, err)
	assert.Equal(t, []domain.Ingredient{f.salt}, ingredients)
}
