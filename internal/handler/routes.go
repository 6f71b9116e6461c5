package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/foodgram/internal/domain"
	"github.com/GoArmGo/foodgram/internal/usecase"
	"github.com/GoArmGo/foodgram/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services - usecase-зависимости API
type Services struct {
	Recipes       usecase.RecipeUseCase
	Ledger        usecase.LedgerUseCase
	Shopping      usecase.ShoppingUseCase
	Subscriptions usecase.SubscriptionUseCase
	Catalog       usecase.CatalogUseCase
	Users         usecase.UserUseCase
}

// RouterConfig - параметры выдачи по умолчанию
type RouterConfig struct {
	PageSize     int
	RecipesLimit int
}

// NewRouter собирает маршруты API. Завершающий слэш в путях необязателен.
func NewRouter(svc Services, verifier TokenVerifier, cfg RouterConfig, logger *slog.Logger) http.Handler {
	validator := validation.New()
	recipes := NewRecipeHandler(svc.Recipes, svc.Ledger, svc.Shopping, validator, cfg.PageSize, logger)
	catalog := NewCatalogHandler(svc.Catalog, logger)
	users := NewUserHandler(svc.Users, svc.Subscriptions, cfg.PageSize, cfg.RecipesLimit, logger)
	requireAuth := RequireAuth(logger)

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(NewAuthenticator(verifier, svc.Users, logger).Middleware)

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", recipes.ListRecipes)
		r.With(requireAuth).Post("/", recipes.CreateRecipe)
		r.With(requireAuth).Get("/download_shopping_cart", recipes.DownloadShoppingCart)

		r.Route("/{recipeID}", func(r chi.Router) {
			r.Get("/", recipes.GetRecipe)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Patch("/", recipes.UpdateRecipe)
				r.Put("/", recipes.UpdateRecipe)
				r.Delete("/", recipes.DeleteRecipe)
				r.Post("/favorite", recipes.AddEntry(domain.KindFavorite))
				r.Delete("/favorite", recipes.RemoveEntry(domain.KindFavorite))
				r.Post("/shopping_cart", recipes.AddEntry(domain.KindShoppingCart))
				r.Delete("/shopping_cart", recipes.RemoveEntry(domain.KindShoppingCart))
			})
		})
	})

	r.Get("/tags", catalog.ListTags)
	r.Get("/tags/{tagID}", catalog.GetTag)
	r.Get("/ingredients", catalog.ListIngredients)
	r.Get("/ingredients/{ingredientID}", catalog.GetIngredient)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.With(requireAuth).Get("/me", users.Me)
		r.With(requireAuth).Get("/subscriptions", users.ListSubscriptions)
		r.Get("/{userID}", users.GetUser)
		r.With(requireAuth).Post("/{userID}/subscribe", users.Subscribe)
		r.With(requireAuth).Delete("/{userID}/subscribe", users.Unsubscribe)
	})

	return r
}
