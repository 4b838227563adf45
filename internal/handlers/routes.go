package handlers

import (
	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/middleware"
)

// Routes holds everything RegisterRoutes wires onto the echo instance
type Routes struct {
	Recipes   *RecipeHandler
	Favorites *FavoriteHandler
	Profiles  *ProfileHandler
	Auth      *AuthHandler
	Health    *HealthHandler
	Share     *ShareHandler

	Verifier           middleware.TokenVerifier
	AllowAnonymous     bool
	RateLimitPerSecond float64
	Metrics            *middleware.Metrics
}

// RegisterRoutes mounts the public pages, the auth endpoints and the JSON API.
// Browsing recipes is public; everything else requires a Firebase identity.
func RegisterRoutes(e *echo.Echo, r Routes) {
	e.GET("/healthz", r.Health.Healthz)
	if r.Metrics != nil {
		e.GET("/metrics", r.Metrics.Handler())
	}

	// Public routes
	e.GET("/r/:id", r.Share.RecipePage)
	e.POST("/auth/login", r.Auth.HandleLogin)
	e.POST("/auth/logout", r.Auth.HandleLogout)

	api := e.Group("/api")
	api.GET("/recipes", r.Recipes.ListRecipes)
	api.GET("/recipes/categories", r.Recipes.Categories)
	api.GET("/recipes/explore", r.Recipes.Explore)
	api.GET("/recipes/:id", r.Recipes.GetRecipe)

	// Protected routes
	protected := api.Group("",
		middleware.RequireAuth(r.Verifier, r.AllowAnonymous),
		middleware.WriteRateLimiter(r.RateLimitPerSecond),
	)
	protected.POST("/recipes", r.Recipes.CreateRecipe)
	protected.PUT("/recipes/:id", r.Recipes.UpdateRecipe)
	protected.DELETE("/recipes/:id", r.Recipes.DeleteRecipe)
	protected.POST("/recipes/:id/rating", r.Recipes.RateRecipe)
	protected.POST("/recipes/:id/cooked", r.Recipes.MarkCooked)

	protected.GET("/favorites", r.Favorites.ListFavorites)
	protected.POST("/favorites", r.Favorites.AddFavorite)
	protected.PUT("/favorites/:id/refresh", r.Favorites.RefreshFavorite)
	protected.DELETE("/favorites/:id", r.Favorites.RemoveFavorite)
	protected.GET("/favorites/stream", r.Favorites.Stream)

	protected.GET("/profile", r.Profiles.GetProfile)
}
