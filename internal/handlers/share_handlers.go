package handlers

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/services"
	"recipe_app_echo/internal/web"
)

// RecipePageData feeds the recipe.html share page
type RecipePageData struct {
	Recipe        models.Recipe
	ImageURL      string
	Lines         []string
	EmbedVideoURL string
	RatingBadge   template.HTML
}

type ShareHandler struct {
	recipes         *services.RecipeService
	defaultImageURL string
}

func NewShareHandler(recipes *services.RecipeService, defaultImageURL string) *ShareHandler {
	return &ShareHandler{recipes: recipes, defaultImageURL: defaultImageURL}
}

// RecipePage renders a public page for a shared recipe link
func (h *ShareHandler) RecipePage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	badge, err := web.Fragment(c.Request().Context(), web.RatingBadge(recipe.Rating, recipe.RatingCount))
	if err != nil {
		return err
	}

	data := RecipePageData{
		Recipe:      *recipe,
		ImageURL:    recipe.DisplayImageURL(h.defaultImageURL),
		Lines:       recipe.InstructionLines(),
		RatingBadge: badge,
	}
	if recipe.HasYouTubeVideo() {
		data.EmbedVideoURL = recipe.EmbedVideoURL()
	}
	return c.Render(http.StatusOK, "recipe.html", data)
}
