package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/apperrors"
	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/services"
)

// RecipeView is a recipe with the derived fields clients display
type RecipeView struct {
	models.Recipe
	InstructionLines []string `json:"instruction_lines"`
	HasYouTubeVideo  bool     `json:"has_youtube_video"`
	EmbedVideoURL    string   `json:"embed_video_url,omitempty"`
	DisplayImageURL  string   `json:"display_image_url"`
}

func NewRecipeView(r models.Recipe, defaultImageURL string) RecipeView {
	lines := r.InstructionLines()
	if lines == nil {
		lines = []string{}
	}
	return RecipeView{
		Recipe:           r,
		InstructionLines: lines,
		HasYouTubeVideo:  r.HasYouTubeVideo(),
		EmbedVideoURL:    r.EmbedVideoURL(),
		DisplayImageURL:  r.DisplayImageURL(defaultImageURL),
	}
}

type RecipeHandler struct {
	recipes         *services.RecipeService
	profiles        *services.ProfileService
	metrics         *middleware.Metrics
	defaultImageURL string
	maxUploadBytes  int64
}

func NewRecipeHandler(recipes *services.RecipeService, profiles *services.ProfileService, metrics *middleware.Metrics, defaultImageURL string, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:         recipes,
		profiles:        profiles,
		metrics:         metrics,
		defaultImageURL: defaultImageURL,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *RecipeHandler) views(recipes []models.Recipe) []RecipeView {
	out := make([]RecipeView, len(recipes))
	for i, r := range recipes {
		out[i] = NewRecipeView(r, h.defaultImageURL)
	}
	return out
}

// ListRecipes searches recipes by ?q= and ?category=
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	recipes, err := h.recipes.Search(c.Request().Context(), c.QueryParam("q"), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"recipes": h.views(recipes)})
}

func (h *RecipeHandler) Categories(c echo.Context) error {
	categories, err := h.recipes.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *RecipeHandler) Explore(c echo.Context) error {
	recipes, err := h.recipes.Explore(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"recipes": h.views(recipes)})
}

func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewRecipeView(*recipe, h.defaultImageURL))
}

// CreateRecipe handles the multipart recipe form with its image file
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var input services.RecipeInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}

	image, closeImage, err := h.formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	recipe, err := h.recipes.Create(c.Request().Context(), middleware.UserUID(c), input, image)
	if image != nil {
		h.metrics.ObserveUpload(err == nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, NewRecipeView(*recipe, h.defaultImageURL))
}

// UpdateRecipe accepts the same form as CreateRecipe (or JSON) with an optional image
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var input services.RecipeInput
	if err := bindAndValidate(c, &input); err != nil {
		return err
	}

	image, closeImage, err := h.formImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	recipe, err := h.recipes.Update(c.Request().Context(), id, middleware.UserUID(c), input, image)
	if image != nil {
		h.metrics.ObserveUpload(err == nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewRecipeView(*recipe, h.defaultImageURL))
}

// formImage opens the optional "image" file of a multipart request
func (h *RecipeHandler) formImage(c echo.Context) (*services.ImageUpload, func(), error) {
	noop := func() {}

	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, apperrors.Wrap(apperrors.CodeBadRequest, "Invalid image upload", err)
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return nil, noop, apperrors.New(apperrors.CodeTooLarge, "Image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return nil, noop, apperrors.Wrap(apperrors.CodeBadRequest, "Invalid image upload", err)
	}

	return &services.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Size:        file.Size,
		Body:        src,
	}, func() { _ = src.Close() }, nil
}

func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipes.Delete(c.Request().Context(), id, middleware.UserUID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type rateRequest struct {
	Value int `json:"value" form:"value" validate:"required"`
}

type RateResponse struct {
	Recipe  RecipeView `json:"recipe"`
	Perfect bool       `json:"perfect"`
	Message string     `json:"message,omitempty"`
}

// RateRecipe stores the caller's star rating
func (h *RecipeHandler) RateRecipe(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req rateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.recipes.Rate(c.Request().Context(), id, middleware.UserUID(c), req.Value)
	if err != nil {
		return err
	}
	h.metrics.ObserveRating(result.Value)

	return c.JSON(http.StatusOK, RateResponse{
		Recipe:  NewRecipeView(*result.Recipe, h.defaultImageURL),
		Perfect: result.Perfect,
		Message: result.Message,
	})
}

// MarkCooked bumps the caller's cooked counter and returns the updated profile
func (h *RecipeHandler) MarkCooked(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	uid := middleware.UserUID(c)
	if err := h.recipes.MarkCooked(ctx, id, uid); err != nil {
		return err
	}

	profile, err := h.profiles.Get(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"profile": profile})
}
