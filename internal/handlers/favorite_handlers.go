package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/apperrors"
	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/realtime"
	"recipe_app_echo/internal/services"
)

type FavoriteHandler struct {
	favorites *services.FavoriteService
	hub       *realtime.Hub
	metrics   *middleware.Metrics
}

func NewFavoriteHandler(favorites *services.FavoriteService, hub *realtime.Hub, metrics *middleware.Metrics) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, hub: hub, metrics: metrics}
}

// ListFavorites returns the caller's favorites, newest first
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	favorites, err := h.favorites.List(c.Request().Context(), middleware.UserUID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"favorites": favorites})
}

type addFavoriteRequest struct {
	RecipeID uint `json:"recipe_id" form:"recipe_id" validate:"required"`
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	var req addFavoriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	favorite, err := h.favorites.Add(c.Request().Context(), middleware.UserUID(c), req.RecipeID)
	if err != nil {
		return err
	}
	h.metrics.ObserveFavoriteChange(string(realtime.EventInsert))
	return c.JSON(http.StatusCreated, favorite)
}

// RefreshFavorite re-copies the recipe's title and image onto the favorite
func (h *FavoriteHandler) RefreshFavorite(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	favorite, err := h.favorites.Refresh(c.Request().Context(), middleware.UserUID(c), id)
	if err != nil {
		return err
	}
	h.metrics.ObserveFavoriteChange(string(realtime.EventUpdate))
	return c.JSON(http.StatusOK, favorite)
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.favorites.Remove(c.Request().Context(), middleware.UserUID(c), id); err != nil {
		return err
	}
	h.metrics.ObserveFavoriteChange(string(realtime.EventDelete))
	return c.NoContent(http.StatusNoContent)
}

// Stream upgrades to a websocket carrying the caller's favorites changes
func (h *FavoriteHandler) Stream(c echo.Context) error {
	if h.hub == nil {
		return apperrors.New(apperrors.CodeUnavailable, "Realtime updates are not available")
	}
	return h.hub.ServeWS(c.Response(), c.Request(), middleware.UserUID(c))
}
