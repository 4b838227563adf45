package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the caller's profile, refreshing name and email from the token claims
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.Ensure(c.Request().Context(),
		middleware.UserUID(c),
		middleware.UserName(c),
		middleware.UserEmail(c),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
