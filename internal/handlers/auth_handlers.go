package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"recipe_app_echo/internal/apperrors"
	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/services"
)

const sessionDuration = 5 * 24 * time.Hour

// SessionIssuer exchanges Firebase ID tokens for session cookies. *auth.Client implements it.
type SessionIssuer interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	issuer       SessionIssuer
	profiles     *services.ProfileService
	secureCookie bool
	log          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler; issuer is nil when Firebase is not configured
func NewAuthHandler(issuer SessionIssuer, profiles *services.ProfileService, secureCookie bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, profiles: profiles, secureCookie: secureCookie, log: log}
}

type loginRequest struct {
	IDToken string `json:"id_token" form:"id_token"`
}

// HandleLogin verifies the Firebase ID token and creates a session cookie
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if h.issuer == nil {
		return apperrors.New(apperrors.CodeUnavailable, "Firebase not initialized")
	}

	// ID token from the Authorization header, or the body for form posts
	idToken := ""
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		var ok bool
		if idToken, ok = strings.CutPrefix(authHeader, "Bearer "); !ok {
			return apperrors.Unauthorized("Invalid authorization format")
		}
	} else {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return apperrors.Wrap(apperrors.CodeBadRequest, "Malformed request body", err)
		}
		idToken = req.IDToken
	}
	if strings.TrimSpace(idToken) == "" {
		return apperrors.Unauthorized("Missing ID token")
	}

	ctx := c.Request().Context()
	token, err := h.issuer.VerifyIDToken(ctx, idToken)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnauthorized, "Invalid token", err)
	}

	cookieValue, err := h.issuer.SessionCookie(ctx, idToken, sessionDuration)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "Failed to create session", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    cookieValue,
		MaxAge:   int(sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	name, _ := token.Claims["name"].(string)
	email, _ := token.Claims["email"].(string)
	if _, err := h.profiles.Ensure(ctx, token.UID, name, email); err != nil {
		h.log.Warn("Failed to create profile on login", zap.String("uid", token.UID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
		"uid":    token.UID,
	})
}

// HandleLogout clears the session cookie
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	c.SetCookie(middleware.ExpiredSessionCookie())
	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged out",
	})
}
