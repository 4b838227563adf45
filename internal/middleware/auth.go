package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"recipe_app_echo/internal/apperrors"
)

const (
	SessionCookieName = "session"

	// AnonymousUID owns requests when auth is not configured and anonymous access is allowed
	AnonymousUID = "anonymous"

	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
)

// TokenVerifier verifies Firebase credentials. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// RequireAuth returns a middleware that accepts a Firebase ID token (Bearer
// header, or access_token query parameter for websocket clients) or a
// Firebase session cookie
func RequireAuth(verifier TokenVerifier, allowAnonymous bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Check if Firebase is initialized
			if verifier == nil {
				if !allowAnonymous {
					return apperrors.New(apperrors.CodeUnavailable, "Authentication is not configured")
				}
				c.Set(ContextUserUID, AnonymousUID)
				return next(c)
			}

			ctx := c.Request().Context()

			if idToken := bearerToken(c); idToken != "" {
				token, err := verifier.VerifyIDToken(ctx, idToken)
				if err != nil {
					return apperrors.Wrap(apperrors.CodeUnauthorized, "Invalid token", err)
				}
				setIdentity(c, token)
				return next(c)
			}

			// Get the session cookie
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return apperrors.Unauthorized("Please log in to continue.")
			}

			token, err := verifier.VerifySessionCookie(ctx, cookie.Value)
			if err != nil {
				// Invalid session, clear cookie
				c.SetCookie(ExpiredSessionCookie())
				return apperrors.Wrap(apperrors.CodeUnauthorized, "Session expired", err)
			}

			setIdentity(c, token)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.QueryParam("access_token")
}

func setIdentity(c echo.Context, token *auth.Token) {
	c.Set(ContextUserUID, token.UID)
	if email, ok := token.Claims["email"].(string); ok {
		c.Set(ContextUserEmail, email)
	}
	if name, ok := token.Claims["name"].(string); ok {
		c.Set(ContextUserName, name)
	}
}

// ExpiredSessionCookie returns a cookie that removes the session cookie
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
}

// UserUID returns the authenticated user's UID set by RequireAuth
func UserUID(c echo.Context) string {
	return contextString(c, ContextUserUID)
}

func UserEmail(c echo.Context) string {
	return contextString(c, ContextUserEmail)
}

func UserName(c echo.Context) string {
	return contextString(c, ContextUserName)
}

func contextString(c echo.Context, key string) string {
	if val := c.Get(key); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
