package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/models"
)

func TestLoginSetsSessionAndProfile(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token-ana")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ana", decode[map[string]string](t, rec)["uid"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "session-ana", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	var profile models.UserProfile
	require.NoError(t, s.db.First(&profile, "uid = ?", "ana").Error)
	assert.Equal(t, "ana@example.com", profile.Email)

	// the session cookie now authenticates API calls
	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", decode[models.UserProfile](t, rec).UID)
}

func TestLoginWithBodyToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"id_token":"token-bo"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bo", decode[map[string]string](t, rec)["uid"])
}

func TestLoginRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer garbage", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			s.e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLoginWithoutFirebase(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zap.NewNop())
	h := NewAuthHandler(nil, nil, false, zap.NewNop())
	e.POST("/auth/login", h.HandleLogin)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/logout", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}
