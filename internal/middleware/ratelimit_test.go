package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestWriteRateLimiter(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.NoContent(ToAppError(err).StatusCode())
	}
	e.Use(WriteRateLimiter(1))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/recipes", ok)
	e.POST("/api/favorites", ok)

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/favorites"), "request %d within burst", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/api/favorites"))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/recipes"))
	}
}

func TestWriteRateLimiterDisabled(t *testing.T) {
	e := echo.New()
	e.Use(WriteRateLimiter(0))
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
