package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_app_echo/internal/models"
)

func TestShareRecipePage(t *testing.T) {
	s := newTestServer(t)
	r := s.seed(t, models.Recipe{
		Title:        "Shakshuka",
		Description:  "Eggs in spicy tomato sauce",
		Ingredients:  "eggs, tomatoes, peppers",
		Instructions: "Cook the sauce. Crack in the eggs.",
		VideoURL:     "https://www.youtube.com/watch?v=abc123&t=5",
		Rating:       4.5,
		RatingCount:  2,
	})

	rec := s.do(t, http.MethodGet, "/r/"+strconv.Itoa(int(r.ID)), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(t, html, "<title>Shakshuka</title>")
	assert.Contains(t, html, "<li>Crack in the eggs.</li>")
	assert.Contains(t, html, "https://www.youtube.com/embed/abc123")
	assert.Contains(t, html, testPlaceholder)
	assert.Contains(t, html, "★★★★★</span> 4.5 (2 ratings)")

	rec = s.do(t, http.MethodGet, "/r/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "disabled", body["cache"])
}
