package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/realtime"
	"recipe_app_echo/internal/services"
	"recipe_app_echo/internal/web"
)

const testPlaceholder = "/static/images/recipe-placeholder.svg"

// tokenVerifier accepts "token-<uid>" as ID token and "session-<uid>" as session cookie
type tokenVerifier struct{}

func (tokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if uid, ok := strings.CutPrefix(idToken, "token-"); ok && uid != "" {
		return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com", "name": strings.ToUpper(uid)}}, nil
	}
	return nil, errors.New("invalid token")
}

func (tokenVerifier) VerifySessionCookie(ctx context.Context, cookie string) (*auth.Token, error) {
	if uid, ok := strings.CutPrefix(cookie, "session-"); ok && uid != "" {
		return &auth.Token{UID: uid, Claims: map[string]interface{}{}}, nil
	}
	return nil, errors.New("invalid session")
}

func (tokenVerifier) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	return "session-" + strings.TrimPrefix(idToken, "token-"), nil
}

type memoryImageStore struct {
	names []string
}

func (m *memoryImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.names = append(m.names, name)
	return "https://storage.test/recipes/" + name, nil
}

type testServer struct {
	e       *echo.Echo
	db      *gorm.DB
	broker  *realtime.MemoryBroker
	images  *memoryImageStore
	metrics *middleware.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := services.InitDB(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, services.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	broker := realtime.NewMemoryBroker(16)
	images := &memoryImageStore{}
	metrics := middleware.NewMetrics()

	favorites := services.NewFavoriteService(db, broker, log)
	profiles := services.NewProfileService(db)
	recipes := services.NewRecipeService(db, services.RecipeServiceOptions{
		Images:    images,
		Favorites: favorites,
		Log:       log,
	})

	renderer, err := web.NewTemplateRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = middleware.ErrorHandler(log)

	RegisterRoutes(e, Routes{
		Recipes:            NewRecipeHandler(recipes, profiles, metrics, testPlaceholder, 1<<20),
		Favorites:          NewFavoriteHandler(favorites, realtime.NewHub(broker, log), metrics),
		Profiles:           NewProfileHandler(profiles),
		Auth:               NewAuthHandler(tokenVerifier{}, profiles, false, log),
		Health:             NewHealthHandler(db, nil),
		Share:              NewShareHandler(recipes, testPlaceholder),
		Verifier:           tokenVerifier{},
		RateLimitPerSecond: 100,
		Metrics:            metrics,
	})

	return &testServer{e: e, db: db, broker: broker, images: images, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer token-"+uid)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seed(t *testing.T, r models.Recipe) models.Recipe {
	t.Helper()
	require.NoError(t, s.db.Create(&r).Error)
	return r
}

// multipartRecipe builds a recipe form; image is skipped when imageType is empty
func multipartRecipe(t *testing.T, fields map[string]string, filename, imageType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
