package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"recipe_app_echo/internal/apperrors"
)

// WriteRateLimiter limits mutating requests per user (or per IP before
// authentication) to perSecond with a burst of three times that rate.
// Read requests pass through.
func WriteRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	burst := int(perSecond * 3)
	if burst < 1 {
		burst = 1
	}

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(perSecond),
		Burst: burst,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return true
			}
			return false
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if uid := UserUID(c); uid != "" && uid != AnonymousUID {
				return "uid:" + uid, nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Wrap(apperrors.CodeForbidden, "Unable to identify client", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.New(apperrors.CodeTooManyRequests, "Too many requests, slow down")
		},
	})
}
