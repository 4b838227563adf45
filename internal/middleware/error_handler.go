package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"recipe_app_echo/internal/apperrors"
	"recipe_app_echo/internal/models"
)

// ErrorResponse is the JSON body of every API error
type ErrorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

// ErrorHandler creates an echo error handler rendering errors as JSON
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := ToAppError(err)
		status := appErr.StatusCode()

		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.Int("status", status),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Debug("Request rejected", fields...)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorResponse{Error: appErr})
		}
		if writeErr != nil {
			log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}

// ToAppError maps domain errors, echo errors and unknown errors onto an AppError
func ToAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he)
	}

	switch {
	case errors.Is(err, models.ErrRecipeNotFound), errors.Is(err, models.ErrFavoriteNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, capitalize(err), err)
	case errors.Is(err, models.ErrAlreadyFavorited):
		return apperrors.Wrap(apperrors.CodeConflict, capitalize(err), err)
	case errors.Is(err, models.ErrNotRecipeOwner):
		return apperrors.Wrap(apperrors.CodeForbidden, capitalize(err), err)
	case errors.Is(err, models.ErrMissingFields),
		errors.Is(err, models.ErrMissingImage),
		errors.Is(err, models.ErrUnsupportedImage),
		errors.Is(err, models.ErrInvalidRating):
		return apperrors.Wrap(apperrors.CodeValidation, capitalize(err), err)
	case errors.Is(err, models.ErrStorageUnavailable):
		return apperrors.Wrap(apperrors.CodeUnavailable, capitalize(err), err)
	}

	return apperrors.Internal(err)
}

func fromHTTPError(he *echo.HTTPError) *apperrors.AppError {
	message := http.StatusText(he.Code)
	if msg, ok := he.Message.(string); ok && msg != "" {
		message = msg
	}

	code := apperrors.CodeInternal
	switch he.Code {
	case http.StatusBadRequest:
		code = apperrors.CodeBadRequest
	case http.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case http.StatusForbidden:
		code = apperrors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = apperrors.CodeNotFound
	case http.StatusConflict:
		code = apperrors.CodeConflict
	case http.StatusRequestEntityTooLarge:
		code = apperrors.CodeTooLarge
	case http.StatusTooManyRequests:
		code = apperrors.CodeTooManyRequests
	case http.StatusServiceUnavailable:
		code = apperrors.CodeUnavailable
	}
	if code == apperrors.CodeInternal {
		return apperrors.Internal(he)
	}
	return apperrors.Wrap(code, message, he.Internal)
}

func capitalize(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if c := msg[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + msg[1:]
	}
	return msg
}
