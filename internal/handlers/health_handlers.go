package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"recipe_app_echo/internal/services"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewHealthHandler(db *gorm.DB, cache *services.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Healthz reports database and cache reachability
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{"database": "ok", "cache": "ok"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.cache == nil {
		checks["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	checks["status"] = "ok"
	if status != http.StatusOK {
		checks["status"] = "degraded"
	}
	return c.JSON(status, checks)
}
