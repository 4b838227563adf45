package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"recipe_app_echo/internal/app"
	"recipe_app_echo/internal/config"
	"recipe_app_echo/internal/handlers"
	"recipe_app_echo/internal/logger"
	"recipe_app_echo/internal/middleware"
	"recipe_app_echo/internal/realtime"
	"recipe_app_echo/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	if cfg.EnvFile == "" {
		log.Info("No .env file found, using system environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	renderer, err := web.NewTemplateRenderer()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	metrics := middleware.NewMetrics()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = middleware.ErrorHandler(log)

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))

	e.StaticFS("/static", web.StaticFS())

	// Initialize handlers
	var verifier middleware.TokenVerifier
	var issuer handlers.SessionIssuer
	if a.Firebase != nil {
		verifier = a.Firebase.Auth
		issuer = a.Firebase.Auth
	}

	hub := realtime.NewHub(a.Broker, log)

	handlers.RegisterRoutes(e, handlers.Routes{
		Recipes:            handlers.NewRecipeHandler(a.Recipes, a.Profiles, metrics, cfg.DefaultImageURL, cfg.MaxUploadBytes),
		Favorites:          handlers.NewFavoriteHandler(a.Favorites, hub, metrics),
		Profiles:           handlers.NewProfileHandler(a.Profiles),
		Auth:               handlers.NewAuthHandler(issuer, a.Profiles, cfg.IsProduction(), log),
		Health:             handlers.NewHealthHandler(a.DB, a.Cache),
		Share:              handlers.NewShareHandler(a.Recipes, cfg.DefaultImageURL),
		Verifier:           verifier,
		AllowAnonymous:     cfg.AuthAllowAnonymous,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		Metrics:            metrics,
	})

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/api/recipes")
	})

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// bodyLimit leaves room for the multipart envelope around the image
func bodyLimit(maxUploadBytes int64) string {
	const overhead = 1 << 20
	return strconv.FormatInt(maxUploadBytes+overhead, 10)
}
