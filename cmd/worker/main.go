package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"recipe_app_echo/internal/app"
	"recipe_app_echo/internal/config"
	"recipe_app_echo/internal/logger"
	"recipe_app_echo/internal/tasks"
)

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

	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	registry := tasks.NewRegistry()
	tasks.DefineTasks(registry, tasks.Deps{
		DB:      a.DB,
		Recipes: a.Recipes,
		Mirror:  a.Mirror,
		Log:     log,
	})

	log.Info("Worker started",
		zap.Duration("interval", cfg.WorkerInterval),
		zap.Strings("tasks", registry.Names()),
	)

	tasks.NewWorker(a.DB, registry, log).Run(ctx, cfg.WorkerInterval)

	log.Info("Shutting down worker...")
}
