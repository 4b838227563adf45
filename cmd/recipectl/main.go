// Command recipectl schedules worker tasks, seeds recipes and follows a
// user's favorites stream from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe_app_echo/internal/app"
	"recipe_app_echo/internal/config"
	"recipe_app_echo/internal/logger"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:           "recipectl",
	Short:         "Manage the recipe service from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(scheduleCmd, seedCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openApp connects to the configured database and services. Callers must Close it.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		return nil, err
	}
	return a, nil
}
