package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recipe_app_echo/internal/seed"
)

var seedFile string

// seedCmd loads recipes from a YAML file, skipping titles that already exist
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load recipes from a YAML seed file",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to the YAML seed file (required)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	recipes, err := seed.LoadFile(seedFile)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	result, err := seed.Apply(ctx, a.DB, recipes)
	if err != nil {
		return err
	}
	if result.Created > 0 {
		a.Recipes.InvalidateCache(ctx)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d recipes (%d already present)\n", result.Created, result.Skipped)
	return nil
}
