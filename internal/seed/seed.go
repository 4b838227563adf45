// Package seed loads recipes from YAML files into the database.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
)

// Entry is one recipe in a seed file
type Entry struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Ingredients  string `yaml:"ingredients"`
	Instructions string `yaml:"instructions"`
	Steps        string `yaml:"steps"`
	ImageURL     string `yaml:"image_url"`
	VideoURL     string `yaml:"video_url"`
	Category     string `yaml:"category"`
}

// File is the top level of a seed file
type File struct {
	Recipes []Entry `yaml:"recipes"`
}

// Result counts what Apply did
type Result struct {
	Created int
	Skipped int
}

// Parse decodes a seed file. Every entry needs a title.
func Parse(r io.Reader) ([]models.Recipe, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	recipes := make([]models.Recipe, 0, len(f.Recipes))
	for i, e := range f.Recipes {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			return nil, fmt.Errorf("recipe %d: title is required", i+1)
		}
		recipes = append(recipes, models.Recipe{
			Title:        title,
			Description:  strings.TrimSpace(e.Description),
			Ingredients:  strings.TrimSpace(e.Ingredients),
			Instructions: strings.TrimSpace(e.Instructions),
			Steps:        strings.TrimSpace(e.Steps),
			ImageURL:     strings.TrimSpace(e.ImageURL),
			VideoURL:     strings.TrimSpace(e.VideoURL),
			Category:     strings.TrimSpace(e.Category),
		})
	}
	return recipes, nil
}

// LoadFile parses the seed file at path
func LoadFile(path string) ([]models.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Apply inserts the recipes whose title is not already present, so running
// the same file twice changes nothing
func Apply(ctx context.Context, db *gorm.DB, recipes []models.Recipe) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range recipes {
			var count int64
			if err := tx.Model(&models.Recipe{}).Where("title = ?", r.Title).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				res.Skipped++
				continue
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("insert %q: %w", r.Title, err)
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
