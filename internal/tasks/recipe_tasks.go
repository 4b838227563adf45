package tasks

import (
	"context"

	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/services"
)

// RecomputeRatingsTaskDef rebuilds every recipe's mean rating from the stored ratings
type RecomputeRatingsTaskDef struct {
	db      *gorm.DB
	recipes *services.RecipeService
}

func (t *RecomputeRatingsTaskDef) TaskID() string {
	return "recompute_ratings"
}

func (t *RecomputeRatingsTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	changed, err := services.RecomputeRatings(ctx, t.db)
	if err != nil {
		return nil, err
	}
	if changed > 0 && t.recipes != nil {
		t.recipes.InvalidateCache(ctx)
	}
	return map[string]interface{}{
		"status":  "success",
		"changed": changed,
	}, nil
}

// MirrorRecipesTaskDef copies every recipe into the Firestore mirror
type MirrorRecipesTaskDef struct {
	db     *gorm.DB
	mirror *services.RecipeMirror
}

func (t *MirrorRecipesTaskDef) TaskID() string {
	return "mirror_recipes"
}

func (t *MirrorRecipesTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	if t.mirror == nil {
		return map[string]interface{}{"status": "skipped", "message": "Firestore mirror disabled"}, nil
	}
	written, err := t.mirror.Resync(ctx, t.db)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":  "success",
		"written": written,
	}, nil
}
