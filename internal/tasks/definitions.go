package tasks

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe_app_echo/internal/services"
)

// Deps are the collaborators the task handlers need
type Deps struct {
	DB      *gorm.DB
	Recipes *services.RecipeService
	Mirror  *services.RecipeMirror
	Log     *zap.Logger
}

// DefineTasks registers all available tasks
func DefineTasks(r *Registry, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	// General tasks
	logInfo := &LogInfoTaskDef{log: d.Log}
	r.Register(logInfo.TaskID(), logInfo.HandleExecution)

	// Recipe maintenance
	ratings := &RecomputeRatingsTaskDef{db: d.DB, recipes: d.Recipes}
	r.Register(ratings.TaskID(), ratings.HandleExecution)

	mirror := &MirrorRecipesTaskDef{db: d.DB, mirror: d.Mirror}
	r.Register(mirror.TaskID(), mirror.HandleExecution)
}
