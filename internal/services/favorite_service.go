package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/realtime"
)

// FavoriteService manages saved recipes and publishes every write to the
// favorites change feed
type FavoriteService struct {
	db     *gorm.DB
	broker realtime.Broker
	log    *zap.Logger
	now    func() time.Time
}

// NewFavoriteService creates the service; broker may be nil to disable the feed
func NewFavoriteService(db *gorm.DB, broker realtime.Broker, log *zap.Logger) *FavoriteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FavoriteService{db: db, broker: broker, log: log, now: time.Now}
}

// List returns the user's favorites, newest first
func (s *FavoriteService) List(ctx context.Context, userUID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	if err := s.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("id desc").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

// Add saves the recipe to the user's favorites with its current title and image
func (s *FavoriteService) Add(ctx context.Context, userUID string, recipeID uint) (*models.Favorite, error) {
	var favorite models.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}

		// the (user_uid, recipe_id) unique index decides duplicates, so
		// concurrent adds of the same recipe cannot both succeed
		favorite = models.Favorite{UserUID: userUID, RecipeID: recipe.ID}
		favorite.CopyDisplay(*recipe)
		if err := tx.Create(&favorite).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrAlreadyFavorited
			}
			return err
		}
		return bumpCounter(tx, userUID, CounterRecipesSaved, 1)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventInsert, nil, &favorite)
	return &favorite, nil
}

func (s *FavoriteService) find(tx *gorm.DB, userUID string, favoriteID uint) (*models.Favorite, error) {
	var favorite models.Favorite
	if err := tx.Where("id = ? AND user_uid = ?", favoriteID, userUID).First(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrFavoriteNotFound
		}
		return nil, err
	}
	return &favorite, nil
}

// Refresh copies the recipe's current title and image onto the favorite
func (s *FavoriteService) Refresh(ctx context.Context, userUID string, favoriteID uint) (*models.Favorite, error) {
	var old, favorite models.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := s.find(tx, userUID, favoriteID)
		if err != nil {
			return err
		}
		recipe, err := findRecipe(tx, f.RecipeID)
		if err != nil {
			return err
		}

		old = *f
		favorite = *f
		favorite.CopyDisplay(*recipe)
		return tx.Save(&favorite).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdate, &old, &favorite)
	return &favorite, nil
}

// Remove deletes one of the user's favorites
func (s *FavoriteService) Remove(ctx context.Context, userUID string, favoriteID uint) error {
	var old *models.Favorite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if old, err = s.find(tx, userUID, favoriteID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Favorite{}, old.ID).Error; err != nil {
			return err
		}
		return bumpCounter(tx, userUID, CounterRecipesSaved, -1)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.EventDelete, old, nil)
	return nil
}

// SyncRecipe refreshes the display metadata of every favorite of the recipe
func (s *FavoriteService) SyncRecipe(ctx context.Context, recipe models.Recipe) error {
	var favorites []models.Favorite
	if err := s.db.WithContext(ctx).Where("recipe_id = ?", recipe.ID).Find(&favorites).Error; err != nil {
		return err
	}

	for _, f := range favorites {
		old := f
		updated := f
		if !updated.CopyDisplay(recipe) {
			continue
		}
		if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
			return fmt.Errorf("favorite %d: %w", f.ID, err)
		}
		s.publish(ctx, realtime.EventUpdate, &old, &updated)
	}
	return nil
}

// pruneFavorites deletes every favorite of the recipe inside tx and
// decrements the savers' counters. It returns the deleted rows so the caller
// can publish them once tx commits.
func pruneFavorites(tx *gorm.DB, recipeID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := tx.Where("recipe_id = ?", recipeID).Find(&favorites).Error; err != nil {
		return nil, err
	}
	for _, f := range favorites {
		if err := tx.Delete(&models.Favorite{}, f.ID).Error; err != nil {
			return nil, err
		}
		if err := bumpCounter(tx, f.UserUID, CounterRecipesSaved, -1); err != nil {
			return nil, err
		}
	}
	return favorites, nil
}

// PublishRemoved announces favorites deleted together with their recipe
func (s *FavoriteService) PublishRemoved(ctx context.Context, favorites []models.Favorite) {
	for i := range favorites {
		s.publish(ctx, realtime.EventDelete, &favorites[i], nil)
	}
}

func (s *FavoriteService) publish(ctx context.Context, eventType realtime.EventType, old, new *models.Favorite) {
	if s.broker == nil {
		return
	}
	change := realtime.NewFavoriteChange(eventType, old, new, s.now().UTC())
	if err := s.broker.Publish(ctx, change); err != nil {
		s.log.Warn("Failed to publish favorite change",
			zap.String("event_type", string(eventType)),
			zap.String("user_uid", change.UserUID()),
			zap.Error(err),
		)
	}
}
