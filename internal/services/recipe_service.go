package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipe_app_echo/internal/catalog"
	"recipe_app_echo/internal/models"
)

const recipesCacheKey = "recipes:all"

const PerfectRatingMessage = "Thank you! You gave this recipe a perfect 5-star rating!"

// RecipeInput is the editable part of a recipe as submitted by a user
type RecipeInput struct {
	Title        string `form:"title" json:"title" validate:"max=255"`
	Description  string `form:"description" json:"description"`
	Ingredients  string `form:"ingredients" json:"ingredients"`
	Instructions string `form:"instructions" json:"instructions"`
	Steps        string `form:"steps" json:"steps"`
	Category     string `form:"category" json:"category" validate:"max=100"`
	VideoURL     string `form:"video_url" json:"video_url" validate:"omitempty,url"`
}

func (in RecipeInput) normalized() RecipeInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Ingredients = strings.TrimSpace(in.Ingredients)
	in.Instructions = strings.TrimSpace(in.Instructions)
	in.Steps = strings.TrimSpace(in.Steps)
	in.Category = strings.TrimSpace(in.Category)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	return in
}

func (in RecipeInput) complete() bool {
	return in.Title != "" && in.Description != "" && in.Ingredients != ""
}

func (in RecipeInput) apply(r *models.Recipe) {
	r.Title = in.Title
	r.Description = in.Description
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	r.Steps = in.Steps
	r.Category = in.Category
	r.VideoURL = in.VideoURL
}

// ImageUpload is an image file received with a recipe
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RateResult is the outcome of rating a recipe
type RateResult struct {
	Recipe  *models.Recipe
	Value   int
	Perfect bool
	Message string
}

// RecipeServiceOptions wires the optional collaborators of RecipeService
type RecipeServiceOptions struct {
	Cache     *RedisCache
	CacheTTL  time.Duration
	Images    ImageStore
	Mirror    RecipeSink
	Favorites *FavoriteService
	Log       *zap.Logger
}

// RecipeService handles recipe persistence, image upload and ratings
type RecipeService struct {
	db        *gorm.DB
	cache     *RedisCache
	cacheTTL  time.Duration
	images    ImageStore
	mirror    RecipeSink
	favorites *FavoriteService
	log       *zap.Logger
	now       func() time.Time
}

func NewRecipeService(db *gorm.DB, opts RecipeServiceOptions) *RecipeService {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RecipeService{
		db:        db,
		cache:     opts.Cache,
		cacheTTL:  ttl,
		images:    opts.Images,
		mirror:    opts.Mirror,
		favorites: opts.Favorites,
		log:       log,
		now:       time.Now,
	}
}

// List returns all recipes ordered by id
func (s *RecipeService) List(ctx context.Context) ([]models.Recipe, error) {
	return GetOrSet(s.cache, ctx, recipesCacheKey, s.cacheTTL, func() ([]models.Recipe, error) {
		var recipes []models.Recipe
		if err := s.db.WithContext(ctx).Order("id asc").Find(&recipes).Error; err != nil {
			return nil, err
		}
		return recipes, nil
	})
}

// Search filters recipes by title query and category
func (s *RecipeService) Search(ctx context.Context, query, category string) ([]models.Recipe, error) {
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(recipes, query, category), nil
}

func (s *RecipeService) Categories(ctx context.Context) ([]string, error) {
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(recipes), nil
}

func (s *RecipeService) Explore(ctx context.Context) ([]models.Recipe, error) {
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Explore(recipes), nil
}

func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	return findRecipe(s.db.WithContext(ctx), id)
}

func findRecipe(tx *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Create validates the input, uploads the image and stores the recipe
func (s *RecipeService) Create(ctx context.Context, authorUID string, input RecipeInput, image *ImageUpload) (*models.Recipe, error) {
	input = input.normalized()
	if !input.complete() {
		return nil, models.ErrMissingFields
	}
	if image == nil || image.Body == nil {
		return nil, models.ErrMissingImage
	}

	imageURL, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{ImageURL: imageURL, AuthorUID: authorUID}
	input.apply(&recipe)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return bumpCounter(tx, authorUID, CounterRecipesCreated, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.afterWrite(ctx, &recipe)
	s.log.Info("Recipe created",
		zap.Uint("recipe_id", recipe.ID),
		zap.String("author_uid", authorUID),
		zap.String("image_url", recipe.ImageURL),
	)
	return &recipe, nil
}

func (s *RecipeService) upload(ctx context.Context, image *ImageUpload) (string, error) {
	if s.images == nil {
		return "", models.ErrStorageUnavailable
	}
	ext, contentType, err := ImageExtension(image.Filename, image.ContentType)
	if err != nil {
		return "", err
	}
	url, err := s.images.Upload(ctx, ImageObjectName(s.now(), ext), contentType, image.Body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

// Update replaces the recipe's fields. Only the author may update; a new
// image is optional. Favorites pointing at the recipe are refreshed.
func (s *RecipeService) Update(ctx context.Context, id uint, userUID string, input RecipeInput, image *ImageUpload) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorUID != userUID {
		return nil, models.ErrNotRecipeOwner
	}

	input = input.normalized()
	if !input.complete() {
		return nil, models.ErrMissingFields
	}

	if image != nil && image.Body != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = url
	}
	input.apply(recipe)

	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	s.afterWrite(ctx, recipe)
	if s.favorites != nil {
		if err := s.favorites.SyncRecipe(ctx, *recipe); err != nil {
			s.log.Warn("Failed to refresh favorites", zap.Uint("recipe_id", recipe.ID), zap.Error(err))
		}
	}
	return recipe, nil
}

// Delete soft deletes the recipe and, in the same transaction, removes it
// from every user's favorites
func (s *RecipeService) Delete(ctx context.Context, id uint, userUID string) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorUID != userUID {
		return models.ErrNotRecipeOwner
	}

	var pruned []models.Favorite
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(recipe).Error; err != nil {
			return err
		}
		var err error
		pruned, err = pruneFavorites(tx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.invalidate(ctx)
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, id); err != nil {
			s.log.Warn("Failed to remove mirrored recipe", zap.Uint("recipe_id", id), zap.Error(err))
		}
	}
	if s.favorites != nil {
		s.favorites.PublishRemoved(ctx, pruned)
	}
	return nil
}

// Rate records the user's star rating and recomputes the recipe's mean rating
func (s *RecipeService) Rate(ctx context.Context, id uint, userUID string, value int) (*RateResult, error) {
	if !models.ValidRating(value) {
		return nil, models.ErrInvalidRating
	}

	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if recipe, err = findRecipe(tx, id); err != nil {
			return err
		}

		rating := models.RecipeRating{RecipeID: id, UserUID: userUID, Value: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return err
		}

		return refreshRating(tx, recipe)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, recipe)

	result := &RateResult{Recipe: recipe, Value: value, Perfect: value == models.MaxRating}
	if result.Perfect {
		result.Message = PerfectRatingMessage
	}
	return result, nil
}

type ratingAggregate struct {
	RatingAverage float64
	RatingTotal   int
}

// refreshRating recomputes rating and rating_count of recipe from its ratings
func refreshRating(tx *gorm.DB, recipe *models.Recipe) error {
	var agg ratingAggregate
	if err := tx.Model(&models.RecipeRating{}).
		Select("COALESCE(AVG(value), 0) AS rating_average, COUNT(*) AS rating_total").
		Where("recipe_id = ?", recipe.ID).
		Scan(&agg).Error; err != nil {
		return err
	}

	recipe.Rating = agg.RatingAverage
	recipe.RatingCount = agg.RatingTotal
	return tx.Model(recipe).UpdateColumns(map[string]interface{}{
		"rating":       agg.RatingAverage,
		"rating_count": agg.RatingTotal,
	}).Error
}

// RecomputeRatings rebuilds every recipe's aggregate rating and returns how many changed
func RecomputeRatings(ctx context.Context, db *gorm.DB) (int, error) {
	var recipes []models.Recipe
	if err := db.WithContext(ctx).Find(&recipes).Error; err != nil {
		return 0, err
	}

	changed := 0
	for i := range recipes {
		r := &recipes[i]
		before, beforeCount := r.Rating, r.RatingCount
		if err := refreshRating(db.WithContext(ctx), r); err != nil {
			return changed, fmt.Errorf("recipe %d: %w", r.ID, err)
		}
		if r.Rating != before || r.RatingCount != beforeCount {
			changed++
		}
	}
	return changed, nil
}

// MarkCooked records that the user cooked the recipe
func (s *RecipeService) MarkCooked(ctx context.Context, id uint, userUID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, id); err != nil {
			return err
		}
		return bumpCounter(tx, userUID, CounterRecipesCooked, 1)
	})
}

// InvalidateCache drops the cached recipe list
func (s *RecipeService) InvalidateCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *RecipeService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, recipesCacheKey); err != nil {
		s.log.Warn("Failed to invalidate recipe cache", zap.Error(err))
	}
}

func (s *RecipeService) afterWrite(ctx context.Context, recipe *models.Recipe) {
	s.invalidate(ctx)
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Put(ctx, *recipe); err != nil {
		s.log.Warn("Failed to mirror recipe", zap.Uint("recipe_id", recipe.ID), zap.Error(err))
	}
}
