package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipe_app_echo/internal/models"
)

// ProfileCounter names a per-user activity counter column
type ProfileCounter string

const (
	CounterRecipesCreated ProfileCounter = "recipes_created"
	CounterRecipesSaved   ProfileCounter = "recipes_saved"
	CounterRecipesCooked  ProfileCounter = "recipes_cooked"
)

// ProfileService manages user profiles and their activity counters
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get returns the profile for uid, creating an empty one on first access
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile := models.UserProfile{UID: uid}
	if err := s.db.WithContext(ctx).Where(models.UserProfile{UID: uid}).FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Ensure creates the profile if missing and refreshes name and email when
// given. A profile without a username takes the local part of its email.
func (s *ProfileService) Ensure(ctx context.Context, uid, name, email string) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if profile.Username == "" {
		profile.Username = models.UsernameFromEmail(email)
		updates["username"] = profile.Username
	}
	if name != "" && name != profile.Name {
		updates["name"] = name
		profile.Name = name
	}
	if email != "" && email != profile.Email {
		updates["email"] = email
		profile.Email = email
	}
	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).Where("uid = ?", uid).Updates(updates).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Increment adds delta to one of the user's counters
func (s *ProfileService) Increment(ctx context.Context, uid string, counter ProfileCounter, delta int) error {
	return bumpCounter(s.db.WithContext(ctx), uid, counter, delta)
}

var errUnknownCounter = errors.New("unknown profile counter")

// bumpCounter adjusts a counter inside the caller's transaction, creating the
// profile row if needed. Counters never go below zero.
func bumpCounter(tx *gorm.DB, uid string, counter ProfileCounter, delta int) error {
	switch counter {
	case CounterRecipesCreated, CounterRecipesSaved, CounterRecipesCooked:
	default:
		return errUnknownCounter
	}
	if uid == "" || delta == 0 {
		return nil
	}

	profile := models.UserProfile{UID: uid}
	if err := tx.Where(models.UserProfile{UID: uid}).FirstOrCreate(&profile).Error; err != nil {
		return err
	}

	col := string(counter)
	expr := gorm.Expr("CASE WHEN "+col+" + ? < 0 THEN 0 ELSE "+col+" + ? END", delta, delta)
	return tx.Model(&models.UserProfile{}).Where("uid = ?", uid).Update(col, expr).Error
}
