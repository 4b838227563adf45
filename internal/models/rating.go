package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// RecipeRating is one user's star rating of a recipe. A user has at most one
// rating per recipe; rating again replaces the value.
type RecipeRating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RecipeID uint   `gorm:"not null;uniqueIndex:idx_recipe_ratings_recipe_user,priority:1" json:"recipe_id"`
	UserUID  string `gorm:"type:varchar(128);not null;uniqueIndex:idx_recipe_ratings_recipe_user,priority:2" json:"user_uid"`
	Value    int    `gorm:"not null" json:"value"`
}

// ValidRating reports whether v is a whole star count in range
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
