package models

import "time"

// Favorite is a user's saved recipe together with the metadata needed to
// display it without loading the recipe. Rows are hard deleted so that a
// DELETE change always refers to a row that is gone.
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserUID  string `gorm:"type:varchar(128);not null;uniqueIndex:idx_favorites_user_recipe,priority:1" json:"user_uid"`
	RecipeID uint   `gorm:"not null;uniqueIndex:idx_favorites_user_recipe,priority:2;index" json:"recipe_id"`
	Title    string `gorm:"type:varchar(255)" json:"title"`
	ImageURL string `gorm:"type:text" json:"image_url"`
}

// CopyDisplay refreshes the favorite's display metadata from the recipe.
// It reports whether anything changed.
func (f *Favorite) CopyDisplay(r Recipe) bool {
	if f.Title == r.Title && f.ImageURL == r.ImageURL {
		return false
	}
	f.Title = r.Title
	f.ImageURL = r.ImageURL
	return true
}
