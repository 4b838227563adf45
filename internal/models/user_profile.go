package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// JoinDateLayout formats UserProfile.JoinDate
const JoinDateLayout = "2006-01-02"

// UserProfile keeps per-user details and activity counters keyed by Firebase UID
type UserProfile struct {
	UID       string    `gorm:"primaryKey;type:varchar(128)" json:"uid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username        string `gorm:"type:varchar(255)" json:"username"`
	Name            string `gorm:"type:varchar(255)" json:"name"`
	Email           string `gorm:"type:varchar(255);index" json:"email"`
	AvatarURL       string `gorm:"type:text" json:"avatar_url"`
	Bio             string `gorm:"type:text" json:"bio"`
	FavoriteCuisine string `gorm:"type:varchar(100)" json:"favorite_cuisine"`
	JoinDate        string `gorm:"type:varchar(10)" json:"join_date"`

	RecipesCreated int `gorm:"default:0" json:"recipes_created"`
	RecipesSaved   int `gorm:"default:0" json:"recipes_saved"`
	RecipesCooked  int `gorm:"default:0" json:"recipes_cooked"`
}

// BeforeCreate stamps the join date of new profiles
func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.JoinDate == "" {
		p.JoinDate = time.Now().UTC().Format(JoinDateLayout)
	}
	return nil
}

// UsernameFromEmail derives a default username from the local part of email
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "user"
}
