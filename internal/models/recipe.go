package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

const youtubeEmbedPrefix = "https://www.youtube.com/embed/"

// Recipe is a submitted recipe with its display metadata and aggregate rating
type Recipe struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title        string `gorm:"type:varchar(255);not null;index" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Ingredients  string `gorm:"type:text" json:"ingredients"`
	Instructions string `gorm:"type:text" json:"instructions"`
	Steps        string `gorm:"type:text" json:"steps"`
	ImageURL     string `gorm:"type:text" json:"image_url"`
	VideoURL     string `gorm:"type:text" json:"video_url,omitempty"`
	Category     string `gorm:"type:varchar(100);index" json:"category"`

	Rating      float64 `gorm:"default:0" json:"rating"`
	RatingCount int     `gorm:"default:0" json:"rating_count"`

	// Firebase UID of the submitter, empty for seeded recipes
	AuthorUID string `gorm:"type:varchar(128);index" json:"author_uid,omitempty"`
}

// A period followed by whitespace ends a sentence; the period stays with the sentence.
var sentenceBreak = regexp.MustCompile(`\.\s+`)

// InstructionLines splits the instructions (or steps when instructions are blank)
// into display lines: one per line break and one per sentence.
func (r Recipe) InstructionLines() []string {
	text := r.Instructions
	if strings.TrimSpace(text) == "" {
		text = r.Steps
	}

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		start := 0
		for _, loc := range sentenceBreak.FindAllStringIndex(raw, -1) {
			lines = appendTrimmed(lines, raw[start:loc[0]+1])
			start = loc[1]
		}
		lines = appendTrimmed(lines, raw[start:])
	}
	return lines
}

func appendTrimmed(lines []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return lines
	}
	return append(lines, s)
}

// HasYouTubeVideo reports whether the video should be shown through the YouTube player
func (r Recipe) HasYouTubeVideo() bool {
	return strings.Contains(r.VideoURL, "youtube.com") || strings.Contains(r.VideoURL, "youtu.be")
}

// EmbedVideoURL returns the embeddable form of the recipe's video URL
func (r Recipe) EmbedVideoURL() string {
	return EmbedVideoURL(r.VideoURL)
}

// EmbedVideoURL converts youtube.com/watch?v= and youtu.be/ links into
// youtube.com/embed/ links. Other URLs are returned unchanged.
func EmbedVideoURL(raw string) string {
	if _, after, ok := strings.Cut(raw, "youtube.com/watch?v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return youtubeEmbedPrefix + id
	}
	if _, after, ok := strings.Cut(raw, "youtu.be/"); ok {
		id, _, _ := strings.Cut(after, "?")
		return youtubeEmbedPrefix + id
	}
	return raw
}

// DisplayImageURL returns the image URL, or fallback when the recipe has none
func (r Recipe) DisplayImageURL(fallback string) string {
	if strings.TrimSpace(r.ImageURL) == "" {
		return fallback
	}
	return r.ImageURL
}
