// Package realtime carries favorites change events from the API to
// subscribed clients. Ordering follows a single broker's publish order and
// delivery is at-most-once; clients that reconnect reload the list.
package realtime

import (
	"time"

	"recipe_app_echo/internal/models"
)

// EventType is the kind of row change
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	FavoritesSchema = "public"
	FavoritesTable  = "favorites"
)

// Change describes one write to the favorites table. New is set for INSERT
// and UPDATE, Old for UPDATE and DELETE.
type Change struct {
	EventType       EventType        `json:"eventType"`
	Schema          string           `json:"schema"`
	Table           string           `json:"table"`
	CommitTimestamp time.Time        `json:"commit_timestamp"`
	New             *models.Favorite `json:"new,omitempty"`
	Old             *models.Favorite `json:"old,omitempty"`
}

// NewFavoriteChange builds a change for the favorites table
func NewFavoriteChange(eventType EventType, old, new *models.Favorite, at time.Time) Change {
	return Change{
		EventType:       eventType,
		Schema:          FavoritesSchema,
		Table:           FavoritesTable,
		CommitTimestamp: at,
		New:             new,
		Old:             old,
	}
}

// UserUID returns the owner of the changed row
func (c Change) UserUID() string {
	if c.New != nil {
		return c.New.UserUID
	}
	if c.Old != nil {
		return c.Old.UserUID
	}
	return ""
}
