package realtime

import (
	"sync"

	"recipe_app_echo/internal/models"
)

// FavoriteList is a client-side copy of a user's favorites kept current by
// applying change events instead of refetching. Newest entries come first.
type FavoriteList struct {
	mu    sync.RWMutex
	items []models.Favorite
}

// NewFavoriteList starts from an already loaded list (newest first)
func NewFavoriteList(initial []models.Favorite) *FavoriteList {
	items := make([]models.Favorite, len(initial))
	copy(items, initial)
	return &FavoriteList{items: items}
}

// Apply patches the list with one change and reports whether it changed.
// INSERT prepends the new row unless its id is already listed, UPDATE replaces the row with the same id,
// DELETE removes the row with the old row's id. Anything else is ignored.
func (l *FavoriteList) Apply(change Change) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch change.EventType {
	case EventInsert:
		if change.New == nil {
			return false
		}
		// already present when the list was loaded after subscribing
		for _, f := range l.items {
			if f.ID == change.New.ID {
				return false
			}
		}
		l.items = append([]models.Favorite{*change.New}, l.items...)
		return true

	case EventUpdate:
		if change.New == nil {
			return false
		}
		changed := false
		for i := range l.items {
			if l.items[i].ID == change.New.ID {
				l.items[i] = *change.New
				changed = true
			}
		}
		return changed

	case EventDelete:
		if change.Old == nil {
			return false
		}
		kept := l.items[:0]
		for _, f := range l.items {
			if f.ID != change.Old.ID {
				kept = append(kept, f)
			}
		}
		changed := len(kept) != len(l.items)
		l.items = kept
		return changed

	default:
		return false
	}
}

// Items returns a copy of the current list
func (l *FavoriteList) Items() []models.Favorite {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Favorite, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of favorites in the list
func (l *FavoriteList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
