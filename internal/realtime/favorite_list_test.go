package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recipe_app_echo/internal/models"
)

func fav(id uint, title string) *models.Favorite {
	return &models.Favorite{ID: id, UserUID: "u1", RecipeID: id * 10, Title: title}
}

func titles(items []models.Favorite) []string {
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.Title)
	}
	return out
}

func TestFavoriteListApply(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		change   Change
		changed  bool
		expected []string
	}{
		{
			name:     "insert prepends",
			change:   NewFavoriteChange(EventInsert, nil, fav(3, "Tacos"), now),
			changed:  true,
			expected: []string{"Tacos", "Curry", "Pho"},
		},
		{
			name:     "insert of a listed id is ignored",
			change:   NewFavoriteChange(EventInsert, nil, fav(2, "Curry"), now),
			changed:  false,
			expected: []string{"Curry", "Pho"},
		},
		{
			name:     "update replaces by id",
			change:   NewFavoriteChange(EventUpdate, fav(1, "Pho"), fav(1, "Beef Pho"), now),
			changed:  true,
			expected: []string{"Curry", "Beef Pho"},
		},
		{
			name:     "update of unknown id is ignored",
			change:   NewFavoriteChange(EventUpdate, nil, fav(9, "Ghost"), now),
			changed:  false,
			expected: []string{"Curry", "Pho"},
		},
		{
			name:     "delete removes by old id",
			change:   NewFavoriteChange(EventDelete, &models.Favorite{ID: 2}, nil, now),
			changed:  true,
			expected: []string{"Pho"},
		},
		{
			name:     "delete of unknown id is ignored",
			change:   NewFavoriteChange(EventDelete, &models.Favorite{ID: 9}, nil, now),
			changed:  false,
			expected: []string{"Curry", "Pho"},
		},
		{
			name:     "insert without payload is ignored",
			change:   Change{EventType: EventInsert},
			changed:  false,
			expected: []string{"Curry", "Pho"},
		},
		{
			name:     "unknown event type is ignored",
			change:   Change{EventType: "TRUNCATE", New: fav(4, "Soup")},
			changed:  false,
			expected: []string{"Curry", "Pho"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewFavoriteList([]models.Favorite{*fav(2, "Curry"), *fav(1, "Pho")})
			assert.Equal(t, tt.changed, list.Apply(tt.change))
			assert.Equal(t, tt.expected, titles(list.Items()))
		})
	}
}

func TestFavoriteListItemsIsACopy(t *testing.T) {
	initial := []models.Favorite{*fav(1, "Pho")}
	list := NewFavoriteList(initial)

	initial[0].Title = "changed by caller"
	items := list.Items()
	items[0].Title = "changed again"

	assert.Equal(t, []string{"Pho"}, titles(list.Items()))
	assert.Equal(t, 1, list.Len())
}

func TestChangeUserUID(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "u1", NewFavoriteChange(EventInsert, nil, fav(1, "a"), now).UserUID())
	assert.Equal(t, "u1", NewFavoriteChange(EventDelete, fav(1, "a"), nil, now).UserUID())
	assert.Equal(t, "", Change{}.UserUID())
}
