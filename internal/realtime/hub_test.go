package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipe_app_echo/internal/models"
)

func TestHubStreamsOnlyOwnChanges(t *testing.T) {
	broker := NewMemoryBroker(8)
	hub := NewHub(broker, zap.NewNop())
	hub.SetPingInterval(50 * time.Millisecond)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, r.URL.Query().Get("uid"))
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?uid=u1"
	list := NewFavoriteList(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Change, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- Watch(ctx, url, "", list, func(c Change, changed bool) {
			events <- c
		})
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	mine := &models.Favorite{ID: 1, UserUID: "u1", RecipeID: 7, Title: "Pho"}
	theirs := &models.Favorite{ID: 2, UserUID: "u2", RecipeID: 8, Title: "Curry"}
	require.NoError(t, broker.Publish(ctx, NewFavoriteChange(EventInsert, nil, theirs, time.Now())))
	require.NoError(t, broker.Publish(ctx, NewFavoriteChange(EventInsert, nil, mine, time.Now())))

	select {
	case c := <-events:
		assert.Equal(t, "u1", c.UserUID())
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}

	renamed := *mine
	renamed.Title = "Beef Pho"
	require.NoError(t, broker.Publish(ctx, NewFavoriteChange(EventUpdate, mine, &renamed, time.Now())))

	require.Eventually(t, func() bool {
		items := list.Items()
		return len(items) == 1 && items[0].Title == "Beef Pho"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-watchErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}

	require.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatchReportsDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := Watch(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"), "", NewFavoriteList(nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
