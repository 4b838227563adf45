package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"recipe_app_echo/internal/models"
	"recipe_app_echo/internal/realtime"
)

var watchOpts struct {
	server string
	token  string
}

// watchCmd prints a user's favorites and keeps the list current from the realtime stream
var watchCmd = &cobra.Command{
	Use:   "watch-favorites",
	Short: "Follow a user's favorites as they change",
	RunE:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchOpts.server, "server", "http://localhost:8080", "Base URL of the recipe server")
	f.StringVar(&watchOpts.token, "token", "", "Firebase ID token of the user (required)")
	_ = watchCmd.MarkFlagRequired("token")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watchFavorites(ctx, http.DefaultClient, watchOpts.server, watchOpts.token, cmd.OutOrStdout())
}

// watchFavorites subscribes to the stream before loading the list, so a
// change committed between the two is still applied
func watchFavorites(ctx context.Context, client *http.Client, server, token string, out io.Writer) error {
	wsURL, err := streamURL(server)
	if err != nil {
		return err
	}

	stream, err := realtime.Dial(ctx, wsURL, token)
	if err != nil {
		return err
	}
	defer stream.Close()

	initial, err := fetchFavorites(ctx, client, server, token)
	if err != nil {
		return err
	}

	list := realtime.NewFavoriteList(initial)
	printFavorites(out, list.Items())

	return stream.Run(ctx, list, func(c realtime.Change, changed bool) {
		if !changed {
			return
		}
		fmt.Fprintf(out, "\n[%s] %s\n", c.CommitTimestamp.Local().Format(time.Kitchen), c.EventType)
		printFavorites(out, list.Items())
	})
}

// streamURL turns the server base URL into the favorites websocket URL
func streamURL(server string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("server URL must be http or https, got %q", server)
	}
	u.Path += "/api/favorites/stream"
	return u.String(), nil
}

func fetchFavorites(ctx context.Context, client *http.Client, server, token string) ([]models.Favorite, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(server, "/")+"/api/favorites", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch favorites: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch favorites: %s", resp.Status)
	}

	var body struct {
		Favorites []models.Favorite `json:"favorites"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return body.Favorites, nil
}

func printFavorites(w io.Writer, favorites []models.Favorite) {
	if len(favorites) == 0 {
		fmt.Fprintln(w, "No favorites yet")
		return
	}
	for _, f := range favorites {
		fmt.Fprintf(w, "%4d  %s\n", f.RecipeID, f.Title)
	}
}
