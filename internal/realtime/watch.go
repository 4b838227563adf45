package realtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// Stream is an open connection to the favorites stream. Changes published
// after Dial returns are buffered until Run reads them.
type Stream struct {
	conn *websocket.Conn
}

// Dial opens the favorites stream at url, authenticating with token when set
func Dial(ctx context.Context, url, token string) (*Stream, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Stream{conn: conn}, nil
}

// Run applies every received change to list, calling onChange (when set)
// with the change and whether it modified the list.
// It returns nil when ctx is cancelled and an error when the stream breaks.
func (s *Stream) Run(ctx context.Context, list *FavoriteList, onChange func(Change, bool)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		var change Change
		if err := s.conn.ReadJSON(&change); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read favorites stream: %w", err)
		}
		changed := list.Apply(change)
		if onChange != nil {
			onChange(change, changed)
		}
	}
}

func (s *Stream) Close() error {
	return s.conn.Close()
}

// Watch dials the stream and runs it against list until ctx ends
func Watch(ctx context.Context, url, token string, list *FavoriteList, onChange func(Change, bool)) error {
	stream, err := Dial(ctx, url, token)
	if err != nil {
		return err
	}
	defer stream.Close()
	return stream.Run(ctx, list, onChange)
}
