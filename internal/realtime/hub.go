package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Hub streams favorites changes to websocket clients, one subscription per
// connection, filtered to the connected user's rows
type Hub struct {
	broker       Broker
	upgrader     websocket.Upgrader
	log          *zap.Logger
	pingInterval time.Duration
}

// NewHub creates a hub reading from broker
func NewHub(broker Broker, log *zap.Logger) *Hub {
	return &Hub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile clients do not send a browser Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:          log,
		pingInterval: defaultPingInterval,
	}
}

// SetPingInterval overrides the keepalive interval
func (h *Hub) SetPingInterval(d time.Duration) {
	if d > 0 {
		h.pingInterval = d
	}
}

// ServeWS upgrades the request and streams userUID's changes until the
// client disconnects or the request context ends. Upgrade failures have
// already been answered with an HTTP error when err is returned.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userUID string) error {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before the handshake completes so the client cannot miss
	// changes made right after it connects
	changes, err := h.broker.Subscribe(ctx)
	if err != nil {
		http.Error(w, "realtime unavailable", http.StatusServiceUnavailable)
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.log.Debug("favorites stream opened", zap.String("uid", userUID))
	defer h.log.Debug("favorites stream closed", zap.String("uid", userUID))

	// The reader only exists to notice the client going away and to process
	// control frames
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.UserUID() != userUID {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(change); err != nil {
				h.log.Debug("favorites stream write failed", zap.String("uid", userUID), zap.Error(err))
				return nil
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}
