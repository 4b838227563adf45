package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel carrying favorites changes
const DefaultChannel = "realtime:favorites"

// Compile-time interface check.
var _ Broker = (*RedisBroker)(nil)

// RedisBroker shares changes between server instances over Redis pub/sub
type RedisBroker struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisBroker creates a broker publishing on channel
func NewRedisBroker(client *redis.Client, channel string, log *zap.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Change, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no publish after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					b.log.Warn("dropping malformed change", zap.String("channel", b.channel), zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
