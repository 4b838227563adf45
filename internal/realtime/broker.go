package realtime

import (
	"context"
	"sync"
)

// Broker fans change events out to subscribers
type Broker interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe returns a channel of changes that is closed once ctx is done
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Compile-time interface check.
var _ Broker = (*MemoryBroker)(nil)

// MemoryBroker is an in-process broker for single instance deployments.
// A subscriber whose buffer is full misses the event.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[chan Change]struct{}
	buffer int
}

// NewMemoryBroker creates a broker giving each subscriber buffer slots
func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer < 1 {
		buffer = 1
	}
	return &MemoryBroker{
		subs:   make(map[chan Change]struct{}),
		buffer: buffer,
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, change Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, b.buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// Subscribers returns the number of live subscriptions
func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
