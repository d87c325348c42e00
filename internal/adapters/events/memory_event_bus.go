package events

import (
	"context"
	"sync"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// MemoryEventBus is an in-process EventBus for single-instance deployments
// without Redis, and for tests.
type MemoryEventBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan *entities.ContentEvent]struct{}
	closed      bool
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{subscribers: make(map[string]map[chan *entities.ContentEvent]struct{})}
}

// Publish delivers event to current subscribers of channel without blocking
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.ContentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events that is closed when ctx ends
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ContentEvent, error) {
	ch := make(chan *entities.ContentEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.ContentEvent]struct{})
	}
	b.subscribers[channel][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(channel, ch)
	}()
	return ch, nil
}

func (b *MemoryEventBus) remove(channel string, ch chan *entities.ContentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[channel][ch]; !ok {
		return
	}
	delete(b.subscribers[channel], ch)
	close(ch)
}

// Unsubscribe closes every subscriber of channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close closes every subscription
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	b.closed = true
	return nil
}
