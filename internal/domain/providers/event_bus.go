package providers

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to content events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ContentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ContentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelContentUpdates carries every content change
	EventChannelContentUpdates = "content:updates"

	// EventChannelContentPrefix is the prefix for page-specific channels
	EventChannelContentPrefix = "content:"
)

// GetPageChannel returns the channel name for a specific page
func GetPageChannel(page string) string {
	return EventChannelContentPrefix + page
}

// PublishContentEvent sends event on the global updates channel and on the
// page's own channel.
func PublishContentEvent(ctx context.Context, bus EventBus, event *entities.ContentEvent) error {
	if err := bus.Publish(ctx, EventChannelContentUpdates, event); err != nil {
		return err
	}
	if event.Page == "" {
		return nil
	}
	return bus.Publish(ctx, GetPageChannel(event.Page), event)
}
