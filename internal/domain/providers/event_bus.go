package providers

import (
	"context"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// EventBus publishes intake progress events to interested consumers.
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel.
	Publish(ctx context.Context, channel string, event *entities.IntakeEvent) error

	// Subscribe subscribes to events on a channel.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.IntakeEvent, error)

	// Unsubscribe drops all local subscribers of a channel.
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions.
	Close() error
}

const (
	// EventChannelCaseReady carries every case-ready event.
	EventChannelCaseReady = "intake:ready"

	// EventChannelSessionPrefix is the prefix for per-session channels.
	EventChannelSessionPrefix = "intake:session:"
)

// GetSessionChannel returns the channel name for a specific intake session.
func GetSessionChannel(sessionID string) string {
	return EventChannelSessionPrefix + sessionID
}
