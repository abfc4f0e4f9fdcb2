package publisher

import "context"

// Publisher represents a service for publishing dispatch outcome events so
// downstream consumers (analytics, moderation) can follow what was sent.
type Publisher interface {
	// Publish publishes one event
	Publish(ctx context.Context, message []byte) error

	// Close closes the publisher connection
	Close() error
}

// NoopPublisher discards events. Used when no redis address is configured.
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, message []byte) error {
	return nil
}

// Close is a no-op
func (NoopPublisher) Close() error {
	return nil
}
