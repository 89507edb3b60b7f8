// Package messagequeue defines the port for publishing decision events.
package messagequeue

import "context"

// Queue is the port interface for event publication.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the underlying connection.
	Close() error
}

// Nop is a Queue that discards everything. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
func (Nop) Close() error                                  { return nil }
