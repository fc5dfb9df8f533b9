package queue

import (
	"context"
	"time"
)

// Message is a payload popped from a named channel.
type Message struct {
	Channel string
	Payload string
}

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/queue_mock/queue.go -package=queue_mock

// Queue is a set of named FIFO channels carrying delivery instructions.
//
// Queues are hints, not sources of truth; a message may be lost or delivered
// more than once and consumers must cope with both.
type Queue interface {
	// Push appends a payload to the given channel.
	Push(ctx context.Context, channel, payload string) error

	// Pop blocks until a payload is available on any of the given channels,
	// the timeout passes or the context is cancelled.
	//
	// Returns nil (and no error) on timeout.
	Pop(ctx context.Context, timeout time.Duration, channels ...string) (*Message, error)

	// Close & shutdown the queue.
	Close() error
}
