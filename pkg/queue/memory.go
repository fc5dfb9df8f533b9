package queue

import (
	"context"
	"sync"
	"time"

	"github.com/voidshard/torque/pkg/errors"
)

// MemoryQueue is an in process Queue.
type MemoryQueue struct {
	lock     sync.Mutex
	channels map[string][]string
	notify   chan struct{}
	closed   bool
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		channels: map[string][]string{},
		notify:   make(chan struct{}),
	}
}

// Push appends the payload & wakes any waiting Pop calls
func (q *MemoryQueue) Push(ctx context.Context, channel, payload string) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return errors.ErrQueueClosed
	}
	q.channels[channel] = append(q.channels[channel], payload)
	close(q.notify)
	q.notify = make(chan struct{})
	return nil
}

// Pop returns the oldest payload of the first non empty channel, in the
// order the channels are given.
func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration, channels ...string) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.lock.Lock()
		if q.closed {
			q.lock.Unlock()
			return nil, errors.ErrQueueClosed
		}
		for _, c := range channels {
			pending := q.channels[c]
			if len(pending) == 0 {
				continue
			}
			q.channels[c] = pending[1:]
			q.lock.Unlock()
			return &Message{Channel: c, Payload: pending[0]}, nil
		}
		wait := q.notify
		q.lock.Unlock()

		select {
		case <-wait:
		case <-timer.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of payloads waiting on a channel
func (q *MemoryQueue) Len(channel string) int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.channels[channel])
}

// Close wakes all waiting Pop calls, which then return ErrQueueClosed
func (q *MemoryQueue) Close() error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.notify)
	return nil
}
