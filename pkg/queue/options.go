package queue

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/voidshard/torque/pkg/errors"
)

const (
	// BackendList uses plain redis lists (RPUSH / BLPOP).
	BackendList = "list"

	// BackendAsynq hands messages to asynq queues on redis.
	BackendAsynq = "asynq"

	// BackendMemory is an in process queue, useful for tests & single
	// process deployments.
	BackendMemory = "memory"

	defaultPrefix      = "torque:"
	defaultConcurrency = 10
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue.
	// ie. redis://localhost:6379/0 or memory://
	URL string

	// Backend is one of BackendList (default), BackendAsynq or BackendMemory.
	// A memory:// URL implies BackendMemory.
	Backend string

	// Prefix is prepended to channel names to form redis keys / asynq queues.
	Prefix string

	// Concurrency is how many messages the asynq server may hold at once.
	Concurrency int

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config
}

func (o *Options) SetDefaults() {
	if strings.HasPrefix(o.URL, "memory:") {
		o.Backend = BackendMemory
	}
	if o.Backend == "" {
		o.Backend = BackendList
	}
	if o.Prefix == "" {
		o.Prefix = defaultPrefix
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
}

// New returns the queue implementation the options describe.
func New(opts *Options) (Queue, error) {
	opts.SetDefaults()
	switch opts.Backend {
	case BackendList:
		return NewRedisQueue(opts)
	case BackendAsynq:
		return NewAsynqQueue(opts)
	case BackendMemory:
		return NewMemoryQueue(), nil
	}
	return nil, fmt.Errorf("%w queue backend %q", errors.ErrNotSupported, opts.Backend)
}
