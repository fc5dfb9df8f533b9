package core

import (
	"fmt"
	"time"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/schedule"
	"github.com/voidshard/torque/pkg/work"
)

const (
	defDefaultTimeout = 20
	defMaxTimeout     = 24 * 60 * 60
)

// Options passed to the torque service on creation
type Options struct {
	// DefaultTimeout (seconds) for tasks created without one.
	DefaultTimeout int64

	// MaxTimeout (seconds) a task may ask for. It must leave room for
	// Schedule.MinDelay within Schedule.MaxDelay, since a delivery's lease
	// is clamped to MaxDelay.
	MaxTimeout int64

	// RequireAPIKey rejects task creation without a valid API key.
	RequireAPIKey bool

	// Consumers is the number of queue consumers to run (0 for none).
	Consumers int

	// Poll runs the requeue poller.
	Poll bool

	// Clean runs the cleaner.
	Clean bool

	// Schedule decides retry due dates & when tasks fail.
	Schedule schedule.Options

	// Work configures consumers, poller & cleaner.
	Work work.Options

	// Client sends web hook deliveries (defaults to an *http.Client).
	Client work.Doer
}

func (o *Options) SetDefaults() {
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = defDefaultTimeout
	}
	if o.Consumers < 0 {
		o.Consumers = 0
	}
	o.Schedule.SetDefaults()
	o.Work.SetDefaults()
	if o.MaxTimeout <= 0 {
		o.MaxTimeout = int64((o.Schedule.MaxDelay - o.Schedule.MinDelay) / time.Second)
		if o.MaxTimeout > defMaxTimeout {
			o.MaxTimeout = defMaxTimeout
		}
	}
}

func (o *Options) Validate() error {
	if o.DefaultTimeout > o.MaxTimeout {
		return fmt.Errorf("%w default timeout %d exceeds max timeout %d", errors.ErrInvalidArg, o.DefaultTimeout, o.MaxTimeout)
	}
	if time.Duration(o.MaxTimeout)*time.Second+o.Schedule.MinDelay > o.Schedule.MaxDelay {
		return fmt.Errorf(
			"%w max timeout %ds plus min delay %s exceeds max delay %s",
			errors.ErrInvalidArg, o.MaxTimeout, o.Schedule.MinDelay, o.Schedule.MaxDelay,
		)
	}
	return o.Schedule.Validate()
}
