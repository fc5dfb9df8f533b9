// Package schedule decides when a task is next attempted and whether it has
// run out of retries.
package schedule

import (
	"fmt"
	"time"

	"github.com/voidshard/torque/pkg/backoff"
	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/structs"
)

const (
	Linear      = "linear"
	Exponential = "exponential"

	defMinDelay   = 2 * time.Second
	defMaxDelay   = 7200 * time.Second
	defFactor     = 2.0
	defMaxRetries = 36
)

// timeNow is replaced in tests
var timeNow = time.Now

// Options configure the due date and status factories.
type Options struct {
	// MinDelay is the backoff starting value.
	MinDelay time.Duration

	// MaxDelay clamps the total delay (backoff + task timeout).
	MaxDelay time.Duration

	// Algorithm is Linear or Exponential (default).
	Algorithm string

	// Factor used by the exponential algorithm.
	Factor float64

	// MaxRetries is the retry count past which a task is FAILED. Nil means
	// the default; zero allows a single attempt.
	MaxRetries *int64
}

// Retries returns a MaxRetries value.
func Retries(n int64) *int64 {
	return &n
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if o.MinDelay <= 0 {
		o.MinDelay = defMinDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = defMaxDelay
	}
	if o.Algorithm == "" {
		o.Algorithm = Exponential
	}
	if o.Factor <= 0 {
		o.Factor = defFactor
	}
	if o.MaxRetries == nil {
		o.MaxRetries = Retries(defMaxRetries)
	}
}

// Validate returns an error if the options cannot be used.
func (o *Options) Validate() error {
	switch o.Algorithm {
	case Linear, Exponential:
	default:
		return fmt.Errorf("%w backoff algorithm %q (expected %s or %s)", errors.ErrInvalidArg, o.Algorithm, Linear, Exponential)
	}
	if o.MaxRetries != nil && *o.MaxRetries < 0 {
		return fmt.Errorf("%w max retries %d is negative", errors.ErrInvalidArg, *o.MaxRetries)
	}
	if o.MinDelay > o.MaxDelay {
		return fmt.Errorf("%w min delay %s exceeds max delay %s", errors.ErrInvalidArg, o.MinDelay, o.MaxDelay)
	}
	return nil
}

// Delay returns how long after now a task with the given timeout (seconds)
// and retry count becomes due.
func (o *Options) Delay(timeout, retryCount int64) time.Duration {
	if timeout < 0 {
		timeout = 0
	}
	b := backoff.New(o.MinDelay.Seconds(), backoff.WithFactor(o.Factor))
	for i := int64(0); i < retryCount; i++ {
		if o.Algorithm == Linear {
			b.Linear()
		} else {
			b.Exponential()
		}
		if b.Value() >= o.MaxDelay.Seconds() {
			// already clamped, no sense in looping further
			break
		}
	}
	delay := backoff.Seconds(b.Value()) + time.Duration(timeout)*time.Second
	if delay > o.MaxDelay {
		delay = o.MaxDelay
	}
	return delay
}

// DueDate returns when a task with the given timeout and retry count is next
// eligible for delivery.
func (o *Options) DueDate(timeout, retryCount int64) time.Time {
	return timeNow().UTC().Add(o.Delay(timeout, retryCount))
}

// Status returns FAILED if the retry count exceeds MaxRetries, else PENDING.
func (o *Options) Status(retryCount int64) structs.Status {
	max := int64(defMaxRetries)
	if o.MaxRetries != nil {
		max = *o.MaxRetries
	}
	if retryCount > max {
		return structs.FAILED
	}
	return structs.PENDING
}
