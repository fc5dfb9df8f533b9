package work

import (
	"time"
)

const (
	DefaultChannel = "default"

	defTimeout       = 20 * time.Second
	defPopTimeout    = time.Second
	defConnectDelay  = time.Millisecond
	defPollInterval  = 10 * time.Second
	defPollPageSize  = 99
	defPushDelay     = time.Millisecond
	defCleanInterval = 7200 * time.Second
	defCleanDays     = 30

	// delivery wait loop
	waitStart  = 0.1
	waitFactor = 1.5
	waitMax    = 2.0
)

// Options configure the background routines.
type Options struct {
	// Channels consumers pop from; the first is where the poller pushes.
	Channels []string

	// DefaultTimeout is used for delivery of tasks with no timeout.
	DefaultTimeout time.Duration

	// PopTimeout bounds each blocking pop.
	PopTimeout time.Duration

	// ConnectDelay is slept after each spawned delivery.
	ConnectDelay time.Duration

	// MaxInFlight caps concurrent deliveries per consumer (0 is unbounded).
	MaxInFlight int

	// PollInterval is how often the poller scans for due tasks.
	PollInterval time.Duration

	// PollPageSize is how many due tasks are read at once.
	PollPageSize int

	// PushDelay is slept between individual pushes by the poller.
	PushDelay time.Duration

	// CleanInterval is how often old tasks are deleted.
	CleanInterval time.Duration

	// CleanSchedule is an optional standard cron expression ("0 3 * * *")
	// used instead of CleanInterval.
	CleanSchedule string

	// CleanDays is how long tasks are kept after their last modification.
	CleanDays int
}

func (o *Options) SetDefaults() {
	if len(o.Channels) == 0 {
		o.Channels = []string{DefaultChannel}
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = defTimeout
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = defPopTimeout
	}
	if o.ConnectDelay <= 0 {
		o.ConnectDelay = defConnectDelay
	}
	if o.MaxInFlight < 0 {
		o.MaxInFlight = 0
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defPollInterval
	}
	if o.PollPageSize <= 0 {
		o.PollPageSize = defPollPageSize
	}
	if o.PushDelay <= 0 {
		o.PushDelay = defPushDelay
	}
	if o.CleanInterval <= 0 {
		o.CleanInterval = defCleanInterval
	}
	if o.CleanDays <= 0 {
		o.CleanDays = defCleanDays
	}
}

// Channel is where new & due instructions are pushed.
func (o *Options) Channel() string {
	if len(o.Channels) == 0 {
		return DefaultChannel
	}
	return o.Channels[0]
}
