package work

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/structs"
)

// performer is the part of Performer the consumer needs
type performer interface {
	Perform(ctx context.Context, instruction string) (structs.Status, error)
}

// Consumer pops instructions off the queue and spawns a delivery for each.
type Consumer struct {
	qu   queue.Queue
	perf performer
	opts *Options

	wg  sync.WaitGroup
	sem chan struct{}
}

func NewConsumer(qu queue.Queue, perf performer, opts *Options) *Consumer {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	c := &Consumer{qu: qu, perf: perf, opts: opts}
	if opts.MaxInFlight > 0 {
		c.sem = make(chan struct{}, opts.MaxInFlight)
	}
	return c
}

// Run consumes until ctx is done. Deliveries share ctx, so cancelling it
// also abandons in flight deliveries.
func (c *Consumer) Run(ctx context.Context) {
	l := log.With().Strs("channels", c.opts.Channels).Logger()
	l.Info().Msg("starting consumer")
	defer l.Info().Msg("consumer stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		// take a slot first so we never hold a message we can't start on
		if !c.acquireSlot(ctx) {
			return
		}

		msg, err := c.qu.Pop(ctx, c.opts.PopTimeout, c.opts.Channels...)
		if err != nil {
			c.releaseSlot()
			if ctx.Err() != nil {
				return
			}
			l.Warn().Err(err).Msg("failed to pop from queue")
			if !sleep(ctx, c.opts.PopTimeout) {
				return
			}
			continue
		}
		if msg == nil {
			c.releaseSlot()
			continue
		}

		c.wg.Add(1)
		go func(msg *queue.Message) {
			defer c.wg.Done()
			defer c.releaseSlot()
			_, err := c.perf.Perform(ctx, msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Str("instruction", msg.Payload).Msg("failed to perform task")
			}
		}(msg)

		if !sleep(ctx, c.opts.ConnectDelay) {
			return
		}
	}
}

// Wait blocks until spawned deliveries have finished
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) acquireSlot(ctx context.Context) bool {
	if c.sem == nil {
		return true
	}
	select {
	case c.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Consumer) releaseSlot() {
	if c.sem != nil {
		<-c.sem
	}
}

// sleep returns false if ctx was done before d passed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
