package work

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/structs"
)

// Poller pushes instructions for due tasks, recovering anything the queue
// lost or never received.
type Poller struct {
	db   database.Database
	qu   queue.Queue
	opts *Options
}

func NewPoller(db database.Database, qu queue.Queue, opts *Options) *Poller {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	return &Poller{db: db, qu: qu, opts: opts}
}

// Run polls every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	log.Info().Dur("interval", p.opts.PollInterval).Str("channel", p.opts.Channel()).Msg("starting poller")
	defer log.Info().Msg("poller stopped")

	for {
		start := time.Now()
		_, err := p.Poll(ctx)
		wait := p.opts.PollInterval
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("failed to poll for due tasks")
		} else {
			wait -= time.Since(start)
		}
		if wait > 0 && !sleep(ctx, wait) {
			return
		} else if ctx.Err() != nil {
			return
		}
	}
}

// Poll makes a single pass, pushing an instruction for every task due now.
// Returns the number of instructions pushed.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	now := timeNow().UTC()
	q := &structs.Query{Limit: p.opts.PollPageSize}
	pushed := 0

	for {
		tasks, err := p.db.DueTasks(ctx, now, q)
		if err != nil {
			return pushed, err
		}

		for _, t := range tasks {
			in := structs.InstructionFor(t)
			err = p.qu.Push(ctx, p.opts.Channel(), in.String())
			if err != nil {
				log.Warn().Err(err).Int64("task_id", t.ID).Int64("retry_count", t.RetryCount).Msg("failed to push due task")
			} else {
				pushed++
			}
			if !sleep(ctx, p.opts.PushDelay) {
				return pushed, ctx.Err()
			}
		}

		if len(tasks) < q.Limit {
			break
		}
		// rows leave the result set as they're acquired, so page by key
		q.After = structs.CursorFor(tasks[len(tasks)-1])
	}

	if pushed > 0 {
		log.Debug().Int("pushed", pushed).Msg("pushed due tasks")
	}
	return pushed, nil
}
