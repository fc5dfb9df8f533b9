package work

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/database"
)

// timeNow is replaced in tests
var timeNow = time.Now

// Cleaner deletes tasks that have not been modified in a while.
type Cleaner struct {
	db   database.Database
	opts *Options
}

func NewCleaner(db database.Database, opts *Options) *Cleaner {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	return &Cleaner{db: db, opts: opts}
}

// Schedule returns when passes are run.
func (c *Cleaner) Schedule() (cron.Schedule, error) {
	if c.opts.CleanSchedule != "" {
		return cron.ParseStandard(c.opts.CleanSchedule)
	}
	return cron.Every(c.opts.CleanInterval), nil
}

// Cutoff is the modification time before which tasks are deleted
func (c *Cleaner) Cutoff() time.Time {
	return timeNow().UTC().Add(-time.Duration(c.opts.CleanDays) * 24 * time.Hour)
}

// Run cleans on schedule until ctx is done.
func (c *Cleaner) Run(ctx context.Context) error {
	sched, err := c.Schedule()
	if err != nil {
		return err
	}

	cr := cron.New()
	cr.Schedule(sched, cron.FuncJob(func() {
		c.Clean(ctx)
	}))

	log.Info().Int("days", c.opts.CleanDays).Time("next", sched.Next(time.Now())).Msg("starting cleaner")
	cr.Start()

	<-ctx.Done()
	<-cr.Stop().Done()
	log.Info().Msg("cleaner stopped")
	return nil
}

// Clean makes a single pass, returning the number of tasks deleted.
func (c *Cleaner) Clean(ctx context.Context) int64 {
	cutoff := c.Cutoff()
	n, err := c.db.DeleteTasksBefore(ctx, cutoff)
	if err != nil {
		log.Warn().Err(err).Time("cutoff", cutoff).Msg("failed to clean tasks")
		return 0
	}
	log.Debug().Int64("deleted", n).Time("cutoff", cutoff).Msg("cleaned tasks")
	return n
}
