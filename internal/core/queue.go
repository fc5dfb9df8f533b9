package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/structs"
)

// enqueue pushes the instruction for a task's next attempt. Failures are
// logged only; the poller pushes the task again once it's due.
func (c *Service) enqueue(ctx context.Context, t *structs.Task) {
	in := structs.InstructionFor(t)
	channel := c.opts.Work.Channel()
	err := c.qu.Push(ctx, channel, in.String())
	if err != nil {
		log.Warn().Err(err).Int64("task_id", t.ID).Int64("retry_count", t.RetryCount).Str("channel", channel).Msg("failed to enqueue task")
		return
	}
	log.Debug().Int64("task_id", t.ID).Str("channel", channel).Msg("enqueued task")
}
