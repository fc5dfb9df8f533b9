// Package work holds the task lifecycle state machine and the background
// routines that drive it: delivery, requeueing and cleanup.
package work

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/schedule"
	"github.com/voidshard/torque/pkg/structs"
)

// Manager moves tasks between states. Every transition is guarded on the
// retry count the task was acquired with.
type Manager struct {
	db    database.Database
	sched *schedule.Options
}

func NewManager(db database.Database, sched *schedule.Options) *Manager {
	if sched == nil {
		sched = &schedule.Options{}
	}
	sched.SetDefaults()
	return &Manager{db: db, sched: sched}
}

// Acquire claims a task at the given retry count for a single delivery
// attempt, bumping its retry count and pushing its due date out so the
// poller leaves it alone while we work.
//
// Returns nil (and no error) if the task is missing, not pending, or someone
// else got there first.
func (m *Manager) Acquire(ctx context.Context, taskID, retryCount int64) (*Acquired, error) {
	t, err := m.db.Task(ctx, taskID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if t.RetryCount != retryCount || structs.IsFinalStatus(t.Status) {
		return nil, nil
	}

	due := m.sched.DueDate(t.Timeout, retryCount+1)
	t, err = m.db.AcquireTask(ctx, taskID, retryCount, due)
	if err != nil || t == nil {
		return nil, err
	}
	return newAcquired(m, t), nil
}

// Acquired is a snapshot of a task taken when it was acquired.
type Acquired struct {
	mgr  *Manager
	task structs.Task
}

func newAcquired(m *Manager, t *structs.Task) *Acquired {
	cp := *t
	cp.Headers = make(map[string]string, len(t.Headers))
	for k, v := range t.Headers {
		cp.Headers[k] = v
	}
	if t.ApplicationID != nil {
		id := *t.ApplicationID
		cp.ApplicationID = &id
	}
	return &Acquired{mgr: m, task: cp}
}

func (a *Acquired) ID() int64 { return a.task.ID }

// RetryCount is the post acquire retry count, which guards our transitions.
func (a *Acquired) RetryCount() int64 { return a.task.RetryCount }

func (a *Acquired) URL() string { return a.task.URL }

func (a *Acquired) Charset() string { return a.task.Charset }

func (a *Acquired) Enctype() string { return a.task.Enctype }

func (a *Acquired) Body() string { return a.task.Body }

func (a *Acquired) Timeout() int64 { return a.task.Timeout }

// Headers returns a copy of the task headers.
func (a *Acquired) Headers() map[string]string {
	h := make(map[string]string, len(a.task.Headers))
	for k, v := range a.task.Headers {
		h[k] = v
	}
	return h
}

// Task returns a copy of the snapshot.
func (a *Acquired) Task() *structs.Task {
	cp := a.task
	cp.Headers = a.Headers()
	return &cp
}

// Reschedule sets the task due again according to its retry count, or FAILED
// if it has run out of retries. The timeout is not added to the new due date
// since the attempt that needed it is over.
func (a *Acquired) Reschedule(ctx context.Context) (structs.Status, error) {
	due := a.mgr.sched.DueDate(0, a.task.RetryCount)
	status := a.mgr.sched.Status(a.task.RetryCount)
	return status, a.update(ctx, structs.TaskUpdate{Status: status, Due: &due})
}

// Complete marks the task COMPLETED
func (a *Acquired) Complete(ctx context.Context) (structs.Status, error) {
	return structs.COMPLETED, a.update(ctx, structs.TaskUpdate{Status: structs.COMPLETED})
}

// Fail marks the task FAILED
func (a *Acquired) Fail(ctx context.Context) (structs.Status, error) {
	return structs.FAILED, a.update(ctx, structs.TaskUpdate{Status: structs.FAILED})
}

func (a *Acquired) update(ctx context.Context, upd structs.TaskUpdate) error {
	n, err := a.mgr.db.UpdateTask(ctx, structs.TaskRef{ID: a.task.ID, RetryCount: a.task.RetryCount}, upd)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w task %d expected retry count %d", errors.ErrRetryMismatch, a.task.ID, a.task.RetryCount)
	}
	return nil
}

// dueBy is when this attempt should give up, according to the task timeout.
func (a *Acquired) dueBy(start time.Time, fallback time.Duration) time.Time {
	if a.task.Timeout <= 0 {
		return start.Add(fallback)
	}
	return start.Add(time.Duration(a.task.Timeout) * time.Second)
}
