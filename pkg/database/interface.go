package database

import (
	"context"
	"time"

	"github.com/voidshard/torque/pkg/structs"
)

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/database_mock/database.go -package=database_mock

// Database is the task store. Every task state transition is a single
// conditional update guarded on the task's retry count; the database is the
// only source of mutual exclusion in torque.
type Database interface {
	// CreateTask inserts a PENDING task with retry count 0, filling in the
	// ID, Created, Modified and Version fields of the given struct.
	CreateTask(ctx context.Context, t *structs.Task) error

	// Task returns a task by ID, or errors.ErrNotFound
	Task(ctx context.Context, id int64) (*structs.Task, error)

	// DueTasks returns PENDING tasks whose due date is before now, oldest due first.
	DueTasks(ctx context.Context, now time.Time, q *structs.Query) ([]*structs.Task, error)

	// DeleteTasksBefore removes tasks last modified before cutoff.
	DeleteTasksBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// AcquireTask increments the retry count of a PENDING task, if and only if
	// its retry count is currently retryCount, setting its due date to due.
	//
	// Returns the updated task, or nil if the task was not acquired (missing,
	// not pending or someone else got there first).
	AcquireTask(ctx context.Context, id, retryCount int64, due time.Time) (*structs.Task, error)

	// UpdateTask applies the update if the task's retry count matches the ref.
	// Returns the number of rows altered (0 or 1).
	UpdateTask(ctx context.Context, ref structs.TaskRef, upd structs.TaskUpdate) (int64, error)

	// CreateApplication inserts an application and its first API key in a
	// single transaction.
	CreateApplication(ctx context.Context, app *structs.Application, key *structs.APIKey) error

	// CreateAPIKey adds another key to an existing application.
	CreateAPIKey(ctx context.Context, key *structs.APIKey) error

	// Application returns an application by ID, or errors.ErrNotFound
	Application(ctx context.Context, id int64) (*structs.Application, error)

	// ApplicationByKey returns the active, non deleted application owning the
	// given active, non deleted key, or errors.ErrNotFound
	ApplicationByKey(ctx context.Context, value string) (*structs.Application, error)

	// APIKeys returns the active, non deleted keys of an application.
	APIKeys(ctx context.Context, applicationID int64) ([]*structs.APIKey, error)

	// SetApplicationState sets the lifecycle flags of an application.
	SetApplicationState(ctx context.Context, id int64, active, deleted bool) (int64, error)

	// SetAPIKeyState sets the lifecycle flags of a key.
	SetAPIKeyState(ctx context.Context, value string, active, deleted bool) (int64, error)

	Close() error
}
