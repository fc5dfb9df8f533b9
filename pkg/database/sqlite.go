package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/structs"
)

// SQLite is a torque database implementation for single node deployments
// and tests.
//
// Writes are serialised through a single connection.
type SQLite struct {
	opts *Options
	db   *sql.DB
}

// NewSQLite opens (creating if needed) a sqlite database and migrates it.
func NewSQLite(opts *Options) (*SQLite, error) {
	opts.SetDefaults()
	db, err := sql.Open(DriverSQLite, sqliteDSN(opts.expandedURL()))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	err = migrateSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{opts: opts, db: db}, nil
}

// sqliteDSN converts a sqlite:// url into something the driver understands
func sqliteDSN(u string) string {
	dsn := strings.TrimPrefix(u, "sqlite://")
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Close shuts down the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTask inserts a new PENDING task
func (s *SQLite) CreateTask(ctx context.Context, t *structs.Task) error {
	prepareTask(t, timeNow())
	args, err := toTaskSqlArgs(t)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, sqlInsertTask, args...).Scan(&t.ID)
	return sqliteError(err)
}

// Task returns a task by ID
func (s *SQLite) Task(ctx context.Context, id int64) (*structs.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, sqlTask, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w task %d", errors.ErrNotFound, id)
	}
	return t, err
}

// DueTasks returns pending tasks due before now
func (s *SQLite) DueTasks(ctx context.Context, now time.Time, q *structs.Query) ([]*structs.Task, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()

	qry, args := toDueTasksSql(now, q)
	rows, err := s.db.QueryContext(ctx, qry, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*structs.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// DeleteTasksBefore removes tasks last modified before cutoff
func (s *SQLite) DeleteTasksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, sqlCleanup, toUnix(cutoff))
}

// AcquireTask bumps the retry count of a pending task, if no one else has.
func (s *SQLite) AcquireTask(ctx context.Context, id, retryCount int64, due time.Time) (*structs.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(
		ctx,
		sqlAcquire,
		toUnix(due), toUnix(timeNow()), id, retryCount, string(structs.PENDING),
	))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// UpdateTask applies a state transition guarded by retry count
func (s *SQLite) UpdateTask(ctx context.Context, ref structs.TaskRef, upd structs.TaskUpdate) (int64, error) {
	qstr, args := toTaskUpdateSql(ref, upd, timeNow())
	if qstr == "" {
		return 0, nil
	}
	return s.exec(ctx, qstr, args...)
}

// CreateApplication inserts an application & it's first key in a single transaction
func (s *SQLite) CreateApplication(ctx context.Context, app *structs.Application, key *structs.APIKey) error {
	prepareApplication(app, key, timeNow())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(
		ctx,
		sqlInsertApp,
		app.Name, app.IsActive, app.IsDeleted, toUnix(app.Created), toUnix(app.Modified),
	).Scan(&app.ID)
	if err != nil {
		tx.Rollback()
		return sqliteError(err)
	}

	if key != nil {
		key.ApplicationID = app.ID
		err = tx.QueryRowContext(
			ctx,
			sqlInsertKey,
			key.Value, key.ApplicationID, key.IsActive, key.IsDeleted, toUnix(key.Created), toUnix(key.Modified),
		).Scan(&key.ID)
		if err != nil {
			tx.Rollback()
			return sqliteError(err)
		}
	}

	return tx.Commit()
}

// CreateAPIKey adds a key to an existing application
func (s *SQLite) CreateAPIKey(ctx context.Context, key *structs.APIKey) error {
	prepareKey(key, timeNow())
	err := s.db.QueryRowContext(
		ctx,
		sqlInsertKey,
		key.Value, key.ApplicationID, key.IsActive, key.IsDeleted, toUnix(key.Created), toUnix(key.Modified),
	).Scan(&key.ID)
	return sqliteError(err)
}

// Application returns an application by ID
func (s *SQLite) Application(ctx context.Context, id int64) (*structs.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx, sqlApplication, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w application %d", errors.ErrNotFound, id)
	}
	return a, err
}

// ApplicationByKey returns the usable application owning a usable key
func (s *SQLite) ApplicationByKey(ctx context.Context, value string) (*structs.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx, sqlApplicationByKey, value, true, false, true, false))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w application for key", errors.ErrNotFound)
	}
	return a, err
}

// APIKeys returns the usable keys of an application
func (s *SQLite) APIKeys(ctx context.Context, applicationID int64) ([]*structs.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, sqlAPIKeys, applicationID, true, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []*structs.APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SetApplicationState sets the active / deleted flags of an application
func (s *SQLite) SetApplicationState(ctx context.Context, id int64, active, deleted bool) (int64, error) {
	qstr, args := toStateSql(tableApplications, "id", active, deleted, timeNow())
	return s.exec(ctx, qstr, append(args, id)...)
}

// SetAPIKeyState sets the active / deleted flags of a key
func (s *SQLite) SetAPIKeyState(ctx context.Context, value string, active, deleted bool) (int64, error) {
	qstr, args := toStateSql(tableAPIKeys, "value", active, deleted, timeNow())
	return s.exec(ctx, qstr, append(args, value)...)
}

func (s *SQLite) exec(ctx context.Context, qstr string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, qstr, args...)
	if err != nil {
		return 0, sqliteError(err)
	}
	return result.RowsAffected()
}

// sqliteError maps sqlite errors we care about to torque errors
func sqliteError(err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *sqlite.Error
	if stderrors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w %s", errors.ErrDuplicate, sqlErr.Error())
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w %v", errors.ErrDuplicate, err)
	}
	return err
}
