package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/structs"
)

const pgUniqueViolation = "23505"

// Postgres is a torque database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	cfg, err := pgxpool.ParseConfig(opts.expandedURL())
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// CreateTask inserts a new PENDING task
func (p *Postgres) CreateTask(ctx context.Context, t *structs.Task) error {
	prepareTask(t, timeNow())
	args, err := toTaskSqlArgs(t)
	if err != nil {
		return err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	err = conn.QueryRow(ctx, rebind(sqlInsertTask), args...).Scan(&t.ID)
	return pgError(err)
}

// Task returns a task by ID
func (p *Postgres) Task(ctx context.Context, id int64) (*structs.Task, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	t, err := scanTask(conn.QueryRow(ctx, rebind(sqlTask), id))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w task %d", errors.ErrNotFound, id)
	}
	return t, err
}

// DueTasks returns pending tasks due before now
func (p *Postgres) DueTasks(ctx context.Context, now time.Time, q *structs.Query) ([]*structs.Task, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	qry, args := toDueTasksSql(now, q)
	rows, err := conn.Query(ctx, rebind(qry), args...)
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
func (p *Postgres) DeleteTasksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return p.exec(ctx, sqlCleanup, toUnix(cutoff))
}

// AcquireTask bumps the retry count of a pending task, if no one else has.
func (p *Postgres) AcquireTask(ctx context.Context, id, retryCount int64, due time.Time) (*structs.Task, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	t, err := scanTask(conn.QueryRow(
		ctx,
		rebind(sqlAcquire),
		toUnix(due), toUnix(timeNow()), id, retryCount, string(structs.PENDING),
	))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// UpdateTask applies a state transition guarded by retry count
func (p *Postgres) UpdateTask(ctx context.Context, ref structs.TaskRef, upd structs.TaskUpdate) (int64, error) {
	qstr, args := toTaskUpdateSql(ref, upd, timeNow())
	if qstr == "" {
		return 0, nil
	}
	return p.exec(ctx, qstr, args...)
}

// CreateApplication inserts an application & it's first key in a single transaction
func (p *Postgres) CreateApplication(ctx context.Context, app *structs.Application, key *structs.APIKey) error {
	prepareApplication(app, key, timeNow())

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(
		ctx,
		rebind(sqlInsertApp),
		app.Name, app.IsActive, app.IsDeleted, toUnix(app.Created), toUnix(app.Modified),
	).Scan(&app.ID)
	if err != nil {
		tx.Rollback(ctx)
		return pgError(err)
	}

	if key != nil {
		key.ApplicationID = app.ID
		err = tx.QueryRow(
			ctx,
			rebind(sqlInsertKey),
			key.Value, key.ApplicationID, key.IsActive, key.IsDeleted, toUnix(key.Created), toUnix(key.Modified),
		).Scan(&key.ID)
		if err != nil {
			tx.Rollback(ctx)
			return pgError(err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		tx.Rollback(ctx)
	}
	return err
}

// CreateAPIKey adds a key to an existing application
func (p *Postgres) CreateAPIKey(ctx context.Context, key *structs.APIKey) error {
	prepareKey(key, timeNow())

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	err = conn.QueryRow(
		ctx,
		rebind(sqlInsertKey),
		key.Value, key.ApplicationID, key.IsActive, key.IsDeleted, toUnix(key.Created), toUnix(key.Modified),
	).Scan(&key.ID)
	return pgError(err)
}

// Application returns an application by ID
func (p *Postgres) Application(ctx context.Context, id int64) (*structs.Application, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	a, err := scanApplication(conn.QueryRow(ctx, rebind(sqlApplication), id))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w application %d", errors.ErrNotFound, id)
	}
	return a, err
}

// ApplicationByKey returns the usable application owning a usable key
func (p *Postgres) ApplicationByKey(ctx context.Context, value string) (*structs.Application, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	a, err := scanApplication(conn.QueryRow(ctx, rebind(sqlApplicationByKey), value, true, false, true, false))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w application for key", errors.ErrNotFound)
	}
	return a, err
}

// APIKeys returns the usable keys of an application
func (p *Postgres) APIKeys(ctx context.Context, applicationID int64) ([]*structs.APIKey, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, rebind(sqlAPIKeys), applicationID, true, false)
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
func (p *Postgres) SetApplicationState(ctx context.Context, id int64, active, deleted bool) (int64, error) {
	qstr, args := toStateSql(tableApplications, "id", active, deleted, timeNow())
	return p.exec(ctx, qstr, append(args, id)...)
}

// SetAPIKeyState sets the active / deleted flags of a key
func (p *Postgres) SetAPIKeyState(ctx context.Context, value string, active, deleted bool) (int64, error) {
	qstr, args := toStateSql(tableAPIKeys, "value", active, deleted, timeNow())
	return p.exec(ctx, qstr, append(args, value)...)
}

func (p *Postgres) exec(ctx context.Context, qstr string, args ...any) (int64, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, rebind(qstr), args...)
	if err != nil {
		return 0, pgError(err)
	}
	return info.RowsAffected(), nil
}

// pgError maps postgres errors we care about to torque errors
func pgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w %s", errors.ErrDuplicate, pgErr.Message)
	}
	return err
}
