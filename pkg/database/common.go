package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/structs"
)

// SQL shared by both backends, written with '?' placeholders. Postgres
// rebinds these to $n before use.
const (
	tableTasks        = "tasks"
	tableApplications = "applications"
	tableAPIKeys      = "api_keys"

	taskColumns = `id, application_id, url, charset, enctype, headers, body, timeout, retry_count, due, status, created, modified, version`
	appColumns  = `id, name, is_active, is_deleted, created, modified, deactivated, deleted`
	keyColumns  = `id, value, application_id, is_active, is_deleted, created, modified, deactivated, deleted`
)

var (
	sqlInsertTask = fmt.Sprintf(
		`INSERT INTO %s (application_id, url, charset, enctype, headers, body, timeout, retry_count, due, status, created, modified, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, 1) RETURNING id;`,
		tableTasks,
	)
	sqlTask      = fmt.Sprintf(`SELECT %s FROM %s WHERE id=?;`, taskColumns, tableTasks)
	sqlDueTasks  = fmt.Sprintf(`SELECT %s FROM %s WHERE status=? AND due<? ORDER BY due ASC, id ASC LIMIT ? OFFSET ?;`, taskColumns, tableTasks)
	sqlDueAfter  = fmt.Sprintf(
		`SELECT %s FROM %s WHERE status=? AND due<? AND (due>? OR (due=? AND id>?)) ORDER BY due ASC, id ASC LIMIT ?;`,
		taskColumns, tableTasks,
	)
	sqlCleanup   = fmt.Sprintf(`DELETE FROM %s WHERE modified<?;`, tableTasks)
	sqlAcquire   = fmt.Sprintf(
		`UPDATE %s SET retry_count=retry_count+1, due=?, modified=?, version=version+1
		WHERE id=? AND retry_count=? AND status=? RETURNING %s;`,
		tableTasks, taskColumns,
	)
	sqlInsertApp = fmt.Sprintf(
		`INSERT INTO %s (name, is_active, is_deleted, created, modified) VALUES (?, ?, ?, ?, ?) RETURNING id;`,
		tableApplications,
	)
	sqlInsertKey = fmt.Sprintf(
		`INSERT INTO %s (value, application_id, is_active, is_deleted, created, modified) VALUES (?, ?, ?, ?, ?, ?) RETURNING id;`,
		tableAPIKeys,
	)
	sqlApplication      = fmt.Sprintf(`SELECT %s FROM %s WHERE id=?;`, appColumns, tableApplications)
	sqlApplicationByKey = fmt.Sprintf(
		`SELECT a.id, a.name, a.is_active, a.is_deleted, a.created, a.modified, a.deactivated, a.deleted
		FROM %s a JOIN %s k ON k.application_id=a.id
		WHERE k.value=? AND k.is_active=? AND k.is_deleted=? AND a.is_active=? AND a.is_deleted=?;`,
		tableApplications, tableAPIKeys,
	)
	sqlAPIKeys = fmt.Sprintf(
		`SELECT %s FROM %s WHERE application_id=? AND is_active=? AND is_deleted=? ORDER BY id ASC;`,
		keyColumns, tableAPIKeys,
	)
)

// timeNow is replaced in tests
var timeNow = func() time.Time { return time.Now().UTC() }

// scanner is satisfied by pgx.Row(s), sql.Row & sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// rebind swaps '?' placeholders for postgres style $1, $2 ...
func rebind(qstr string) string {
	var b strings.Builder
	b.Grow(len(qstr) + 8)
	n := 0
	for _, r := range qstr {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toUnix stores times as unix seconds
// toDueTasksSql returns the due task query for a page, keyset paged if q has
// a cursor. q must be sanitized.
func toDueTasksSql(now time.Time, q *structs.Query) (string, []interface{}) {
	if q.After == nil {
		return sqlDueTasks, []interface{}{string(structs.PENDING), toUnix(now), q.Limit, q.Offset}
	}
	after := toUnix(q.After.Due)
	return sqlDueAfter, []interface{}{string(structs.PENDING), toUnix(now), after, after, q.After.ID, q.Limit}
}

func toUnix(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(i int64) time.Time {
	return time.Unix(i, 0).UTC()
}

func fromNullUnix(i sql.NullInt64) *time.Time {
	if !i.Valid {
		return nil
	}
	t := fromUnix(i.Int64)
	return &t
}

func nullableInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func encodeHeaders(h map[string]string) (string, error) {
	if h == nil {
		h = map[string]string{}
	}
	data, err := json.Marshal(h)
	return string(data), err
}

func decodeHeaders(s string) (map[string]string, error) {
	h := map[string]string{}
	if s == "" {
		return h, nil
	}
	err := json.Unmarshal([]byte(s), &h)
	return h, err
}

// toTaskSqlArgs returns the args for sqlInsertTask
func toTaskSqlArgs(t *structs.Task) ([]any, error) {
	headers, err := encodeHeaders(t.Headers)
	if err != nil {
		return nil, err
	}
	return []any{
		nullableInt(t.ApplicationID),
		t.URL,
		t.Charset,
		t.Enctype,
		headers,
		t.Body,
		t.Timeout,
		toUnix(t.Due),
		string(t.Status),
		toUnix(t.Created),
		toUnix(t.Modified),
	}, nil
}

// toTaskUpdateSql builds the guarded update for a task state transition.
// Returns an empty string if there is nothing to set.
func toTaskUpdateSql(ref structs.TaskRef, upd structs.TaskUpdate, now time.Time) (string, []any) {
	sets := []string{}
	args := []any{}
	if upd.Status != "" {
		sets = append(sets, "status=?")
		args = append(args, string(upd.Status))
	}
	if upd.Due != nil {
		sets = append(sets, "due=?")
		args = append(args, toUnix(*upd.Due))
	}
	if len(sets) == 0 {
		return "", nil
	}
	sets = append(sets, "modified=?", "version=version+1")
	args = append(args, toUnix(now), ref.ID, ref.RetryCount)
	return fmt.Sprintf(
		`UPDATE %s SET %s WHERE id=? AND retry_count=?;`,
		tableTasks, strings.Join(sets, ", "),
	), args
}

// toStateSql builds an update of application / key lifecycle flags.
func toStateSql(table, where string, active, deleted bool, now time.Time) (string, []any) {
	sets := []string{"is_active=?", "is_deleted=?", "modified=?"}
	args := []any{active, deleted, toUnix(now)}
	if active {
		sets = append(sets, "deactivated=NULL")
	} else {
		sets = append(sets, "deactivated=COALESCE(deactivated, ?)")
		args = append(args, toUnix(now))
	}
	if deleted {
		sets = append(sets, "deleted=COALESCE(deleted, ?)")
		args = append(args, toUnix(now))
	} else {
		sets = append(sets, "deleted=NULL")
	}
	return fmt.Sprintf(`UPDATE %s SET %s WHERE %s=?;`, table, strings.Join(sets, ", "), where), args
}

func scanTask(row scanner) (*structs.Task, error) {
	t := &structs.Task{}
	var (
		appID                  sql.NullInt64
		headers, status        string
		due, created, modified int64
	)
	err := row.Scan(
		&t.ID,
		&appID,
		&t.URL,
		&t.Charset,
		&t.Enctype,
		&headers,
		&t.Body,
		&t.Timeout,
		&t.RetryCount,
		&due,
		&status,
		&created,
		&modified,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	if appID.Valid {
		id := appID.Int64
		t.ApplicationID = &id
	}
	t.Headers, err = decodeHeaders(headers)
	if err != nil {
		return nil, fmt.Errorf("task %d headers: %w", t.ID, err)
	}
	t.Status = structs.ToStatus(status)
	if t.Status == "" {
		return nil, fmt.Errorf("%w task %d has unknown status %q", errors.ErrInvalidState, t.ID, status)
	}
	t.Due = fromUnix(due)
	t.Created = fromUnix(created)
	t.Modified = fromUnix(modified)
	return t, nil
}

func scanApplication(row scanner) (*structs.Application, error) {
	a := &structs.Application{}
	var (
		created, modified    int64
		deactivated, deleted sql.NullInt64
	)
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.IsActive,
		&a.IsDeleted,
		&created,
		&modified,
		&deactivated,
		&deleted,
	)
	if err != nil {
		return nil, err
	}
	a.Created = fromUnix(created)
	a.Modified = fromUnix(modified)
	a.Deactivated = fromNullUnix(deactivated)
	a.Deleted = fromNullUnix(deleted)
	return a, nil
}

func scanAPIKey(row scanner) (*structs.APIKey, error) {
	k := &structs.APIKey{}
	var (
		created, modified    int64
		deactivated, deleted sql.NullInt64
	)
	err := row.Scan(
		&k.ID,
		&k.Value,
		&k.ApplicationID,
		&k.IsActive,
		&k.IsDeleted,
		&created,
		&modified,
		&deactivated,
		&deleted,
	)
	if err != nil {
		return nil, err
	}
	k.Created = fromUnix(created)
	k.Modified = fromUnix(modified)
	k.Deactivated = fromNullUnix(deactivated)
	k.Deleted = fromNullUnix(deleted)
	return k, nil
}

// prepareTask fills in the fields the database is responsible for on insert.
func prepareTask(t *structs.Task, now time.Time) {
	t.RetryCount = 0
	t.Status = structs.PENDING
	t.Created = now
	t.Modified = now
	t.Version = 1
	if t.Due.IsZero() {
		t.Due = now
	}
	if t.Headers == nil {
		t.Headers = map[string]string{}
	}
}

func prepareApplication(a *structs.Application, k *structs.APIKey, now time.Time) {
	a.IsActive = true
	a.IsDeleted = false
	a.Created = now
	a.Modified = now
	if k != nil {
		prepareKey(k, now)
	}
}

func prepareKey(k *structs.APIKey, now time.Time) {
	k.IsActive = true
	k.IsDeleted = false
	k.Created = now
	k.Modified = now
}
