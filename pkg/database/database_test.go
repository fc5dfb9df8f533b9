package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/structs"
)

// newTestDatabases returns a fresh in memory sqlite database, plus postgres if
// TORQUE_TEST_PG_URL is set.
func newTestDatabases(t *testing.T) map[string]Database {
	t.Helper()
	dbs := map[string]Database{}

	lite, err := NewSQLite(&Options{URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { lite.Close() })
	dbs[DriverSQLite] = lite

	pgURL := os.Getenv("TORQUE_TEST_PG_URL")
	if pgURL != "" {
		opts := &Options{URL: pgURL}
		if err := Migrate(opts); err != nil {
			t.Fatal(err)
		}
		pg, err := NewPostgres(opts)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { pg.Close() })
		dbs[DriverPostgres] = pg
	}

	return dbs
}

func newTask(url string) *structs.Task {
	return &structs.Task{
		TaskSpec: structs.TaskSpec{
			URL:     url,
			Charset: "utf-8",
			Enctype: "application/json",
			Headers: map[string]string{"X-Trace": "abc"},
			Body:    `{"hello": "world"}`,
			Timeout: 10,
		},
		Due: time.Now().UTC().Add(-time.Minute),
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			in := newTask("http://example.com/hook")

			err := db.CreateTask(ctx, in)
			assert.Nil(t, err)
			assert.Greater(t, in.ID, int64(0))

			out, err := db.Task(ctx, in.ID)
			assert.Nil(t, err)
			assert.Equal(t, in.ID, out.ID)
			assert.Equal(t, in.URL, out.URL)
			assert.Equal(t, in.Headers, out.Headers)
			assert.Equal(t, in.Body, out.Body)
			assert.Equal(t, int64(10), out.Timeout)
			assert.Equal(t, int64(0), out.RetryCount)
			assert.Equal(t, structs.PENDING, out.Status)
			assert.Equal(t, in.Due.Unix(), out.Due.Unix())
			assert.Nil(t, out.ApplicationID)
			assert.Equal(t, int64(1), out.Version)
		})
	}
}

func TestTaskNotFound(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			out, err := db.Task(ctx, 123456789)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, errors.ErrNotFound)
		})
	}
}

func TestAcquireTask(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			in := newTask("http://example.com/hook")
			assert.Nil(t, db.CreateTask(ctx, in))
			due := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

			got, err := db.AcquireTask(ctx, in.ID, 0, due)
			assert.Nil(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, int64(1), got.RetryCount)
			assert.Equal(t, due, got.Due)
			assert.Equal(t, int64(2), got.Version)

			// stale retry count
			got, err = db.AcquireTask(ctx, in.ID, 0, due)
			assert.Nil(t, err)
			assert.Nil(t, got)

			// missing task
			got, err = db.AcquireTask(ctx, 987654321, 0, due)
			assert.Nil(t, err)
			assert.Nil(t, got)

			// terminal task
			n, err := db.UpdateTask(ctx, structs.TaskRef{ID: in.ID, RetryCount: 1}, structs.TaskUpdate{Status: structs.COMPLETED})
			assert.Nil(t, err)
			assert.Equal(t, int64(1), n)

			got, err = db.AcquireTask(ctx, in.ID, 1, due)
			assert.Nil(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestAcquireTaskAtMostOnce(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			in := newTask("http://example.com/hook")
			assert.Nil(t, db.CreateTask(ctx, in))
			due := time.Now().Add(time.Hour)

			var (
				wg       sync.WaitGroup
				lock     sync.Mutex
				acquired int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					got, err := db.AcquireTask(ctx, in.ID, 0, due)
					assert.Nil(t, err)
					if got != nil {
						lock.Lock()
						acquired++
						lock.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, acquired)
			out, err := db.Task(ctx, in.ID)
			assert.Nil(t, err)
			assert.Equal(t, int64(1), out.RetryCount)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			in := newTask("http://example.com/hook")
			assert.Nil(t, db.CreateTask(ctx, in))
			due := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

			n, err := db.UpdateTask(ctx, structs.TaskRef{ID: in.ID, RetryCount: 5}, structs.TaskUpdate{Status: structs.FAILED})
			assert.Nil(t, err)
			assert.Equal(t, int64(0), n)

			n, err = db.UpdateTask(ctx, structs.TaskRef{ID: in.ID, RetryCount: 0}, structs.TaskUpdate{Status: structs.PENDING, Due: &due})
			assert.Nil(t, err)
			assert.Equal(t, int64(1), n)

			out, err := db.Task(ctx, in.ID)
			assert.Nil(t, err)
			assert.Equal(t, structs.PENDING, out.Status)
			assert.Equal(t, due, out.Due)
			assert.Equal(t, int64(0), out.RetryCount)

			n, err = db.UpdateTask(ctx, structs.TaskRef{ID: in.ID, RetryCount: 0}, structs.TaskUpdate{})
			assert.Nil(t, err)
			assert.Equal(t, int64(0), n)
		})
	}
}

func TestDueTasks(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()

			late := newTask("http://example.com/late")
			late.Due = now.Add(-2 * time.Hour)
			early := newTask("http://example.com/early")
			early.Due = now.Add(-time.Hour)
			future := newTask("http://example.com/future")
			future.Due = now.Add(time.Hour)
			done := newTask("http://example.com/done")
			done.Due = now.Add(-3 * time.Hour)

			for _, task := range []*structs.Task{early, late, future, done} {
				assert.Nil(t, db.CreateTask(ctx, task))
			}
			_, err := db.UpdateTask(ctx, structs.TaskRef{ID: done.ID}, structs.TaskUpdate{Status: structs.COMPLETED})
			assert.Nil(t, err)

			mine := map[int64]bool{late.ID: true, early.ID: true, future.ID: true, done.ID: true}

			found, err := db.DueTasks(ctx, now, &structs.Query{Limit: 1000})
			assert.Nil(t, err)
			ids := []int64{}
			for _, f := range found {
				assert.Equal(t, structs.PENDING, f.Status)
				assert.True(t, f.Due.Before(now))
				if mine[f.ID] {
					ids = append(ids, f.ID)
				}
			}
			assert.Equal(t, []int64{late.ID, early.ID}, ids)

			if name == DriverSQLite {
				found, err = db.DueTasks(ctx, now, &structs.Query{Limit: 1, Offset: 1})
				assert.Nil(t, err)
				assert.Len(t, found, 1)
				assert.Equal(t, early.ID, found[0].ID)
			}

			// keyset paging starts strictly after the cursor row
			found, err = db.DueTasks(ctx, now, &structs.Query{Limit: 1000, After: structs.CursorFor(late)})
			assert.Nil(t, err)
			ids = []int64{}
			for _, f := range found {
				if mine[f.ID] {
					ids = append(ids, f.ID)
				}
			}
			assert.Equal(t, []int64{early.ID}, ids)
		})
	}
}

func TestDeleteTasksBefore(t *testing.T) {
	defer func() { timeNow = func() time.Time { return time.Now().UTC() } }()

	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			old := time.Now().UTC().Add(-48 * time.Hour)
			timeNow = func() time.Time { return old }
			stale := newTask("http://example.com/stale")
			assert.Nil(t, db.CreateTask(ctx, stale))

			timeNow = func() time.Time { return time.Now().UTC() }
			fresh := newTask("http://example.com/fresh")
			assert.Nil(t, db.CreateTask(ctx, fresh))

			n, err := db.DeleteTasksBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
			assert.Nil(t, err)
			assert.GreaterOrEqual(t, n, int64(1))

			_, err = db.Task(ctx, stale.ID)
			assert.ErrorIs(t, err, errors.ErrNotFound)
			_, err = db.Task(ctx, fresh.ID)
			assert.Nil(t, err)
		})
	}
}

func TestApplications(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			value := fmt.Sprintf("%040x", time.Now().UnixNano())
			app := &structs.Application{Name: "billing"}
			key := &structs.APIKey{Value: value}

			assert.Nil(t, db.CreateApplication(ctx, app, key))
			assert.Greater(t, app.ID, int64(0))
			assert.Equal(t, app.ID, key.ApplicationID)
			assert.True(t, app.Usable())

			found, err := db.Application(ctx, app.ID)
			assert.Nil(t, err)
			assert.Equal(t, "billing", found.Name)
			assert.True(t, found.IsActive)
			assert.Nil(t, found.Deactivated)

			owner, err := db.ApplicationByKey(ctx, value)
			assert.Nil(t, err)
			assert.Equal(t, app.ID, owner.ID)

			// key values are unique
			err = db.CreateAPIKey(ctx, &structs.APIKey{Value: value, ApplicationID: app.ID})
			assert.ErrorIs(t, err, errors.ErrDuplicate)

			second := &structs.APIKey{Value: fmt.Sprintf("%040x", time.Now().UnixNano()+1), ApplicationID: app.ID}
			assert.Nil(t, db.CreateAPIKey(ctx, second))

			keys, err := db.APIKeys(ctx, app.ID)
			assert.Nil(t, err)
			assert.Len(t, keys, 2)

			n, err := db.SetAPIKeyState(ctx, second.Value, false, false)
			assert.Nil(t, err)
			assert.Equal(t, int64(1), n)
			keys, err = db.APIKeys(ctx, app.ID)
			assert.Nil(t, err)
			assert.Len(t, keys, 1)

			n, err = db.SetApplicationState(ctx, app.ID, false, false)
			assert.Nil(t, err)
			assert.Equal(t, int64(1), n)

			_, err = db.ApplicationByKey(ctx, value)
			assert.ErrorIs(t, err, errors.ErrNotFound)

			found, err = db.Application(ctx, app.ID)
			assert.Nil(t, err)
			assert.False(t, found.IsActive)
			assert.NotNil(t, found.Deactivated)
		})
	}
}

func TestApplicationNotFound(t *testing.T) {
	ctx := context.Background()
	for name, db := range newTestDatabases(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Application(ctx, 99999999)
			assert.ErrorIs(t, err, errors.ErrNotFound)

			_, err = db.ApplicationByKey(ctx, "nope")
			assert.ErrorIs(t, err, errors.ErrNotFound)
		})
	}
}
