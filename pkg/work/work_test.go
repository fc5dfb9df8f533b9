package work

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/structs"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewSQLite(&database.Options{URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestTask(t *testing.T, db database.Database, url string, timeout int64) *structs.Task {
	t.Helper()
	task := &structs.Task{
		TaskSpec: structs.TaskSpec{
			URL:     url,
			Charset: "utf-8",
			Enctype: "application/json",
			Headers: map[string]string{"X-Trace": "abc"},
			Body:    `{"hello": "world"}`,
			Timeout: timeout,
		},
		Due: time.Now().UTC().Add(-time.Second),
	}
	err := db.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func mustTask(t *testing.T, db database.Database, id int64) *structs.Task {
	t.Helper()
	task, err := db.Task(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return task
}
