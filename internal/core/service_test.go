package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/voidshard/torque/internal/mocks/pkg/queue_mock"
	"github.com/voidshard/torque/internal/utils"
	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/structs"
	"github.com/voidshard/torque/pkg/work"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewSQLite(&database.Options{URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func newTestService(t *testing.T, qu queue.Queue, opts *Options) (*Service, database.Database) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(db, qu, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc, db
}

func int64p(i int64) *int64 {
	return &i
}

func TestNewServiceInvalidOptions(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	_, err := NewService(db, queue.NewMemoryQueue(), &Options{DefaultTimeout: 100, MaxTimeout: 10})
	assert.ErrorIs(t, err, errors.ErrInvalidArg)
}

func TestCreateTask(t *testing.T) {
	qu := queue.NewMemoryQueue()
	svc, db := newTestService(t, qu, nil)

	before := time.Now().UTC()
	task, err := svc.CreateTask(context.Background(), &structs.CreateTaskRequest{
		URL:         "http://example.com/hook",
		ContentType: "application/json",
		Headers:     map[string]string{"X-Trace": "abc"},
		Body:        []byte(`{"a": 1}`),
	})
	after := time.Now().UTC()

	assert.Nil(t, err)
	assert.NotZero(t, task.ID)
	assert.Nil(t, task.ApplicationID)
	assert.Equal(t, int64(20), task.Timeout)
	assert.Equal(t, "application/json", task.Enctype)
	assert.Equal(t, "utf-8", task.Charset)

	stored, err := db.Task(context.Background(), task.ID)
	assert.Nil(t, err)
	assert.Equal(t, structs.PENDING, stored.Status)
	assert.Equal(t, int64(0), stored.RetryCount)
	assert.Equal(t, `{"a": 1}`, stored.Body)
	assert.Equal(t, map[string]string{"X-Trace": "abc"}, stored.Headers)

	// default min delay (2s) plus the task timeout (20s)
	assert.False(t, stored.Due.Before(before.Add(22*time.Second).Truncate(time.Second)))
	assert.False(t, stored.Due.After(after.Add(23*time.Second)))

	msg, err := qu.Pop(context.Background(), time.Second, work.DefaultChannel)
	assert.Nil(t, err)
	assert.NotNil(t, msg)
	assert.Equal(t, fmt.Sprintf("%d:0", task.ID), msg.Payload)
}

func TestCreateTaskInvalid(t *testing.T) {
	svc, _ := newTestService(t, queue.NewMemoryQueue(), &Options{MaxTimeout: 60})

	cases := []struct {
		Name string
		Req  *structs.CreateTaskRequest
		Err  error
	}{
		{"Nil", nil, errors.ErrInvalidArg},
		{"NoURL", &structs.CreateTaskRequest{}, errors.ErrInvalidURL},
		{"BadScheme", &structs.CreateTaskRequest{URL: "mailto:a@example.com"}, errors.ErrInvalidURL},
		{"NegativeTimeout", &structs.CreateTaskRequest{URL: "http://example.com", Timeout: int64p(-1)}, errors.ErrInvalidTimeout},
		{"TimeoutTooLarge", &structs.CreateTaskRequest{URL: "http://example.com", Timeout: int64p(61)}, errors.ErrInvalidTimeout},
		{"UnknownCharset", &structs.CreateTaskRequest{URL: "http://example.com", ContentType: "text/plain; charset=nope"}, errors.ErrUnknownCharset},
		{"InvalidUTF8", &structs.CreateTaskRequest{URL: "http://example.com", ContentType: "text/plain; charset=utf-8", Body: []byte{'a', 0xff, 'b'}}, errors.ErrInvalidArg},
		{"MalformedKey", &structs.CreateTaskRequest{URL: "http://example.com", APIKey: "nope"}, errors.ErrUnauthorized},
		{"UnknownKey", &structs.CreateTaskRequest{URL: "http://example.com", APIKey: utils.NewAPIKey()}, errors.ErrUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			task, err := svc.CreateTask(context.Background(), c.Req)
			assert.Nil(t, task)
			assert.ErrorIs(t, err, c.Err)
		})
	}
}

func TestCreateTaskRequireAPIKey(t *testing.T) {
	svc, _ := newTestService(t, queue.NewMemoryQueue(), &Options{RequireAPIKey: true})
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com"})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	app, err := svc.CreateApplication(ctx, "billing")
	assert.Nil(t, err)

	task, err := svc.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com", APIKey: app.Key.Value})
	assert.Nil(t, err)
	assert.NotNil(t, task.ApplicationID)
	assert.Equal(t, app.Application.ID, *task.ApplicationID)

	err = svc.SetApplicationState(ctx, app.Application.ID, false, false)
	assert.Nil(t, err)

	_, err = svc.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com", APIKey: app.Key.Value})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestCreateTaskCharsetRoundTrip(t *testing.T) {
	svc, db := newTestService(t, queue.NewMemoryQueue(), nil)
	ctx := context.Background()

	inputs := []string{
		"café",
		"naïve façade",
		"£10 or €12",
		"Ærøskøbing",
		"señor niño",
		"größe",
		"déjà vu",
		"plain ascii",
		"½ ¼ ¾",
		"",
	}

	for _, in := range inputs {
		raw, err := utils.EncodeCharset("windows-1252", in)
		assert.Nil(t, err)

		task, err := svc.CreateTask(ctx, &structs.CreateTaskRequest{
			URL:         "http://example.com",
			ContentType: "text/plain; charset=latin1",
			Body:        raw,
		})
		assert.Nil(t, err)
		assert.Equal(t, "windows-1252", task.Charset)

		stored, err := db.Task(ctx, task.ID)
		assert.Nil(t, err)
		assert.Equal(t, in, stored.Body)

		again, err := utils.EncodeCharset(stored.Charset, stored.Body)
		assert.Nil(t, err)
		assert.Equal(t, raw, again)
	}
}

func TestCreateTaskPushFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	qu := queue_mock.NewMockQueue(ctrl)
	qu.EXPECT().Push(gomock.Any(), work.DefaultChannel, gomock.Any()).Return(errors.ErrQueueClosed)
	qu.EXPECT().Close().Return(nil)

	svc, db := newTestService(t, qu, nil)

	task, err := svc.CreateTask(context.Background(), &structs.CreateTaskRequest{URL: "http://example.com"})
	assert.Nil(t, err)

	stored, err := db.Task(context.Background(), task.ID)
	assert.Nil(t, err)
	assert.Equal(t, structs.PENDING, stored.Status)
}

func TestTaskAccess(t *testing.T) {
	svc, _ := newTestService(t, queue.NewMemoryQueue(), nil)
	ctx := context.Background()

	app, err := svc.CreateApplication(ctx, "billing")
	assert.Nil(t, err)
	other, err := svc.CreateApplication(ctx, "shipping")
	assert.Nil(t, err)

	anon, err := svc.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com", Body: []byte("a=b")})
	assert.Nil(t, err)
	owned, err := svc.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com", Body: []byte("c=d"), APIKey: app.Key.Value})
	assert.Nil(t, err)

	cases := []struct {
		Name string
		ID   int64
		Key  string
		Err  error
		Body string
	}{
		{"AnonymousNoKey", anon.ID, "", nil, "a=b"},
		{"AnonymousAnyKey", anon.ID, other.Key.Value, nil, "a=b"},
		{"OwnedByKey", owned.ID, app.Key.Value, nil, "c=d"},
		{"OwnedNoKey", owned.ID, "", errors.ErrUnauthorized, ""},
		{"OwnedOtherKey", owned.ID, other.Key.Value, errors.ErrForbidden, ""},
		{"Missing", owned.ID + 100, app.Key.Value, errors.ErrNotFound, ""},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			resp, err := svc.Task(ctx, c.ID, c.Key)
			if c.Err != nil {
				assert.ErrorIs(t, err, c.Err)
				assert.Nil(t, resp)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, c.ID, resp.ID)
			assert.Equal(t, structs.PENDING, resp.Status)
			assert.NotNil(t, resp.Body)
			assert.Equal(t, c.Body, *resp.Body)
		})
	}
}

func TestApplicationLifecycle(t *testing.T) {
	svc, db := newTestService(t, queue.NewMemoryQueue(), nil)
	ctx := context.Background()

	_, err := svc.CreateApplication(ctx, "   ")
	assert.ErrorIs(t, err, errors.ErrInvalidArg)

	created, err := svc.CreateApplication(ctx, " billing ")
	assert.Nil(t, err)
	assert.Equal(t, "billing", created.Application.Name)
	assert.True(t, created.Application.IsActive)
	assert.True(t, utils.IsValidAPIKey(created.Key.Value))

	key, err := svc.CreateAPIKey(ctx, created.Application.ID)
	assert.Nil(t, err)
	assert.NotEqual(t, created.Key.Value, key.Value)
	assert.Equal(t, created.Application.ID, key.ApplicationID)

	_, err = svc.CreateAPIKey(ctx, created.Application.ID+100)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = svc.SetAPIKeyState(ctx, key.Value, false, false)
	assert.Nil(t, err)
	_, err = db.ApplicationByKey(ctx, key.Value)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = svc.SetAPIKeyState(ctx, utils.NewAPIKey(), false, false)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = svc.SetApplicationState(ctx, created.Application.ID+100, false, true)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	err = svc.SetApplicationState(ctx, created.Application.ID, false, true)
	assert.Nil(t, err)

	_, err = svc.CreateAPIKey(ctx, created.Application.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestServiceDelivers(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		received <- string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc, db := newTestService(t, queue.NewMemoryQueue(), &Options{
		Consumers: 1,
		Work:      work.Options{PopTimeout: 50 * time.Millisecond},
	})

	task, err := svc.CreateTask(context.Background(), &structs.CreateTaskRequest{URL: srv.URL, Body: []byte("hello=world")})
	assert.Nil(t, err)

	select {
	case body := <-received:
		assert.Equal(t, "hello=world", body)
	case <-time.After(5 * time.Second):
		t.Fatal("delivery not received")
	}

	assert.Eventually(t, func() bool {
		stored, err := db.Task(context.Background(), task.ID)
		return err == nil && stored.Status == structs.COMPLETED
	}, 5*time.Second, 20*time.Millisecond)
}
