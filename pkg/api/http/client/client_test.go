package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voidshard/torque/pkg/api"
	"github.com/voidshard/torque/pkg/api/http/server"
	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/structs"
)

func newTestServer(t *testing.T, opts *api.Options) (*httptest.Server, api.API) {
	t.Helper()
	svc, err := api.New(
		&database.Options{URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())},
		&queue.Options{URL: "memory://"},
		opts,
	)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.NewServer("", false, nil).Handler(svc))
	t.Cleanup(func() {
		srv.Close()
		svc.Close()
	})
	return srv, svc
}

func TestClientRoundTrip(t *testing.T) {
	srv, svc := newTestServer(t, nil)
	ctx := context.Background()

	app, err := svc.CreateApplication(ctx, "billing")
	assert.Nil(t, err)

	c, err := New(srv.URL, app.Key.Value)
	assert.Nil(t, err)
	assert.Nil(t, c.Health(ctx))

	timeout := int64(7)
	created, err := c.CreateTask(ctx, &structs.CreateTaskRequest{
		URL:         "https://example.com/hook",
		Timeout:     &timeout,
		ContentType: "application/json",
		Headers:     map[string]string{"X-Trace": "abc"},
		Body:        []byte(`{"a": 1}`),
	})
	assert.Nil(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(7), created.Timeout)

	got, err := c.Task(ctx, created.ID)
	assert.Nil(t, err)
	assert.Equal(t, "application/json", got.Enctype)
	assert.Equal(t, map[string]string{"X-Trace": "abc"}, got.Headers)
	assert.NotNil(t, got.Body)
	assert.Equal(t, `{"a": 1}`, *got.Body)

	anon, err := New(srv.URL, "")
	assert.Nil(t, err)
	_, err = anon.Task(ctx, created.ID)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	_, err = c.Task(ctx, created.ID+100)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestClientErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	c, err := New(srv.URL, "")
	assert.Nil(t, err)

	_, err = c.CreateTask(ctx, &structs.CreateTaskRequest{URL: "ftp://example.com"})
	assert.ErrorIs(t, err, errors.ErrInvalidArg)

	_, err = c.CreateTask(ctx, &structs.CreateTaskRequest{URL: "http://example.com", APIKey: "not-a-key"})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, statusError(http.StatusForbidden, []byte("no\n")), errors.ErrForbidden)
	assert.ErrorIs(t, statusError(http.StatusConflict, nil), errors.ErrDuplicate)

	err := statusError(http.StatusBadGateway, []byte("upstream"))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "502")
}
