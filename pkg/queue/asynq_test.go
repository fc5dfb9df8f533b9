package queue

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func newTestAsynq() *Asynq {
	opts := &Options{URL: "localhost:6379", Backend: BackendAsynq}
	opts.SetDefaults()
	return &Asynq{
		opts: opts,
		work: make(chan *Message),
		mux:  asynq.NewServeMux(), // skip starting a server
	}
}

func TestAsynqQueueNames(t *testing.T) {
	a := newTestAsynq()

	assert.Equal(t, "torque:default", a.queueName("default"))
	assert.Equal(t, "default", a.channelName("torque:default"))
	assert.Equal(t, "other", a.channelName("other"))
}

func TestAsynqHandleHandsOverToPop(t *testing.T) {
	a := newTestAsynq()

	errs := make(chan error, 1)
	go func() {
		errs <- a.handle(context.Background(), asynq.NewTask(asynqTaskType, []byte("12:3")))
	}()

	msg, err := a.Pop(context.Background(), time.Second, "default")
	assert.Nil(t, err)
	assert.NotNil(t, msg)
	assert.Equal(t, "12:3", msg.Payload)
	assert.Nil(t, <-errs)
}

func TestAsynqHandleCancelled(t *testing.T) {
	a := newTestAsynq()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.handle(ctx, asynq.NewTask(asynqTaskType, []byte("1:0")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsynqPopTimeout(t *testing.T) {
	a := newTestAsynq()

	msg, err := a.Pop(context.Background(), 10*time.Millisecond, "default")
	assert.Nil(t, err)
	assert.Nil(t, msg)
}

func TestAsynqConnOpt(t *testing.T) {
	conn, err := asynqConnOpt(&Options{URL: "localhost:6379"})
	assert.Nil(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "localhost:6379"}, conn)

	conn, err = asynqConnOpt(&Options{URL: "redis://localhost:6380/2"})
	assert.Nil(t, err)
	ro, ok := conn.(asynq.RedisClientOpt)
	assert.True(t, ok)
	assert.Equal(t, "localhost:6380", ro.Addr)
	assert.Equal(t, 2, ro.DB)
}
