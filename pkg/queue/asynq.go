package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	asynqTaskType = "torque:instruction"
	asynqMaxRetry = 10
)

// Asynq implements Queue on top of asynq, with one asynq queue per channel.
//
// The asynq server is started by the first call to Pop, serving the channels
// given to that call.
type Asynq struct {
	opts *Options
	conn asynq.RedisConnOpt
	cli  *asynq.Client

	// messages handed from the asynq server to Pop
	work chan *Message

	// if Pop is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server
}

func NewAsynqQueue(opts *Options) (*Asynq, error) {
	opts.SetDefaults()
	conn, err := asynqConnOpt(opts)
	if err != nil {
		return nil, err
	}
	return &Asynq{
		opts: opts,
		conn: conn,
		cli:  asynq.NewClient(conn),
		work: make(chan *Message),
	}, nil
}

// asynqConnOpt accepts either a redis:// URI or a bare host:port
func asynqConnOpt(opts *Options) (asynq.RedisConnOpt, error) {
	if !strings.Contains(opts.URL, "://") {
		return asynq.RedisClientOpt{Addr: opts.URL, TLSConfig: opts.TLSConfig}, nil
	}
	conn, err := asynq.ParseRedisURI(opts.URL)
	if err != nil {
		return nil, err
	}
	if ro, ok := conn.(asynq.RedisClientOpt); ok && opts.TLSConfig != nil {
		ro.TLSConfig = opts.TLSConfig
		conn = ro
	}
	return conn, nil
}

func (a *Asynq) Close() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.srv != nil {
		a.srv.Stop()
		a.srv.Shutdown()
		a.srv = nil
	}
	return a.cli.Close()
}

// Push enqueues the payload on the channel's asynq queue
func (a *Asynq) Push(ctx context.Context, channel, payload string) error {
	_, err := a.cli.EnqueueContext(
		ctx,
		asynq.NewTask(asynqTaskType, []byte(payload)),
		asynq.Queue(a.queueName(channel)),
		asynq.MaxRetry(asynqMaxRetry),
	)
	return err
}

// Pop waits for the asynq server to hand over a message
func (a *Asynq) Pop(ctx context.Context, timeout time.Duration, channels ...string) (*Message, error) {
	err := a.buildServer(channels)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-a.work:
		return msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handle blocks until Pop takes the message. Returning an error (ie. when
// shutting down) has asynq retry the task later.
func (a *Asynq) handle(ctx context.Context, t *asynq.Task) error {
	qname, _ := asynq.GetQueueName(ctx)
	msg := &Message{Channel: a.channelName(qname), Payload: string(t.Payload())}
	select {
	case a.work <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Asynq) buildServer(channels []string) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return nil
	}

	queues := map[string]int{}
	for _, c := range channels {
		queues[a.queueName(c)] = 1
	}
	srv := asynq.NewServer(
		a.conn,
		asynq.Config{
			Queues:      queues,
			Concurrency: a.opts.Concurrency,
			Logger:      &asynqLogger{},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(asynqTaskType, a.handle)

	err := srv.Start(mux)
	if err != nil {
		return err
	}
	a.srv = srv
	a.mux = mux
	return nil
}

func (a *Asynq) queueName(channel string) string {
	return a.opts.Prefix + channel
}

func (a *Asynq) channelName(queue string) string {
	return strings.TrimPrefix(queue, a.opts.Prefix)
}

// asynqLogger routes asynq server logs through zerolog
type asynqLogger struct{}

func (l *asynqLogger) Debug(args ...interface{}) { log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { log.Fatal().Msg(fmt.Sprint(args...)) }
