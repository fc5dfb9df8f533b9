package work

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/internal/utils"
	"github.com/voidshard/torque/pkg/backoff"
	"github.com/voidshard/torque/pkg/structs"
)

const (
	defaultEnctype = "application/x-www-form-urlencoded"

	// how long we allow a state transition to finish after shutdown begins
	transitionGrace = 5 * time.Second

	// response bodies are read (& discarded) up to this size so connections are reused
	maxDrain = 64 * 1024
)

// Doer sends HTTP requests, *http.Client satisfies this.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Performer makes a single delivery attempt of a task.
type Performer struct {
	mgr    *Manager
	client Doer
	opts   *Options
}

func NewPerformer(mgr *Manager, client Doer, opts *Options) *Performer {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	if client == nil {
		client = &http.Client{}
	}
	return &Performer{mgr: mgr, client: client, opts: opts}
}

// Perform acquires the task named by the instruction ("{id}:{retry}"),
// POSTs it to its web hook and records the outcome.
//
// Returns an empty status if the task could not be acquired; the
// instruction was stale or someone else is delivering it.
func (p *Performer) Perform(ctx context.Context, instruction string) (structs.Status, error) {
	in, err := structs.ParseInstruction(instruction)
	if err != nil {
		return "", err
	}

	acq, err := p.mgr.Acquire(ctx, in.TaskID, in.RetryCount)
	if err != nil {
		return "", err
	}
	if acq == nil {
		log.Debug().Int64("task_id", in.TaskID).Int64("retry_count", in.RetryCount).Msg("task not acquired")
		return "", nil
	}

	l := log.With().Int64("task_id", acq.ID()).Int64("retry_count", acq.RetryCount()).Logger()
	code, responded := p.deliver(ctx, acq, l)

	// record the outcome even if we're shutting down
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), transitionGrace)
	defer cancel()

	var status structs.Status
	switch {
	case !responded || code >= http.StatusInternalServerError:
		status, err = acq.Reschedule(tctx)
	case code == http.StatusOK || code == http.StatusCreated:
		status, err = acq.Complete(tctx)
	default:
		status, err = acq.Fail(tctx)
	}
	if err != nil {
		l.Warn().Err(err).Int("code", code).Msg("failed to record delivery outcome")
		return status, err
	}

	l.Debug().Int("code", code).Bool("responded", responded).Str("status", string(status)).Msg("delivery attempt")
	return status, nil
}

// deliver POSTs the task and waits for a response, the attempt deadline or
// ctx to be done, whichever is first. Returns false if there was no response.
func (p *Performer) deliver(ctx context.Context, acq *Acquired, l zerolog.Logger) (int, bool) {
	req, deadline, cancel, err := p.buildRequest(ctx, acq)
	if err != nil {
		l.Warn().Err(err).Msg("failed to build delivery request")
		return 0, false
	}
	defer cancel()

	result := make(chan int, 1)
	go func() {
		resp, err := p.client.Do(req)
		if err != nil {
			l.Debug().Err(err).Msg("delivery failed")
			result <- 0
			return
		}
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		resp.Body.Close()
		result <- resp.StatusCode
	}()

	wait := backoff.New(waitStart, backoff.WithFactor(waitFactor), backoff.WithMax(waitMax))
	timer := time.NewTimer(wait.Duration())
	defer timer.Stop()

	for {
		select {
		case code := <-result:
			return code, code > 0
		case <-ctx.Done():
			l.Debug().Msg("delivery abandoned")
			return 0, false
		case <-timer.C:
			if time.Now().After(deadline) {
				l.Debug().Msg("delivery timed out")
				return 0, false
			}
			timer.Reset(backoff.Seconds(wait.Exponential()))
		}
	}
}

// buildRequest returns the POST for a task along with the attempt deadline.
func (p *Performer) buildRequest(ctx context.Context, acq *Acquired) (*http.Request, time.Time, context.CancelFunc, error) {
	body, err := utils.EncodeCharset(acq.Charset(), acq.Body())
	if err != nil {
		return nil, time.Time{}, nil, err
	}

	deadline := acq.dueBy(time.Now(), p.opts.DefaultTimeout)
	rctx, cancel := context.WithDeadline(ctx, deadline)

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, acq.URL(), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, time.Time{}, nil, err
	}
	for k, v := range acq.Headers() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", contentType(acq.Enctype(), acq.Charset()))

	return req, deadline, cancel, nil
}

func contentType(enctype, charset string) string {
	if enctype == "" {
		enctype = defaultEnctype
	}
	if charset == "" {
		charset = utils.DefaultCharset
	}
	return fmt.Sprintf("%s; charset=%s", enctype, charset)
}
