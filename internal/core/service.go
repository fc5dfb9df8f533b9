package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/internal/utils"
	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/structs"
	"github.com/voidshard/torque/pkg/work"
)

const (
	// attempts at generating a unique key
	keyAttempts = 3
)

type Service struct {
	db   database.Database
	qu   queue.Queue
	opts *Options

	mgr  *work.Manager
	perf *work.Performer

	// background routines
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	consumers []*work.Consumer
}

// NewService returns a service that stores tasks in db & passes instructions
// via qu. Background routines are started according to opts.
func NewService(db database.Database, qu queue.Queue, opts *Options) (*Service, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	me := &Service{db: db, qu: qu, opts: opts, ctx: ctx, cancel: cancel}
	me.mgr = work.NewManager(db, &opts.Schedule)
	me.perf = work.NewPerformer(me.mgr, opts.Client, &opts.Work)

	for i := 0; i < opts.Consumers; i++ {
		// consumers share the performer; each spawns a goroutine per instruction
		c := work.NewConsumer(qu, me.perf, &opts.Work)
		me.consumers = append(me.consumers, c)
		me.run(c.Run)
	}

	if opts.Poll {
		me.run(work.NewPoller(db, qu, &opts.Work).Run)
	}

	if opts.Clean {
		cleaner := work.NewCleaner(db, &opts.Work)
		me.run(func(ctx context.Context) {
			err := cleaner.Run(ctx)
			if err != nil {
				log.Error().Err(err).Msg("cleaner failed to start")
			}
		})
	}

	return me, nil
}

func (c *Service) run(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

// Close stops background routines, waits for in flight deliveries and closes
// the queue & database.
func (c *Service) Close() error {
	c.cancel()
	c.wg.Wait()
	for _, consumer := range c.consumers {
		consumer.Wait()
	}
	qerr := c.qu.Close()
	derr := c.db.Close()
	if qerr != nil {
		return qerr
	}
	return derr
}

// Perform makes a single delivery attempt for the given instruction.
func (c *Service) Perform(ctx context.Context, instruction string) (structs.Status, error) {
	return c.perf.Perform(ctx, instruction)
}

// CreateTask validates, stores & enqueues a new task.
func (c *Service) CreateTask(ctx context.Context, req *structs.CreateTaskRequest) (*structs.Task, error) {
	if req == nil {
		return nil, fmt.Errorf("%w no task given", errors.ErrInvalidArg)
	}

	err := validateURL(req.URL)
	if err != nil {
		return nil, err
	}

	timeout := c.opts.DefaultTimeout
	if req.Timeout != nil {
		timeout = *req.Timeout
	}
	err = validateTimeout(timeout, c.opts.MaxTimeout)
	if err != nil {
		return nil, err
	}

	app, err := c.authenticate(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	enctype, charset, err := parseContentType(req.ContentType)
	if err != nil {
		return nil, err
	}
	body, err := utils.DecodeCharset(charset, req.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		headers[k] = v
	}

	task := &structs.Task{
		TaskSpec: structs.TaskSpec{
			URL:     req.URL,
			Charset: charset,
			Enctype: enctype,
			Headers: headers,
			Body:    body,
			Timeout: timeout,
		},
		Due: c.opts.Schedule.DueDate(timeout, 0),
	}
	if app != nil {
		id := app.ID
		task.ApplicationID = &id
	}

	err = c.db.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	log.Debug().Int64("task_id", task.ID).Str("url", task.URL).Msg("created task")

	c.enqueue(ctx, task)
	return task, nil
}

// authenticate returns the application owning key. No key is acceptable
// (returning no application) unless keys are required.
func (c *Service) authenticate(ctx context.Context, key string) (*structs.Application, error) {
	if key == "" {
		if c.opts.RequireAPIKey {
			return nil, fmt.Errorf("%w api key required", errors.ErrUnauthorized)
		}
		return nil, nil
	}
	if !utils.IsValidAPIKey(key) {
		return nil, fmt.Errorf("%w malformed api key", errors.ErrUnauthorized)
	}
	app, err := c.db.ApplicationByKey(ctx, key)
	if stderrors.Is(err, errors.ErrNotFound) {
		return nil, fmt.Errorf("%w unknown or inactive api key", errors.ErrUnauthorized)
	}
	return app, err
}

// Task returns what the holder of apiKey may see of a task.
func (c *Service) Task(ctx context.Context, id int64, apiKey string) (*structs.TaskResponse, error) {
	task, err := c.db.Task(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		app  *structs.Application
		keys []*structs.APIKey
	)
	if task.ApplicationID != nil {
		app, err = c.db.Application(ctx, *task.ApplicationID)
		if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		if app != nil {
			keys, err = c.db.APIKeys(ctx, app.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	decision := ComputeAccess(task, app, keys, apiKey)
	if !decision.Allowed {
		if apiKey == "" {
			return nil, fmt.Errorf("%w task %d requires an api key", errors.ErrUnauthorized, id)
		}
		return nil, fmt.Errorf("%w task %d", errors.ErrForbidden, id)
	}
	return structs.NewTaskResponse(task, decision.WithRequest), nil
}

// CreateApplication creates an application along with it's first key.
func (c *Service) CreateApplication(ctx context.Context, name string) (*structs.CreateApplicationResponse, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	for i := 0; i < keyAttempts; i++ {
		app := &structs.Application{Name: name}
		key := &structs.APIKey{Value: utils.NewAPIKey()}
		err = c.db.CreateApplication(ctx, app, key)
		if stderrors.Is(err, errors.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Int64("application_id", app.ID).Str("name", app.Name).Msg("created application")
		return &structs.CreateApplicationResponse{Application: app, Key: key}, nil
	}
	return nil, err
}

// CreateAPIKey adds a new key to an application that hasn't been deleted.
func (c *Service) CreateAPIKey(ctx context.Context, applicationID int64) (*structs.APIKey, error) {
	app, err := c.db.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.IsDeleted {
		return nil, fmt.Errorf("%w application %d is deleted", errors.ErrNotFound, applicationID)
	}

	for i := 0; i < keyAttempts; i++ {
		key := &structs.APIKey{Value: utils.NewAPIKey(), ApplicationID: app.ID}
		err = c.db.CreateAPIKey(ctx, key)
		if stderrors.Is(err, errors.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Int64("application_id", app.ID).Msg("created api key")
		return key, nil
	}
	return nil, err
}

// SetApplicationState (de)activates or (un)deletes an application.
func (c *Service) SetApplicationState(ctx context.Context, id int64, active, deleted bool) error {
	n, err := c.db.SetApplicationState(ctx, id, active, deleted)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w application %d", errors.ErrNotFound, id)
	}
	log.Info().Int64("application_id", id).Bool("active", active).Bool("deleted", deleted).Msg("set application state")
	return nil
}

// SetAPIKeyState (de)activates or (un)deletes a single key.
func (c *Service) SetAPIKeyState(ctx context.Context, value string, active, deleted bool) error {
	n, err := c.db.SetAPIKeyState(ctx, value, active, deleted)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w api key", errors.ErrNotFound)
	}
	return nil
}
