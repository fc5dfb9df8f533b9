package main

import (
	"time"

	"github.com/voidshard/torque/internal/utils"
	"github.com/voidshard/torque/pkg/api"
	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/queue"
	"github.com/voidshard/torque/pkg/schedule"
	"github.com/voidshard/torque/pkg/work"
)

type optsGeneral struct {
	Debug    bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	JSONLogs bool `long:"json-logs" env:"JSON_LOGS" description:"Log JSON lines rather than human readable text"`
}

func (c *optsGeneral) setupLogging() {
	utils.SetupLogging(c.Debug, c.JSONLogs)
}

type optsDatabase struct {
	DatabaseURL      string `long:"database-url" env:"DATABASE_URL" description:"Database connection string (postgres:// or sqlite://)" default:"sqlite://torque.db"`
	DatabaseUserEnv  string `long:"database-user-env" env:"DATABASE_USER_ENV" description:"Env var whose value replaces $<name> in the database url" default:"DATABASE_USER"`
	DatabasePassEnv  string `long:"database-pass-env" env:"DATABASE_PASS_ENV" description:"Env var whose value replaces $<name> in the database url" default:"DATABASE_PASSWORD"`
	DatabaseMaxConns int32  `long:"database-max-conns" env:"DATABASE_MAX_CONNS" description:"Max database connections (0 for driver default)"`
}

func (c *optsDatabase) databaseOptions() *database.Options {
	return &database.Options{
		URL:            c.DatabaseURL,
		UsernameEnvVar: c.DatabaseUserEnv,
		PasswordEnvVar: c.DatabasePassEnv,
		MaxConns:       c.DatabaseMaxConns,
	}
}

type optsQueue struct {
	QueueURL       string `long:"queue-url" env:"QUEUE_URL" description:"Queue connection string (redis:// or memory://)" default:"redis://localhost:6379/0"`
	QueueBackend   string `long:"queue-backend" env:"QUEUE_BACKEND" description:"How messages are kept in redis" choice:"list" choice:"asynq" default:"list"`
	QueuePrefix    string `long:"queue-prefix" env:"QUEUE_PREFIX" description:"Prefix of queue keys" default:"torque:"`
	QueueTLSCaCert string `long:"queue-tls-ca-cert" env:"QUEUE_TLS_CA_CERT" description:"Path to CA certificate for the queue"`
	QueueTLSCert   string `long:"queue-tls-cert" env:"QUEUE_TLS_CERT" description:"Path to client certificate for the queue"`
	QueueTLSKey    string `long:"queue-tls-key" env:"QUEUE_TLS_KEY" description:"Path to client key for the queue"`
}

func (c *optsQueue) queueOptions() (*queue.Options, error) {
	tlsCfg, err := utils.TLSConfig(utils.TLSFiles{CACert: c.QueueTLSCaCert, Cert: c.QueueTLSCert, Key: c.QueueTLSKey})
	if err != nil {
		return nil, err
	}
	return &queue.Options{
		URL:       c.QueueURL,
		Backend:   c.QueueBackend,
		Prefix:    c.QueuePrefix,
		TLSConfig: tlsCfg,
	}, nil
}

type optsSchedule struct {
	MinDelay       time.Duration `long:"min-delay" env:"MIN_DELAY" description:"Delay before the first retry" default:"2s"`
	MaxDelay       time.Duration `long:"max-delay" env:"MAX_DELAY" description:"Longest delay between attempts" default:"2h"`
	Backoff        string        `long:"backoff" env:"BACKOFF" description:"How retry delays grow" choice:"linear" choice:"exponential" default:"exponential"`
	BackoffFactor  float64       `long:"backoff-factor" env:"BACKOFF_FACTOR" description:"Multiplier of exponential backoff" default:"2"`
	MaxRetries     int64         `long:"max-retries" env:"MAX_RETRIES" description:"Attempts after which a task has failed" default:"36"`
	DefaultTimeout int64         `long:"default-timeout" env:"DEFAULT_TIMEOUT" description:"Timeout (seconds) of tasks created without one" default:"20"`
	MaxTimeout     int64         `long:"max-timeout" env:"MAX_TIMEOUT" description:"Largest timeout (seconds) a task may ask for (0 for max-delay less min-delay)"`
	RequireAPIKey  bool          `long:"require-api-key" env:"REQUIRE_API_KEY" description:"Reject tasks created without an api key"`
}

func (c *optsSchedule) apply(o *api.Options) {
	o.DefaultTimeout = c.DefaultTimeout
	o.MaxTimeout = c.MaxTimeout
	o.RequireAPIKey = c.RequireAPIKey
	o.Schedule = schedule.Options{
		MinDelay:   c.MinDelay,
		MaxDelay:   c.MaxDelay,
		Algorithm:  c.Backoff,
		Factor:     c.BackoffFactor,
		MaxRetries: schedule.Retries(c.MaxRetries),
	}
}

type optsWork struct {
	Channels      []string      `long:"channel" env:"CHANNELS" env-delim:"," description:"Channels to consume; the first also receives new & due tasks" default:"default"`
	Consumers     int           `long:"consumers" env:"CONSUMERS" description:"Number of queue consumers" default:"1"`
	MaxInFlight   int           `long:"max-in-flight" env:"MAX_IN_FLIGHT" description:"Deliveries in flight per consumer (0 is unbounded)" default:"0"`
	PollInterval  time.Duration `long:"poll-interval" env:"POLL_INTERVAL" description:"How often due tasks are requeued" default:"10s"`
	CleanDays     int           `long:"clean-days" env:"CLEAN_DAYS" description:"Days tasks are kept after they're last modified" default:"30"`
	CleanInterval time.Duration `long:"clean-interval" env:"CLEAN_INTERVAL" description:"How often old tasks are deleted" default:"2h"`
	CleanSchedule string        `long:"clean-schedule" env:"CLEAN_SCHEDULE" description:"Cron expression used instead of --clean-interval"`
	NoPoll        bool          `long:"no-poll" env:"NO_POLL" description:"Don't requeue due tasks"`
	NoClean       bool          `long:"no-clean" env:"NO_CLEAN" description:"Don't delete old tasks"`
}

func (c *optsWork) apply(o *api.Options) {
	o.Consumers = c.Consumers
	o.Poll = !c.NoPoll
	o.Clean = !c.NoClean
	o.Work = work.Options{
		Channels:      c.Channels,
		MaxInFlight:   c.MaxInFlight,
		PollInterval:  c.PollInterval,
		CleanDays:     c.CleanDays,
		CleanInterval: c.CleanInterval,
		CleanSchedule: c.CleanSchedule,
	}
}
