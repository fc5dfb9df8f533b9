package main

import (
	"crypto/tls"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/api"
	"github.com/voidshard/torque/pkg/api/http/server"
)

const (
	docApi = `Run the API server`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsSchedule
	optsWork

	Addr    string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
	TLSCert string `long:"cert" env:"CERT" description:"Path to TLS certificate"`
	TLSKey  string `long:"key" env:"KEY" description:"Path to TLS key"`

	WithWorker bool `long:"with-worker" env:"WITH_WORKER" description:"Also consume, requeue & clean tasks in this process"`
}

func (c *optsAPI) Execute(args []string) error {
	// Serves the API over http. Unless --with-worker is given no background
	// routines run, so a worker is needed to actually deliver tasks.
	c.setupLogging()

	qOpts, err := c.queueOptions()
	if err != nil {
		return err
	}

	opts := api.OptionsClientDefault()
	c.optsSchedule.apply(opts)
	if c.WithWorker {
		c.optsWork.apply(opts)
	} else {
		opts.Work.Channels = c.Channels
	}

	var tlsCfg *tls.Config
	if c.TLSCert != "" || c.TLSKey != "" {
		pair, err := tls.LoadX509KeyPair(c.TLSCert, c.TLSKey)
		if err != nil {
			return err
		}
		tlsCfg = &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS12}
	}

	svc, err := api.New(c.databaseOptions(), qOpts, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Info().Bool("worker", c.WithWorker).Msg("starting api server")
	s := server.NewServer(c.Addr, c.Debug, tlsCfg)
	return s.ServeForever(svc)
}
