package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/api"
)

const (
	docWorker = `Run torque background worker`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsSchedule
	optsWork
}

func (c *optsWorker) Execute(args []string) error {
	// Consumes the queue (delivering tasks), requeues due tasks & deletes
	// old ones. This doesn't serve the API.
	c.setupLogging()

	qOpts, err := c.queueOptions()
	if err != nil {
		return err
	}

	opts := api.OptionsServerDefault()
	c.optsSchedule.apply(opts)
	c.optsWork.apply(opts)

	svc, err := api.New(c.databaseOptions(), qOpts, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Info().Int("consumers", opts.Consumers).Strs("channels", opts.Work.Channels).Bool("poll", opts.Poll).Bool("clean", opts.Clean).Msg("worker running")

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	log.Info().Msg("worker stopping")
	return nil
}
