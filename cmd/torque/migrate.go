package main

import (
	"github.com/voidshard/torque/pkg/database"
)

const (
	docMigrate = `Apply database migrations`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	c.setupLogging()
	return database.Migrate(c.databaseOptions())
}
