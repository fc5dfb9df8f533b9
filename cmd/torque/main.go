package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(nil, flags.Default)

	parser.AddCommand("api", docApi, docApi, &optsAPI{})
	parser.AddCommand("worker", docWorker, docWorker, &optsWorker{})
	parser.AddCommand("migrate", docMigrate, docMigrate, &optsMigrate{})
	parser.AddCommand("enqueue", docEnqueue, docEnqueue, &optsEnqueue{})

	app, err := parser.AddCommand("app", docApp, docApp, &struct{}{})
	if err != nil {
		panic(err)
	}
	app.AddCommand("create", docAppCreate, docAppCreate, &optsAppCreate{})
	app.AddCommand("key", docAppKey, docAppKey, &optsAppKey{})
	app.AddCommand("deactivate", docAppDeactivate, docAppDeactivate, &optsAppDeactivate{})

	if _, err := parser.Parse(); err != nil {
		switch flagsErr := err.(type) {
		case *flags.Error:
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		default:
			os.Exit(1)
		}
	}
}
