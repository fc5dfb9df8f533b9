package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voidshard/torque/pkg/api"
	"github.com/voidshard/torque/pkg/queue"
)

const (
	docApp           = `Manage applications & their api keys`
	docAppCreate     = `Create an application, printing it along with its first api key`
	docAppKey        = `Create another api key for an application`
	docAppDeactivate = `Deactivate an application, or a single api key`
)

// optsAdmin talks to the database directly; nothing is queued so a memory
// queue stands in for the real one.
type optsAdmin struct {
	optsGeneral
	optsDatabase
}

func (c *optsAdmin) service() (api.API, error) {
	c.setupLogging()
	return api.New(c.databaseOptions(), &queue.Options{Backend: queue.BackendMemory}, api.OptionsClientDefault())
}

type optsAppCreate struct {
	optsAdmin

	Name string `long:"name" description:"Application name" required:"true"`
}

func (c *optsAppCreate) Execute(args []string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := svc.CreateApplication(context.Background(), c.Name)
	if err != nil {
		return err
	}
	return printJson(resp)
}

type optsAppKey struct {
	optsAdmin

	ID int64 `long:"id" description:"Application id" required:"true"`
}

func (c *optsAppKey) Execute(args []string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	defer svc.Close()

	key, err := svc.CreateAPIKey(context.Background(), c.ID)
	if err != nil {
		return err
	}
	return printJson(key)
}

type optsAppDeactivate struct {
	optsAdmin

	ID     int64  `long:"id" description:"Application id"`
	Key    string `long:"api-key" description:"Deactivate only this api key"`
	Delete bool   `long:"delete" description:"Also mark as deleted"`
}

func (c *optsAppDeactivate) Execute(args []string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if c.Key == "" && c.ID == 0 {
		return fmt.Errorf("one of --id or --api-key is required")
	}
	if c.Key != "" {
		return svc.SetAPIKeyState(ctx, c.Key, false, c.Delete)
	}
	return svc.SetApplicationState(ctx, c.ID, false, c.Delete)
}

func printJson(obj interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(obj)
}
