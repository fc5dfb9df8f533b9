package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/voidshard/torque/pkg/api/http/client"
	"github.com/voidshard/torque/pkg/structs"
)

const (
	docEnqueue = `Create a task via a torque api server`
)

type optsEnqueue struct {
	optsGeneral

	Server      string   `long:"server" env:"TORQUE_SERVER" description:"Address of the torque api server" default:"http://localhost:8100"`
	APIKey      string   `long:"api-key" env:"TORQUE_API_KEY" description:"Api key of the application creating the task"`
	URL         string   `long:"url" description:"Web hook to deliver to" required:"true"`
	Timeout     int64    `long:"timeout" description:"Delivery timeout in seconds (-1 for the server default)" default:"-1"`
	Data        string   `long:"data" description:"Body to deliver; @file reads a file, @- reads stdin"`
	ContentType string   `long:"content-type" description:"Content type of the body" default:"application/x-www-form-urlencoded; charset=utf-8"`
	Headers     []string `long:"header" description:"Header to pass to the web hook as Name:Value (repeatable)"`
}

func (c *optsEnqueue) Execute(args []string) error {
	c.setupLogging()

	body, err := readData(c.Data)
	if err != nil {
		return err
	}

	req := &structs.CreateTaskRequest{
		URL:         c.URL,
		ContentType: c.ContentType,
		Headers:     map[string]string{},
		Body:        body,
	}
	if c.Timeout >= 0 {
		timeout := c.Timeout
		req.Timeout = &timeout
	}
	for _, h := range c.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("bad header %q, expected Name:Value", h)
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	cli, err := client.New(c.Server, c.APIKey)
	if err != nil {
		return err
	}
	resp, err := cli.CreateTask(context.Background(), req)
	if err != nil {
		return err
	}
	return printJson(resp)
}

func readData(data string) ([]byte, error) {
	switch {
	case data == "@-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(data[1:])
	}
	return []byte(data), nil
}
