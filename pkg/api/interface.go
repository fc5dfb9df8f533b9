package api

import (
	"context"

	"github.com/voidshard/torque/pkg/structs"
)

// API represents the functions torque servers should expose.
type API interface {
	// Implemented in torque/internal/core.Service

	CreateTask(ctx context.Context, req *structs.CreateTaskRequest) (*structs.Task, error)
	Task(ctx context.Context, id int64, apiKey string) (*structs.TaskResponse, error)

	CreateApplication(ctx context.Context, name string) (*structs.CreateApplicationResponse, error)
	CreateAPIKey(ctx context.Context, applicationID int64) (*structs.APIKey, error)
	SetApplicationState(ctx context.Context, id int64, active, deleted bool) error
	SetAPIKeyState(ctx context.Context, value string, active, deleted bool) error

	Close() error
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
