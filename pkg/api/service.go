package api

import (
	"github.com/voidshard/torque/internal/core"
	"github.com/voidshard/torque/pkg/database"
	"github.com/voidshard/torque/pkg/queue"
)

// NewAPI returns the torque API backed by the given store & queue.
func NewAPI(db database.Database, qu queue.Queue, opts *Options) (API, error) {
	return core.NewService(db, qu, opts)
}

// New connects to the store & queue described and returns the torque API.
func New(dbOpts *database.Options, quOpts *queue.Options, opts *Options) (API, error) {
	db, err := database.New(dbOpts)
	if err != nil {
		return nil, err
	}
	qu, err := queue.New(quOpts)
	if err != nil {
		db.Close()
		return nil, err
	}
	svc, err := core.NewService(db, qu, opts)
	if err != nil {
		qu.Close()
		db.Close()
		return nil, err
	}
	return svc, nil
}
