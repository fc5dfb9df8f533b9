package core

import (
	"crypto/subtle"

	"github.com/voidshard/torque/pkg/structs"
)

// AccessDecision says what a caller may see of a task.
type AccessDecision struct {
	// Allowed is false if the caller may not see the task at all
	Allowed bool

	// WithRequest is true if the caller may see the request data
	// (charset, enctype, headers, body)
	WithRequest bool
}

var (
	accessDenied = AccessDecision{}
	accessFull   = AccessDecision{Allowed: true, WithRequest: true}
)

// ComputeAccess decides what the holder of apiKey may see of a task.
//
// Tasks created without an application are visible to everyone. Otherwise
// the caller must present one of the owning application's active keys, and
// the application itself must be usable.
func ComputeAccess(task *structs.Task, app *structs.Application, activeKeys []*structs.APIKey, apiKey string) AccessDecision {
	if task == nil {
		return accessDenied
	}
	if task.ApplicationID == nil {
		return accessFull
	}
	if apiKey == "" || !app.Usable() || app.ID != *task.ApplicationID {
		return accessDenied
	}
	for _, k := range activeKeys {
		if !k.Usable() || k.ApplicationID != app.ID {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(k.Value), []byte(apiKey)) == 1 {
			return accessFull
		}
	}
	return accessDenied
}
