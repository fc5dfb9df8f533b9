package api

import (
	"github.com/voidshard/torque/internal/core"
)

// Options passed to the torque API on creation
type Options = core.Options

// OptionsClientDefault runs a torque service that runs no background routines.
// This is intended either for;
// - admin tooling (creating applications & keys)
// - clients who wish to serve an API, leaving delivery to separate workers
func OptionsClientDefault() *Options {
	o := &Options{}
	o.SetDefaults()
	return o
}

// OptionsServerDefault runs a torque service that consumes the work queue,
// requeues due tasks & periodically deletes old ones.
func OptionsServerDefault() *Options {
	o := &Options{
		Consumers: 1,
		Poll:      true,
		Clean:     true,
	}
	o.SetDefaults()
	return o
}
