package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/torque/pkg/errors"
	"github.com/voidshard/torque/pkg/schedule"
)

func TestOptionsMaxTimeoutDefault(t *testing.T) {
	cases := []struct {
		Name     string
		Schedule schedule.Options
		Expect   int64
	}{
		{"Defaults", schedule.Options{}, 7198},
		{"NarrowWindow", schedule.Options{MinDelay: 10 * time.Second, MaxDelay: 70 * time.Second}, 60},
		{"WideWindow", schedule.Options{MaxDelay: 48 * time.Hour}, 86400},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			o := &Options{Schedule: c.Schedule}
			o.SetDefaults()

			assert.Equal(t, c.Expect, o.MaxTimeout)
			assert.Nil(t, o.Validate())
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		Name   string
		Opts   *Options
		Expect error
	}{
		{"Valid", &Options{MaxTimeout: 60}, nil},
		{"DefaultAboveMax", &Options{DefaultTimeout: 100, MaxTimeout: 10}, errors.ErrInvalidArg},
		{"TimeoutAtMaxDelay", &Options{MaxTimeout: 7200}, errors.ErrInvalidArg},
		{"TimeoutFillsWindow", &Options{MaxTimeout: 7198}, nil},
		{"NegativeRetries", &Options{Schedule: schedule.Options{MaxRetries: schedule.Retries(-1)}}, errors.ErrInvalidArg},
		{"ZeroRetries", &Options{Schedule: schedule.Options{MaxRetries: schedule.Retries(0)}}, nil},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			c.Opts.SetDefaults()

			err := c.Opts.Validate()
			if c.Expect == nil {
				assert.Nil(t, err)
			} else {
				assert.ErrorIs(t, err, c.Expect)
			}
		})
	}
}
