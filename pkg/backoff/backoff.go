// Package backoff computes successive delay values for retry loops.
//
// Every call to Linear or Exponential mutates the Backoff, so calling
// repeatedly keeps backing off.
package backoff

import (
	"math"
	"time"
)

const (
	defaultFactor = 2.0
)

// Backoff holds the current delay value, in whatever unit the caller likes
// (seconds throughout torque).
type Backoff struct {
	value  float64
	factor float64
	incr   float64
	max    float64
}

// Option configures a Backoff.
type Option func(*Backoff)

// WithFactor sets the default multiplier for Exponential.
func WithFactor(f float64) Option {
	return func(b *Backoff) { b.factor = f }
}

// WithIncrement sets the default step for Linear.
func WithIncrement(i float64) Option {
	return func(b *Backoff) { b.incr = i }
}

// WithMax sets the ceiling.
func WithMax(m float64) Option {
	return func(b *Backoff) { b.max = m }
}

// New returns a Backoff starting at start. Factor defaults to 2, increment to
// start and the ceiling to +Inf.
func New(start float64, opts ...Option) *Backoff {
	b := &Backoff{
		value:  start,
		factor: defaultFactor,
		incr:   start,
		max:    math.Inf(1),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Value returns the current value without changing it.
func (b *Backoff) Value() float64 {
	return b.value
}

// Duration returns the current value as a duration, treating it as seconds.
func (b *Backoff) Duration() time.Duration {
	return Seconds(b.value)
}

// Linear adds incr (or the configured increment) to the value.
func (b *Backoff) Linear(incr ...float64) float64 {
	step := b.incr
	if len(incr) > 0 {
		step = incr[0]
	}
	b.value = math.Min(b.value+step, b.max)
	return b.value
}

// Exponential multiplies the value by factor (or the configured factor).
func (b *Backoff) Exponential(factor ...float64) float64 {
	f := b.factor
	if len(factor) > 0 {
		f = factor[0]
	}
	b.value = math.Min(b.value*f, b.max)
	return b.value
}

// Seconds converts a float number of seconds into a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
