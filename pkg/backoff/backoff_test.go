package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	b := New(3)

	assert.Equal(t, 3.0, b.Value())
	assert.Equal(t, 2.0, b.factor)
	assert.Equal(t, 3.0, b.incr)
	assert.True(t, math.IsInf(b.max, 1))
}

func TestLinear(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Backoff
		Incr   []float64
		Expect []float64
	}{
		{"DefaultIncrement", New(2), nil, []float64{4, 6, 8}},
		{"ExplicitIncrement", New(2), []float64{1}, []float64{3, 4, 5}},
		{"ConfiguredIncrement", New(2, WithIncrement(5)), nil, []float64{7, 12, 17}},
		{"Ceiling", New(2, WithMax(5)), nil, []float64{4, 5, 5}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			for _, want := range c.Expect {
				assert.Equal(t, want, c.Given.Linear(c.Incr...))
			}
		})
	}
}

func TestExponential(t *testing.T) {
	cases := []struct {
		Name   string
		Given  *Backoff
		Factor []float64
		Expect []float64
	}{
		{"DefaultFactor", New(2), nil, []float64{4, 8, 16}},
		{"ExplicitFactor", New(1), []float64{3}, []float64{3, 9, 27}},
		{"ConfiguredFactor", New(0.1, WithFactor(1.5)), nil, []float64{0.15, 0.225, 0.3375}},
		{"Ceiling", New(1, WithMax(5)), nil, []float64{2, 4, 5, 5}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			for _, want := range c.Expect {
				assert.InDelta(t, want, c.Given.Exponential(c.Factor...), 1e-9)
			}
		})
	}
}

func TestMonotonic(t *testing.T) {
	for _, start := range []float64{0.1, 1, 2, 7.5, 100} {
		lin := New(start, WithMax(1000))
		exp := New(start, WithMax(1000))
		prevLin, prevExp := start, start

		for i := 0; i < 50; i++ {
			l := lin.Linear()
			e := exp.Exponential()

			assert.GreaterOrEqual(t, l, prevLin)
			assert.GreaterOrEqual(t, e, prevExp)
			assert.LessOrEqual(t, l, 1000.0)
			assert.LessOrEqual(t, e, 1000.0)
			prevLin, prevExp = l, e
		}
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, New(1.5).Duration())
	assert.Equal(t, 100*time.Millisecond, Seconds(0.1))
}
