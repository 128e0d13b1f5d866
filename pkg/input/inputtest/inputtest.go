// Package inputtest provides scripted controls and a fake clock for tests.
package inputtest

import (
	"context"
	"time"
)

// State is one sample of both controls.
type State struct {
	A, B bool
}

// Script replays control states in order and then keeps returning Idle.
type Script struct {
	States []State
	Idle   State
	Err    error

	samples int
}

// Sample implements input.Controls.
func (s *Script) Sample() (bool, bool, error) {
	if s.Err != nil {
		return false, false, s.Err
	}
	s.samples++
	if len(s.States) == 0 {
		return s.Idle.A, s.Idle.B, nil
	}
	st := s.States[0]
	s.States = s.States[1:]
	return st.A, st.B, nil
}

// Samples returns how many times the controls were sampled.
func (s *Script) Samples() int {
	return s.samples
}

// Repeat returns n copies of st.
func Repeat(st State, n int) []State {
	out := make([]State, n)
	for i := range out {
		out[i] = st
	}
	return out
}

// Clock records requested sleeps without blocking.
type Clock struct {
	Sleeps []time.Duration
	// CancelAfter, when positive, makes the n-th sleep call fail with
	// context.Canceled.
	CancelAfter int
}

// Sleep implements input.Clock.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	c.Sleeps = append(c.Sleeps, d)
	if c.CancelAfter > 0 && len(c.Sleeps) >= c.CancelAfter {
		return context.Canceled
	}
	return ctx.Err()
}

// Total returns the sum of all recorded sleeps.
func (c *Clock) Total() time.Duration {
	var t time.Duration
	for _, d := range c.Sleeps {
		t += d
	}
	return t
}
