// Package input arbitrates the two momentary operator controls.
//
// The controls are wired active low: a raw level of false (logical 0) means the
// control is held. Only one consumer may own the controls at a time; the owner
// is the only code allowed to poll them, and edge notifications are suspended
// while the controls are owned.
package input

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBusy is returned when the controls are already owned by someone else.
var ErrBusy = errors.New("controls already owned")

// Controls samples both operator controls once.
// a and b report logical assertion, not raw pin levels.
type Controls interface {
	Sample() (a, b bool, err error)
}

// ControlsFunc adapts a function to Controls.
type ControlsFunc func() (a, b bool, err error)

// Sample implements Controls.
func (f ControlsFunc) Sample() (bool, bool, error) { return f() }

// Asserted converts a raw active-low level into a logical assertion.
func Asserted(level bool) bool {
	return !level
}

// Clock paces polling loops.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Wall is a Clock backed by real time.
type Wall struct{}

// Sleep blocks for d or until ctx is done.
func (Wall) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Gate tracks ownership of the controls.
//
// Gate is not safe for concurrent use; it belongs to the single control loop.
type Gate struct {
	owner  string
	arm    func()
	disarm func()
}

// NewGate creates a gate. disarm is invoked when ownership is taken and arm
// when it is given back; either may be nil.
func NewGate(arm, disarm func()) *Gate {
	return &Gate{arm: arm, disarm: disarm}
}

// Acquire takes ownership of the controls on behalf of owner.
// The returned release function gives ownership back; calling it more than
// once is a no-op, so it is safe to defer.
func (g *Gate) Acquire(owner string) (release func(), err error) {
	if g.owner != "" {
		return nil, fmt.Errorf("%w by %s", ErrBusy, g.owner)
	}
	g.owner = owner
	if g.disarm != nil {
		g.disarm()
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		g.owner = ""
		if g.arm != nil {
			g.arm()
		}
	}, nil
}

// Owner returns the current owner or an empty string.
func (g *Gate) Owner() string {
	return g.owner
}

// Armed reports whether edge notifications should be delivered.
func (g *Gate) Armed() bool {
	return g.owner == ""
}
