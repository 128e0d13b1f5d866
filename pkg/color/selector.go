package color

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/itohio/nixietherm/pkg/input"
	"github.com/itohio/nixietherm/pkg/record"
)

const (
	// Debounce is the pause after an edge before the control is polled.
	Debounce = 20 * time.Millisecond
	// CycleStep is the pause between hue increments while the control is held.
	CycleStep = 5 * time.Millisecond
	// ReleasePoll is the polling period while waiting for control B to be released.
	ReleasePoll = 10 * time.Millisecond
)

// LEDs accepts RGB drive levels.
type LEDs interface {
	SetLEDs(c RGB) error
}

// Saver commits a record to persistent storage.
type Saver interface {
	Save(rec *record.Record) (bool, error)
}

// Selector implements the hold-to-cycle hue selection on control A and the
// release wait on control B.
type Selector struct {
	controls input.Controls
	leds     LEDs
	saver    Saver
	gate     *input.Gate
	clock    input.Clock
	console  io.Writer
}

// NewSelector creates a hue selector. A nil clock uses wall time and a nil
// console discards diagnostics.
func NewSelector(controls input.Controls, leds LEDs, saver Saver, gate *input.Gate, clock input.Clock, console io.Writer) *Selector {
	if clock == nil {
		clock = input.Wall{}
	}
	if console == nil {
		console = io.Discard
	}
	return &Selector{
		controls: controls,
		leds:     leds,
		saver:    saver,
		gate:     gate,
		clock:    clock,
		console:  console,
	}
}

// Apply drives the LEDs for the record's stored hue.
func (s *Selector) Apply(rec *record.Record) error {
	return s.leds.SetLEDs(Wheel(rec.DisplayHue))
}

// Cycle handles an edge on control A. While A stays asserted the hue walks
// around the wheel; once released the final hue is stored in rec and saved.
func (s *Selector) Cycle(ctx context.Context, rec *record.Record) error {
	release, err := s.gate.Acquire("color")
	if err != nil {
		return err
	}
	defer release()

	if err := s.clock.Sleep(ctx, Debounce); err != nil {
		return err
	}
	fmt.Fprintln(s.console, "Switch 1 Int")

	hue := rec.DisplayHue
	for {
		a, _, err := s.controls.Sample()
		if err != nil {
			return fmt.Errorf("failed to sample controls: %w", err)
		}
		if !a {
			break
		}

		hue = Next(hue)
		if err := s.leds.SetLEDs(Wheel(hue)); err != nil {
			return fmt.Errorf("failed to set LEDs: %w", err)
		}
		if err := s.clock.Sleep(ctx, CycleStep); err != nil {
			return err
		}
	}

	rec.DisplayHue = hue
	if _, err := s.saver.Save(rec); err != nil {
		return fmt.Errorf("failed to save display hue: %w", err)
	}
	return nil
}

// WaitRelease handles an edge on control B by waiting until it is released.
func (s *Selector) WaitRelease(ctx context.Context) error {
	release, err := s.gate.Acquire("wait")
	if err != nil {
		return err
	}
	defer release()

	if err := s.clock.Sleep(ctx, Debounce); err != nil {
		return err
	}
	fmt.Fprintln(s.console, "Switch 2 Int")

	for {
		_, b, err := s.controls.Sample()
		if err != nil {
			return fmt.Errorf("failed to sample controls: %w", err)
		}
		if !b {
			return nil
		}
		if err := s.clock.Sleep(ctx, ReleasePoll); err != nil {
			return err
		}
	}
}
