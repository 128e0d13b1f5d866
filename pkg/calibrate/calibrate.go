// Package calibrate implements the interactive two-point calibration of the
// temperature to cathode drive mapping.
//
// The procedure positions the output at the low reference temperature and
// lets the operator trim calLow with the two controls, then does the same for
// the high reference and calHigh. Holding both controls at the confirm point
// accepts the result; otherwise both phases repeat. The procedure blocks and
// owns the controls until it returns.
package calibrate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/itohio/nixietherm/pkg/dac"
	"github.com/itohio/nixietherm/pkg/input"
	"github.com/itohio/nixietherm/pkg/record"
)

// State is a phase of the procedure.
type State int

const (
	AdjustLow State = iota
	SettleLow
	AdjustHigh
	SettleHigh
	Confirm
	Done
)

func (s State) String() string {
	switch s {
	case AdjustLow:
		return "adjust-low"
	case SettleLow:
		return "settle-low"
	case AdjustHigh:
		return "adjust-high"
	case SettleHigh:
		return "settle-high"
	case Confirm:
		return "confirm"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Owner is the name under which the procedure holds the controls.
const Owner = "calibrate"

// Output drives the cathode DAC.
type Output interface {
	SetDAC(code uint16) error
}

// Saver commits the record.
type Saver interface {
	Save(rec *record.Record) (bool, error)
}

// Timing holds the pacing of the procedure.
type Timing struct {
	Poll    time.Duration // sampling period while adjusting
	Settle  time.Duration // pause between the low and high phase
	Confirm time.Duration // pause before sampling the confirm gesture
	Step    float32       // calibration change per asserted sample
}

// DefaultTiming returns the factory pacing.
func DefaultTiming() Timing {
	return Timing{
		Poll:    200 * time.Millisecond,
		Settle:  1000 * time.Millisecond,
		Confirm: 500 * time.Millisecond,
		Step:    2,
	}
}

// Procedure runs calibration sessions.
type Procedure struct {
	controls input.Controls
	out      Output
	saver    Saver
	gate     *input.Gate
	clock    input.Clock
	console  io.Writer
	timing   Timing

	observers []func(State)
}

// Option configures a Procedure.
type Option func(*Procedure)

// WithTiming overrides the pacing. Zero fields keep their defaults.
func WithTiming(t Timing) Option {
	return func(p *Procedure) {
		if t.Poll > 0 {
			p.timing.Poll = t.Poll
		}
		if t.Settle > 0 {
			p.timing.Settle = t.Settle
		}
		if t.Confirm > 0 {
			p.timing.Confirm = t.Confirm
		}
		if t.Step > 0 {
			p.timing.Step = t.Step
		}
	}
}

// WithClock replaces wall time.
func WithClock(c input.Clock) Option {
	return func(p *Procedure) {
		p.clock = c
	}
}

// WithConsole sets the writer for operator diagnostics.
func WithConsole(w io.Writer) Option {
	return func(p *Procedure) {
		p.console = w
	}
}

// New creates a calibration procedure.
func New(controls input.Controls, out Output, saver Saver, gate *input.Gate, opts ...Option) *Procedure {
	p := &Procedure{
		controls: controls,
		out:      out,
		saver:    saver,
		gate:     gate,
		clock:    input.Wall{},
		console:  io.Discard,
		timing:   DefaultTiming(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timing returns the pacing in effect.
func (p *Procedure) Timing() Timing {
	return p.timing
}

// OnState registers a callback invoked on every state entry.
func (p *Procedure) OnState(fn func(State)) {
	p.observers = append(p.observers, fn)
}

// Run calibrates rec in place and saves it once the operator confirms.
// The controls are owned for the whole run and released on every return
// path. If ctx is cancelled the partially adjusted values stay in rec but
// nothing is committed.
func (p *Procedure) Run(ctx context.Context, rec *record.Record) error {
	release, err := p.gate.Acquire(Owner)
	if err != nil {
		return err
	}
	defer release()

	fmt.Fprintln(p.console, "Cal mode")
	fmt.Fprintln(p.console, "Press switch 1 to decrease")
	fmt.Fprintln(p.console, "Press switch 2 to increase")
	fmt.Fprintln(p.console, "Press both to exit")

	state := AdjustLow
	for state != Done {
		p.enter(state)

		switch state {
		case AdjustLow:
			if err := p.adjust(ctx, rec, dac.CalTempLo, &rec.CalLow); err != nil {
				return err
			}
			state = SettleLow
		case SettleLow:
			if err := p.clock.Sleep(ctx, p.timing.Settle); err != nil {
				return err
			}
			state = AdjustHigh
		case AdjustHigh:
			if err := p.adjust(ctx, rec, dac.CalTempHi, &rec.CalHigh); err != nil {
				return err
			}
			state = SettleHigh
		case SettleHigh:
			if err := p.clock.Sleep(ctx, p.timing.Confirm); err != nil {
				return err
			}
			state = Confirm
		case Confirm:
			a, b, err := p.controls.Sample()
			if err != nil {
				return fmt.Errorf("failed to sample controls: %w", err)
			}
			if a && b {
				state = Done
			} else {
				state = AdjustLow
			}
		}
	}
	p.enter(Done)

	rec.CalibrationComplete = true
	if _, err := p.saver.Save(rec); err != nil {
		return fmt.Errorf("failed to save calibration: %w", err)
	}

	fmt.Fprintf(p.console, "Final Cal Values:  min: %.2f  max: %.2f\n", rec.CalLow, rec.CalHigh)
	return nil
}

// adjust positions the output at degs and trims point while either control is
// asserted. Both controls may apply in the same sample.
func (p *Procedure) adjust(ctx context.Context, rec *record.Record, degs float32, point *float32) error {
	for {
		level := dac.Map(degs, rec.CalLow, rec.CalHigh)
		if err := p.out.SetDAC(dac.Code(level)); err != nil {
			return fmt.Errorf("failed to set DAC: %w", err)
		}

		a, b, err := p.controls.Sample()
		if err != nil {
			return fmt.Errorf("failed to sample controls: %w", err)
		}
		if !a && !b {
			return nil
		}

		if a {
			*point -= p.timing.Step
		}
		if b {
			*point += p.timing.Step
		}
		fmt.Fprintf(p.console, "adjust for %.0f Degs: %.2f\n", degs, *point)

		if err := p.clock.Sleep(ctx, p.timing.Poll); err != nil {
			return err
		}
	}
}

func (p *Procedure) enter(s State) {
	for _, fn := range p.observers {
		fn(s)
	}
}
