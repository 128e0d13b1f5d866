// Package thermo runs the thermometer: it keeps the configuration record,
// refreshes the cathode drive from the temperature sensor and dispatches the
// operator switches to either the hue selector or the calibration procedure.
//
// Everything happens on the goroutine that calls Boot and Run. The controller
// is always in exactly one mode; calibration and hue selection block the loop
// until they finish, and switch notifications arriving meanwhile are dropped.
package thermo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/calibrate"
	"github.com/itohio/nixietherm/pkg/color"
	"github.com/itohio/nixietherm/pkg/dac"
	"github.com/itohio/nixietherm/pkg/input"
	"github.com/itohio/nixietherm/pkg/record"
	"github.com/itohio/nixietherm/pkg/sample"
)

// Mode is the activity owning the controller.
type Mode int

const (
	ModeDisplay Mode = iota
	ModeCalibrate
	ModeColor
)

func (m Mode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeCalibrate:
		return "calibrate"
	case ModeColor:
		return "color"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Store loads and commits the configuration record.
type Store interface {
	Load() (record.Record, bool, error)
	Save(rec *record.Record) (bool, error)
}

// Status is a snapshot published after every change.
type Status struct {
	Mode        Mode
	CalState    calibrate.State // valid in ModeCalibrate
	Temperature float32         // smoothed reading, °F
	Level       float32         // clamped drive level
	Code        uint16          // DAC code written
	Record      record.Record
}

// Options tunes a Controller. Zero values select defaults.
type Options struct {
	UpdateInterval time.Duration
	AverageSamples int
	Timing         calibrate.Timing
	Clock          input.Clock
	Console        io.Writer
	// Controls overrides the board switches as operator controls.
	Controls input.Controls
	// Arm and Disarm are called when switch notifications are resumed and
	// suspended, for boards that need to re-attach their interrupts.
	Arm    func()
	Disarm func()
}

// Controller is the thermometer control loop.
type Controller struct {
	board    board.Board
	store    Store
	controls input.Controls
	gate     *input.Gate
	cal      *calibrate.Procedure
	sel      *color.Selector
	window   *sample.Window
	console  io.Writer
	interval time.Duration

	rec      record.Record
	mode     Mode
	requests chan struct{}

	mu     sync.RWMutex
	status Status

	cbMu      sync.RWMutex
	callbacks []func(Status)
}

// New creates a controller for b persisting through st.
func New(b board.Board, st Store, opts Options) *Controller {
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = input.Wall{}
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.Controls == nil {
		opts.Controls = board.Controls(b)
	}

	c := &Controller{
		board:    b,
		store:    st,
		controls: opts.Controls,
		window:   sample.NewWindow(opts.AverageSamples),
		console:  opts.Console,
		interval: opts.UpdateInterval,
		requests: make(chan struct{}, 1),
	}

	c.gate = input.NewGate(func() {
		c.drainEdges()
		if opts.Arm != nil {
			opts.Arm()
		}
	}, opts.Disarm)
	c.cal = calibrate.New(opts.Controls, b, st, c.gate,
		calibrate.WithTiming(opts.Timing),
		calibrate.WithClock(opts.Clock),
		calibrate.WithConsole(opts.Console),
	)
	c.cal.OnState(func(s calibrate.State) {
		c.publish(func(st *Status) { st.CalState = s })
	})
	c.sel = color.NewSelector(opts.Controls, b, st, c.gate, opts.Clock, opts.Console)

	return c
}

// OnUpdate registers a callback for status updates. Callbacks run on the
// controller goroutine and must not block.
func (c *Controller) OnUpdate(fn func(Status)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

// Status returns the latest published status.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Calibrate asks the loop to enter calibration. It is safe to call from any
// goroutine; repeated requests while one is pending are merged.
func (c *Controller) Calibrate() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// Boot loads the record, restores the backlight and enters calibration when
// both controls are held at power-up. Controls that have not been read yet
// count as released.
func (c *Controller) Boot(ctx context.Context) error {
	rec, valid, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.rec = rec
	c.rec.Print(c.console)
	c.publish(func(st *Status) { st.Record = c.rec })

	if !valid {
		fmt.Fprintln(c.console, "Using default calibration")
	}

	if err := c.sel.Apply(&c.rec); err != nil {
		return fmt.Errorf("failed to restore display color: %w", err)
	}

	a, b, err := c.controls.Sample()
	switch {
	case errors.Is(err, board.ErrNoReading):
		// A serial board has not reported its switches yet; treat them as released.
		fmt.Fprintln(c.console, "Switch state unknown, skipping boot calibration")
		return nil
	case err != nil:
		return fmt.Errorf("failed to sample controls: %w", err)
	}
	if a && b {
		return c.calibrate(ctx)
	}
	return nil
}

// Run refreshes the display every update interval and serves switch
// notifications and calibration requests until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.refresh()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.refresh()
		case sw := <-c.board.Edges():
			if err := c.handleEdge(ctx, sw); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		case <-c.requests:
			if err := c.calibrate(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// refresh performs one display update cycle and reports failures on the
// console without stopping the loop.
func (c *Controller) refresh() {
	if err := c.update(); err != nil {
		fmt.Fprintf(c.console, "display update failed: %v\n", err)
	}
}

// update reads the sensor and drives the cathode for the smoothed reading.
func (c *Controller) update() error {
	temp, err := c.board.Temperature()
	if err != nil {
		return fmt.Errorf("failed to read temperature: %w", err)
	}

	avg := c.window.Add(temp)
	level := dac.Map(avg, c.rec.CalLow, c.rec.CalHigh)
	code := dac.Code(level)
	if err := c.board.SetDAC(code); err != nil {
		return fmt.Errorf("failed to set DAC: %w", err)
	}

	c.publish(func(st *Status) {
		st.Temperature = avg
		st.Level = level
		st.Code = code
	})
	return nil
}

func (c *Controller) handleEdge(ctx context.Context, sw board.Switch) error {
	if c.mode != ModeDisplay || !c.gate.Armed() {
		return nil
	}

	var err error
	switch sw {
	case board.SW1:
		c.setMode(ModeColor)
		err = c.sel.Cycle(ctx, &c.rec)
	case board.SW2:
		err = c.sel.WaitRelease(ctx)
	default:
		return nil
	}
	c.setMode(ModeDisplay)

	if err != nil {
		fmt.Fprintf(c.console, "%s handler failed: %v\n", sw, err)
	}
	return err
}

func (c *Controller) calibrate(ctx context.Context) error {
	c.setMode(ModeCalibrate)
	defer c.setMode(ModeDisplay)

	err := c.cal.Run(ctx, &c.rec)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(c.console, "calibration failed: %v\n", err)
	}
	// Readings from before the blocking run are stale.
	c.window.Reset()
	c.publish(func(st *Status) { st.Record = c.rec })
	return err
}

// drainEdges discards notifications queued while the controls were owned.
func (c *Controller) drainEdges() {
	for {
		select {
		case <-c.board.Edges():
		default:
			return
		}
	}
}

func (c *Controller) setMode(m Mode) {
	c.mode = m
	c.publish(func(st *Status) {
		st.Mode = m
		st.Record = c.rec
	})
}

func (c *Controller) publish(change func(*Status)) {
	c.mu.Lock()
	change(&c.status)
	st := c.status
	c.mu.Unlock()

	c.cbMu.RLock()
	defer c.cbMu.RUnlock()
	for _, fn := range c.callbacks {
		fn(st)
	}
}
