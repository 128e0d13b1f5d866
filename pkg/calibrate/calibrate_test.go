package calibrate

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/nixietherm/pkg/input"
	"github.com/itohio/nixietherm/pkg/input/inputtest"
	"github.com/itohio/nixietherm/pkg/record"
)

var (
	idle = inputtest.State{}
	a    = inputtest.State{A: true}
	b    = inputtest.State{B: true}
	both = inputtest.State{A: true, B: true}
)

type recordingDAC struct {
	codes []uint16
	err   error
}

func (d *recordingDAC) SetDAC(code uint16) error {
	if d.err != nil {
		return d.err
	}
	d.codes = append(d.codes, code)
	return nil
}

type recordingSaver struct {
	saved []record.Record
}

func (s *recordingSaver) Save(rec *record.Record) (bool, error) {
	s.saved = append(s.saved, *rec)
	return true, nil
}

type fixture struct {
	controls *inputtest.Script
	dac      *recordingDAC
	saver    *recordingSaver
	gate     *input.Gate
	clock    *inputtest.Clock
	console  bytes.Buffer
	states   []State
	proc     *Procedure
}

func newFixture(states ...inputtest.State) *fixture {
	f := &fixture{
		controls: &inputtest.Script{States: states},
		dac:      &recordingDAC{},
		saver:    &recordingSaver{},
		gate:     input.NewGate(nil, nil),
		clock:    &inputtest.Clock{},
	}
	f.proc = New(f.controls, f.dac, f.saver, f.gate, WithClock(f.clock), WithConsole(&f.console))
	f.proc.OnState(func(s State) { f.states = append(f.states, s) })
	return f
}

func TestRun_HoldDecrementThreeIntervals(t *testing.T) {
	states := append(inputtest.Repeat(a, 3), idle, idle, both)
	f := newFixture(states...)
	rec := record.Defaults(109, "SN2")

	require.NoError(t, f.proc.Run(context.Background(), &rec))

	assert.Equal(t, float32(744), rec.CalLow)
	assert.Equal(t, float32(2900), rec.CalHigh)
	assert.True(t, rec.CalibrationComplete)
	require.Len(t, f.saver.saved, 1)
	assert.Equal(t, rec, f.saver.saved[0])

	assert.Equal(t, []State{AdjustLow, SettleLow, AdjustHigh, SettleHigh, Confirm, Done}, f.states)
	assert.Equal(t, []time.Duration{
		200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond,
		1000 * time.Millisecond,
		500 * time.Millisecond,
	}, f.clock.Sleeps)

	out := f.console.String()
	assert.Contains(t, out, "Cal mode")
	assert.Contains(t, out, "adjust for 65 Degs: 748.00")
	assert.Contains(t, out, "adjust for 65 Degs: 744.00")
	assert.Contains(t, out, "Final Cal Values:  min: 744.00  max: 2900.00")
	assert.True(t, f.gate.Armed())
}

func TestRun_IncrementHigh(t *testing.T) {
	f := newFixture(idle, b, b, idle, both)
	rec := record.Defaults(109, "SN2")
	rec.CalHigh = 2800

	require.NoError(t, f.proc.Run(context.Background(), &rec))
	assert.Equal(t, float32(750), rec.CalLow)
	assert.Equal(t, float32(2804), rec.CalHigh)
}

func TestRun_BothControlsApplyInSameSample(t *testing.T) {
	f := newFixture(both, a, idle, idle, both)
	rec := record.Defaults(109, "SN2")

	require.NoError(t, f.proc.Run(context.Background(), &rec))
	assert.Equal(t, float32(748), rec.CalLow, "both deltas cancel, then one decrement")
	assert.Contains(t, f.console.String(), "adjust for 65 Degs: 750.00")
}

func TestRun_RepeatsUntilConfirmed(t *testing.T) {
	f := newFixture(
		idle, idle, a, // first pass, confirm sample is not both
		b, idle, idle, both, // second pass
	)
	rec := record.Defaults(109, "SN2")

	require.NoError(t, f.proc.Run(context.Background(), &rec))
	assert.Equal(t, float32(752), rec.CalLow)
	assert.Equal(t, []State{
		AdjustLow, SettleLow, AdjustHigh, SettleHigh, Confirm,
		AdjustLow, SettleLow, AdjustHigh, SettleHigh, Confirm,
		Done,
	}, f.states)
	assert.Len(t, f.saver.saved, 1)
}

func TestRun_DrivesReferenceLevels(t *testing.T) {
	f := newFixture(a, idle, b, idle, both)
	rec := record.Defaults(109, "SN2")
	rec.CalHigh = 2500

	require.NoError(t, f.proc.Run(context.Background(), &rec))
	// Low phase: 750, then 748 after the decrement.
	// High phase: 2500, then 2502 after the increment.
	assert.Equal(t, []uint16{750, 748, 2500, 2502}, f.dac.codes)
}

func TestRun_LowPointBelowFullOffStillDrivesSafeLevel(t *testing.T) {
	f := newFixture(a, idle, idle, both)
	rec := record.Defaults(109, "SN2")
	rec.CalLow = 701

	require.NoError(t, f.proc.Run(context.Background(), &rec))
	assert.Equal(t, float32(699), rec.CalLow)
	for _, code := range f.dac.codes {
		assert.GreaterOrEqual(t, code, uint16(700))
	}
}

func TestRun_CancelReleasesWithoutSaving(t *testing.T) {
	f := newFixture(inputtest.Repeat(a, 10)...)
	f.clock.CancelAfter = 2
	rec := record.Defaults(109, "SN2")

	err := f.proc.Run(context.Background(), &rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.saver.saved)
	assert.False(t, rec.CalibrationComplete)
	assert.True(t, f.gate.Armed())
}

func TestRun_ControlError(t *testing.T) {
	f := newFixture()
	f.controls.Err = errors.New("line down")
	rec := record.Defaults(109, "SN2")

	assert.Error(t, f.proc.Run(context.Background(), &rec))
	assert.Empty(t, f.saver.saved)
	assert.True(t, f.gate.Armed())
}

func TestRun_OutputError(t *testing.T) {
	f := newFixture()
	f.dac.err = errors.New("dac fault")
	rec := record.Defaults(109, "SN2")

	assert.Error(t, f.proc.Run(context.Background(), &rec))
	assert.True(t, f.gate.Armed())
}

func TestRun_GateBusy(t *testing.T) {
	f := newFixture(idle, idle, both)
	_, err := f.gate.Acquire("color")
	require.NoError(t, err)

	rec := record.Defaults(109, "SN2")
	assert.ErrorIs(t, f.proc.Run(context.Background(), &rec), input.ErrBusy)
	assert.Equal(t, 0, f.controls.Samples())
}

func TestWithTiming(t *testing.T) {
	p := New(&inputtest.Script{}, &recordingDAC{}, &recordingSaver{}, input.NewGate(nil, nil),
		WithTiming(Timing{Poll: 50 * time.Millisecond, Step: 5}))

	got := p.Timing()
	assert.Equal(t, 50*time.Millisecond, got.Poll)
	assert.Equal(t, float32(5), got.Step)
	assert.Equal(t, DefaultTiming().Settle, got.Settle)
	assert.Equal(t, DefaultTiming().Confirm, got.Confirm)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "adjust-low", AdjustLow.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "state(42)", State(42).String())
}
