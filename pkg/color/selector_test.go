package color

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/nixietherm/pkg/input"
	"github.com/itohio/nixietherm/pkg/input/inputtest"
	"github.com/itohio/nixietherm/pkg/record"
)

type recordingLEDs struct {
	set []RGB
}

func (l *recordingLEDs) SetLEDs(c RGB) error {
	l.set = append(l.set, c)
	return nil
}

type recordingSaver struct {
	saved []record.Record
}

func (s *recordingSaver) Save(rec *record.Record) (bool, error) {
	s.saved = append(s.saved, *rec)
	return true, nil
}

func TestSelector_Cycle(t *testing.T) {
	controls := &inputtest.Script{States: inputtest.Repeat(inputtest.State{A: true}, 3)}
	leds := &recordingLEDs{}
	saver := &recordingSaver{}
	clock := &inputtest.Clock{}
	gate := input.NewGate(nil, nil)
	var console bytes.Buffer

	s := NewSelector(controls, leds, saver, gate, clock, &console)
	rec := record.Defaults(109, "SN2")

	require.NoError(t, s.Cycle(context.Background(), &rec))

	assert.Equal(t, record.DefaultHue+3, rec.DisplayHue)
	assert.Len(t, leds.set, 3)
	assert.Equal(t, Wheel(record.DefaultHue+3), leds.set[2])
	require.Len(t, saver.saved, 1)
	assert.Equal(t, record.DefaultHue+3, saver.saved[0].DisplayHue)
	assert.Equal(t, Debounce, clock.Sleeps[0])
	assert.Contains(t, console.String(), "Switch 1 Int")
	assert.True(t, gate.Armed())
}

func TestSelector_CycleWraps(t *testing.T) {
	controls := &inputtest.Script{States: inputtest.Repeat(inputtest.State{A: true}, 2)}
	saver := &recordingSaver{}
	s := NewSelector(controls, &recordingLEDs{}, saver, input.NewGate(nil, nil), &inputtest.Clock{}, nil)

	rec := record.Record{DisplayHue: MaxHue}
	require.NoError(t, s.Cycle(context.Background(), &rec))
	assert.Equal(t, uint16(1), rec.DisplayHue)
}

func TestSelector_CycleBusyGate(t *testing.T) {
	gate := input.NewGate(nil, nil)
	_, err := gate.Acquire("calibrate")
	require.NoError(t, err)

	s := NewSelector(&inputtest.Script{}, &recordingLEDs{}, &recordingSaver{}, gate, &inputtest.Clock{}, nil)
	rec := record.Defaults(109, "SN2")
	assert.ErrorIs(t, s.Cycle(context.Background(), &rec), input.ErrBusy)
}

func TestSelector_CycleControlError(t *testing.T) {
	gate := input.NewGate(nil, nil)
	saver := &recordingSaver{}
	s := NewSelector(&inputtest.Script{Err: errors.New("boom")}, &recordingLEDs{}, saver, gate, &inputtest.Clock{}, nil)

	rec := record.Defaults(109, "SN2")
	assert.Error(t, s.Cycle(context.Background(), &rec))
	assert.Empty(t, saver.saved)
	assert.True(t, gate.Armed())
}

func TestSelector_WaitRelease(t *testing.T) {
	controls := &inputtest.Script{States: inputtest.Repeat(inputtest.State{B: true}, 4)}
	clock := &inputtest.Clock{}
	gate := input.NewGate(nil, nil)
	s := NewSelector(controls, &recordingLEDs{}, &recordingSaver{}, gate, clock, nil)

	require.NoError(t, s.WaitRelease(context.Background()))
	assert.Equal(t, 5, controls.Samples())
	assert.Equal(t, Debounce+4*ReleasePoll, clock.Total())
	assert.True(t, gate.Armed())
}

func TestSelector_Apply(t *testing.T) {
	leds := &recordingLEDs{}
	s := NewSelector(&inputtest.Script{}, leds, &recordingSaver{}, input.NewGate(nil, nil), nil, nil)

	rec := record.Record{DisplayHue: Green}
	require.NoError(t, s.Apply(&rec))
	assert.Equal(t, []RGB{{G: 4095}}, leds.set)
}
