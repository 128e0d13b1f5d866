//go:build tinygo

package main

import (
	"machine"
	"runtime/volatile"
	"time"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/color"
)

// hardware implements board.Board on the MCU peripherals.
type hardware struct {
	dac    machine.DAC
	sensor machine.ADC
	pwm    *machine.TCC
	leds   [3]uint8
	edges  chan board.Switch

	pending1, pending2 volatile.Register8
	connected          bool
}

var _ board.Board = (*hardware)(nil)

func newHardware() *hardware {
	return &hardware{
		dac:    machine.DAC0,
		sensor: machine.ADC{Pin: PIN_SENSOR},
		pwm:    machine.TCC0,
		edges:  make(chan board.Switch, 4),
	}
}

func (h *hardware) Connect() error {
	if h.connected {
		return board.ErrAlreadyConnected
	}

	PIN_DAC.Configure(machine.PinConfig{Mode: machine.PinAnalog})
	h.dac.Configure(machine.DACConfig{})

	PIN_SENSOR.Configure(machine.PinConfig{Mode: machine.PinInput})
	h.sensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	PIN_SWITCH_1.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_SWITCH_2.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	if err := h.pwm.Configure(machine.PWMConfig{}); err != nil {
		return err
	}
	for i, pin := range []machine.Pin{PIN_LED_RED, PIN_LED_GRN, PIN_LED_BLU} {
		ch, err := h.pwm.Channel(pin)
		if err != nil {
			return err
		}
		h.leds[i] = ch
	}

	h.connected = true
	h.arm()
	go h.forwardEdges()
	return nil
}

func (h *hardware) Close() error {
	h.disarm()
	h.connected = false
	return nil
}

func (h *hardware) IsConnected() bool {
	return h.connected
}

// Temperature converts the TMP36 output into °F.
func (h *hardware) Temperature() (float32, error) {
	raw := h.sensor.Get() // scaled to 16 bits
	mv := float32(raw) * ADC_REFERENCE_MV / 65536
	degC := (mv - 500) / 10
	return degC*1.8 + 32, nil
}

func (h *hardware) Switches() (bool, bool, error) {
	return PIN_SWITCH_1.Get(), PIN_SWITCH_2.Get(), nil
}

func (h *hardware) Edges() <-chan board.Switch {
	return h.edges
}

// SetDAC writes a 12-bit code; the driver expects 16-bit values.
func (h *hardware) SetDAC(code uint16) error {
	if code > 4095 {
		code = 4095
	}
	return h.dac.Set(code << 4)
}

func (h *hardware) SetLEDs(c color.RGB) error {
	top := h.pwm.Top()
	for i, v := range [3]uint16{c.R, c.G, c.B} {
		h.pwm.Set(h.leds[i], top*uint32(v)/color.MaxHue)
	}
	return nil
}

// arm attaches the falling edge interrupts of both switches.
func (h *hardware) arm() {
	PIN_SWITCH_1.SetInterrupt(machine.PinFalling, func(machine.Pin) { h.pending1.Set(1) })
	PIN_SWITCH_2.SetInterrupt(machine.PinFalling, func(machine.Pin) { h.pending2.Set(1) })
}

// disarm detaches the switch interrupts and forgets pending edges.
func (h *hardware) disarm() {
	PIN_SWITCH_1.SetInterrupt(0, nil)
	PIN_SWITCH_2.SetInterrupt(0, nil)
	h.pending1.Set(0)
	h.pending2.Set(0)
}

// forwardEdges moves edges flagged by the interrupt handlers onto the edge
// channel. Interrupt handlers must not block, so they only set flags.
func (h *hardware) forwardEdges() {
	for h.connected {
		if h.pending1.Get() != 0 {
			h.pending1.Set(0)
			h.post(board.SW1)
		}
		if h.pending2.Get() != 0 {
			h.pending2.Set(0)
			h.post(board.SW2)
		}
		time.Sleep(EDGE_POLL_MS * time.Millisecond)
	}
}

func (h *hardware) post(sw board.Switch) {
	select {
	case h.edges <- sw:
	default:
	}
}
