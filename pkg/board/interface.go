// Package board abstracts the thermometer hardware: temperature sensor,
// cathode DAC, RGB backlight and the two operator switches.
package board

import (
	"errors"

	"github.com/itohio/nixietherm/pkg/color"
	"github.com/itohio/nixietherm/pkg/input"
)

var (
	// ErrNotConnected is returned by operations on a closed board.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect on an open board.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrNoReading is returned before the first status has been received.
	ErrNoReading = errors.New("no reading yet")
)

// Switch identifies an operator switch.
type Switch int

const (
	SW1 Switch = iota + 1
	SW2
)

func (s Switch) String() string {
	switch s {
	case SW1:
		return "SW1"
	case SW2:
		return "SW2"
	default:
		return "SW?"
	}
}

// Board defines the interface for thermometer boards (real or mocked).
type Board interface {
	Connect() error
	Close() error
	IsConnected() bool

	// Temperature returns the latest sensor reading in °F.
	Temperature() (float32, error)
	// Switches returns the raw switch levels. The switches are active low.
	Switches() (sw1, sw2 bool, err error)
	// Edges delivers a notification whenever a switch is pressed.
	Edges() <-chan Switch

	SetDAC(code uint16) error
	SetLEDs(c color.RGB) error
}

// Controls exposes the board switches as logical operator controls:
// SW1 is control A and SW2 is control B.
func Controls(b Board) input.Controls {
	return input.ControlsFunc(func() (bool, bool, error) {
		sw1, sw2, err := b.Switches()
		if err != nil {
			return false, false, err
		}
		return input.Asserted(sw1), input.Asserted(sw2), nil
	})
}
