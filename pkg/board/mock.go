//go:build !tinygo

package board

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/nixietherm/pkg/color"
	"github.com/itohio/nixietherm/pkg/config"
)

// Mock simulates a thermometer board for testing and development.
type Mock struct {
	cfg *config.MockConfig
	now func() time.Time

	mu        sync.RWMutex
	connected bool
	startTime time.Time
	edges     chan Switch

	// Raw switch levels, true = released
	sw1, sw2 bool

	dac  uint16
	leds color.RGB
}

var _ Board = (*Mock)(nil)

// NewMock creates a new simulated board.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	return &Mock{
		cfg:   cfg,
		now:   time.Now,
		edges: make(chan Switch, DefaultBufferSize),
		sw1:   true,
		sw2:   true,
	}
}

// Connect simulates connecting to the board.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.connected = true
	m.startTime = m.now()
	return nil
}

// Close disconnects the simulated board.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// IsConnected returns whether the board is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Edges returns the switch press notifications.
func (m *Mock) Edges() <-chan Switch {
	return m.edges
}

// Temperature returns a simulated reading: a slow sinusoidal swing around
// the ambient temperature plus a small deterministic ripple.
func (m *Mock) Temperature() (float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return 0, ErrNotConnected
	}

	elapsed := m.now().Sub(m.startTime).Seconds()
	temp := float64(m.cfg.Ambient)
	if m.cfg.Period > 0 {
		temp += float64(m.cfg.Swing) * math.Sin(2*math.Pi*elapsed/m.cfg.Period.Seconds())
	}
	temp += float64(m.cfg.NoiseLevel) * math.Sin(elapsed*7.3) * math.Cos(elapsed*3.1)
	return float32(temp), nil
}

// Switches returns the simulated raw switch levels.
func (m *Mock) Switches() (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return true, true, ErrNotConnected
	}
	return m.sw1, m.sw2, nil
}

// SetDAC records the cathode drive code.
func (m *Mock) SetDAC(code uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.dac = code
	return nil
}

// SetLEDs records the backlight drive levels.
func (m *Mock) SetLEDs(c color.RGB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.leds = c
	return nil
}

// DAC returns the last cathode drive code.
func (m *Mock) DAC() uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dac
}

// LEDs returns the last backlight drive levels.
func (m *Mock) LEDs() color.RGB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leds
}

// Press holds a switch down and notifies an edge if it was released.
func (m *Mock) Press(sw Switch) {
	m.set(sw, false)
}

// Release lets a switch go.
func (m *Mock) Release(sw Switch) {
	m.set(sw, true)
}

func (m *Mock) set(sw Switch, level bool) {
	m.mu.Lock()
	var prev bool
	switch sw {
	case SW1:
		prev, m.sw1 = m.sw1, level
	case SW2:
		prev, m.sw2 = m.sw2, level
	default:
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if prev && !level {
		select {
		case m.edges <- sw:
		default:
			// Channel full, skip
		}
	}
}
