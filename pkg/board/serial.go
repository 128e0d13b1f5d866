//go:build !tinygo

package board

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/itohio/nixietherm/pkg/color"
)

const (
	// DefaultBaudRate is the standard baud rate of the board UART.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size of the edge notification buffer.
	DefaultBufferSize = 8
)

// Status is one report from the board.
type Status struct {
	Timestamp   time.Time
	Temperature float32 // °F
	SW1         bool    // raw level, false = pressed
	SW2         bool    // raw level, false = pressed
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a board attached over a serial line.
//
// The board streams status lines "S,<unix_micros>,<centi_degF>,<sw1><sw2>"
// and accepts "D<code>" to set the cathode DAC and "L<r>,<g>,<b>" to set the
// backlight, each terminated by a newline.
type Serial struct {
	port     string
	baudRate int
	log      *zap.Logger

	conn      serial.Port
	edges     chan Switch
	status    Status
	hasStatus bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

var _ Board = (*Serial)(nil)

// NewSerial creates a board on the specified port. A zero baud rate selects
// DefaultBaudRate and a nil logger discards logs.
func NewSerial(port string, baudRate int, log *zap.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		log:      log.With(zap.String("port", port)),
		edges:    make(chan Switch, DefaultBufferSize),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading status lines.
func (b *Serial) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return ErrAlreadyConnected
	}

	conn, err := serial.Open(b.port, &serial.Mode{BaudRate: b.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", b.port, err)
	}

	b.attach(conn)
	return nil
}

// attach starts reading from an open connection. Callers hold mu.
func (b *Serial) attach(conn serial.Port) {
	b.conn = conn
	b.connected = true
	b.hasStatus = false
	b.ctx, b.cancel = context.WithCancel(context.Background())

	go b.readStatus(b.ctx, conn)
}

// Close closes the connection. The edge channel stays open so the board can
// be reconnected.
func (b *Serial) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil
	}

	b.cancel()
	if err := b.conn.Close(); err != nil {
		b.log.Warn("error closing serial port", zap.Error(err))
	}
	b.conn = nil
	b.connected = false
	return nil
}

// IsConnected returns whether the board is currently connected.
func (b *Serial) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// Edges returns the switch press notifications.
func (b *Serial) Edges() <-chan Switch {
	return b.edges
}

// Temperature returns the latest reported temperature.
func (b *Serial) Temperature() (float32, error) {
	st, err := b.latest()
	if err != nil {
		return 0, err
	}
	return st.Temperature, nil
}

// Switches returns the latest reported raw switch levels.
func (b *Serial) Switches() (bool, bool, error) {
	st, err := b.latest()
	if err != nil {
		return true, true, err
	}
	return st.SW1, st.SW2, nil
}

// SetDAC sets the cathode drive code.
func (b *Serial) SetDAC(code uint16) error {
	return b.send(fmt.Sprintf("D%d\n", code))
}

// SetLEDs sets the backlight drive levels.
func (b *Serial) SetLEDs(c color.RGB) error {
	return b.send(fmt.Sprintf("L%d,%d,%d\n", c.R, c.G, c.B))
}

func (b *Serial) latest() (Status, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.connected {
		return Status{}, ErrNotConnected
	}
	if !b.hasStatus {
		return Status{}, ErrNoReading
	}
	return b.status, nil
}

func (b *Serial) send(cmd string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.connected {
		return ErrNotConnected
	}

	if _, err := b.conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("failed to send command %q: %w", strings.TrimSpace(cmd), err)
	}
	return nil
}

// readStatus reads status lines until the context is cancelled or the port
// fails.
func (b *Serial) readStatus(ctx context.Context, r io.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error("panic in status reader", zap.Any("panic", rec))
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		st, err := parseLine(line)
		if err != nil {
			b.log.Debug("failed to parse line", zap.String("line", line), zap.Error(err))
			continue
		}
		b.update(st)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		b.log.Warn("error reading from serial port", zap.Error(err))
	}
}

// update stores st and emits notifications for switches that went from
// released to pressed.
func (b *Serial) update(st Status) {
	b.mu.Lock()
	prev, had := b.status, b.hasStatus
	b.status = st
	b.hasStatus = true
	b.mu.Unlock()

	if !had {
		prev = Status{SW1: true, SW2: true}
	}
	if prev.SW1 && !st.SW1 {
		b.notify(SW1)
	}
	if prev.SW2 && !st.SW2 {
		b.notify(SW2)
	}
}

func (b *Serial) notify(sw Switch) {
	select {
	case b.edges <- sw:
	default:
		b.log.Debug("edge channel full, dropping notification", zap.Stringer("switch", sw))
	}
}

// parseLine parses a status line from the board.
// Format: S,unix_micros,centi_degF,sw1sw2
// Example: S,1234567890123,7250,11
func parseLine(line string) (Status, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return Status{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}
	if parts[0] != "S" {
		return Status{}, fmt.Errorf("unknown line type %q", parts[0])
	}

	micros, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Status{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	centi, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return Status{}, fmt.Errorf("invalid temperature: %w", err)
	}

	levels := parts[3]
	if len(levels) != 2 || strings.Trim(levels, "01") != "" {
		return Status{}, fmt.Errorf("invalid switch levels %q", levels)
	}

	return Status{
		Timestamp:   time.Unix(0, micros*1000),
		Temperature: float32(centi) / 100,
		SW1:         levels[0] == '1',
		SW2:         levels[1] == '1',
	}, nil
}
