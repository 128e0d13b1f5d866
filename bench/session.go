package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/calibrate"
	"github.com/itohio/nixietherm/pkg/config"
	"github.com/itohio/nixietherm/pkg/store"
	"github.com/itohio/nixietherm/pkg/thermo"
)

// session is one connected board with its control loop.
type session struct {
	board   board.Board
	mock    *board.Mock // nil for a serial board
	image   *store.File
	console *zapio.Writer
	ctrl    *thermo.Controller
	cancel  context.CancelFunc
	done    chan struct{}
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	log        *zap.Logger
	useMock    bool

	connectBtn *widget.Button
	calBtn     *widget.Button
	panel      *panel

	mu      sync.Mutex
	session *session
}

// createToolbar creates the toolbar with Connect, Settings and Calibrate buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	calBtn := widget.NewButtonWithIcon("Calibrate", theme.MediaRecordIcon(), func() {
		if s := state.current(); s != nil {
			s.ctrl.Calibrate()
		}
	})
	calBtn.Disable()
	state.calBtn = calBtn

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		calBtn,
		nil,
	)
}

func (s *appState) current() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// handleConnect toggles the board connection.
func handleConnect(state *appState) {
	if state.current() != nil {
		disconnect(state)
		return
	}

	sess, err := connect(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	state.mu.Lock()
	state.session = sess
	state.mu.Unlock()

	state.connectBtn.SetIcon(theme.LogoutIcon())
	state.calBtn.Enable()
	state.panel.attach(sess)
}

// connect opens the board and the EEPROM image and starts the control loop.
func connect(state *appState) (*session, error) {
	cfg := state.cfg

	var (
		b    board.Board
		mock *board.Mock
	)
	if state.useMock {
		mock = board.NewMock(&cfg.Mock)
		b = mock
	} else {
		b = board.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, state.log)
	}

	if err := b.Connect(); err != nil {
		if state.useMock {
			return nil, fmt.Errorf("failed to connect to simulated board: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Serial.Port, err)
	}

	image, err := store.OpenFile(cfg.Store.Path)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to open EEPROM image: %w", err)
	}

	console := &zapio.Writer{Log: state.log.Named("console"), Level: zap.InfoLevel}
	st := store.New(image, cfg.Store.SchemaVersion, cfg.Store.Unit,
		store.WithOffset(cfg.Store.Offset),
		store.WithConsole(console),
	)

	ctrl := thermo.New(b, st, thermo.Options{
		UpdateInterval: cfg.Display.UpdateInterval,
		AverageSamples: cfg.Display.AverageSamples,
		Timing:         timing(cfg.Calibration),
		Console:        console,
	})

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		board:   b,
		mock:    mock,
		image:   image,
		console: console,
		ctrl:    ctrl,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go sess.run(ctx, state.log, func(err error) {
		fyne.Do(func() {
			if state.current() != sess {
				return
			}
			disconnect(state)
			dialog.ShowError(err, state.window)
		})
	})

	state.log.Info("connected",
		zap.Bool("mock", state.useMock),
		zap.String("port", cfg.Serial.Port),
		zap.Uint8("schema_version", cfg.Store.SchemaVersion),
		zap.String("unit", cfg.Store.Unit),
	)
	return sess, nil
}

// run boots the controller and serves it until ctx is cancelled. A failure
// that was not caused by cancellation is passed to onFail.
func (s *session) run(ctx context.Context, log *zap.Logger, onFail func(error)) {
	defer close(s.done)

	if err := s.ctrl.Boot(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("boot failed", zap.Error(err))
			onFail(fmt.Errorf("boot failed: %w", err))
		}
		return
	}
	if err := s.ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("control loop stopped", zap.Error(err))
		onFail(fmt.Errorf("control loop stopped: %w", err))
	}
}

func (s *session) close() error {
	s.cancel()
	<-s.done

	s.console.Close()
	return errors.Join(s.board.Close(), s.image.Close())
}

// disconnect stops the control loop and releases the board.
func disconnect(state *appState) {
	state.mu.Lock()
	sess := state.session
	state.session = nil
	state.mu.Unlock()

	if sess == nil {
		return
	}

	if err := sess.close(); err != nil {
		state.log.Warn("error closing session", zap.Error(err))
	}
	state.log.Info("disconnected")

	if state.connectBtn != nil {
		state.connectBtn.SetIcon(theme.LoginIcon())
	}
	if state.calBtn != nil {
		state.calBtn.Disable()
	}
	if state.panel != nil {
		state.panel.detach()
	}
}

// timing converts the configured pacing into calibration timing.
func timing(c config.CalibrationConfig) calibrate.Timing {
	return calibrate.Timing{
		Poll:    c.PollInterval,
		Settle:  c.SettleDelay,
		Confirm: c.ConfirmDelay,
		Step:    c.Step,
	}
}
