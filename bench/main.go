package main

import (
	"flag"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"go.uber.org/zap"

	"github.com/itohio/nixietherm/pkg/config"
	"github.com/itohio/nixietherm/pkg/logger"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated board instead of serial port")
		storeFlag  = flag.String("store", "", "EEPROM image override")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *storeFlag != "" {
		cfg.Store.Path = *storeFlag
	}

	lg := logger.New(cfg.Log)
	defer lg.Sync()

	application := app.NewWithID("com.itohio.nixietherm")

	window := application.NewWindow("Nixie Thermometer Bench")
	window.Resize(fyne.NewSize(480, 360))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		log:        lg,
		useMock:    *mockFlag,
	}

	toolbar := createToolbar(state)
	panel := createPanel(state)

	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, panel))
	window.SetOnClosed(func() {
		disconnect(state)
	})

	lg.Info("bench started",
		zap.Bool("mock", state.useMock),
		zap.String("port", cfg.Serial.Port),
		zap.String("store", cfg.Store.Path),
	)
	window.ShowAndRun()
}
