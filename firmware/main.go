//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/nixietherm/pkg/store"
	"github.com/itohio/nixietherm/pkg/thermo"
)

func main() {
	console := machine.Serial

	// Give the USB console a moment to enumerate
	time.Sleep(2 * time.Second)

	hw := newHardware()
	if err := hw.Connect(); err != nil {
		println("board init failed:", err.Error())
		halt()
	}

	st := store.New(store.NewBlock(machine.Flash), SCHEMA_VERSION, Unit,
		store.WithOffset(STORE_OFFSET),
		store.WithConsole(console),
	)

	ctrl := thermo.New(hw, st, thermo.Options{
		UpdateInterval: UPDATE_INTERVAL_MS * time.Millisecond,
		AverageSamples: AVERAGE_SAMPLES,
		Console:        console,
		Arm:            hw.arm,
		Disarm:         hw.disarm,
	})

	ctx := context.Background()
	if err := ctrl.Boot(ctx); err != nil {
		println("boot failed:", err.Error())
	}

	// Main loop
	if err := ctrl.Run(ctx); err != nil {
		println("control loop stopped:", err.Error())
	}
	halt()
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
