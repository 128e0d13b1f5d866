package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/record"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
// Changes take effect on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createStoreTab(state),
		createDisplayTab(state),
		createCalibrationTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(520, 380))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(520, 380))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := board.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createStoreTab creates the EEPROM image configuration tab.
func createStoreTab(state *appState) *container.TabItem {
	pathEntry := widget.NewEntry()
	pathEntry.SetText(state.cfg.Store.Path)

	versionEntry := widget.NewEntry()
	versionEntry.SetText(strconv.Itoa(int(state.cfg.Store.SchemaVersion)))

	units := make([]string, 0, len(record.Variants))
	for unit := range record.Variants {
		units = append(units, unit)
	}
	sort.Strings(units)
	unitSelect := widget.NewSelect(units, nil)
	unitSelect.SetSelected(state.cfg.Store.Unit)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Image", Widget: pathEntry, HintText: "File emulating the EEPROM"},
			{Text: "Schema Version", Widget: versionEntry, HintText: "0 never persists"},
			{Text: "Unit", Widget: unitSelect},
		},
		OnSubmit: func() {
			if pathEntry.Text != "" {
				state.cfg.Store.Path = pathEntry.Text
			}
			if v, err := strconv.ParseUint(versionEntry.Text, 10, 8); err == nil {
				state.cfg.Store.SchemaVersion = uint8(v)
			}
			if unitSelect.Selected != "" {
				state.cfg.Store.Unit = unitSelect.Selected
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Store", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Display.UpdateInterval.String())

	averageEntry := widget.NewEntry()
	averageEntry.SetText(strconv.Itoa(state.cfg.Display.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Update Interval", Widget: intervalEntry, HintText: "e.g. 1s"},
			{Text: "Average Samples", Widget: averageEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(intervalEntry.Text); err == nil && d > 0 {
				state.cfg.Display.UpdateInterval = d
			}
			if n, err := strconv.Atoi(averageEntry.Text); err == nil && n > 0 {
				state.cfg.Display.AverageSamples = n
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Display", form)
}

// createCalibrationTab creates the Calibration pacing tab.
func createCalibrationTab(state *appState) *container.TabItem {
	pollEntry := widget.NewEntry()
	pollEntry.SetText(state.cfg.Calibration.PollInterval.String())

	settleEntry := widget.NewEntry()
	settleEntry.SetText(state.cfg.Calibration.SettleDelay.String())

	confirmEntry := widget.NewEntry()
	confirmEntry.SetText(state.cfg.Calibration.ConfirmDelay.String())

	stepEntry := widget.NewEntry()
	stepEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Calibration.Step))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Poll Interval", Widget: pollEntry},
			{Text: "Settle Delay", Widget: settleEntry},
			{Text: "Confirm Delay", Widget: confirmEntry},
			{Text: "Step", Widget: stepEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(pollEntry.Text); err == nil && d > 0 {
				state.cfg.Calibration.PollInterval = d
			}
			if d, err := time.ParseDuration(settleEntry.Text); err == nil && d >= 0 {
				state.cfg.Calibration.SettleDelay = d
			}
			if d, err := time.ParseDuration(confirmEntry.Text); err == nil && d >= 0 {
				state.cfg.Calibration.ConfirmDelay = d
			}
			if step, err := strconv.ParseFloat(stepEntry.Text, 32); err == nil && step > 0 {
				state.cfg.Calibration.Step = float32(step)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMockTab creates the simulated board tab.
func createMockTab(state *appState) *container.TabItem {
	ambientEntry := widget.NewEntry()
	ambientEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Ambient))

	swingEntry := widget.NewEntry()
	swingEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Swing))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseLevel))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Ambient (°F)", Widget: ambientEntry},
			{Text: "Swing (°F)", Widget: swingEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Noise (°F)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(ambientEntry.Text, 32); err == nil {
				state.cfg.Mock.Ambient = float32(v)
			}
			if v, err := strconv.ParseFloat(swingEntry.Text, 32); err == nil {
				state.cfg.Mock.Swing = float32(v)
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.Period = d
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil {
				state.cfg.Mock.NoiseLevel = float32(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
