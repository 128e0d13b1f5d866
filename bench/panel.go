package main

import (
	"fmt"
	imgcolor "image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/nixietherm/pkg/board"
	"github.com/itohio/nixietherm/pkg/color"
	"github.com/itohio/nixietherm/pkg/thermo"
)

// panel shows the controller status and simulates the front switches.
type panel struct {
	temperature *widget.Label
	level       *widget.Label
	code        *widget.Label
	mode        *widget.Label
	calibration *widget.Label
	unit        *widget.Label
	backlight   *canvas.Rectangle

	hold1 *widget.Check
	hold2 *widget.Check

	mock *board.Mock
}

func createPanel(state *appState) fyne.CanvasObject {
	p := &panel{
		temperature: widget.NewLabel("-"),
		level:       widget.NewLabel("-"),
		code:        widget.NewLabel("-"),
		mode:        widget.NewLabel("disconnected"),
		calibration: widget.NewLabel("-"),
		unit:        widget.NewLabel("-"),
		backlight:   canvas.NewRectangle(imgcolor.Black),
	}
	p.backlight.SetMinSize(fyne.NewSize(48, 24))

	p.hold1 = widget.NewCheck("Hold SW1", func(on bool) { p.hold(board.SW1, on) })
	p.hold2 = widget.NewCheck("Hold SW2", func(on bool) { p.hold(board.SW2, on) })
	p.hold1.Disable()
	p.hold2.Disable()
	state.panel = p

	form := widget.NewForm(
		widget.NewFormItem("Temperature", p.temperature),
		widget.NewFormItem("Output level", p.level),
		widget.NewFormItem("DAC code", p.code),
		widget.NewFormItem("Mode", p.mode),
		widget.NewFormItem("Calibration", p.calibration),
		widget.NewFormItem("Unit", p.unit),
		widget.NewFormItem("Backlight", container.NewHBox(p.backlight)),
	)

	return container.NewVBox(form, widget.NewSeparator(), container.NewHBox(p.hold1, p.hold2))
}

// attach binds the panel to a running session.
func (p *panel) attach(s *session) {
	p.mock = s.mock
	if p.mock != nil {
		p.hold1.Enable()
		p.hold2.Enable()
	}

	s.ctrl.OnUpdate(func(st thermo.Status) {
		fyne.Do(func() { p.show(st) })
	})
	p.show(s.ctrl.Status())
}

// detach resets the panel after the session is closed.
func (p *panel) detach() {
	p.mock = nil
	p.hold1.SetChecked(false)
	p.hold2.SetChecked(false)
	p.hold1.Disable()
	p.hold2.Disable()

	p.temperature.SetText("-")
	p.level.SetText("-")
	p.code.SetText("-")
	p.mode.SetText("disconnected")
	p.calibration.SetText("-")
	p.unit.SetText("-")
	p.backlight.FillColor = imgcolor.Black
	p.backlight.Refresh()
}

func (p *panel) show(st thermo.Status) {
	p.temperature.SetText(fmt.Sprintf("%.1f °F", st.Temperature))
	p.level.SetText(fmt.Sprintf("%.0f", st.Level))
	p.code.SetText(fmt.Sprintf("%d", st.Code))

	mode := st.Mode.String()
	if st.Mode == thermo.ModeCalibrate {
		mode = fmt.Sprintf("%s (%s)", mode, st.CalState)
	}
	p.mode.SetText(mode)

	rec := st.Record
	cal := fmt.Sprintf("min %.2f  max %.2f", rec.CalLow, rec.CalHigh)
	if !rec.CalibrationComplete {
		cal += "  (factory)"
	}
	p.calibration.SetText(cal)
	p.unit.SetText(fmt.Sprintf("%s  v%d", rec.UnitID, rec.SchemaVersion))

	p.backlight.FillColor = swatch(color.Wheel(rec.DisplayHue))
	p.backlight.Refresh()
}

func (p *panel) hold(sw board.Switch, on bool) {
	if p.mock == nil {
		return
	}
	if on {
		p.mock.Press(sw)
	} else {
		p.mock.Release(sw)
	}
}

// swatch scales 12-bit drive levels to a display color.
func swatch(c color.RGB) imgcolor.NRGBA {
	return imgcolor.NRGBA{
		R: uint8(c.R >> 4),
		G: uint8(c.G >> 4),
		B: uint8(c.B >> 4),
		A: 0xFF,
	}
}
