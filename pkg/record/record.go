// Package record defines the per-unit configuration record persisted in
// non-volatile memory: calibration points plus display settings.
package record

import (
	"fmt"
	"io"
)

// DefaultHue is the hue a fresh unit starts with (blue on the 12-bit wheel).
const DefaultHue uint16 = 2730

// Record is the single persisted configuration of a unit.
type Record struct {
	SchemaVersion       uint8   `yaml:"schema_version"`
	UnitID              string  `yaml:"unit_id"`
	DisplayHue          uint16  `yaml:"display_hue"`
	CalLow              float32 `yaml:"cal_low"`  // raw output level at the low reference temperature
	CalHigh             float32 `yaml:"cal_high"` // raw output level at the high reference temperature
	CalibrationComplete bool    `yaml:"calibration_complete"`
}

// Variant holds the compiled-in calibration of one build variant.
type Variant struct {
	UnitID  string
	CalLow  float32
	CalHigh float32
}

// Variants lists the known units and their factory calibration.
var Variants = map[string]Variant{
	"SN1": {UnitID: "SN1", CalLow: 702, CalHigh: 3244},
	"SN2": {UnitID: "SN2", CalLow: 750, CalHigh: 2900},
	"SN3": {UnitID: "SN3", CalLow: 750, CalHigh: 2900},
}

// DefaultUnit is used when no unit is selected.
const DefaultUnit = "SN2"

// Lookup returns the variant for unit. Unknown units get the default unit's
// calibration under their own id.
func Lookup(unit string) Variant {
	if unit == "" {
		unit = DefaultUnit
	}
	if v, ok := Variants[unit]; ok {
		return v
	}
	v := Variants[DefaultUnit]
	v.UnitID = unit
	return v
}

// Defaults returns the first power-up record for unit stamped with version.
func Defaults(version uint8, unit string) Record {
	v := Lookup(unit)
	return Record{
		SchemaVersion:       version,
		UnitID:              v.UnitID,
		DisplayHue:          DefaultHue,
		CalLow:              v.CalLow,
		CalHigh:             v.CalHigh,
		CalibrationComplete: false,
	}
}

// Print writes a human readable listing of the record.
func (r Record) Print(w io.Writer) {
	fmt.Fprintf(w, "cfg.vers        : %d\n", r.SchemaVersion)
	fmt.Fprintf(w, "cfg.displayColor: %d\n", r.DisplayHue)
	fmt.Fprintf(w, "cfg.calComplete : %t\n", r.CalibrationComplete)
	fmt.Fprintf(w, "cfg.serialNum   : %s\n", r.UnitID)
	fmt.Fprintf(w, "cfg.calValLow   : %.2f\n", r.CalLow)
	fmt.Fprintf(w, "cfg.calValHigh  : %.2f\n", r.CalHigh)
	fmt.Fprintln(w)
}
