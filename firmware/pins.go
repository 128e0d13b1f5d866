//go:build tinygo

package main

import "machine"

const (
	// Persistence
	SCHEMA_VERSION = 109 // Bump when the record layout changes; 0 never persists
	STORE_OFFSET   = 0   // Record offset within the flash data area

	// Display configuration
	UPDATE_INTERVAL_MS = 1000 // Cathode refresh period in milliseconds
	AVERAGE_SAMPLES    = 4    // Temperature readings in the moving average

	// Switch notifications
	EDGE_POLL_MS = 5 // Period of the edge forwarding loop in milliseconds

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Cathode DAC (A0 is the only DAC capable pin)
	PIN_DAC = machine.A0

	// Temperature sensor (TMP36: 500mV offset, 10mV/°C)
	PIN_SENSOR = machine.A1

	// Operator switches, active low with pull-ups
	PIN_SWITCH_1 = machine.D1
	PIN_SWITCH_2 = machine.D2

	// Backlight
	PIN_LED_RED = machine.D8
	PIN_LED_GRN = machine.D9
	PIN_LED_BLU = machine.D10
)

// Unit selects the compiled-in calibration defaults.
// Override with -ldflags "-X main.Unit=SN3".
var Unit = "SN2"
