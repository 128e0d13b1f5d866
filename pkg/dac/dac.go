// Package dac converts temperature readings into drive levels for the dynamic
// cathode of the nixie tube.
//
// The cathode transistor starts conducting at roughly 0.7V, about 869 counts
// of the 12-bit DAC, and saturates well below full scale because of transistor
// gain. FullOff and FullOn bound the usable range; nothing outside it is ever
// written to the DAC.
package dac

import "github.com/chewxy/math32"

// Calibration constants. These are properties of the hardware and are not
// persisted.
const (
	FullOn    float32 = 2900.0
	FullOff   float32 = 700.0
	MinTemp   float32 = 60.0
	MaxTemp   float32 = 90.0
	CalTempLo float32 = 65.0
	CalTempHi float32 = 85.0
)

// MaxCode is the largest value accepted by the 12-bit DAC.
const MaxCode = 4095

// Clamp saturates v into [FullOff, FullOn]. NaN is treated as FullOff.
func Clamp(v float32) float32 {
	if math32.IsNaN(v) {
		return FullOff
	}
	return math32.Max(FullOff, math32.Min(FullOn, v))
}

// Map interpolates degs linearly between the two calibration points
// (CalTempLo, calLow) and (CalTempHi, calHigh) and saturates the result.
// Temperatures outside [MinTemp, MaxTemp] are extrapolated, then clamped.
// The reference temperatures map to exactly Clamp(calLow) and Clamp(calHigh).
func Map(degs, calLow, calHigh float32) float32 {
	t := (degs - CalTempLo) / (CalTempHi - CalTempLo)
	return Clamp(calLow*(1-t) + calHigh*t)
}

// Code converts a drive level into a DAC code. The fractional part is
// truncated.
func Code(level float32) uint16 {
	level = Clamp(level)
	if level > MaxCode {
		return MaxCode
	}
	return uint16(level)
}
