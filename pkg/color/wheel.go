// Package color drives the RGB backlight behind the nixie tube.
package color

// MaxHue is the largest value of the 12-bit hue space.
const MaxHue = 4095

// Named hues on the wheel.
const (
	Red    uint16 = 0
	Yellow uint16 = 682
	Green  uint16 = 1365
	Teal   uint16 = 2047
	Blue   uint16 = 2730
	Violet uint16 = 3412
)

// wedge is the width of one of the three segments of the wheel.
const wedge = MaxHue / 3

// RGB holds 12-bit drive levels for the three LED channels.
type RGB struct {
	R, G, B uint16
}

// Off is all channels dark.
var Off = RGB{}

// Wheel maps a 12-bit hue onto three LED drive levels.
// 0 is red, 1365 green, 2730 blue and 4095 wraps back to red.
func Wheel(hue uint16) RGB {
	if hue > MaxHue {
		hue = MaxHue
	}

	switch {
	case hue < wedge: // R -> G
		c := hue * 3
		return RGB{R: MaxHue - c, G: c}
	case hue < 2*wedge: // G -> B
		c := (hue - wedge) * 3
		return RGB{G: MaxHue - c, B: c}
	default: // B -> R
		c := (hue - 2*wedge) * 3
		return RGB{R: c, B: MaxHue - c}
	}
}

// Next advances hue by one step, wrapping past MaxHue to 0.
func Next(hue uint16) uint16 {
	hue++
	if hue > MaxHue {
		return 0
	}
	return hue
}
