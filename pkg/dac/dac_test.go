package dac

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		degs    float32
		calLow  float32
		calHigh float32
		want    float32
	}{
		{name: "midpoint", degs: 75, calLow: 700, calHigh: 3200, want: 1950},
		{name: "low reference", degs: CalTempLo, calLow: 750, calHigh: 2900, want: 750},
		{name: "high reference", degs: CalTempHi, calLow: 750, calHigh: 2900, want: 2900},
		{name: "below range extrapolates and clamps", degs: 0, calLow: 750, calHigh: 2900, want: FullOff},
		{name: "above range extrapolates and clamps", degs: 200, calLow: 750, calHigh: 2900, want: FullOn},
		{name: "extrapolate inside range", degs: 60, calLow: 1000, calHigh: 2000, want: 750},
		{name: "high reference above full on", degs: CalTempHi, calLow: 702, calHigh: 3244, want: FullOn},
		{name: "inverted points", degs: 70, calLow: 2000, calHigh: 1000, want: 1750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Map(tt.degs, tt.calLow, tt.calHigh), 1e-3)
		})
	}
}

func TestMap_ReferencePointsExact(t *testing.T) {
	points := [][2]float32{{750, 2900}, {702, 3244}, {718, 3400}, {786, 2940}, {600, 1000}}
	for _, p := range points {
		assert.Equal(t, Clamp(p[0]), Map(CalTempLo, p[0], p[1]))
		assert.Equal(t, Clamp(p[1]), Map(CalTempHi, p[0], p[1]))
	}
}

func TestMap_FractionalReferencePointsExact(t *testing.T) {
	rng := rand.New(rand.NewPCG(65, 85))
	span := FullOn - FullOff
	for i := 0; i < 100000; i++ {
		lo := FullOff + rng.Float32()*span
		hi := FullOff + rng.Float32()*span
		if got := Map(CalTempLo, lo, hi); got != lo {
			t.Fatalf("Map(CalTempLo, %v, %v) = %v, want %v", lo, hi, got, lo)
		}
		if got := Map(CalTempHi, lo, hi); got != hi {
			t.Fatalf("Map(CalTempHi, %v, %v) = %v, want %v", lo, hi, got, hi)
		}
	}
}

func TestMap_Monotonic(t *testing.T) {
	calLow, calHigh := float32(750), float32(2900)
	prev := Map(MinTemp, calLow, calHigh)
	for degs := MinTemp; degs <= MaxTemp; degs += 0.25 {
		v := Map(degs, calLow, calHigh)
		assert.GreaterOrEqual(t, v, prev, "degs=%v", degs)
		prev = v
	}
}

func TestMap_AlwaysInRange(t *testing.T) {
	temps := []float32{-1000, -40, 0, 59.9, 60, 75, 90, 90.1, 150, 1e6}
	cals := [][2]float32{{750, 2900}, {2900, 750}, {0, 10000}, {-500, -100}, {5000, 6000}}
	for _, degs := range temps {
		for _, c := range cals {
			v := Map(degs, c[0], c[1])
			assert.GreaterOrEqual(t, v, FullOff)
			assert.LessOrEqual(t, v, FullOn)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, FullOff, Clamp(-1))
	assert.Equal(t, FullOn, Clamp(1e9))
	assert.Equal(t, float32(1234.5), Clamp(1234.5))
	assert.Equal(t, FullOff, Clamp(math32.NaN()))
	assert.Equal(t, FullOn, Clamp(math32.Inf(1)))
	assert.Equal(t, FullOff, Clamp(math32.Inf(-1)))
}

func TestCode(t *testing.T) {
	assert.Equal(t, uint16(1950), Code(1950.9))
	assert.Equal(t, uint16(700), Code(0))
	assert.Equal(t, uint16(2900), Code(5000))
}
