package sample

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestWindow_Average(t *testing.T) {
	w := NewWindow(3)

	assert.True(t, math32.IsNaN(w.Mean()))
	assert.Equal(t, float32(70), w.Add(70))
	assert.Equal(t, float32(71), w.Add(72))
	assert.Equal(t, float32(72), w.Add(74))
	// Oldest reading (70) drops out.
	assert.Equal(t, float32(74), w.Add(76))
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 3, w.Size())
}

func TestWindow_InvalidSize(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, 1, w.Size())
	assert.Equal(t, float32(70), w.Add(70))
	assert.Equal(t, float32(80), w.Add(80))
}

func TestWindow_DropsNonFinite(t *testing.T) {
	w := NewWindow(4)
	w.Add(70)
	w.Add(72)

	assert.Equal(t, float32(71), w.Add(math32.NaN()))
	assert.Equal(t, float32(71), w.Add(math32.Inf(1)))
	assert.Equal(t, 2, w.Len())
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(2)
	w.Add(70)
	w.Add(80)
	w.Reset()

	assert.Equal(t, 0, w.Len())
	assert.Equal(t, float32(90), w.Add(90))
}
