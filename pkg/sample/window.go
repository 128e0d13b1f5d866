// Package sample smooths temperature readings before they reach the display.
package sample

import "github.com/chewxy/math32"

// Window is a moving average over the most recent readings.
// A window of size 1 passes readings through unchanged.
type Window struct {
	buf  []float32
	next int
	n    int
}

// NewWindow creates a window averaging the last size readings.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 1 // No averaging if invalid
	}
	return &Window{buf: make([]float32, size)}
}

// Add pushes a reading and returns the new average. NaN and infinite
// readings are dropped.
func (w *Window) Add(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return w.Mean()
	}

	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.n < len(w.buf) {
		w.n++
	}
	return w.Mean()
}

// Mean returns the average of the buffered readings, or NaN when empty.
func (w *Window) Mean() float32 {
	if w.n == 0 {
		return math32.NaN()
	}

	var sum float32
	for i := 0; i < w.n; i++ {
		sum += w.buf[i]
	}
	return sum / float32(w.n)
}

// Len returns the number of buffered readings.
func (w *Window) Len() int {
	return w.n
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return len(w.buf)
}

// Reset drops all buffered readings.
func (w *Window) Reset() {
	w.next = 0
	w.n = 0
}
