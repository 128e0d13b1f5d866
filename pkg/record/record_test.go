package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		unit    string
		wantID  string
		wantLow float32
		wantHi  float32
	}{
		{unit: "SN1", wantID: "SN1", wantLow: 702, wantHi: 3244},
		{unit: "SN2", wantID: "SN2", wantLow: 750, wantHi: 2900},
		{unit: "SN3", wantID: "SN3", wantLow: 750, wantHi: 2900},
		{unit: "", wantID: "SN2", wantLow: 750, wantHi: 2900},
		{unit: "SN9", wantID: "SN9", wantLow: 750, wantHi: 2900},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			rec := Defaults(109, tt.unit)
			assert.Equal(t, uint8(109), rec.SchemaVersion)
			assert.Equal(t, tt.wantID, rec.UnitID)
			assert.Equal(t, tt.wantLow, rec.CalLow)
			assert.Equal(t, tt.wantHi, rec.CalHigh)
			assert.Equal(t, DefaultHue, rec.DisplayHue)
			assert.False(t, rec.CalibrationComplete)
		})
	}
}

func TestRecord_Print(t *testing.T) {
	var buf bytes.Buffer
	Defaults(109, "SN3").Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "cfg.vers        : 109")
	assert.Contains(t, out, "cfg.serialNum   : SN3")
	assert.Contains(t, out, "cfg.calValLow   : 750.00")
	assert.Contains(t, out, "cfg.calComplete : false")
}
