package store

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/nixietherm/pkg/record"
)

func TestEncode_Layout(t *testing.T) {
	rec := record.Record{
		SchemaVersion:       109,
		UnitID:              "SN2",
		DisplayHue:          2730,
		CalLow:              750,
		CalHigh:             2900,
		CalibrationComplete: true,
	}

	buf, err := Encode(rec)
	require.NoError(t, err)
	require.Len(t, buf, Size)
	assert.Equal(t, 29, Size)

	assert.Equal(t, byte(109), buf[0], "version tag comes first")
	assert.Equal(t, byte(3), buf[1])
	assert.Equal(t, []byte("SN2"), buf[2:5])
	assert.Equal(t, make([]byte, MaxUnitLen-3), buf[5:18])
	assert.Equal(t, uint16(2730), binary.LittleEndian.Uint16(buf[18:]))
	assert.Equal(t, math32.Float32bits(750), binary.LittleEndian.Uint32(buf[20:]))
	assert.Equal(t, math32.Float32bits(2900), binary.LittleEndian.Uint32(buf[24:]))
	assert.Equal(t, byte(1), buf[28])
}

func TestDecode_Lenient(t *testing.T) {
	buf := make([]byte, Size)
	for i := range buf {
		buf[i] = Blank
	}
	buf[0] = 109

	rec, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint8(109), rec.SchemaVersion)
	assert.Len(t, rec.UnitID, MaxUnitLen)
	assert.True(t, rec.CalibrationComplete)
}

func TestDecode_Short(t *testing.T) {
	_, err := Decode(make([]byte, Size-1))
	assert.Error(t, err)
}

func TestEncode_MaxUnit(t *testing.T) {
	rec := record.Record{UnitID: "0123456789abcdef"}
	buf, err := Encode(rec)
	require.NoError(t, err)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, rec.UnitID, got.UnitID)
}

func TestDecode_AlwaysReencodes(t *testing.T) {
	rec := record.Defaults(109, "SN2")
	buf, err := Encode(rec)
	require.NoError(t, err)
	buf[offHue], buf[offHue+1] = Blank, Blank

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(maxHue), got.DisplayHue)

	blank := make([]byte, Size)
	for i := range blank {
		blank[i] = Blank
	}
	for _, b := range [][]byte{buf, blank, make([]byte, Size)} {
		dec, err := Decode(b)
		require.NoError(t, err)
		_, err = Encode(dec)
		assert.NoError(t, err)
	}
}
