package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/itohio/nixietherm/pkg/record"
)

// Layout of the persisted record. All multi-byte fields are little endian.
//
//	off  len  field
//	  0    1  schema version
//	  1    1  unit id length
//	  2   16  unit id bytes, zero padded
//	 18    2  display hue (12 bit)
//	 20    4  calLow  (IEEE-754 binary32)
//	 24    4  calHigh (IEEE-754 binary32)
//	 28    1  calibration complete (0 or 1)
const (
	offVersion  = 0
	offUnitLen  = 1
	offUnit     = 2
	offHue      = offUnit + MaxUnitLen
	offCalLow   = offHue + 2
	offCalHigh  = offCalLow + 4
	offComplete = offCalHigh + 4

	// MaxUnitLen is the longest unit id that fits the record.
	MaxUnitLen = 16
	// Size is the encoded size of a record in bytes.
	Size = offComplete + 1
)

var (
	// ErrUnitTooLong is returned when the unit id does not fit the record.
	ErrUnitTooLong = errors.New("unit id too long")
	// ErrHueRange is returned when the display hue exceeds 12 bits.
	ErrHueRange = errors.New("display hue out of range")
)

// maxHue mirrors the 12-bit hue space of the backlight.
const maxHue = 1<<12 - 1

// Encode serializes rec into its fixed binary layout.
func Encode(rec record.Record) ([]byte, error) {
	if len(rec.UnitID) > MaxUnitLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, max %d", ErrUnitTooLong, rec.UnitID, len(rec.UnitID), MaxUnitLen)
	}
	if rec.DisplayHue > maxHue {
		return nil, fmt.Errorf("%w: %d", ErrHueRange, rec.DisplayHue)
	}

	buf := make([]byte, Size)
	buf[offVersion] = rec.SchemaVersion
	buf[offUnitLen] = byte(len(rec.UnitID))
	copy(buf[offUnit:offUnit+MaxUnitLen], rec.UnitID)
	binary.LittleEndian.PutUint16(buf[offHue:], rec.DisplayHue)
	binary.LittleEndian.PutUint32(buf[offCalLow:], math32.Float32bits(rec.CalLow))
	binary.LittleEndian.PutUint32(buf[offCalHigh:], math32.Float32bits(rec.CalHigh))
	if rec.CalibrationComplete {
		buf[offComplete] = 1
	}
	return buf, nil
}

// Decode deserializes a record from buf, which must hold at least Size bytes.
// Decode does not judge whether the bytes are trustworthy; that is decided by
// the version tag alone. The hue is masked to 12 bits so every decoded record
// can be encoded again.
func Decode(buf []byte) (record.Record, error) {
	if len(buf) < Size {
		return record.Record{}, fmt.Errorf("short record: %d bytes, need %d", len(buf), Size)
	}

	n := int(buf[offUnitLen])
	if n > MaxUnitLen {
		n = MaxUnitLen
	}

	return record.Record{
		SchemaVersion:       buf[offVersion],
		UnitID:              string(buf[offUnit : offUnit+n]),
		DisplayHue:          binary.LittleEndian.Uint16(buf[offHue:]) & maxHue,
		CalLow:              math32.Float32frombits(binary.LittleEndian.Uint32(buf[offCalLow:])),
		CalHigh:             math32.Float32frombits(binary.LittleEndian.Uint32(buf[offCalHigh:])),
		CalibrationComplete: buf[offComplete] != 0,
	}, nil
}
