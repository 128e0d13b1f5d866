// Package store persists the unit configuration record.
//
// The record lives at a fixed offset of a non-volatile medium and starts with
// a schema version tag. Stored bytes are trusted only when that tag equals the
// version the store was built for; anything else, including blank storage, is
// replaced with compiled-in defaults which are written back immediately.
package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/itohio/nixietherm/pkg/record"
)

// Volatile is the schema version of builds that never commit to storage.
// Such builds boot with defaults every time.
const Volatile uint8 = 0

// Store loads and saves the configuration record.
type Store struct {
	medium  Medium
	version uint8
	unit    string
	offset  int64
	console io.Writer
}

// Option configures a Store.
type Option func(*Store)

// WithOffset places the record at off instead of the start of the medium.
func WithOffset(off int64) Option {
	return func(s *Store) {
		s.offset = off
	}
}

// WithConsole sets the writer for diagnostic text.
func WithConsole(w io.Writer) Option {
	return func(s *Store) {
		if w != nil {
			s.console = w
		}
	}
}

// New creates a store for records of the given schema version. unit selects
// the compiled-in defaults.
func New(medium Medium, version uint8, unit string, opts ...Option) *Store {
	s := &Store{
		medium:  medium,
		version: version,
		unit:    unit,
		console: io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the schema version the store expects.
func (s *Store) Version() uint8 {
	return s.version
}

// Defaults returns the compiled-in record of this store.
func (s *Store) Defaults() record.Record {
	return record.Defaults(s.version, s.unit)
}

// Load reads the stored record. valid reports whether the stored version tag
// matched; when it did not, the defaults are returned and persisted.
func (s *Store) Load() (rec record.Record, valid bool, err error) {
	buf := make([]byte, Size)
	if err := s.read(buf); err != nil {
		return record.Record{}, false, err
	}

	stored := buf[offVersion]
	fmt.Fprintf(s.console, "EEPROM Stored Version   = %d\n", stored)
	fmt.Fprintf(s.console, "EEPROM Required Version = %d\n", s.version)

	if s.version != Volatile && stored == s.version {
		rec, err := Decode(buf)
		if err != nil {
			return record.Record{}, false, err
		}
		fmt.Fprintln(s.console, "Stored Config loaded")
		fmt.Fprintf(s.console, "loaded %d bytes\n", Size)
		return rec, true, nil
	}

	fmt.Fprintln(s.console, "Config NOT loaded, using defaults")
	rec = s.Defaults()
	if _, err := s.Save(&rec); err != nil {
		return rec, false, err
	}
	return rec, false, nil
}

// Peek decodes the stored bytes without persisting anything. valid reports
// whether the stored version tag matches the store's version.
func (s *Store) Peek() (rec record.Record, valid bool, err error) {
	buf := make([]byte, Size)
	if err := s.read(buf); err != nil {
		return record.Record{}, false, err
	}
	rec, err = Decode(buf)
	if err != nil {
		return record.Record{}, false, err
	}
	return rec, s.version != Volatile && rec.SchemaVersion == s.version, nil
}

// Save stamps rec with the store's schema version and overwrites the stored
// record in a single write. It reports false without touching the medium when
// the store is Volatile.
func (s *Store) Save(rec *record.Record) (bool, error) {
	if s.version == Volatile {
		return false, nil
	}

	out := *rec
	out.SchemaVersion = s.version
	buf, err := Encode(out)
	if err != nil {
		return false, fmt.Errorf("failed to encode record: %w", err)
	}

	n, err := s.medium.WriteAt(buf, s.offset)
	if err != nil {
		return false, fmt.Errorf("failed to write record: %w", err)
	}
	if n != len(buf) {
		return false, fmt.Errorf("failed to write record: short write %d of %d bytes", n, len(buf))
	}

	rec.SchemaVersion = s.version
	fmt.Fprintf(s.console, "Saved %d bytes\n", n)
	return true, nil
}

// read fills buf from the record offset. Bytes beyond the end of the medium
// read as blank.
func (s *Store) read(buf []byte) error {
	n, err := s.medium.ReadAt(buf, s.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read record: %w", err)
	}
	for i := n; i < len(buf); i++ {
		buf[i] = Blank
	}
	return nil
}
