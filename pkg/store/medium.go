package store

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Blank is the value of an erased storage byte.
const Blank = 0xFF

// ErrOutOfRange is returned when a write does not fit the medium.
var ErrOutOfRange = errors.New("write out of range")

// Medium is byte addressable non-volatile storage.
type Medium interface {
	io.ReaderAt
	io.WriterAt
}

// Memory is an in-memory EEPROM image. A new image is blank.
type Memory struct {
	data []byte
}

var _ Medium = (*Memory)(nil)

// NewMemory creates a blank image of size bytes.
func NewMemory(size int) *Memory {
	m := &Memory{data: make([]byte, size)}
	for i := range m.data {
		m.data[i] = Blank
	}
	return m
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("%w: %d bytes at %d, size %d", ErrOutOfRange, len(p), off, len(m.data))
	}
	return copy(m.data[off:], p), nil
}

// Bytes returns a copy of the image.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Len returns the image size in bytes.
func (m *Memory) Len() int {
	return len(m.data)
}

// File is an EEPROM image kept in a regular file, used by host tools and the
// bench. Bytes past the end of the file read as blank.
type File struct {
	f *os.File
}

var _ Medium = (*File)(nil)

// OpenFile opens or creates an image file.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store image %s: %w", path, err)
	}
	return &File{f: f}, nil
}

// ReadAt implements io.ReaderAt. A read past the end of the file is padded
// with Blank and is not an error.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.f.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	for i := n; i < len(p); i++ {
		p[i] = Blank
	}
	return len(p), nil
}

// WriteAt implements io.WriterAt and syncs the file afterwards.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	n, err := f.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	if err := f.f.Sync(); err != nil {
		return n, fmt.Errorf("failed to sync store image: %w", err)
	}
	return n, nil
}

// Close closes the image file.
func (f *File) Close() error {
	return f.f.Close()
}

// Clear erases the first n bytes of m.
func Clear(m Medium, n int) error {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = Blank
	}
	if _, err := m.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Dump lists the first n bytes of m, one address per line.
func Dump(w io.Writer, m Medium, n int) error {
	buf := make([]byte, n)
	if _, err := m.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read store: %w", err)
	}

	fmt.Fprintln(w, "EEPROM contents:")
	for i, b := range buf {
		fmt.Fprintf(w, "Addr 0x%X = %d\n", i, b)
	}
	fmt.Fprintln(w)
	return nil
}
