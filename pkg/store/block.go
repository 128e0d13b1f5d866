package store

import (
	"fmt"
	"io"
)

// BlockDevice is flash memory that must be erased in blocks before it is
// written, such as machine.Flash under TinyGo.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

// Block emulates byte addressable EEPROM on a BlockDevice. Every write
// rewrites the erase blocks it touches.
type Block struct {
	dev BlockDevice
}

var _ Medium = Block{}

// NewBlock wraps dev.
func NewBlock(dev BlockDevice) Block {
	return Block{dev: dev}
}

// ReadAt implements io.ReaderAt.
func (b Block) ReadAt(p []byte, off int64) (int, error) {
	return b.dev.ReadAt(p, off)
}

// WriteAt implements io.WriterAt with a read-modify-erase-write cycle.
func (b Block) WriteAt(p []byte, off int64) (int, error) {
	size := b.dev.EraseBlockSize()
	if size <= 0 {
		return 0, fmt.Errorf("invalid erase block size %d", size)
	}
	start := off / size
	end := (off + int64(len(p)) + size - 1) / size

	buf := make([]byte, (end-start)*size)
	if _, err := b.dev.ReadAt(buf, start*size); err != nil {
		return 0, fmt.Errorf("failed to read flash block: %w", err)
	}
	copy(buf[off-start*size:], p)

	if err := b.dev.EraseBlocks(start, end-start); err != nil {
		return 0, fmt.Errorf("failed to erase flash block: %w", err)
	}
	if _, err := b.dev.WriteAt(buf, start*size); err != nil {
		return 0, fmt.Errorf("failed to write flash block: %w", err)
	}
	return len(p), nil
}
