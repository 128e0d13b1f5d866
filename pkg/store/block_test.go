package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/nixietherm/pkg/record"
)

// fakeFlash is a block device that refuses writes to unerased bytes.
type fakeFlash struct {
	*Memory
	blockSize int64
	erases    [][2]int64
}

func newFakeFlash(blocks int, blockSize int64) *fakeFlash {
	return &fakeFlash{Memory: NewMemory(blocks * int(blockSize)), blockSize: blockSize}
}

func (f *fakeFlash) EraseBlockSize() int64 { return f.blockSize }

func (f *fakeFlash) EraseBlocks(start, length int64) error {
	f.erases = append(f.erases, [2]int64{start, length})
	for i := start * f.blockSize; i < (start+length)*f.blockSize; i++ {
		f.data[i] = Blank
	}
	return nil
}

func (f *fakeFlash) WriteAt(p []byte, off int64) (int, error) {
	for i := range p {
		if f.data[off+int64(i)] != Blank {
			return 0, errors.New("write to unerased flash")
		}
	}
	return f.Memory.WriteAt(p, off)
}

func TestBlock_RewriteKeepsNeighbours(t *testing.T) {
	dev := newFakeFlash(4, 64)
	b := NewBlock(dev)

	_, err := b.WriteAt([]byte{1, 2, 3}, 10)
	require.NoError(t, err)
	_, err = b.WriteAt([]byte{9}, 11)
	require.NoError(t, err)

	img := dev.Bytes()
	assert.Equal(t, []byte{1, 9, 3}, img[10:13])
	assert.Equal(t, [][2]int64{{0, 1}, {0, 1}}, dev.erases)
}

func TestBlock_SpansBlocks(t *testing.T) {
	dev := newFakeFlash(4, 16)
	b := NewBlock(dev)

	_, err := b.WriteAt(make([]byte, 20), 10)
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{0, 2}}, dev.erases)
}

func TestBlock_StoreRoundTrip(t *testing.T) {
	dev := newFakeFlash(2, 256)
	s := New(NewBlock(dev), 109, "SN1")

	rec, valid, err := s.Load()
	require.NoError(t, err)
	assert.False(t, valid)

	rec.CalHigh = 3240
	_, err = s.Save(&rec)
	require.NoError(t, err)

	got, valid, err := s.Load()
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, rec, got)
	assert.Equal(t, record.Defaults(109, "SN1").CalLow, got.CalLow)
}
