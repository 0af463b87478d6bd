package bitmap_test

import (
	"testing"

	"github.com/PipeG09/UM-vfs-base-2025/bitmap"
	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newAllocator(t *testing.T, numBits uint32) (*block.Device, *bitmap.Allocator) {
	t.Helper()
	numBlocks := bitmap.BlockCount(numBits) + 1
	buf := make([]byte, int(numBlocks)*block.Size)
	dev := block.NewDevice(bytesextra.NewReadWriteSeeker(buf), numBlocks)
	return dev, bitmap.New(dev, 0, numBits)
}

func TestAllocateFirstClearIsLowestIndex(t *testing.T) {
	_, alloc := newAllocator(t, 100)

	first, err := alloc.AllocateFirstClear()
	require.NoError(t, err)
	require.EqualValues(t, 0, first)

	second, err := alloc.AllocateFirstClear()
	require.NoError(t, err)
	require.EqualValues(t, 1, second)

	set, err := alloc.IsSet(0)
	require.NoError(t, err)
	require.True(t, set)
}

func TestFreeThenReallocate(t *testing.T) {
	_, alloc := newAllocator(t, 10)

	for i := 0; i < 10; i++ {
		_, err := alloc.AllocateFirstClear()
		require.NoError(t, err)
	}

	_, err := alloc.AllocateFirstClear()
	require.Error(t, err)

	require.NoError(t, alloc.Free(3))
	next, err := alloc.AllocateFirstClear()
	require.NoError(t, err)
	require.EqualValues(t, 3, next)
}

func TestFreeAlreadyFreeIsCorrupt(t *testing.T) {
	_, alloc := newAllocator(t, 10)
	err := alloc.Free(5)
	require.Error(t, err)
	require.ErrorIs(t, err, vfserr.New(vfserr.Corrupt))
}

func TestAllocateSpansMultipleBlocks(t *testing.T) {
	// bitsPerBlock is 8192; request enough bits to force a second block.
	_, alloc := newAllocator(t, 9000)

	for i := uint32(0); i < 8192; i++ {
		require.NoError(t, alloc.MarkAllocated(i))
	}

	next, err := alloc.AllocateFirstClear()
	require.NoError(t, err)
	require.EqualValues(t, 8192, next)
}

func TestCountClear(t *testing.T) {
	_, alloc := newAllocator(t, 16)
	for i := 0; i < 5; i++ {
		_, err := alloc.AllocateFirstClear()
		require.NoError(t, err)
	}
	clear, err := alloc.CountClear()
	require.NoError(t, err)
	require.EqualValues(t, 11, clear)
}
