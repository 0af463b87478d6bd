package block_test

import (
	"testing"

	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newDevice(t *testing.T, totalBlocks uint32) *block.Device {
	t.Helper()
	buf := make([]byte, int(totalBlocks)*block.Size)
	stream := bytesextra.NewReadWriteSeeker(buf)
	return block.NewDevice(stream, totalBlocks)
}

func TestReadWriteRoundTrip(t *testing.T) {
	dev := newDevice(t, 4)

	data := make([]byte, block.Size)
	for i := range data {
		data[i] = byte(i % 251)
	}

	require.NoError(t, dev.WriteBlock(2, data))

	readBack, err := dev.ReadBlock(2)
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}

func TestReadBlockOutOfRange(t *testing.T) {
	dev := newDevice(t, 2)
	_, err := dev.ReadBlock(2)
	require.Error(t, err)
}

func TestWriteBlockWrongSize(t *testing.T) {
	dev := newDevice(t, 2)
	err := dev.WriteBlock(0, make([]byte, 10))
	require.Error(t, err)
}

func TestZeroBlock(t *testing.T) {
	dev := newDevice(t, 2)
	data := make([]byte, block.Size)
	for i := range data {
		data[i] = 0xFF
	}
	require.NoError(t, dev.WriteBlock(0, data))
	require.NoError(t, dev.ZeroBlock(0))
	data, err := dev.ReadBlock(0)
	require.NoError(t, err)
	for _, b := range data {
		require.Equal(t, byte(0), b)
	}
}
