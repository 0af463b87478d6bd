// Package block is the lowest layer of the filesystem: positional,
// fixed-size I/O against whatever stream backs the disk image.
package block

import (
	"io"

	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

// Size is the fixed block size of the filesystem, in bytes.
const Size = 1024

// Device is a thin wrapper around an io.ReadWriteSeeker that makes it look
// like a stream of fixed-size blocks. Every Read/Write is a positional
// transfer; the Device keeps no cache of block contents across calls, so a
// successful Write is immediately durable as far as this layer is concerned.
//
// Per the design note on re-entrant vs. handle-based I/O, this holds the
// stream open for the lifetime of one CLI invocation rather than reopening
// the image file on every call.
type Device struct {
	stream      io.ReadWriteSeeker
	TotalBlocks uint32
}

// NewDevice wraps stream as a block device with the given total block count.
// totalBlocks is informational for bounds checking; it is not derived from
// the stream's length here because during Mkfs the stream is still being
// sized.
func NewDevice(stream io.ReadWriteSeeker, totalBlocks uint32) *Device {
	return &Device{stream: stream, TotalBlocks: totalBlocks}
}

// DetermineBlockCount returns the number of whole blocks in stream, rounded
// down.
func DetermineBlockCount(stream io.Seeker) (uint32, error) {
	offset, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, vfserr.Wrap(vfserr.IO, err)
	}
	return uint32(offset / Size), nil
}

func (d *Device) offsetOf(n uint32) int64 {
	return int64(n) * Size
}

// ReadBlock reads exactly one Size-byte block at block number n.
func (d *Device) ReadBlock(n uint32) ([]byte, error) {
	if n >= d.TotalBlocks {
		return nil, vfserr.WithMessage(vfserr.OutOfRange, "block number out of range")
	}

	if _, err := d.stream.Seek(d.offsetOf(n), io.SeekStart); err != nil {
		return nil, vfserr.Wrap(vfserr.IO, err)
	}

	buf := make([]byte, Size)
	read := 0
	for read < Size {
		n, err := d.stream.Read(buf[read:])
		if n > 0 {
			read += n
		}
		if err != nil {
			if err == io.EOF && read == Size {
				break
			}
			return nil, vfserr.Wrap(vfserr.IO, err)
		}
		if n == 0 {
			break
		}
	}
	if read != Size {
		return nil, vfserr.WithMessage(vfserr.IO, "short read")
	}
	return buf, nil
}

// WriteBlock writes exactly one Size-byte block at block number n. data must
// be exactly Size bytes long.
func (d *Device) WriteBlock(n uint32, data []byte) error {
	if n >= d.TotalBlocks {
		return vfserr.WithMessage(vfserr.OutOfRange, "block number out of range")
	}
	if len(data) != Size {
		return vfserr.WithMessage(vfserr.IO, "write buffer is not one block long")
	}

	if _, err := d.stream.Seek(d.offsetOf(n), io.SeekStart); err != nil {
		return vfserr.Wrap(vfserr.IO, err)
	}

	written, err := d.stream.Write(data)
	if err != nil {
		return vfserr.Wrap(vfserr.IO, err)
	}
	if written != Size {
		return vfserr.WithMessage(vfserr.IO, "short write")
	}
	return nil
}

// ZeroBlock writes a block of nulls at block number n.
func (d *Device) ZeroBlock(n uint32) error {
	return d.WriteBlock(n, make([]byte, Size))
}
