// Package bitmap implements the two on-disk allocation bitmaps (one for
// blocks, one for inodes) described in spec.md §4.3. Both are instances of
// the same Allocator, parameterized by where their bitmap region starts and
// how many bits it covers.
package bitmap

import (
	bm "github.com/boljen/go-bitmap"

	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

// bitsPerBlock is the number of bits a single on-disk block can hold: one
// bit per byte-bit, 8 bits/byte * block.Size bytes/block.
const bitsPerBlock = block.Size * 8

// Allocator finds, sets, and clears bits in a bitmap region that starts at
// StartBlock and covers NumBits total bits (bit 0 is the first bit of the
// region, not of the image).
type Allocator struct {
	dev        *block.Device
	StartBlock uint32
	NumBits    uint32
}

// New constructs an Allocator over the bitmap region beginning at startBlock
// and covering numBits bits.
func New(dev *block.Device, startBlock, numBits uint32) *Allocator {
	return &Allocator{dev: dev, StartBlock: startBlock, NumBits: numBits}
}

// BlockCount returns how many on-disk blocks this bitmap region occupies.
func BlockCount(numBits uint32) uint32 {
	return (numBits + bitsPerBlock - 1) / bitsPerBlock
}

func (a *Allocator) readRegionBlock(rel uint32) (bm.Bitmap, error) {
	data, err := a.dev.ReadBlock(a.StartBlock + rel)
	if err != nil {
		return nil, err
	}
	return bm.Bitmap(data), nil
}

func (a *Allocator) writeRegionBlock(rel uint32, bitmapBlock bm.Bitmap) error {
	return a.dev.WriteBlock(a.StartBlock+rel, bitmapBlock.Data(false))
}

// IsSet reports whether bit i is currently allocated.
func (a *Allocator) IsSet(i uint32) (bool, error) {
	if i >= a.NumBits {
		return false, vfserr.WithMessage(vfserr.OutOfRange, "bit index out of range")
	}
	block, err := a.readRegionBlock(i / bitsPerBlock)
	if err != nil {
		return false, err
	}
	return block.Get(int(i % bitsPerBlock)), nil
}

// AllocateFirstClear scans the bitmap linearly, lowest index first, for the
// first clear bit, sets it, rewrites the affected bitmap block, and returns
// the bit's index. It does not touch the superblock's free counters — the
// caller owns that, since it also knows which counter (blocks vs. inodes)
// applies.
func (a *Allocator) AllocateFirstClear() (uint32, error) {
	numBlocks := BlockCount(a.NumBits)

	for rel := uint32(0); rel < numBlocks; rel++ {
		bitmapBlock, err := a.readRegionBlock(rel)
		if err != nil {
			return 0, err
		}

		base := rel * bitsPerBlock
		limit := bitsPerBlock
		if base+uint32(limit) > a.NumBits {
			limit = int(a.NumBits - base)
		}

		for i := 0; i < limit; i++ {
			if !bitmapBlock.Get(i) {
				bitmapBlock.Set(i, true)
				if err := a.writeRegionBlock(rel, bitmapBlock); err != nil {
					return 0, err
				}
				return base + uint32(i), nil
			}
		}
	}

	return 0, vfserr.New(vfserr.NoSpace)
}

// Free clears bit i. Freeing a bit that's already clear is a consistency
// violation reported as Corrupt.
func (a *Allocator) Free(i uint32) error {
	if i >= a.NumBits {
		return vfserr.WithMessage(vfserr.OutOfRange, "bit index out of range")
	}

	rel := i / bitsPerBlock
	bitmapBlock, err := a.readRegionBlock(rel)
	if err != nil {
		return err
	}

	offset := int(i % bitsPerBlock)
	if !bitmapBlock.Get(offset) {
		return vfserr.WithMessage(vfserr.Corrupt, "freeing an already-free bit")
	}

	bitmapBlock.Set(offset, false)
	return a.writeRegionBlock(rel, bitmapBlock)
}

// MarkAllocated force-sets bit i without checking its previous state. Used
// only by Mkfs to seed reserved bits (metadata blocks, inode 0, the root
// inode) in a brand-new bitmap.
func (a *Allocator) MarkAllocated(i uint32) error {
	if i >= a.NumBits {
		return vfserr.WithMessage(vfserr.OutOfRange, "bit index out of range")
	}
	rel := i / bitsPerBlock
	bitmapBlock, err := a.readRegionBlock(rel)
	if err != nil {
		return err
	}
	bitmapBlock.Set(int(i%bitsPerBlock), true)
	return a.writeRegionBlock(rel, bitmapBlock)
}

// CountClear returns the number of clear bits across the whole region. Used
// to cross-check the superblock's free counters against the actual bitmap.
func (a *Allocator) CountClear() (uint32, error) {
	numBlocks := BlockCount(a.NumBits)
	clear := uint32(0)

	for rel := uint32(0); rel < numBlocks; rel++ {
		bitmapBlock, err := a.readRegionBlock(rel)
		if err != nil {
			return 0, err
		}
		base := rel * bitsPerBlock
		limit := bitsPerBlock
		if base+uint32(limit) > a.NumBits {
			limit = int(a.NumBits - base)
		}
		for i := 0; i < limit; i++ {
			if !bitmapBlock.Get(i) {
				clear++
			}
		}
	}
	return clear, nil
}
