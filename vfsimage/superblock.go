package vfsimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/noxer/bytewriter"

	"github.com/PipeG09/UM-vfs-base-2025/bitmap"
	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

// Superblock is the decoded form of block 0: geometry, bitmap/table
// locations, and the free-resource counters.
type Superblock struct {
	Magic             uint32
	Version           uint32
	TotalBlocks       uint32
	TotalInodes       uint32
	BlockBitmapStart  uint32
	InodeBitmapStart  uint32
	InodeTableStart   uint32
	DataRegionStart   uint32
	FreeBlocks        uint32
	FreeInodes        uint32
}

const superblockEncodedSize = 40

func (sb *Superblock) encode() []byte {
	buf := make([]byte, block.Size)
	w := bytewriter.New(buf[:superblockEncodedSize])
	fields := []uint32{
		sb.Magic, sb.Version, sb.TotalBlocks, sb.TotalInodes,
		sb.BlockBitmapStart, sb.InodeBitmapStart, sb.InodeTableStart,
		sb.DataRegionStart, sb.FreeBlocks, sb.FreeInodes,
	}
	for _, f := range fields {
		binary.Write(w, binary.LittleEndian, f)
	}
	return buf
}

func decodeSuperblock(data []byte) Superblock {
	r := bytes.NewReader(data[:superblockEncodedSize])
	var sb Superblock
	for _, dst := range []*uint32{
		&sb.Magic, &sb.Version, &sb.TotalBlocks, &sb.TotalInodes,
		&sb.BlockBitmapStart, &sb.InodeBitmapStart, &sb.InodeTableStart,
		&sb.DataRegionStart, &sb.FreeBlocks, &sb.FreeInodes,
	} {
		binary.Read(r, binary.LittleEndian, dst)
	}
	return sb
}

// Image is an open handle onto a mounted filesystem image: the block device,
// the decoded superblock, and both bitmap allocators. Every operation in
// this package takes an *Image and persists its effects before returning
// success, per the durability guarantee in spec.md §5.
type Image struct {
	file   *os.File
	dev    *block.Device
	sb     Superblock
	blocks *bitmap.Allocator
	inodes *bitmap.Allocator
}

// Superblock returns a copy of the current superblock state.
func (img *Image) Superblock() Superblock {
	return img.sb
}

func (img *Image) blockBitmapBlocks() uint32 {
	return bitmap.BlockCount(img.sb.TotalBlocks)
}

func (img *Image) inodeBitmapBlocks() uint32 {
	return bitmap.BlockCount(img.sb.TotalInodes)
}

func (img *Image) inodeTableBlocks() uint32 {
	return (img.sb.TotalInodes + InodesPerBlock - 1) / InodesPerBlock
}

func (img *Image) persistSuperblock() error {
	return img.dev.WriteBlock(0, img.sb.encode())
}

// minimumBlocks computes the fixed-region size (superblock + bitmaps +
// inode table) for a candidate geometry, in blocks.
func minimumBlocks(totalBlocks, totalInodes uint32) uint32 {
	blockBitmapBlocks := bitmap.BlockCount(totalBlocks)
	inodeBitmapBlocks := bitmap.BlockCount(totalInodes)
	inodeTableBlocks := (totalInodes + InodesPerBlock - 1) / InodesPerBlock
	return 1 + blockBitmapBlocks + inodeBitmapBlocks + inodeTableBlocks
}

// Mkfs creates a brand-new image at path. It fails with Exists if path
// already exists, and with Geometry if totalBlocks/totalInodes describe an
// invalid layout.
func Mkfs(path string, totalBlocks, totalInodes uint32) error {
	if totalInodes < 1 {
		return vfserr.WithMessage(vfserr.Geometry, "total_inodes must be at least 1")
	}
	if totalInodes > totalBlocks {
		return vfserr.WithMessage(vfserr.Geometry, "total_inodes cannot exceed total_blocks")
	}

	fixedBlocks := minimumBlocks(totalBlocks, totalInodes)
	if totalBlocks <= fixedBlocks {
		return vfserr.WithMessage(
			vfserr.Geometry,
			fmt.Sprintf(
				"total_blocks (%d) leaves no room for a data region; need more than %d",
				totalBlocks, fixedBlocks,
			),
		)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return vfserr.WithMessage(vfserr.Exists, path)
		}
		return vfserr.Wrap(vfserr.IO, err)
	}

	if err := formatImage(file, totalBlocks, totalInodes, fixedBlocks); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func formatImage(file *os.File, totalBlocks, totalInodes, fixedBlocks uint32) error {
	if err := file.Truncate(int64(totalBlocks) * block.Size); err != nil {
		return vfserr.Wrap(vfserr.IO, err)
	}

	dev := block.NewDevice(file, totalBlocks)

	blockBitmapStart := uint32(1)
	blockBitmapBlocks := bitmap.BlockCount(totalBlocks)
	inodeBitmapStart := blockBitmapStart + blockBitmapBlocks
	inodeBitmapBlocks := bitmap.BlockCount(totalInodes)
	inodeTableStart := inodeBitmapStart + inodeBitmapBlocks
	inodeTableBlocks := (totalInodes + InodesPerBlock - 1) / InodesPerBlock
	dataRegionStart := inodeTableStart + inodeTableBlocks

	// Zero every metadata block (both bitmaps and the inode table) before
	// seeding reserved bits and the root inode.
	for b := uint32(0); b < dataRegionStart; b++ {
		if err := dev.ZeroBlock(b); err != nil {
			return err
		}
	}

	blocks := bitmap.New(dev, blockBitmapStart, totalBlocks)
	inodeAlloc := bitmap.New(dev, inodeBitmapStart, totalInodes)

	for b := uint32(0); b < dataRegionStart; b++ {
		if err := blocks.MarkAllocated(b); err != nil {
			return err
		}
	}
	// Inode 0 is reserved and permanently unallocatable; inode 1 is the
	// root directory.
	if err := inodeAlloc.MarkAllocated(NoInode); err != nil {
		return err
	}
	if err := inodeAlloc.MarkAllocated(RootInode); err != nil {
		return err
	}

	img := &Image{
		file: file,
		dev:  dev,
		sb: Superblock{
			Magic:            Magic,
			Version:          Version,
			TotalBlocks:      totalBlocks,
			TotalInodes:      totalInodes,
			BlockBitmapStart: blockBitmapStart,
			InodeBitmapStart: inodeBitmapStart,
			InodeTableStart:  inodeTableStart,
			DataRegionStart:  dataRegionStart,
			FreeBlocks:       totalBlocks - dataRegionStart,
			FreeInodes:       totalInodes - 2,
		},
		blocks: blocks,
		inodes: inodeAlloc,
	}

	rootDataBlock, err := img.blocks.AllocateFirstClear()
	if err != nil {
		return err
	}
	img.sb.FreeBlocks--

	rootInode := Inode{
		Mode:       ModeDir | DefaultDirPerm,
		Blocks:     1,
		Size:       2 * DirentSize,
		CreatedAt:  nowFunc(),
		ModifiedAt: nowFunc(),
		AccessedAt: nowFunc(),
	}
	rootInode.Direct[0] = uint16(rootDataBlock)

	if err := img.writeInode(RootInode, rootInode); err != nil {
		return err
	}

	dirBlock := make([]byte, block.Size)
	encodeDirentInto(dirBlock[0:DirentSize], Dirent{InodeNum: RootInode, Name: "."})
	encodeDirentInto(dirBlock[DirentSize:2*DirentSize], Dirent{InodeNum: RootInode, Name: ".."})
	if err := dev.WriteBlock(rootDataBlock, dirBlock); err != nil {
		return err
	}

	return img.persistSuperblock()
}

// Open mounts an existing image at path, validating its superblock. It fails
// with BadImage if the magic/version don't match or the recorded geometry is
// inconsistent with the file's actual length.
func Open(path string) (*Image, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vfserr.WithMessage(vfserr.BadImage, path)
		}
		return nil, vfserr.Wrap(vfserr.IO, err)
	}

	actualBlocks, err := block.DetermineBlockCount(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	if actualBlocks == 0 {
		file.Close()
		return nil, vfserr.WithMessage(vfserr.BadImage, "image is empty")
	}

	// A provisional device spanning the file's actual length, used only to
	// read block 0; it gets replaced below once we know TotalBlocks from the
	// superblock itself.
	probe := block.NewDevice(file, actualBlocks)
	sbBytes, err := probe.ReadBlock(0)
	if err != nil {
		file.Close()
		return nil, err
	}
	sb := decodeSuperblock(sbBytes)

	if sb.Magic != Magic || sb.Version != Version {
		file.Close()
		return nil, vfserr.WithMessage(vfserr.BadImage, "bad magic or version")
	}
	if sb.TotalBlocks == 0 || sb.TotalBlocks > actualBlocks {
		file.Close()
		return nil, vfserr.WithMessage(vfserr.BadImage, "geometry inconsistent with image length")
	}

	dev := block.NewDevice(file, sb.TotalBlocks)
	img := &Image{
		file:   file,
		dev:    dev,
		sb:     sb,
		blocks: bitmap.New(dev, sb.BlockBitmapStart, sb.TotalBlocks),
		inodes: bitmap.New(dev, sb.InodeBitmapStart, sb.TotalInodes),
	}
	return img, nil
}

// Close releases the image's underlying file handle.
func (img *Image) Close() error {
	return img.file.Close()
}

var _ io.Closer = (*Image)(nil)
