package vfsimage

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/noxer/bytewriter"

	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

// nowFunc returns the current time truncated to a uint32 Unix timestamp. It's
// a var, not a call to time.Now() sprinkled through the package, so tests can
// override it for deterministic timestamp assertions.
var nowFunc = func() uint32 {
	return uint32(time.Now().Unix())
}

// Inode is the decoded form of one 64-byte inode record. Block pointers are
// stored as uint16 on disk (see DESIGN.md for why), which caps an image at
// 65536 blocks (block numbers 0..65535); MaxFileBlocks/MaxFileSize are
// unaffected since a file's
// indirect block still holds full 4-byte addresses.
type Inode struct {
	Mode       uint16
	UID        uint16
	GID        uint16
	Size       uint32
	// Blocks counts every block the inode owns: its data blocks plus, when
	// present, the indirect block itself. Blocks minus one for the indirect
	// block (if any) is the next logical block index appendBlock will
	// allocate.
	Blocks uint16
	CreatedAt  uint32
	ModifiedAt uint32
	AccessedAt uint32
	Direct     [DirectBlocks]uint16
	Indirect   uint16
}

// IsDir reports whether the inode's mode bit marks it as a directory.
func (ino *Inode) IsDir() bool {
	return ino.Mode&ModeDir != 0
}

// Perm returns the nine rwxrwxrwx permission bits.
func (ino *Inode) Perm() uint16 {
	return ino.Mode & ModePerm
}

func (ino *Inode) encode() []byte {
	buf := make([]byte, InodeSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, ino.Mode)
	binary.Write(w, binary.LittleEndian, ino.UID)
	binary.Write(w, binary.LittleEndian, ino.GID)
	binary.Write(w, binary.LittleEndian, ino.Size)
	binary.Write(w, binary.LittleEndian, ino.Blocks)
	binary.Write(w, binary.LittleEndian, ino.CreatedAt)
	binary.Write(w, binary.LittleEndian, ino.ModifiedAt)
	binary.Write(w, binary.LittleEndian, ino.AccessedAt)
	for _, d := range ino.Direct {
		binary.Write(w, binary.LittleEndian, d)
	}
	binary.Write(w, binary.LittleEndian, ino.Indirect)
	return buf
}

func decodeInode(data []byte) Inode {
	r := bytes.NewReader(data[:InodeSize])
	var ino Inode
	binary.Read(r, binary.LittleEndian, &ino.Mode)
	binary.Read(r, binary.LittleEndian, &ino.UID)
	binary.Read(r, binary.LittleEndian, &ino.GID)
	binary.Read(r, binary.LittleEndian, &ino.Size)
	binary.Read(r, binary.LittleEndian, &ino.Blocks)
	binary.Read(r, binary.LittleEndian, &ino.CreatedAt)
	binary.Read(r, binary.LittleEndian, &ino.ModifiedAt)
	binary.Read(r, binary.LittleEndian, &ino.AccessedAt)
	for i := range ino.Direct {
		binary.Read(r, binary.LittleEndian, &ino.Direct[i])
	}
	binary.Read(r, binary.LittleEndian, &ino.Indirect)
	return ino
}

// inodeLocation returns the block holding inode n and its byte offset within
// that block.
func (img *Image) inodeLocation(n uint32) (blockNum uint32, offset int) {
	blockNum = img.sb.InodeTableStart + n/InodesPerBlock
	offset = int(n%InodesPerBlock) * InodeSize
	return
}

// ReadInode fetches inode n from the inode table.
func (img *Image) ReadInode(n uint32) (Inode, error) {
	if n == NoInode || n >= img.sb.TotalInodes {
		return Inode{}, vfserr.WithMessage(vfserr.OutOfRange, "inode number out of range")
	}
	blockNum, offset := img.inodeLocation(n)
	data, err := img.dev.ReadBlock(blockNum)
	if err != nil {
		return Inode{}, err
	}
	return decodeInode(data[offset : offset+InodeSize]), nil
}

// writeInode persists ino as inode n.
func (img *Image) writeInode(n uint32, ino Inode) error {
	blockNum, offset := img.inodeLocation(n)
	data, err := img.dev.ReadBlock(blockNum)
	if err != nil {
		return err
	}
	copy(data[offset:offset+InodeSize], ino.encode())
	return img.dev.WriteBlock(blockNum, data)
}

// AllocateInode reserves a free inode number and zero-initializes its
// record. It does not link the inode into any directory.
func (img *Image) AllocateInode() (uint32, error) {
	n, err := img.inodes.AllocateFirstClear()
	if err != nil {
		return 0, err
	}
	img.sb.FreeInodes--
	if err := img.writeInode(n, Inode{}); err != nil {
		return 0, err
	}
	if err := img.persistSuperblock(); err != nil {
		return 0, err
	}
	return n, nil
}

// FreeInode releases every data block owned by inode n, then the inode
// number itself. It refuses to free the root inode.
func (img *Image) FreeInode(n uint32) error {
	if n == RootInode {
		return vfserr.WithMessage(vfserr.Invalid, "cannot free the root inode")
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return err
	}
	if err := img.Truncate(n, &ino); err != nil {
		return err
	}
	if err := img.inodes.Free(n); err != nil {
		return err
	}
	img.sb.FreeInodes++
	return img.persistSuperblock()
}
