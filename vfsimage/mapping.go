package vfsimage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/PipeG09/UM-vfs-base-2025/block"
	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

func decodeIndirectBlock(data []byte) [IndirectAddrsPerBlock]uint32 {
	var addrs [IndirectAddrsPerBlock]uint32
	r := bytes.NewReader(data)
	for i := range addrs {
		binary.Read(r, binary.LittleEndian, &addrs[i])
	}
	return addrs
}

func encodeIndirectBlock(addrs [IndirectAddrsPerBlock]uint32) []byte {
	buf := make([]byte, block.Size)
	off := 0
	for _, a := range addrs {
		binary.LittleEndian.PutUint32(buf[off:off+4], a)
		off += 4
	}
	return buf
}

// blockAt returns the physical block number backing logical block index
// within ino, or 0 if that logical block has never been allocated.
func (img *Image) blockAt(ino *Inode, index uint32) (uint32, error) {
	if index < DirectBlocks {
		return uint32(ino.Direct[index]), nil
	}
	if ino.Indirect == 0 {
		return 0, nil
	}
	data, err := img.dev.ReadBlock(uint32(ino.Indirect))
	if err != nil {
		return 0, err
	}
	addrs := decodeIndirectBlock(data)
	return addrs[index-DirectBlocks], nil
}

// appendBlock allocates one new physical block and links it as the next
// logical block of ino (logical index == ino.Blocks, minus one when the
// indirect block exists, since Blocks counts it too). On any failure partway
// through linking an indirect block it releases what it already allocated,
// so a failed append never leaks blocks.
func (img *Image) appendBlock(ino *Inode) (uint32, error) {
	index := uint32(ino.Blocks)
	if ino.Indirect != 0 {
		index--
	}
	if index >= MaxFileBlocks {
		return 0, vfserr.New(vfserr.TooLarge)
	}

	newIndirect := uint32(0)
	if index >= DirectBlocks && ino.Indirect == 0 {
		indirectBlock, err := img.blocks.AllocateFirstClear()
		if err != nil {
			return 0, err
		}
		img.sb.FreeBlocks--
		if err := img.dev.WriteBlock(indirectBlock, encodeIndirectBlock([IndirectAddrsPerBlock]uint32{})); err != nil {
			img.blocks.Free(indirectBlock)
			img.sb.FreeBlocks++
			return 0, err
		}
		ino.Indirect = uint16(indirectBlock)
		ino.Blocks++
		newIndirect = indirectBlock
	}
	// releaseIndirect undoes the indirect-block allocation made by this call.
	releaseIndirect := func() {
		if newIndirect != 0 {
			img.blocks.Free(newIndirect)
			img.sb.FreeBlocks++
			ino.Indirect = 0
			ino.Blocks--
		}
	}

	dataBlock, err := img.blocks.AllocateFirstClear()
	if err != nil {
		releaseIndirect()
		return 0, err
	}
	img.sb.FreeBlocks--

	if index < DirectBlocks {
		ino.Direct[index] = uint16(dataBlock)
	} else {
		data, err := img.dev.ReadBlock(uint32(ino.Indirect))
		if err != nil {
			img.blocks.Free(dataBlock)
			img.sb.FreeBlocks++
			releaseIndirect()
			return 0, err
		}
		addrs := decodeIndirectBlock(data)
		addrs[index-DirectBlocks] = dataBlock
		if err := img.dev.WriteBlock(uint32(ino.Indirect), encodeIndirectBlock(addrs)); err != nil {
			img.blocks.Free(dataBlock)
			img.sb.FreeBlocks++
			releaseIndirect()
			return 0, err
		}
	}

	ino.Blocks++
	return dataBlock, nil
}

// ReadData returns length bytes of ino's content starting at offset. offset
// and offset+length must fall within ino.Size.
func (img *Image) ReadData(ino *Inode, offset, length uint32) ([]byte, error) {
	if offset+length > ino.Size {
		return nil, vfserr.WithMessage(vfserr.OutOfRange, "read past end of file")
	}
	out := make([]byte, 0, length)
	for remaining := length; remaining > 0; {
		index := offset / block.Size
		within := offset % block.Size
		chunk := block.Size - within
		if uint32(chunk) > remaining {
			chunk = remaining
		}

		physical, err := img.blockAt(ino, index)
		if err != nil {
			return nil, err
		}
		if physical == 0 {
			return nil, vfserr.WithMessage(vfserr.Corrupt, fmt.Sprintf("hole at logical block %d", index))
		}
		data, err := img.dev.ReadBlock(physical)
		if err != nil {
			return nil, err
		}
		out = append(out, data[within:within+chunk]...)

		offset += chunk
		remaining -= chunk
	}
	return out, nil
}

// WriteData overwrites ino's content starting at offset with data,
// allocating new blocks as needed and growing Size if the write extends past
// the current end of file. It never supports sparse files: offset must be
// <= ino.Size.
func (img *Image) WriteData(inodeNum uint32, ino *Inode, offset uint32, data []byte) error {
	if offset > ino.Size {
		return vfserr.WithMessage(vfserr.Invalid, "write offset beyond end of file")
	}
	if uint64(offset)+uint64(len(data)) > MaxFileSize {
		return vfserr.New(vfserr.TooLarge)
	}

	end := offset + uint32(len(data))
	written := uint32(0)
	for written < uint32(len(data)) {
		pos := offset + written
		index := pos / block.Size
		within := pos % block.Size
		chunk := block.Size - within
		if remaining := uint32(len(data)) - written; chunk > remaining {
			chunk = remaining
		}

		physical, err := img.blockAt(ino, index)
		if err != nil {
			return err
		}
		if physical == 0 {
			physical, err = img.appendBlock(ino)
			if err != nil {
				return err
			}
		}

		blockData, err := img.dev.ReadBlock(physical)
		if err != nil {
			return err
		}
		copy(blockData[within:within+chunk], data[written:written+chunk])
		if err := img.dev.WriteBlock(physical, blockData); err != nil {
			return err
		}

		written += chunk
	}

	if end > ino.Size {
		ino.Size = end
	}
	ino.ModifiedAt = nowFunc()
	if err := img.writeInode(inodeNum, *ino); err != nil {
		return err
	}
	return img.persistSuperblock()
}

// Truncate implements truncate(inode): it reduces ino to zero size,
// releasing every direct block, every block addressed through the indirect
// block, and the indirect block itself. There is no grow path — spec.md
// never defines truncating to an arbitrary larger size.
func (img *Image) Truncate(inodeNum uint32, ino *Inode) error {
	for i := range ino.Direct {
		if ino.Direct[i] == 0 {
			continue
		}
		if err := img.blocks.Free(uint32(ino.Direct[i])); err != nil {
			return err
		}
		img.sb.FreeBlocks++
		ino.Direct[i] = 0
	}

	if ino.Indirect != 0 {
		data, err := img.dev.ReadBlock(uint32(ino.Indirect))
		if err != nil {
			return err
		}
		for _, a := range decodeIndirectBlock(data) {
			if a == 0 {
				continue
			}
			if err := img.blocks.Free(a); err != nil {
				return err
			}
			img.sb.FreeBlocks++
		}
		if err := img.blocks.Free(uint32(ino.Indirect)); err != nil {
			return err
		}
		img.sb.FreeBlocks++
		ino.Indirect = 0
	}

	ino.Size = 0
	ino.Blocks = 0
	ino.ModifiedAt = nowFunc()
	if err := img.writeInode(inodeNum, *ino); err != nil {
		return err
	}
	return img.persistSuperblock()
}
