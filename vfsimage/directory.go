package vfsimage

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/noxer/bytewriter"

	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
)

// Dirent is one decoded directory entry: an inode number and its name. An
// entry with InodeNum == NoInode is a deleted, reusable slot.
type Dirent struct {
	InodeNum uint32
	Name     string
}

func encodeDirentInto(buf []byte, d Dirent) {
	w := bytewriter.New(buf[:4])
	binary.Write(w, binary.LittleEndian, d.InodeNum)

	nameField := buf[4:DirentSize]
	for i := range nameField {
		nameField[i] = 0
	}
	copy(nameField, d.Name)
}

func decodeDirent(buf []byte) Dirent {
	var d Dirent
	r := bytes.NewReader(buf[:4])
	binary.Read(r, binary.LittleEndian, &d.InodeNum)

	nameField := buf[4:DirentSize]
	end := bytes.IndexByte(nameField, 0)
	if end < 0 {
		end = len(nameField)
	}
	d.Name = string(nameField[:end])
	return d
}

// NameIsValid reports whether name is an acceptable file or directory name:
// non-empty, no longer than NameMaxLen bytes, containing no '/' or NUL, and
// not one of the reserved "." / ".." entries.
func NameIsValid(name string) bool {
	if name == "" || len(name) > NameMaxLen {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}

// rootDirents reads every entry currently stored in the root directory's
// data blocks, including deleted (InodeNum == NoInode) slots.
func (img *Image) rootDirents() (Inode, []Dirent, error) {
	root, err := img.ReadInode(RootInode)
	if err != nil {
		return Inode{}, nil, err
	}
	data, err := img.ReadData(&root, 0, root.Size)
	if err != nil {
		return Inode{}, nil, err
	}

	entries := make([]Dirent, 0, len(data)/DirentSize)
	for off := 0; off+DirentSize <= len(data); off += DirentSize {
		entries = append(entries, decodeDirent(data[off:off+DirentSize]))
	}
	return root, entries, nil
}

// Lookup resolves name against the root directory, returning the inode
// number it refers to. Unknown names report NotFound.
func (img *Image) Lookup(name string) (uint32, error) {
	_, entries, err := img.rootDirents()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.InodeNum != NoInode && e.Name == name {
			return e.InodeNum, nil
		}
	}
	return 0, vfserr.WithMessage(vfserr.NotFound, name)
}

// List returns every live (non-deleted) entry in the root directory, in
// on-disk order.
func (img *Image) List() ([]Dirent, error) {
	_, entries, err := img.rootDirents()
	if err != nil {
		return nil, err
	}
	live := make([]Dirent, 0, len(entries))
	for _, e := range entries {
		if e.InodeNum != NoInode {
			live = append(live, e)
		}
	}
	return live, nil
}

// AddEntry links name to inodeNum in the root directory. It fails with
// Exists if the name is already taken, and reuses the first deleted slot it
// finds before appending one more entry at the end of the directory (which
// allocates a new block only when the last one is full).
func (img *Image) AddEntry(name string, inodeNum uint32) error {
	if !NameIsValid(name) {
		return vfserr.WithMessage(vfserr.Invalid, name)
	}

	root, entries, err := img.rootDirents()
	if err != nil {
		return err
	}

	freeSlot := -1
	for i, e := range entries {
		if e.InodeNum == NoInode {
			if freeSlot < 0 {
				freeSlot = i
			}
			continue
		}
		if e.Name == name {
			return vfserr.WithMessage(vfserr.Exists, name)
		}
	}

	entry := Dirent{InodeNum: inodeNum, Name: name}
	buf := make([]byte, DirentSize)
	encodeDirentInto(buf, entry)

	if freeSlot >= 0 {
		return img.WriteData(RootInode, &root, uint32(freeSlot*DirentSize), buf)
	}
	return img.WriteData(RootInode, &root, root.Size, buf)
}

// RemoveEntry unlinks name from the root directory by zeroing its slot.
func (img *Image) RemoveEntry(name string) error {
	root, entries, err := img.rootDirents()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.InodeNum != NoInode && e.Name == name {
			buf := make([]byte, DirentSize)
			encodeDirentInto(buf, Dirent{})
			return img.WriteData(RootInode, &root, uint32(i*DirentSize), buf)
		}
	}
	return vfserr.WithMessage(vfserr.NotFound, name)
}
