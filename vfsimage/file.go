package vfsimage

import "github.com/PipeG09/UM-vfs-base-2025/vfserr"

// FileInfo is the directory-entry-plus-inode view returned by Stat and List
// operations: everything vfs-ls and vfs-lsort need to render a line without
// the caller re-reading the inode table itself.
type FileInfo struct {
	Name       string
	InodeNum   uint32
	Mode       uint16
	Size       uint32
	Blocks     uint16
	CreatedAt  uint32
	ModifiedAt uint32
	AccessedAt uint32
}

// CreateFile implements vfs-touch's semantics: if name already exists its
// access and modification timestamps are refreshed; otherwise a new,
// zero-length file is allocated and linked into the root directory.
func (img *Image) CreateFile(name string, perm uint16) (uint32, error) {
	n, err := img.Lookup(name)
	if err == nil {
		ino, err := img.ReadInode(n)
		if err != nil {
			return 0, err
		}
		now := nowFunc()
		ino.AccessedAt = now
		ino.ModifiedAt = now
		if err := img.writeInode(n, ino); err != nil {
			return 0, err
		}
		return n, nil
	}

	n, err = img.AllocateInode()
	if err != nil {
		return 0, err
	}

	now := nowFunc()
	ino := Inode{
		Mode:       perm & ModePerm,
		CreatedAt:  now,
		ModifiedAt: now,
		AccessedAt: now,
	}
	if err := img.writeInode(n, ino); err != nil {
		return 0, err
	}

	if err := img.AddEntry(name, n); err != nil {
		img.FreeInode(n)
		return 0, err
	}
	return n, nil
}

// Unlink implements vfs-rm: it removes name from the root directory and
// releases its inode and every block the inode owned. It refuses to unlink
// anything other than a regular file.
func (img *Image) Unlink(name string) error {
	n, err := img.Lookup(name)
	if err != nil {
		return err
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return err
	}
	if ino.IsDir() {
		return vfserr.WithMessage(vfserr.NotFile, name)
	}
	if err := img.RemoveEntry(name); err != nil {
		return err
	}
	return img.FreeInode(n)
}

// Stat resolves name and returns its directory-entry-plus-inode snapshot.
func (img *Image) Stat(name string) (FileInfo, error) {
	n, err := img.Lookup(name)
	if err != nil {
		return FileInfo{}, err
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:       name,
		InodeNum:   n,
		Mode:       ino.Mode,
		Size:       ino.Size,
		Blocks:     ino.Blocks,
		CreatedAt:  ino.CreatedAt,
		ModifiedAt: ino.ModifiedAt,
		AccessedAt: ino.AccessedAt,
	}, nil
}

// ListInfo returns FileInfo for every live entry in the root directory, in
// on-disk order.
func (img *Image) ListInfo() ([]FileInfo, error) {
	entries, err := img.List()
	if err != nil {
		return nil, err
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		ino, err := img.ReadInode(e.InodeNum)
		if err != nil {
			return nil, err
		}
		out = append(out, FileInfo{
			Name:       e.Name,
			InodeNum:   e.InodeNum,
			Mode:       ino.Mode,
			Size:       ino.Size,
			Blocks:     ino.Blocks,
			CreatedAt:  ino.CreatedAt,
			ModifiedAt: ino.ModifiedAt,
			AccessedAt: ino.AccessedAt,
		})
	}
	return out, nil
}

// ReadFile returns the entire contents of name. It refuses to read anything
// other than a regular file.
func (img *Image) ReadFile(name string) ([]byte, error) {
	n, err := img.Lookup(name)
	if err != nil {
		return nil, err
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return nil, err
	}
	if ino.IsDir() {
		return nil, vfserr.WithMessage(vfserr.NotFile, name)
	}
	now := nowFunc()
	ino.AccessedAt = now
	if err := img.writeInode(n, ino); err != nil {
		return nil, err
	}
	return img.ReadData(&ino, 0, ino.Size)
}

// WriteFile overwrites name's entire contents with data, creating the file
// if it doesn't already exist. It implements the destination side of
// vfs-copy.
func (img *Image) WriteFile(name string, perm uint16, data []byte) error {
	n, err := img.CreateFile(name, perm)
	if err != nil {
		return err
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return err
	}
	if err := img.Truncate(n, &ino); err != nil {
		return err
	}
	return img.WriteData(n, &ino, 0, data)
}

// TruncateFile implements vfs-trunc: it reduces name to zero length,
// releasing every block it owned. It refuses anything other than a regular
// file.
func (img *Image) TruncateFile(name string) error {
	n, err := img.Lookup(name)
	if err != nil {
		return err
	}
	ino, err := img.ReadInode(n)
	if err != nil {
		return err
	}
	if ino.IsDir() {
		return vfserr.WithMessage(vfserr.NotFile, name)
	}
	return img.Truncate(n, &ino)
}
