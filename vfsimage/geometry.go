// Package vfsimage implements the on-disk layout, allocator wiring, inode
// data addressing, root directory, and file-level orchestration described in
// spec.md §2–§4: everything above block I/O and below the CLI tools.
package vfsimage

const (
	// Magic identifies this on-disk format ("VFS6" read as a big-endian
	// uint32; stored little-endian, its bytes on disk read "6SFV").
	Magic = 0x56465336
	// Version is the on-disk format version.
	Version = 1

	// InodeSize is the fixed size of one inode record, in bytes.
	InodeSize = 64
	// InodesPerBlock follows directly from InodeSize and block.Size.
	InodesPerBlock = 1024 / InodeSize

	// NameMaxLen is the longest name a directory entry can hold, not
	// counting the NUL terminator.
	NameMaxLen = 27
	// DirentSize is the fixed size of one directory entry: a 4-byte inode
	// number plus a 28-byte (27 + NUL) name field.
	DirentSize = 32
	// DirentsPerBlock follows from DirentSize and block.Size.
	DirentsPerBlock = 1024 / DirentSize

	// DirectBlocks is the number of direct block slots in an inode.
	DirectBlocks = 10
	// IndirectAddrsPerBlock is the number of 4-byte physical block numbers
	// that fit in one indirect block.
	IndirectAddrsPerBlock = 1024 / 4
	// MaxFileBlocks is the largest number of data blocks a file can own.
	MaxFileBlocks = DirectBlocks + IndirectAddrsPerBlock
	// MaxFileSize is the largest file size representable by this layout.
	MaxFileSize = MaxFileBlocks * 1024

	// RootInode is the inode number of the filesystem's one and only
	// directory.
	RootInode = 1
	// NoInode is the reserved "no inode" sentinel; bit 0 of the inode
	// bitmap is always set to keep it unallocatable.
	NoInode = 0

	// ModeDir marks an inode as a directory.
	ModeDir = 0o040000
	// ModePerm masks the nine rwxrwxrwx permission bits.
	ModePerm = 0o000777

	// DefaultDirPerm is the permission bits the root directory is created
	// with.
	DefaultDirPerm = 0o755
	// DefaultFilePerm is the permission bits vfs-touch creates files with.
	DefaultFilePerm = 0o640
)
