package vfsimage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
	"github.com/stretchr/testify/require"
)

func newImage(t *testing.T, totalBlocks, totalInodes uint32) *vfsimage.Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.img")
	require.NoError(t, vfsimage.Mkfs(path, totalBlocks, totalInodes))
	img, err := vfsimage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestMkfsThenOpenRoundTrip(t *testing.T) {
	img := newImage(t, 64, 16)
	sb := img.Superblock()
	require.EqualValues(t, vfsimage.Magic, sb.Magic)
	require.EqualValues(t, 64, sb.TotalBlocks)
	require.EqualValues(t, 16, sb.TotalInodes)
	require.EqualValues(t, 16-2, sb.FreeInodes)
}

func TestMkfsRejectsExistingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")
	require.NoError(t, vfsimage.Mkfs(path, 64, 16))
	err := vfsimage.Mkfs(path, 64, 16)
	require.Error(t, err)
}

func TestMkfsRejectsBadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")
	require.Error(t, vfsimage.Mkfs(path, 10, 20))
	require.Error(t, vfsimage.Mkfs(path, 2, 1))
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))
	_, err := vfsimage.Open(path)
	require.Error(t, err)
}

func TestRootDirectoryHasDotEntries(t *testing.T) {
	img := newImage(t, 64, 16)
	entries, err := img.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ".", entries[0].Name)
	require.Equal(t, "..", entries[1].Name)
}

func TestCreateLookupAndStatFile(t *testing.T) {
	img := newImage(t, 64, 16)
	n, err := img.CreateFile("hello.txt", vfsimage.DefaultFilePerm)
	require.NoError(t, err)
	require.NotZero(t, n)

	found, err := img.Lookup("hello.txt")
	require.NoError(t, err)
	require.Equal(t, n, found)

	info, err := img.Stat("hello.txt")
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Size)
}

func TestLookupMissingIsNotFound(t *testing.T) {
	img := newImage(t, 64, 16)
	_, err := img.Lookup("nope.txt")
	require.Error(t, err)
	require.ErrorIs(t, err, vfserr.New(vfserr.NotFound))
}

func TestCreateFileTwiceIsIdempotentTouch(t *testing.T) {
	img := newImage(t, 64, 16)
	n1, err := img.CreateFile("a.txt", vfsimage.DefaultFilePerm)
	require.NoError(t, err)
	n2, err := img.CreateFile("a.txt", vfsimage.DefaultFilePerm)
	require.NoError(t, err)
	require.Equal(t, n1, n2)
}

func TestWriteAndReadFileRoundTrip(t *testing.T) {
	img := newImage(t, 64, 16)
	_, err := img.CreateFile("data.bin", vfsimage.DefaultFilePerm)
	require.NoError(t, err)

	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i % 200)
	}
	require.NoError(t, img.WriteFile("data.bin", vfsimage.DefaultFilePerm, payload))

	got, err := img.ReadFile("data.bin")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestWriteFileSpanningIndirectBlock(t *testing.T) {
	img := newImage(t, 512, 16)
	require.NoError(t, img.WriteFile("big.bin", vfsimage.DefaultFilePerm, make([]byte, 11000)))

	info, err := img.Stat("big.bin")
	require.NoError(t, err)
	require.EqualValues(t, 11000, info.Size)
	require.EqualValues(t, 12, info.Blocks)
}

func TestTruncateFreesAllBlocks(t *testing.T) {
	img := newImage(t, 64, 16)
	require.NoError(t, img.WriteFile("f.txt", vfsimage.DefaultFilePerm, make([]byte, 3000)))

	before := img.Superblock().FreeBlocks
	require.NoError(t, img.TruncateFile("f.txt"))
	after := img.Superblock().FreeBlocks

	require.Greater(t, after, before)

	info, err := img.Stat("f.txt")
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Size)
	require.EqualValues(t, 0, info.Blocks)
}

func TestTruncateRejectsDirectory(t *testing.T) {
	img := newImage(t, 64, 16)
	require.Error(t, img.TruncateFile("."))
}

func TestUnlinkFreesInodeAndEntry(t *testing.T) {
	img := newImage(t, 64, 16)
	require.NoError(t, img.WriteFile("gone.txt", vfsimage.DefaultFilePerm, make([]byte, 2000)))

	beforeInodes := img.Superblock().FreeInodes
	beforeBlocks := img.Superblock().FreeBlocks

	require.NoError(t, img.Unlink("gone.txt"))

	_, err := img.Lookup("gone.txt")
	require.Error(t, err)

	require.Equal(t, beforeInodes+1, img.Superblock().FreeInodes)
	require.Greater(t, img.Superblock().FreeBlocks, beforeBlocks)
}

func TestUnlinkThenCreateReusesDirectorySlot(t *testing.T) {
	img := newImage(t, 64, 16)
	require.NoError(t, img.WriteFile("a.txt", vfsimage.DefaultFilePerm, nil))
	require.NoError(t, img.WriteFile("b.txt", vfsimage.DefaultFilePerm, nil))
	require.NoError(t, img.Unlink("a.txt"))

	entriesBefore, err := img.List()
	require.NoError(t, err)

	_, err = img.CreateFile("c.txt", vfsimage.DefaultFilePerm)
	require.NoError(t, err)

	entriesAfter, err := img.List()
	require.NoError(t, err)
	require.Equal(t, len(entriesBefore)+1, len(entriesAfter))
	// a.txt's freed slot (third, after "." and "..") now holds c.txt, ahead of b.txt.
	require.Equal(t, "c.txt", entriesAfter[2].Name)
}

func TestAddEntryRejectsInvalidName(t *testing.T) {
	img := newImage(t, 64, 16)
	err := img.AddEntry("bad/name", 1)
	require.Error(t, err)
}

func TestWriteFileTooLargeFails(t *testing.T) {
	img := newImage(t, 512, 16)
	err := img.WriteFile("huge.bin", vfsimage.DefaultFilePerm, make([]byte, vfsimage.MaxFileSize+1))
	require.Error(t, err)
}

func TestUnlinkRejectsDirectory(t *testing.T) {
	img := newImage(t, 64, 16)
	require.Error(t, img.Unlink("."))
	require.Error(t, img.Unlink(".."))

	_, err := img.Lookup(".")
	require.NoError(t, err)
}

func TestReadFileRejectsDirectory(t *testing.T) {
	img := newImage(t, 64, 16)
	_, err := img.ReadFile(".")
	require.Error(t, err)
}

func TestFreeInodeRefusesRoot(t *testing.T) {
	img := newImage(t, 64, 16)
	err := img.FreeInode(vfsimage.RootInode)
	require.Error(t, err)

	_, lookupErr := img.Lookup(".")
	require.NoError(t, lookupErr)
}
