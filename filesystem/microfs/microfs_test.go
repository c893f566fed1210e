package microfs

import (
	"testing"

	"github.com/cstruct/microfs/device"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) device.BlockDevice {
	t.Helper()
	return device.NewMemoryDevice(BlockSize, NBlocks)
}

// TestFormatGoldenMasterBlock pins the exact bitmap bytes a freshly
// formatted image must produce: blocks 0..9 (master, 8 inode-table blocks,
// root directory) and inode 0 allocated, everything else free.
func TestFormatGoldenMasterBlock(t *testing.T) {
	dev := newTestDevice(t)
	_, err := Format(dev)
	require.NoError(t, err)

	raw := make([]byte, BlockSize)
	require.NoError(t, dev.ReadBlock(MasterBlockRef, raw))

	require.Equal(t, byte(0xFF), raw[0])
	require.Equal(t, byte(0x03), raw[1])
	for _, b := range raw[2:blockBitmapBytes] {
		require.Equal(t, byte(0), b)
	}

	require.Equal(t, byte(0x01), raw[blockBitmapBytes])
	for _, b := range raw[blockBitmapBytes+1 : blockBitmapBytes+inodeBitmapBytes] {
		require.Equal(t, byte(0), b)
	}
}

// TestFormatWholeMasterBlockLayout compares the entire master block against
// a hand-built expected image, catching any stray byte cmp.Diff's
// per-byte asserts above wouldn't localize as clearly.
func TestFormatWholeMasterBlockLayout(t *testing.T) {
	dev := newTestDevice(t)
	_, err := Format(dev)
	require.NoError(t, err)

	raw := make([]byte, BlockSize)
	require.NoError(t, dev.ReadBlock(MasterBlockRef, raw))

	want := make([]byte, BlockSize)
	want[0] = 0xFF
	want[1] = 0x03
	want[blockBitmapBytes] = 0x01

	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("master block mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatRootDirectory(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	root, err := fs.readInode(RootInode)
	require.NoError(t, err)
	require.Equal(t, TypeDirectory, root.Type)
	require.Equal(t, BlockRef(RootDirectoryBlock), root.Data[0])
	require.EqualValues(t, 2, root.Size)

	names, err := fs.List("/", "/")
	require.NoError(t, err)
	require.Equal(t, []string{".", ".."}, names)
}

func TestOpenRejectsWrongBlockSize(t *testing.T) {
	dev := device.NewMemoryDevice(128, NBlocks)
	_, err := Open(dev)
	require.Error(t, err)
}

func TestMkdirAndList(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/", "/home"))
	require.NoError(t, fs.Mkdir("/", "/home/alice"))

	names, err := fs.List("/", "/home")
	require.NoError(t, err)
	require.Equal(t, []string{".", "..", "alice"}, names)

	err = fs.Mkdir("/", "/home")
	require.Error(t, err)
	require.IsType(t, &AlreadyExistsError{}, err)
}

func TestMkdirMissingParent(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	err = fs.Mkdir("/", "/a/b")
	require.Error(t, err)
	require.IsType(t, &PathNotFoundError{}, err)
}

func TestRmdirRejectsNonEmpty(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/", "/home"))
	require.NoError(t, fs.Touch("/", "/home/file"))

	err = fs.Rmdir("/", "/home")
	require.Error(t, err)
	require.IsType(t, &NotEmptyError{}, err)

	require.NoError(t, fs.Remove("/", "/home/file"))
	require.NoError(t, fs.Rmdir("/", "/home"))

	_, err = fs.List("/", "/home")
	require.Error(t, err)
	require.IsType(t, &PathNotFoundError{}, err)
}

func TestRmdirRefusesReservedNames(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	err = fs.Rmdir("/", "/")
	require.Error(t, err)
	require.IsType(t, &ReservedNameError{}, err)

	require.NoError(t, fs.Mkdir("/", "/home"))
	err = fs.Rmdir("/", "/home/.")
	require.Error(t, err)
	require.IsType(t, &ReservedNameError{}, err)
}

func TestCreateAppendMore(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	require.NoError(t, fs.Create("/", "/greeting", []byte("hello")))
	content, err := fs.More("/", "/greeting")
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))

	require.NoError(t, fs.Append("/", "/greeting", []byte(", world")))
	content, err = fs.More("/", "/greeting")
	require.NoError(t, err)
	require.Equal(t, "hello, world", string(content))
}

func TestCreateSpanningMultipleBlocks(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	payload := make([]byte, BlockSize*3+17)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, fs.Create("/", "/big", payload))

	content, err := fs.More("/", "/big")
	require.NoError(t, err)
	require.Equal(t, payload, content)
}

func TestCreateFileTooBig(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	payload := make([]byte, BlockSize*(BlocksPerInode+1))
	err = fs.Create("/", "/huge", payload)
	require.Error(t, err)
}

func TestRemoveFreesBlocksAndInode(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	before, err := fs.Stat()
	require.NoError(t, err)

	require.NoError(t, fs.Create("/", "/f", []byte("abc")))
	require.NoError(t, fs.Remove("/", "/f"))

	after, err := fs.Stat()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestLinkSharesInodeUntilLastRemove(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	require.NoError(t, fs.Create("/", "/a", []byte("shared")))
	require.NoError(t, fs.Link("/", "/a", "/b"))

	contentB, err := fs.More("/", "/b")
	require.NoError(t, err)
	require.Equal(t, "shared", string(contentB))

	require.NoError(t, fs.Remove("/", "/a"))
	contentB, err = fs.More("/", "/b")
	require.NoError(t, err)
	require.Equal(t, "shared", string(contentB))

	require.NoError(t, fs.Remove("/", "/b"))
	_, err = fs.More("/", "/a")
	require.Error(t, err)
}

func TestRelativePathResolution(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	require.NoError(t, fs.Mkdir("/", "/home"))
	require.NoError(t, fs.Mkdir("/home", "sub"))
	require.NoError(t, fs.Touch("/home/sub", "note"))

	names, err := fs.List("/home/sub", ".")
	require.NoError(t, err)
	require.Equal(t, []string{".", "..", "note"}, names)

	names, err = fs.List("/home", "sub")
	require.NoError(t, err)
	require.Equal(t, []string{".", "..", "note"}, names)
}

func TestNameTooLong(t *testing.T) {
	dev := newTestDevice(t)
	fs, err := Format(dev)
	require.NoError(t, err)

	longName := "/this-name-is-definitely-too-long-for-one-entry"
	err = fs.Touch("/", longName)
	require.Error(t, err)
	require.IsType(t, &NameTooLongError{}, err)
}
