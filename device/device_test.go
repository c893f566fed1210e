package device_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cstruct/microfs/device"
	"github.com/stretchr/testify/require"
)

func TestFileDeviceCreateAndRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdisk1")

	dev, err := device.CreateFromPath(path, 256, 128)
	require.NoError(t, err)
	defer dev.Close()

	require.Equal(t, 256, dev.BlockSize())
	require.Equal(t, 128, dev.Blocks())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(256*128), info.Size())

	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, dev.WriteBlock(5, buf))

	readBack := make([]byte, 256)
	require.NoError(t, dev.ReadBlock(5, readBack))
	require.Equal(t, buf, readBack)

	// untouched blocks stay zero
	zero := make([]byte, 256)
	other := make([]byte, 256)
	require.NoError(t, dev.ReadBlock(6, other))
	require.Equal(t, zero, other)
}

func TestFileDeviceOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdisk1")
	dev, err := device.CreateFromPath(path, 256, 4)
	require.NoError(t, err)
	defer dev.Close()

	buf := make([]byte, 256)
	require.ErrorIs(t, dev.WriteBlock(4, buf), device.ErrOutOfRange)
	require.ErrorIs(t, dev.ReadBlock(-1, buf), device.ErrOutOfRange)
}

func TestFileDeviceReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdisk1")
	dev, err := device.CreateFromPath(path, 256, 4)
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	ro, err := device.OpenFromPath(path, 256, 4, true)
	require.NoError(t, err)
	defer ro.Close()

	buf := make([]byte, 256)
	require.ErrorIs(t, ro.WriteBlock(0, buf), device.ErrReadOnly)
}

func TestMemoryDeviceRoundtrip(t *testing.T) {
	dev := device.NewMemoryDevice(64, 8)
	buf := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, dev.WriteBlock(2, buf))

	out := make([]byte, 64)
	require.NoError(t, dev.ReadBlock(2, out))
	require.Equal(t, buf, out)
}
