// Package device provides the fixed-block random-access storage abstraction
// that the microfs engine is built on top of. It has no knowledge of
// master blocks, inodes or directories: it only knows how to move whole,
// fixed-size blocks to and from a backing file or block device.
package device

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a block reference falls outside [0, Blocks()).
var ErrOutOfRange = errors.New("block reference out of range")

// ErrReadOnly is returned when WriteBlock is called on a read-only device.
var ErrReadOnly = errors.New("device opened read-only")

// BlockDevice is the external collaborator the engine reads and writes
// through for every on-disk access. There is no write-back cache here: every
// WriteBlock call is expected to reach stable storage before it returns.
type BlockDevice interface {
	// BlockSize returns the fixed size, in bytes, of every block.
	BlockSize() int
	// Blocks returns the total number of addressable blocks.
	Blocks() int
	// ReadBlock reads block ref into buf, which must be exactly BlockSize() bytes.
	ReadBlock(ref int, buf []byte) error
	// WriteBlock writes buf, which must be exactly BlockSize() bytes, to block ref.
	WriteBlock(ref int, buf []byte) error
	// Close releases any OS resources held by the device.
	Close() error
}

func checkBlock(d BlockDevice, ref int, buf []byte) error {
	if ref < 0 || ref >= d.Blocks() {
		return fmt.Errorf("%w: %d (have %d blocks)", ErrOutOfRange, ref, d.Blocks())
	}
	if len(buf) != d.BlockSize() {
		return fmt.Errorf("buffer of %d bytes does not match block size %d", len(buf), d.BlockSize())
	}
	return nil
}
