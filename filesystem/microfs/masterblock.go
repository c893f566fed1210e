package microfs

import (
	"github.com/cstruct/microfs/device"
	"github.com/cstruct/microfs/util/bitmap"
)

// masterBlock is the decoded form of block 0: the two allocation bitmaps.
// Layout on disk: block_allocated_flag[NBlocks/8] followed immediately by
// inode_allocated_flag[NInodes/8], little-endian bit order (LSB first),
// padded with zero bytes out to BlockSize.
type masterBlock struct {
	blocks *bitmap.Bitmap
	inodes *bitmap.Bitmap
}

const (
	blockBitmapBytes = NBlocks / 8
	inodeBitmapBytes = NInodes / 8
)

func newMasterBlock() *masterBlock {
	return &masterBlock{
		blocks: bitmap.NewBytes(blockBitmapBytes),
		inodes: bitmap.NewBytes(inodeBitmapBytes),
	}
}

func decodeMasterBlock(raw []byte) *masterBlock {
	return &masterBlock{
		blocks: bitmap.FromBytes(raw[:blockBitmapBytes]),
		inodes: bitmap.FromBytes(raw[blockBitmapBytes : blockBitmapBytes+inodeBitmapBytes]),
	}
}

func (m *masterBlock) encode() []byte {
	buf := make([]byte, BlockSize)
	copy(buf[:blockBitmapBytes], m.blocks.ToBytes())
	copy(buf[blockBitmapBytes:blockBitmapBytes+inodeBitmapBytes], m.inodes.ToBytes())
	return buf
}

func readMasterBlock(dev device.BlockDevice) (*masterBlock, error) {
	raw := make([]byte, BlockSize)
	if err := dev.ReadBlock(MasterBlockRef, raw); err != nil {
		return nil, newIoError("read master block", err)
	}
	return decodeMasterBlock(raw), nil
}

func (m *masterBlock) write(dev device.BlockDevice) error {
	if err := dev.WriteBlock(MasterBlockRef, m.encode()); err != nil {
		return newIoError("write master block", err)
	}
	return nil
}

// allocateBlock finds the first free block, marks it allocated, persists the
// master block, and returns its reference. Scan order (ascending byte, then
// LSB-first within the byte) is a user-visible, deterministic contract.
func (m *masterBlock) allocateBlock(dev device.BlockDevice) (BlockRef, error) {
	loc := m.blocks.FirstFree(0)
	if loc < 0 || loc >= NBlocks {
		return UnallocatedBlock, &NoBlocksError{}
	}
	if err := m.blocks.Set(loc); err != nil {
		return UnallocatedBlock, newIoError("set block bitmap", err)
	}
	if err := m.write(dev); err != nil {
		return UnallocatedBlock, err
	}
	return BlockRef(loc), nil
}

// freeBlock clears a block's bit and persists the master block.
func (m *masterBlock) freeBlock(dev device.BlockDevice, ref BlockRef) error {
	if err := m.blocks.Clear(int(ref)); err != nil {
		return newIoError("clear block bitmap", err)
	}
	return m.write(dev)
}

// allocateInode finds the first free inode, marks it allocated, persists the
// master block, and returns its reference.
func (m *masterBlock) allocateInode(dev device.BlockDevice) (InodeRef, error) {
	loc := m.inodes.FirstFree(0)
	if loc < 0 || loc >= NInodes {
		return UnallocatedInode, &NoInodesError{}
	}
	if err := m.inodes.Set(loc); err != nil {
		return UnallocatedInode, newIoError("set inode bitmap", err)
	}
	if err := m.write(dev); err != nil {
		return UnallocatedInode, err
	}
	return InodeRef(loc), nil
}

// freeInode clears an inode's bit and persists the master block.
func (m *masterBlock) freeInode(dev device.BlockDevice, ref InodeRef) error {
	if err := m.inodes.Clear(int(ref)); err != nil {
		return newIoError("clear inode bitmap", err)
	}
	return m.write(dev)
}

// Stat summarizes allocator usage purely from the two bitmaps already on
// disk; a read-only diagnostic, not a persisted feature (see SPEC_FULL.md).
type Stat struct {
	BlocksTotal, BlocksFree int
	InodesTotal, InodesFree int
}

func (m *masterBlock) stat() Stat {
	usedBlocks := m.blocks.CountSet()
	usedInodes := m.inodes.CountSet()
	return Stat{
		BlocksTotal: NBlocks,
		BlocksFree:  NBlocks - usedBlocks,
		InodesTotal: NInodes,
		InodesFree:  NInodes - usedInodes,
	}
}
