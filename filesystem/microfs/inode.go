package microfs

import (
	"github.com/cstruct/microfs/device"
)

// Inode is the in-memory decoding of one packed inode record.
type Inode struct {
	Type        InodeType
	NReferences uint8
	Data        [BlocksPerInode]BlockRef
	Size        uint32
}

func newEmptyInode() Inode {
	inode := Inode{Type: TypeNone}
	for i := range inode.Data {
		inode.Data[i] = UnallocatedBlock
	}
	return inode
}

// encode packs the inode into its fixed inodeRecordSize-byte on-disk form:
// type(1) + nReferences(1) + data[BlocksPerInode](1 each) + size(2, little
// endian) + zero padding to inodeRecordSize.
func (n Inode) encode() []byte {
	buf := make([]byte, inodeRecordSize)
	buf[0] = byte(n.Type)
	buf[1] = n.NReferences
	for i, d := range n.Data {
		buf[2+i] = byte(d)
	}
	sizeOff := 2 + BlocksPerInode
	buf[sizeOff] = byte(n.Size)
	buf[sizeOff+1] = byte(n.Size >> 8)
	return buf
}

func decodeInode(buf []byte) Inode {
	var n Inode
	n.Type = InodeType(buf[0])
	n.NReferences = buf[1]
	for i := range n.Data {
		n.Data[i] = BlockRef(buf[2+i])
	}
	sizeOff := 2 + BlocksPerInode
	n.Size = uint32(buf[sizeOff]) | uint32(buf[sizeOff+1])<<8
	return n
}

// readInode reads inode i from the inode table: block = inodeTableStart +
// i/InodesPerBlock, slot = i%InodesPerBlock.
func readInode(dev device.BlockDevice, i InodeRef) (Inode, error) {
	block, slot := inodeBlock(i)
	raw := make([]byte, BlockSize)
	if err := dev.ReadBlock(block, raw); err != nil {
		return Inode{}, newIoError("read inode block", err)
	}
	off := slot * inodeRecordSize
	return decodeInode(raw[off : off+inodeRecordSize]), nil
}

// writeInode reads the inode's table block, overwrites the inode's slot,
// and writes the block back.
func writeInode(dev device.BlockDevice, i InodeRef, n Inode) error {
	block, slot := inodeBlock(i)
	raw := make([]byte, BlockSize)
	if err := dev.ReadBlock(block, raw); err != nil {
		return newIoError("read inode block", err)
	}
	off := slot * inodeRecordSize
	copy(raw[off:off+inodeRecordSize], n.encode())
	if err := dev.WriteBlock(block, raw); err != nil {
		return newIoError("write inode block", err)
	}
	return nil
}
