package microfs

import (
	"sort"

	"github.com/cstruct/microfs/device"
)

// dirEntry is one {name, inode reference} pair in a directory block. An
// entry is valid iff InodeRef != UnallocatedInode; invalid entries also
// carry an empty name (first byte zero).
type dirEntry struct {
	Name     string
	InodeRef InodeRef
}

func (e dirEntry) valid() bool { return e.InodeRef != UnallocatedInode }

func (e dirEntry) encode() []byte {
	buf := make([]byte, dirEntrySize)
	copy(buf[:dirEntryNameSize], e.Name)
	buf[dirEntryNameSize] = byte(e.InodeRef)
	return buf
}

func decodeDirEntry(buf []byte) dirEntry {
	nameBytes := buf[:dirEntryNameSize]
	end := 0
	for end < len(nameBytes) && nameBytes[end] != 0 {
		end++
	}
	return dirEntry{
		Name:     string(nameBytes[:end]),
		InodeRef: InodeRef(buf[dirEntryNameSize]),
	}
}

func decodeDirBlock(raw []byte) [DirEntriesPerBlock]dirEntry {
	var entries [DirEntriesPerBlock]dirEntry
	for i := range entries {
		off := i * dirEntrySize
		entries[i] = decodeDirEntry(raw[off : off+dirEntrySize])
	}
	return entries
}

func encodeDirBlock(entries [DirEntriesPerBlock]dirEntry) []byte {
	buf := make([]byte, BlockSize)
	for i, e := range entries {
		off := i * dirEntrySize
		copy(buf[off:off+dirEntrySize], e.encode())
	}
	return buf
}

// cleanDirectoryBlock builds a freshly-initialized directory block: every
// entry invalidated, then "." -> self and ".." -> parent at indices 0, 1.
func cleanDirectoryBlock(self, parent InodeRef) [DirEntriesPerBlock]dirEntry {
	var entries [DirEntriesPerBlock]dirEntry
	for i := range entries {
		entries[i] = dirEntry{InodeRef: UnallocatedInode}
	}
	entries[0] = dirEntry{Name: ".", InodeRef: self}
	entries[1] = dirEntry{Name: "..", InodeRef: parent}
	return entries
}

// readDirBlock reads and decodes the single data block backing a directory inode.
func readDirBlock(dev device.BlockDevice, inode Inode) ([DirEntriesPerBlock]dirEntry, error) {
	raw := make([]byte, BlockSize)
	if err := dev.ReadBlock(int(inode.Data[0]), raw); err != nil {
		return [DirEntriesPerBlock]dirEntry{}, newIoError("read directory block", err)
	}
	return decodeDirBlock(raw), nil
}

func writeDirBlock(dev device.BlockDevice, block BlockRef, entries [DirEntriesPerBlock]dirEntry) error {
	if err := dev.WriteBlock(int(block), encodeDirBlock(entries)); err != nil {
		return newIoError("write directory block", err)
	}
	return nil
}

// findEntry returns the inode reference of the first entry in dir whose
// name matches exactly, or UnallocatedInode if there is none.
func findEntry(dev device.BlockDevice, dir Inode, name string) (InodeRef, error) {
	entries, err := readDirBlock(dev, dir)
	if err != nil {
		return UnallocatedInode, err
	}
	for _, e := range entries {
		if e.valid() && e.Name == name {
			return e.InodeRef, nil
		}
	}
	return UnallocatedInode, nil
}

// insertEntry grows parent's directory by one entry. It increments
// parent.Size only after the updated directory block has been written, so
// the caller's in-memory copy stays authoritative on success, and leaves it
// untouched on any error (including DirectoryFullError). path is only used
// to populate the error, not to resolve anything.
func insertEntry(dev device.BlockDevice, parent *Inode, name string, child InodeRef, path string) error {
	if len(name) > MaxNameLength {
		return &NameTooLongError{Name: name}
	}
	if int(parent.Size)+1 > DirEntriesPerBlock {
		return &DirectoryFullError{Path: path}
	}
	entries, err := readDirBlock(dev, *parent)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if !e.valid() {
			entries[i] = dirEntry{Name: name, InodeRef: child}
			if err := writeDirBlock(dev, parent.Data[0], entries); err != nil {
				return err
			}
			parent.Size++
			return nil
		}
	}
	return &DirectoryFullError{Path: path}
}

// removeEntry invalidates the entry named name in parent and decrements
// parent.Size if found. It is a no-op if the name is not found; callers are
// expected to have already confirmed its presence.
func removeEntry(dev device.BlockDevice, parent *Inode, name string) error {
	entries, err := readDirBlock(dev, *parent)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.valid() && e.Name == name {
			entries[i] = dirEntry{InodeRef: UnallocatedInode}
			if err := writeDirBlock(dev, parent.Data[0], entries); err != nil {
				return err
			}
			parent.Size--
			return nil
		}
	}
	return nil
}

// listEntries returns the directory's valid entries sorted byte-wise
// ascending by name, for the `list` operation.
func listEntries(dev device.BlockDevice, dir Inode) ([]dirEntry, error) {
	raw, err := readDirBlock(dev, dir)
	if err != nil {
		return nil, err
	}
	var out []dirEntry
	for _, e := range raw {
		if e.valid() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
