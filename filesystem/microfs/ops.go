package microfs

import (
	"fmt"
	"io"

	"github.com/cstruct/microfs/device"
)

// Format initializes a fresh image on dev: the master block with blocks
// 0..RootDirectoryBlock and inode 0 marked allocated, a zeroed inode table,
// and a root directory inode whose data block holds just "." and "..".
func Format(dev device.BlockDevice, opts ...Option) (*FileSystem, error) {
	if dev.BlockSize() != BlockSize {
		return nil, fmt.Errorf("microfs: device block size %d, need %d", dev.BlockSize(), BlockSize)
	}
	if dev.Blocks() < NBlocks {
		return nil, fmt.Errorf("microfs: device has %d blocks, need at least %d", dev.Blocks(), NBlocks)
	}

	fs := New(dev, opts...)
	fs.log.Info("formatting image")

	zero := make([]byte, BlockSize)
	for b := 0; b < dev.Blocks(); b++ {
		if err := dev.WriteBlock(b, zero); err != nil {
			return nil, newIoError("zero block", err)
		}
	}

	mb := newMasterBlock()
	for b := 0; b <= RootDirectoryBlock; b++ {
		if err := mb.blocks.Set(b); err != nil {
			return nil, newIoError("set block bitmap", err)
		}
	}
	if err := mb.inodes.Set(int(RootInode)); err != nil {
		return nil, newIoError("set inode bitmap", err)
	}
	if err := mb.write(dev); err != nil {
		return nil, err
	}

	root := newEmptyInode()
	root.Type = TypeDirectory
	root.NReferences = 1
	root.Data[0] = RootDirectoryBlock
	root.Size = 2
	// Root is written through the ordinary inode-table path, same as any
	// other inode, rather than synthesized as a special case in the
	// master block.
	if err := fs.writeInode(RootInode, root); err != nil {
		return nil, err
	}

	entries := cleanDirectoryBlock(RootInode, RootInode)
	if err := writeDirBlock(dev, RootDirectoryBlock, entries); err != nil {
		return nil, err
	}

	return fs, nil
}

// Open attaches the engine to a device that already holds a formatted
// image. It validates the block size and reads the master block once, failing
// if that read fails; the block's contents are not checked, so an
// unformatted or foreign image of the right block size is accepted.
func Open(dev device.BlockDevice, opts ...Option) (*FileSystem, error) {
	if dev.BlockSize() != BlockSize {
		return nil, fmt.Errorf("microfs: device block size %d, need %d", dev.BlockSize(), BlockSize)
	}
	fs := New(dev, opts...)
	if _, err := readMasterBlock(dev); err != nil {
		return nil, err
	}
	return fs, nil
}

// Mkdir creates an empty directory at path. The parent must already exist
// and path itself must not.
func (fs *FileSystem) Mkdir(cwd, path string) error {
	res, err := fs.findFile(cwd, path)
	if err != nil {
		return err
	}
	if res.Child != UnallocatedInode {
		return &AlreadyExistsError{Path: path}
	}
	if res.Parent == UnallocatedInode {
		return &PathNotFoundError{Path: path}
	}
	if len(res.LocalName) > MaxNameLength {
		return &NameTooLongError{Name: res.LocalName}
	}
	parent, err := fs.readInode(res.Parent)
	if err != nil {
		return err
	}
	if parent.Type != TypeDirectory {
		return &NotADirectoryError{Path: path}
	}

	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return err
	}
	blockRef, err := mb.allocateBlock(fs.dev)
	if err != nil {
		return err
	}
	inodeRef, err := mb.allocateInode(fs.dev)
	if err != nil {
		if freeErr := mb.freeBlock(fs.dev, blockRef); freeErr != nil {
			return freeErr
		}
		return err
	}

	// Insert the entry - the one step that can fail with DirectoryFull -
	// before touching the new inode or its data block, so a capacity
	// failure leaves no stale state behind for either.
	if err := insertEntry(fs.dev, &parent, res.LocalName, inodeRef, path); err != nil {
		mb.freeInode(fs.dev, inodeRef)
		mb.freeBlock(fs.dev, blockRef)
		return err
	}

	child := newEmptyInode()
	child.Type = TypeDirectory
	child.NReferences = 1
	child.Data[0] = blockRef
	child.Size = 2
	if err := fs.writeInode(inodeRef, child); err != nil {
		return err
	}
	entries := cleanDirectoryBlock(inodeRef, res.Parent)
	if err := writeDirBlock(fs.dev, blockRef, entries); err != nil {
		return err
	}
	if err := fs.writeInode(res.Parent, parent); err != nil {
		return err
	}
	fs.log.WithField("path", path).Debug("created directory")
	return nil
}

// Rmdir removes an empty directory. "." and ".." and the root itself are
// reserved and refused.
func (fs *FileSystem) Rmdir(cwd, path string) error {
	res, err := fs.findFile(cwd, path)
	if err != nil {
		return err
	}
	if res.Child == UnallocatedInode {
		return &PathNotFoundError{Path: path}
	}
	if res.Child == RootInode || res.LocalName == "." || res.LocalName == ".." {
		return &ReservedNameError{Name: res.LocalName}
	}
	inode, err := fs.readInode(res.Child)
	if err != nil {
		return err
	}
	if inode.Type != TypeDirectory {
		return &NotADirectoryError{Path: path}
	}
	entries, err := readDirBlock(fs.dev, inode)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.valid() && e.Name != "." && e.Name != ".." {
			return &NotEmptyError{Path: path}
		}
	}

	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return err
	}
	if err := mb.freeBlock(fs.dev, inode.Data[0]); err != nil {
		return err
	}
	if err := mb.freeInode(fs.dev, res.Child); err != nil {
		return err
	}

	parent, err := fs.readInode(res.Parent)
	if err != nil {
		return err
	}
	if err := removeEntry(fs.dev, &parent, res.LocalName); err != nil {
		return err
	}
	return fs.writeInode(res.Parent, parent)
}

// DirEntry is one named entry returned by ListDetailed: a name plus the
// type of the inode it references, so a caller can format subdirectories
// distinctly (see cmd/inspect).
type DirEntry struct {
	Name string
	Type InodeType
}

// List returns the sorted names of path's directory entries, including "."
// and "..".
func (fs *FileSystem) List(cwd, path string) ([]string, error) {
	entries, err := fs.ListDetailed(cwd, path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// ListDetailed is List plus each entry's inode type.
func (fs *FileSystem) ListDetailed(cwd, path string) ([]DirEntry, error) {
	res, err := fs.findFile(cwd, path)
	if err != nil {
		return nil, err
	}
	if res.Child == UnallocatedInode {
		return nil, &PathNotFoundError{Path: path}
	}
	inode, err := fs.readInode(res.Child)
	if err != nil {
		return nil, err
	}
	if inode.Type != TypeDirectory {
		return nil, &NotADirectoryError{Path: path}
	}
	raw, err := listEntries(fs.dev, inode)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, len(raw))
	for i, e := range raw {
		child, err := fs.readInode(e.InodeRef)
		if err != nil {
			return nil, err
		}
		out[i] = DirEntry{Name: e.Name, Type: child.Type}
	}
	return out, nil
}

// Touch opens path in append mode and immediately closes it: an existing
// FILE is left untouched, a missing path is created empty.
func (fs *FileSystem) Touch(cwd, path string) error {
	f, err := fs.openFile(cwd, path, 'a')
	if err != nil {
		return err
	}
	return f.Close()
}

// Create opens path in write mode (creating it if missing, truncating it
// if present) and writes content into it.
func (fs *FileSystem) Create(cwd, path string, content []byte) error {
	f, err := fs.openFile(cwd, path, 'w')
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return err
	}
	fs.log.WithField("path", path).WithField("bytes", len(content)).Debug("created file")
	return nil
}

// Append writes content to the end of the file at path, creating it empty
// first if it does not exist.
func (fs *FileSystem) Append(cwd, path string, content []byte) error {
	f, err := fs.openFile(cwd, path, 'a')
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(content)
	return err
}

// More reads and returns the entire contents of the file at path.
func (fs *FileSystem) More(cwd, path string) ([]byte, error) {
	f, err := fs.openFile(cwd, path, 'r')
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inode, err := fs.readInode(f.inode)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, inode.Size)
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return buf[:total], nil
}

// Remove unlinks path from its parent directory, dropping the inode's
// reference count and releasing its blocks and inode once the count
// reaches zero. The directory entry is always removed and the parent's
// size always decremented, independent of whether the inode itself was
// freed - a hard-linked file loses this name regardless of who else still
// holds it open under another.
func (fs *FileSystem) Remove(cwd, path string) error {
	res, err := fs.findFile(cwd, path)
	if err != nil {
		return err
	}
	if res.Child == UnallocatedInode {
		return &PathNotFoundError{Path: path}
	}
	inode, err := fs.readInode(res.Child)
	if err != nil {
		return err
	}
	if inode.Type != TypeFile {
		return &NotAFileError{Path: path}
	}

	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return err
	}
	if inode.NReferences > 0 {
		inode.NReferences--
	}
	if inode.NReferences == 0 {
		for _, d := range inode.Data {
			if d == UnallocatedBlock {
				continue
			}
			if err := mb.freeBlock(fs.dev, d); err != nil {
				return err
			}
		}
		if err := mb.freeInode(fs.dev, res.Child); err != nil {
			return err
		}
	} else if err := fs.writeInode(res.Child, inode); err != nil {
		return err
	}

	parent, err := fs.readInode(res.Parent)
	if err != nil {
		return err
	}
	if err := removeEntry(fs.dev, &parent, res.LocalName); err != nil {
		return err
	}
	if err := fs.writeInode(res.Parent, parent); err != nil {
		return err
	}
	fs.log.WithField("path", path).Debug("removed file")
	return nil
}

// Link creates dst as an additional directory entry for the file already
// at src, incrementing its reference count.
func (fs *FileSystem) Link(cwd, src, dst string) error {
	srcRes, err := fs.findFile(cwd, src)
	if err != nil {
		return err
	}
	if srcRes.Child == UnallocatedInode {
		return &PathNotFoundError{Path: src}
	}
	srcInode, err := fs.readInode(srcRes.Child)
	if err != nil {
		return err
	}
	if srcInode.Type != TypeFile {
		return &NotAFileError{Path: src}
	}

	dstRes, err := fs.findFile(cwd, dst)
	if err != nil {
		return err
	}
	if dstRes.Child != UnallocatedInode {
		return &AlreadyExistsError{Path: dst}
	}
	if dstRes.Parent == UnallocatedInode {
		return &PathNotFoundError{Path: dst}
	}
	if len(dstRes.LocalName) > MaxNameLength {
		return &NameTooLongError{Name: dstRes.LocalName}
	}
	parent, err := fs.readInode(dstRes.Parent)
	if err != nil {
		return err
	}
	if parent.Type != TypeDirectory {
		return &NotADirectoryError{Path: dst}
	}

	if err := insertEntry(fs.dev, &parent, dstRes.LocalName, srcRes.Child, dst); err != nil {
		return err
	}
	if err := fs.writeInode(dstRes.Parent, parent); err != nil {
		return err
	}
	srcInode.NReferences++
	return fs.writeInode(srcRes.Child, srcInode)
}
