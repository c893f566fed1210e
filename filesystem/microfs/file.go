package microfs

import "io"

// File is an open handle onto a file inode's data, scoped to a single
// read or write direction for its lifetime - per spec §4.6 there is no
// read/write handle, only 'r', 'w' and 'a'. Opening for 'w' truncates any
// existing content and releases its blocks back to the allocator; opening
// for 'a' seeks to the current end of file; 'r' starts at offset 0.
type File struct {
	fs     *FileSystem
	inode  InodeRef
	path   string
	mode   byte
	offset uint32
}

func validMode(mode byte) bool {
	return mode == 'r' || mode == 'w' || mode == 'a'
}

// openFile resolves path to a FILE inode and returns a handle positioned
// per mode, per spec §4.6:
//
//   - 'r' requires an existing FILE; starts at offset 0.
//   - 'w' and 'a' both create a new, empty FILE if path does not yet exist
//     (failing if its parent doesn't exist either). If path already exists
//     and is not a FILE, both fail with NotAFileError. If it already exists
//     as a FILE, 'w' truncates it to empty and starts at offset 0; 'a'
//     leaves its content alone and starts at its current end.
func (fs *FileSystem) openFile(cwd, path string, mode byte) (*File, error) {
	if !validMode(mode) {
		return nil, &BadModeError{Mode: string(mode)}
	}
	res, err := fs.findFile(cwd, path)
	if err != nil {
		return nil, err
	}

	if res.Child == UnallocatedInode {
		if mode == 'r' {
			return nil, &PathNotFoundError{Path: path}
		}
		ref, err := fs.createEmptyFile(res.Parent, res.LocalName, path)
		if err != nil {
			return nil, err
		}
		return &File{fs: fs, inode: ref, path: path, mode: mode}, nil
	}

	inode, err := fs.readInode(res.Child)
	if err != nil {
		return nil, err
	}
	if inode.Type != TypeFile {
		return nil, &NotAFileError{Path: path}
	}

	f := &File{fs: fs, inode: res.Child, path: path, mode: mode}
	switch mode {
	case 'w':
		if err := fs.truncateFile(res.Child, inode); err != nil {
			return nil, err
		}
	case 'a':
		f.offset = inode.Size
	}
	return f, nil
}

// createEmptyFile allocates a new inode, links it into parent under name,
// and initializes it as an empty FILE. On a failure to insert the entry,
// the inode is released before returning.
func (fs *FileSystem) createEmptyFile(parentRef InodeRef, name, path string) (InodeRef, error) {
	if parentRef == UnallocatedInode {
		return UnallocatedInode, &PathNotFoundError{Path: path}
	}
	if len(name) > MaxNameLength {
		return UnallocatedInode, &NameTooLongError{Name: name}
	}
	parent, err := fs.readInode(parentRef)
	if err != nil {
		return UnallocatedInode, err
	}
	if parent.Type != TypeDirectory {
		return UnallocatedInode, &NotADirectoryError{Path: path}
	}

	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return UnallocatedInode, err
	}
	inodeRef, err := mb.allocateInode(fs.dev)
	if err != nil {
		return UnallocatedInode, err
	}

	child := newEmptyInode()
	child.Type = TypeFile
	child.NReferences = 1
	if err := fs.writeInode(inodeRef, child); err != nil {
		mb.freeInode(fs.dev, inodeRef)
		return UnallocatedInode, err
	}
	if err := insertEntry(fs.dev, &parent, name, inodeRef, path); err != nil {
		mb.freeInode(fs.dev, inodeRef)
		return UnallocatedInode, err
	}
	if err := fs.writeInode(parentRef, parent); err != nil {
		return UnallocatedInode, err
	}
	return inodeRef, nil
}

// truncateFile frees every block an inode currently holds and zeroes its
// size, leaving the inode itself (and its directory entry) intact.
func (fs *FileSystem) truncateFile(ref InodeRef, inode Inode) error {
	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return err
	}
	for i, d := range inode.Data {
		if d == UnallocatedBlock {
			continue
		}
		if err := mb.freeBlock(fs.dev, d); err != nil {
			return err
		}
		inode.Data[i] = UnallocatedBlock
	}
	inode.Size = 0
	return fs.writeInode(ref, inode)
}

// Close releases the handle. The engine keeps no write-back state, so this
// never fails; it exists for symmetry with Open and so callers can defer it.
func (f *File) Close() error { return nil }

// Read copies up to len(buf) bytes starting at the handle's current offset,
// advancing it by the number of bytes read. It returns io.EOF once the
// offset reaches the inode's recorded size.
func (f *File) Read(buf []byte) (int, error) {
	if f.mode != 'r' {
		return 0, &InvalidHandleError{Op: "read", Mode: f.mode}
	}
	inode, err := f.fs.readInode(f.inode)
	if err != nil {
		return 0, err
	}
	if f.offset >= inode.Size {
		return 0, io.EOF
	}

	n := 0
	for n < len(buf) && f.offset < inode.Size {
		blockIdx := int(f.offset) / BlockSize
		blockOff := int(f.offset) % BlockSize
		if blockIdx >= BlocksPerInode {
			break
		}
		ref := inode.Data[blockIdx]
		if ref == UnallocatedBlock {
			break
		}
		raw := make([]byte, BlockSize)
		if err := f.fs.dev.ReadBlock(int(ref), raw); err != nil {
			return n, newIoError("read file block", err)
		}

		// Both here and in Write, bytes available in the current block is
		// expressed the same way: BlockSize - blockOff, then clamped down
		// by whatever the caller and the file's own size still allow.
		chunk := BlockSize - blockOff
		if remaining := int(inode.Size) - int(f.offset); chunk > remaining {
			chunk = remaining
		}
		if chunk > len(buf)-n {
			chunk = len(buf) - n
		}
		copy(buf[n:n+chunk], raw[blockOff:blockOff+chunk])
		n += chunk
		f.offset += uint32(chunk)
	}
	return n, nil
}

// Write copies len(buf) bytes into the file starting at the handle's
// current offset, allocating new data blocks one at a time as the write
// crosses a block boundary past the inode's current block count. It stops
// with a short write and NoBlocksError if the block allocator runs out, or
// with a short write and FileTooLargeError once all BlocksPerInode direct
// slots are exhausted - there are no indirect blocks.
func (f *File) Write(buf []byte) (int, error) {
	if f.mode != 'w' && f.mode != 'a' {
		return 0, &InvalidHandleError{Op: "write", Mode: f.mode}
	}
	inode, err := f.fs.readInode(f.inode)
	if err != nil {
		return 0, err
	}
	mb, err := readMasterBlock(f.fs.dev)
	if err != nil {
		return 0, err
	}

	n := 0
	for n < len(buf) {
		blockIdx := int(f.offset) / BlockSize
		blockOff := int(f.offset) % BlockSize
		if blockIdx >= BlocksPerInode {
			break
		}
		ref := inode.Data[blockIdx]
		if ref == UnallocatedBlock {
			newRef, err := mb.allocateBlock(f.fs.dev)
			if err != nil {
				if writeErr := f.fs.writeInode(f.inode, inode); writeErr != nil {
					return n, writeErr
				}
				return n, err
			}
			ref = newRef
			inode.Data[blockIdx] = ref
		}

		raw := make([]byte, BlockSize)
		if err := f.fs.dev.ReadBlock(int(ref), raw); err != nil {
			return n, newIoError("read file block", err)
		}
		chunk := BlockSize - blockOff
		if chunk > len(buf)-n {
			chunk = len(buf) - n
		}
		copy(raw[blockOff:blockOff+chunk], buf[n:n+chunk])
		if err := f.fs.dev.WriteBlock(int(ref), raw); err != nil {
			return n, newIoError("write file block", err)
		}

		n += chunk
		f.offset += uint32(chunk)
		if f.offset > inode.Size {
			inode.Size = f.offset
		}
	}

	if err := f.fs.writeInode(f.inode, inode); err != nil {
		return n, err
	}
	if n < len(buf) {
		return n, &FileTooLargeError{Path: f.path}
	}
	return n, nil
}
