package microfs

import (
	"github.com/cstruct/microfs/device"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FileSystem is a handle onto a microfs image mounted over a block device.
// It owns no long-lived disk state beyond what it reads fresh for each
// operation: the engine is single-operation-at-a-time, so there is no
// write-back cache and no cross-call invariant beyond what is already
// persisted.
type FileSystem struct {
	dev     device.BlockDevice
	log     logrus.FieldLogger
	session uuid.UUID
}

// Option configures a FileSystem at construction time.
type Option func(*FileSystem)

// WithLogger attaches a logrus.FieldLogger for structured operation
// tracing. If unset, a default logrus.New() logger is used, which writes
// Info level and above to stderr.
func WithLogger(l logrus.FieldLogger) Option {
	return func(fs *FileSystem) { fs.log = l }
}

// New wraps an already-open block device with the microfs engine. The
// device is expected to already hold a formatted image (see Format); New
// itself performs no I/O.
func New(dev device.BlockDevice, opts ...Option) *FileSystem {
	fs := &FileSystem{
		dev:     dev,
		log:     logrus.New(),
		session: uuid.New(),
	}
	for _, o := range opts {
		o(fs)
	}
	fs.log = fs.log.WithField("session", fs.session.String())
	return fs
}

// Stat summarizes free/used blocks and inodes, purely from the on-disk
// bitmaps; see SPEC_FULL.md's supplemented df-like diagnostic.
func (fs *FileSystem) Stat() (Stat, error) {
	mb, err := readMasterBlock(fs.dev)
	if err != nil {
		return Stat{}, err
	}
	return mb.stat(), nil
}

func (fs *FileSystem) readInode(i InodeRef) (Inode, error) {
	return readInode(fs.dev, i)
}

func (fs *FileSystem) writeInode(i InodeRef, n Inode) error {
	return writeInode(fs.dev, i, n)
}
