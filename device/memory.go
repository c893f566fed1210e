package device

// MemoryDevice is an in-memory BlockDevice, used by the filesystem/microfs
// test suite so that engine tests exercise real block-granular I/O without
// touching the filesystem underneath the test runner.
type MemoryDevice struct {
	blockSize int
	blocks    [][]byte
}

// NewMemoryDevice creates a zero-filled in-memory device of the given shape.
func NewMemoryDevice(blockSize, blocks int) *MemoryDevice {
	d := &MemoryDevice{blockSize: blockSize, blocks: make([][]byte, blocks)}
	for i := range d.blocks {
		d.blocks[i] = make([]byte, blockSize)
	}
	return d
}

var _ BlockDevice = (*MemoryDevice)(nil)

func (d *MemoryDevice) BlockSize() int { return d.blockSize }
func (d *MemoryDevice) Blocks() int    { return len(d.blocks) }

func (d *MemoryDevice) ReadBlock(ref int, buf []byte) error {
	if err := checkBlock(d, ref, buf); err != nil {
		return err
	}
	copy(buf, d.blocks[ref])
	return nil
}

func (d *MemoryDevice) WriteBlock(ref int, buf []byte) error {
	if err := checkBlock(d, ref, buf); err != nil {
		return err
	}
	copy(d.blocks[ref], buf)
	return nil
}

func (d *MemoryDevice) Close() error { return nil }
