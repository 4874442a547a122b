package device

import (
	"bytes"
	"fmt"
)

// MemoryDevice serves reads from a byte slice.
type MemoryDevice struct {
	*bytes.Reader
}

// NewMemory wraps buf. The slice is not copied.
func NewMemory(buf []byte) *MemoryDevice {
	return &MemoryDevice{Reader: bytes.NewReader(buf)}
}

// ReadAt implements io.ReaderAt.
func (m *MemoryDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	return m.Reader.ReadAt(p, off)
}

// Close is a no-op.
func (m *MemoryDevice) Close() error {
	return nil
}
