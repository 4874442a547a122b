// Package device provides block sources backed by files, block devices and
// memory.
package device

import (
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-btrfs/internal/config"
)

// FileDevice reads a filesystem from an image file or a block device.
type FileDevice struct {
	file   *os.File
	path   string
	size   int64
	offset int64 // Offset to the filesystem within the file
}

// OpenFile opens path read-only. Block devices are sized with an ioctl,
// regular files with stat. cfg.PartitionOffset shifts every read. A nil cfg
// uses the defaults.
func OpenFile(path string, cfg *config.Config) (*FileDevice, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat device: %w", err)
	}

	size := stat.Size()
	if stat.Mode()&os.ModeDevice != 0 {
		size, err = blockDeviceSize(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to get block device size: %w", err)
		}
	}

	if cfg.PartitionOffset > size {
		file.Close()
		return nil, fmt.Errorf("partition offset %d beyond end of device (%d bytes)", cfg.PartitionOffset, size)
	}

	return &FileDevice{
		file:   file,
		path:   path,
		size:   size,
		offset: cfg.PartitionOffset,
	}, nil
}

// ReadAt implements io.ReaderAt relative to the filesystem start.
func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= d.Size() {
		return 0, io.EOF
	}
	return d.file.ReadAt(p, d.offset+off)
}

// Size returns the size of the filesystem area in bytes.
func (d *FileDevice) Size() int64 {
	return d.size - d.offset
}

// Path returns the path the device was opened from.
func (d *FileDevice) Path() string {
	return d.path
}

// Close closes the underlying file
func (d *FileDevice) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
