//go:build !linux

package device

import (
	"io"
	"os"
)

// blockDeviceSize finds the size of a device by seeking to its end.
func blockDeviceSize(f *os.File) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
