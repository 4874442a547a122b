package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// readPhysical reads size bytes at addr in reads of at most chunkSize bytes.
// Any failed or short read is an ErrIOFailure.
func readPhysical(dev interfaces.BlockSource, addr types.PhysicalAddr, size, chunkSize int) ([]byte, error) {
	if uint64(addr)+uint64(size) > uint64(dev.Size()) {
		return nil, types.NewError("read", types.ErrIOFailure, uint64(addr),
			fmt.Errorf("%d bytes past end of device (%d bytes)", size, dev.Size()))
	}

	buf := make([]byte, size)
	for done := 0; done < size; {
		n := min(chunkSize, size-done)
		off := int64(addr) + int64(done)
		read, err := dev.ReadAt(buf[done:done+n], off)
		if read == n && (err == nil || errors.Is(err, io.EOF)) {
			done += n
			continue
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, types.NewError("read", types.ErrIOFailure, uint64(off), fmt.Errorf("read %d of %d bytes: %w", read, n, err))
	}
	return buf, nil
}
