package services

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-btrfs/internal/device"
	"github.com/deploymenttheory/go-btrfs/internal/imagebuilder"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// testOptions returns default options with logging discarded.
func testOptions() Options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts := DefaultOptions()
	opts.Logger = logger
	return opts
}

// createTestSample builds the sample image and returns its builder.
func createTestSample(t testing.TB) *imagebuilder.Builder {
	t.Helper()
	b, err := imagebuilder.Sample(imagebuilder.Options{})
	require.NoError(t, err)
	return b
}

// mountTestSample mounts the sample image.
func mountTestSample(t testing.TB) *Volume {
	t.Helper()
	vol, err := Mount(device.NewMemory(createTestSample(t).Bytes()), testOptions())
	require.NoError(t, err)
	return vol
}

// createTestMirrorImage grows base so that it holds superblock mirror 1 and
// writes a copy of sb with the given generation there.
func createTestMirrorImage(t testing.TB, base []byte, sb types.Superblock, generation uint64) []byte {
	t.Helper()
	addr := types.SuperblockOffsets[1]
	img := make([]byte, int(addr)+types.SuperblockSize)
	copy(img, base)

	sb.Generation = generation
	sb.ByteNr = addr
	raw, err := types.Pack(&sb)
	require.NoError(t, err)
	checksum.SealBlock(raw)
	copy(img[addr:], raw)
	return img
}

// countingDevice records the size of every read.
type countingDevice struct {
	*device.MemoryDevice

	mu      sync.Mutex
	reads   int
	maxRead int
	closed  bool
}

func newCountingDevice(buf []byte) *countingDevice {
	return &countingDevice{MemoryDevice: device.NewMemory(buf)}
}

func (d *countingDevice) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	d.reads++
	if len(p) > d.maxRead {
		d.maxRead = len(p)
	}
	d.mu.Unlock()
	return d.MemoryDevice.ReadAt(p, off)
}

func (d *countingDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

var errInjected = errors.New("injected read failure")

// failingDevice fails every read at or above failFrom.
type failingDevice struct {
	size     int64
	failFrom int64
}

func (d *failingDevice) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > d.failFrom {
		return 0, errInjected
	}
	clear(p)
	return len(p), nil
}

func (d *failingDevice) Size() int64 {
	return d.size
}

// shortDevice returns at most limit bytes per read without an error.
type shortDevice struct {
	*device.MemoryDevice
	limit int
}

func (d *shortDevice) ReadAt(p []byte, off int64) (int, error) {
	if len(p) > d.limit {
		p = p[:d.limit]
	}
	return d.MemoryDevice.ReadAt(p, off)
}
