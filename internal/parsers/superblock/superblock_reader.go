// Package superblock decodes and validates a single superblock copy.
// Locating the copies on a device and choosing between them is done by the
// services layer.
package superblock

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// Reasons a superblock copy is rejected. Each is reported together with
// types.ErrNotRecognized.
var (
	ErrTooShort            = errors.New("superblock data too short")
	ErrBadMagic            = errors.New("bad superblock magic")
	ErrUnsupportedChecksum = errors.New("unsupported checksum type")
	ErrChecksumMismatch    = errors.New("superblock checksum mismatch")
	ErrBadGeometry         = errors.New("invalid sector or node size")
)

// MaxNodeSize is the largest tree block size the format allows.
const MaxNodeSize = 64 * 1024

// SuperblockReader gives read access to a validated superblock copy.
type SuperblockReader struct {
	superblock *types.Superblock
	data       []byte
}

// NewSuperblockReader decodes and validates a raw 4096-byte superblock copy.
func NewSuperblockReader(data []byte) (*SuperblockReader, error) {
	sb, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(sb, data); err != nil {
		return nil, err
	}
	return &SuperblockReader{
		superblock: sb,
		data:       data[:types.SuperblockSize],
	}, nil
}

// Parse decodes raw bytes into a Superblock without validating it.
func Parse(data []byte) (*types.Superblock, error) {
	if len(data) < types.SuperblockSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", types.ErrNotRecognized, ErrTooShort, len(data))
	}
	sb := &types.Superblock{}
	if err := types.Unpack(data[:types.SuperblockSize], sb); err != nil {
		return nil, fmt.Errorf("failed to parse superblock: %w", err)
	}
	return sb, nil
}

// Validate checks the magic, the checksum algorithm and the checksum of a
// decoded superblock against the raw bytes it was decoded from, then its
// geometry: sector and node sizes must be powers of two with
// sectorsize <= nodesize <= MaxNodeSize.
func Validate(sb *types.Superblock, data []byte) error {
	if !sb.HasMagic() {
		return fmt.Errorf("%w: %w: got %q", types.ErrNotRecognized, ErrBadMagic, sb.Magic[:])
	}
	if sb.CsumType != types.CsumTypeCRC32C {
		return fmt.Errorf("%w: %w: %d", types.ErrNotRecognized, ErrUnsupportedChecksum, sb.CsumType)
	}
	if len(data) < types.SuperblockSize {
		return fmt.Errorf("%w: %w: %d bytes", types.ErrNotRecognized, ErrTooShort, len(data))
	}
	inspector := checksum.NewBlockInspector(data[:types.SuperblockSize])
	if !inspector.Verify() {
		return fmt.Errorf("%w: %w: stored 0x%08X, computed 0x%08X",
			types.ErrNotRecognized, ErrChecksumMismatch, inspector.Stored(), inspector.Computed())
	}
	return validateGeometry(sb)
}

func validateGeometry(sb *types.Superblock) error {
	if !isPowerOfTwo(sb.SectorSize) {
		return fmt.Errorf("%w: %w: sectorsize %d", types.ErrNotRecognized, ErrBadGeometry, sb.SectorSize)
	}
	if !isPowerOfTwo(sb.NodeSize) || sb.NodeSize < sb.SectorSize || sb.NodeSize > MaxNodeSize {
		return fmt.Errorf("%w: %w: nodesize %d with sectorsize %d",
			types.ErrNotRecognized, ErrBadGeometry, sb.NodeSize, sb.SectorSize)
	}
	return nil
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// Superblock returns the decoded superblock.
func (r *SuperblockReader) Superblock() *types.Superblock {
	return r.superblock
}

// Raw returns the 4096 raw bytes the superblock was decoded from.
func (r *SuperblockReader) Raw() []byte {
	return r.data
}

// FSID returns the filesystem UUID.
func (r *SuperblockReader) FSID() types.UUID {
	return r.superblock.FSID
}

// Label returns the filesystem label.
func (r *SuperblockReader) Label() string {
	return r.superblock.LabelString()
}

// Generation returns the commit generation of this copy.
func (r *SuperblockReader) Generation() uint64 {
	return r.superblock.Generation
}

// NodeSize returns the size of every tree block.
func (r *SuperblockReader) NodeSize() uint32 {
	return r.superblock.NodeSize
}

// SectorSize returns the minimal I/O size.
func (r *SuperblockReader) SectorSize() uint32 {
	return r.superblock.SectorSize
}

// RootTree returns the logical address of the root tree root.
func (r *SuperblockReader) RootTree() types.LogicalAddr {
	return r.superblock.RootTree
}

// ChunkTree returns the logical address of the chunk tree root.
func (r *SuperblockReader) ChunkTree() types.LogicalAddr {
	return r.superblock.ChunkTree
}

// TotalBytes returns the filesystem size in bytes.
func (r *SuperblockReader) TotalBytes() uint64 {
	return r.superblock.TotalBytes
}

// BytesUsed returns the number of bytes allocated.
func (r *SuperblockReader) BytesUsed() uint64 {
	return r.superblock.BytesUsed
}

// NumDevices returns the number of devices in the filesystem.
func (r *SuperblockReader) NumDevices() uint64 {
	return r.superblock.NumDevices
}
