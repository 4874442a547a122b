// Package checksum computes and verifies the CRC32C checksums that protect
// superblocks and tree blocks.
package checksum

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// Seed is the initial value used for every on-disk checksum.
const Seed uint32 = 0xFFFFFFFF

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC32C of data with the register initialised to seed
// and the result complemented.
func Checksum(seed uint32, data []byte) uint32 {
	// crc32.Update complements on entry and exit.
	return crc32.Update(^seed, castagnoli, data)
}

// NameHash returns the hash used as the key offset of DIR_ITEM entries.
func NameHash(name string) uint32 {
	return ^Checksum(^uint32(1), []byte(name))
}

// BlockInspector verifies the checksum of a superblock or tree block. The
// checksum covers everything after the CsumSize-byte checksum field and is
// stored little-endian in the first four bytes of that field.
type BlockInspector struct {
	Block []byte // full raw block including the checksum field
}

// NewBlockInspector wraps a raw block.
func NewBlockInspector(block []byte) *BlockInspector {
	return &BlockInspector{Block: block}
}

// Stored returns the checksum recorded in the block.
func (b *BlockInspector) Stored() uint32 {
	if len(b.Block) < types.CsumSize {
		return 0
	}
	return binary.LittleEndian.Uint32(b.Block[0:4])
}

// Computed returns the checksum of the block's covered range.
func (b *BlockInspector) Computed() uint32 {
	if len(b.Block) < types.CsumSize {
		return 0
	}
	return Checksum(Seed, b.Block[types.CsumSize:])
}

// Verify reports whether the stored and computed checksums match.
func (b *BlockInspector) Verify() bool {
	if len(b.Block) < types.CsumSize {
		return false
	}
	return b.Stored() == b.Computed()
}

// VerifyBlock reports whether block carries a valid checksum.
func VerifyBlock(block []byte) bool {
	return NewBlockInspector(block).Verify()
}

// SealBlock computes the checksum of block and writes it into the checksum
// field, zeroing the unused tail of the field. It is a no-op on blocks shorter
// than the field.
func SealBlock(block []byte) {
	if len(block) < types.CsumSize {
		return
	}
	sum := Checksum(Seed, block[types.CsumSize:])
	clear(block[:types.CsumSize])
	binary.LittleEndian.PutUint32(block[0:4], sum)
}
