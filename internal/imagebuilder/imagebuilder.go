// Package imagebuilder writes small synthetic BTRFS images: superblocks,
// system chunk arrays and checksummed tree blocks. It backs the package tests
// and the sample image used by the CLI tests.
package imagebuilder

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// DefaultNodeSize is used when Options.NodeSize is zero.
const DefaultNodeSize = 4096

// Options configures a Builder.
type Options struct {
	NodeSize   uint32
	SectorSize uint32
	Generation uint64
	Label      string
	FSID       types.UUID
	// ChunkTreeUUID is stamped into every tree block header.
	ChunkTreeUUID types.UUID
}

// Builder assembles an image in memory.
type Builder struct {
	image []byte
	opts  Options
	sb    types.Superblock
	// write cursor inside sb.SysChunkArray
	sysChunkLen int
}

// Item is a leaf item to be written: its key and raw payload.
type Item struct {
	Key  types.Key
	Data []byte
}

// New returns a Builder for an image of size bytes. The superblock starts out
// with the magic, CRC32C checksums, the node and sector sizes, the label and
// the FSID filled in.
func New(size int, opts Options) *Builder {
	if opts.NodeSize == 0 {
		opts.NodeSize = DefaultNodeSize
	}
	if opts.SectorSize == 0 {
		opts.SectorSize = 4096
	}
	if opts.Generation == 0 {
		opts.Generation = 1
	}

	b := &Builder{image: make([]byte, size), opts: opts}
	sb := &b.sb
	copy(sb.Magic[:], types.Magic)
	sb.FSID = opts.FSID
	sb.Generation = opts.Generation
	sb.ChunkRootGeneration = opts.Generation
	sb.TotalBytes = uint64(size)
	sb.NumDevices = 1
	sb.SectorSize = opts.SectorSize
	sb.NodeSize = opts.NodeSize
	sb.LeafSize = opts.NodeSize
	sb.StripeSize = opts.SectorSize
	sb.CsumType = types.CsumTypeCRC32C
	sb.RootDirObjectID = types.RootTreeDirObjectID
	sb.DevItem.DevID = 1
	sb.DevItem.TotalBytes = uint64(size)
	sb.DevItem.SectorSize = opts.SectorSize
	sb.DevItem.IOAlign = opts.SectorSize
	sb.DevItem.IOWidth = opts.SectorSize
	sb.DevItem.FSID = opts.FSID
	copy(sb.Label[:types.LabelSize-1], opts.Label)
	return b
}

// Superblock returns the superblock that WriteSuperblock will write. Callers
// may modify it freely.
func (b *Builder) Superblock() *types.Superblock {
	return &b.sb
}

// Bytes returns the image.
func (b *Builder) Bytes() []byte {
	return b.image
}

// NodeSize returns the configured node size.
func (b *Builder) NodeSize() uint32 {
	return b.opts.NodeSize
}

// AddSystemChunk appends a CHUNK_ITEM with a single stripe to the
// superblock's system chunk array.
func (b *Builder) AddSystemChunk(logical types.LogicalAddr, size uint64, physical types.PhysicalAddr) error {
	key := types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey, Offset: uint64(logical)}
	record, err := Pack(&key)
	if err != nil {
		return err
	}
	payload, err := ChunkItemPayload(size, types.BlockGroupSystem, physical)
	if err != nil {
		return err
	}
	return b.AppendSystemChunkBytes(append(record, payload...))
}

// AppendSystemChunkBytes appends raw bytes to the system chunk array and
// bumps SysChunkArraySize. It allows tests to write malformed records.
func (b *Builder) AppendSystemChunkBytes(raw []byte) error {
	if b.sysChunkLen+len(raw) > types.SystemChunkArraySize {
		return fmt.Errorf("system chunk array full: %d + %d bytes", b.sysChunkLen, len(raw))
	}
	copy(b.sb.SysChunkArray[b.sysChunkLen:], raw)
	b.sysChunkLen += len(raw)
	b.sb.SysChunkArraySize = uint32(b.sysChunkLen)
	return nil
}

// WriteSuperblock writes the superblock, with a fresh checksum, to the given
// mirror slot.
func (b *Builder) WriteSuperblock(mirror int) error {
	if mirror < 0 || mirror >= len(types.SuperblockOffsets) {
		return fmt.Errorf("invalid superblock mirror %d", mirror)
	}
	sb := b.sb
	return b.WriteSuperblockAt(types.SuperblockOffsets[mirror], &sb)
}

// WriteSuperblockAt packs sb, seals it and writes it at addr. ByteNr is set
// to addr.
func (b *Builder) WriteSuperblockAt(addr types.PhysicalAddr, sb *types.Superblock) error {
	sb.ByteNr = addr
	raw, err := Pack(sb)
	if err != nil {
		return err
	}
	checksum.SealBlock(raw)
	return b.WriteAt(addr, raw)
}

// WriteAt copies raw bytes into the image.
func (b *Builder) WriteAt(addr types.PhysicalAddr, raw []byte) error {
	if uint64(addr)+uint64(len(raw)) > uint64(len(b.image)) {
		return fmt.Errorf("write of %d bytes at 0x%x exceeds image size 0x%x", len(raw), addr, len(b.image))
	}
	copy(b.image[addr:], raw)
	return nil
}

// WriteLeaf writes a sealed leaf node at physical. Item payloads are packed
// from the end of the node backwards, the way the kernel lays them out.
func (b *Builder) WriteLeaf(physical types.PhysicalAddr, logical types.LogicalAddr, owner uint64, items []Item) error {
	node, err := b.Leaf(logical, owner, items)
	if err != nil {
		return err
	}
	return b.WriteAt(physical, node)
}

// WriteNode writes a sealed internal node at physical.
func (b *Builder) WriteNode(physical types.PhysicalAddr, logical types.LogicalAddr, owner uint64, level uint8, ptrs []types.KeyPtr) error {
	node, err := b.Node(logical, owner, level, ptrs)
	if err != nil {
		return err
	}
	return b.WriteAt(physical, node)
}

// Leaf returns a sealed leaf node without writing it.
func (b *Builder) Leaf(logical types.LogicalAddr, owner uint64, items []Item) ([]byte, error) {
	node := make([]byte, b.opts.NodeSize)
	if err := b.putHeader(node, logical, owner, 0, len(items)); err != nil {
		return nil, err
	}

	end := len(node)
	for i, it := range items {
		tableAt := types.HeaderSize + i*types.ItemSize
		end -= len(it.Data)
		if end < tableAt+types.ItemSize {
			return nil, fmt.Errorf("leaf overflow at item %d", i)
		}
		copy(node[end:], it.Data)
		rec, err := Pack(&types.Item{
			Key:    it.Key,
			Offset: uint32(end - types.HeaderSize),
			Size:   uint32(len(it.Data)),
		})
		if err != nil {
			return nil, err
		}
		copy(node[tableAt:], rec)
	}

	checksum.SealBlock(node)
	return node, nil
}

// Node returns a sealed internal node without writing it.
func (b *Builder) Node(logical types.LogicalAddr, owner uint64, level uint8, ptrs []types.KeyPtr) ([]byte, error) {
	if level == 0 {
		return nil, fmt.Errorf("internal node needs a level above 0")
	}
	node := make([]byte, b.opts.NodeSize)
	if types.HeaderSize+len(ptrs)*types.KeyPtrSize > len(node) {
		return nil, fmt.Errorf("node overflow: %d key pointers", len(ptrs))
	}
	if err := b.putHeader(node, logical, owner, level, len(ptrs)); err != nil {
		return nil, err
	}
	for i := range ptrs {
		rec, err := Pack(&ptrs[i])
		if err != nil {
			return nil, err
		}
		copy(node[types.HeaderSize+i*types.KeyPtrSize:], rec)
	}
	checksum.SealBlock(node)
	return node, nil
}

func (b *Builder) putHeader(node []byte, logical types.LogicalAddr, owner uint64, level uint8, n int) error {
	raw, err := Pack(&types.Header{
		FSID:          b.sb.MetadataFSID(),
		ByteNr:        logical,
		ChunkTreeUUID: b.opts.ChunkTreeUUID,
		Generation:    b.opts.Generation,
		Owner:         owner,
		NumItems:      uint32(n),
		Level:         level,
	})
	if err != nil {
		return err
	}
	copy(node, raw)
	return nil
}

// Pack is types.Pack for callers that only import this package.
func Pack(v interface{}) ([]byte, error) {
	return types.Pack(v)
}
