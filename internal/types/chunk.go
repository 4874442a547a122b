package types

// Chunks
// A CHUNK_ITEM maps the logical range [key.Offset, key.Offset+Size) onto one
// or more stripes. The item is immediately followed by NumStripes Stripe
// records.

// Packed sizes of the chunk structures.
const (
	ChunkItemSize = 48
	StripeSize    = 32
)

// ChunkItem describes a chunk of the logical address space.
type ChunkItem struct {
	// Size of the chunk in bytes.
	Size uint64
	// Object id of the root referencing this chunk (the extent tree).
	Owner uint64
	// Stripe length for striped profiles.
	StripeLen uint64
	// Block group flags (data/system/metadata and the RAID profile).
	Type uint64
	// Optimal I/O alignment.
	IOAlign uint32
	// Optimal I/O width.
	IOWidth uint32
	// Minimal I/O size (sector size).
	SectorSize uint32
	// Number of stripes that follow.
	NumStripes uint16
	// Sub-stripes, used by RAID10 only.
	SubStripes uint16
}

// Stripe is one physical placement of a chunk.
type Stripe struct {
	// Device holding the stripe.
	DevID uint64
	// Byte offset of the stripe on the device.
	Offset PhysicalAddr
	// UUID of the device.
	DevUUID UUID
}

// ChunkEntry is one resolved logical-to-physical mapping. Only stripe 0 of
// a chunk is retained.
type ChunkEntry struct {
	LogicalStart   LogicalAddr  `json:"logical_start" yaml:"logical_start"`
	Size           uint64       `json:"size" yaml:"size"`
	PhysicalOffset PhysicalAddr `json:"physical_offset" yaml:"physical_offset"`
}

// End returns the first logical address past the entry.
func (e ChunkEntry) End() LogicalAddr {
	return e.LogicalStart + LogicalAddr(e.Size)
}

// Contains reports whether the entry covers the logical address.
func (e ChunkEntry) Contains(logical LogicalAddr) bool {
	return logical >= e.LogicalStart && logical-e.LogicalStart < LogicalAddr(e.Size)
}
