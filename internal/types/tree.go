package types

// Tree blocks
// Every node of every B-tree starts with a Header. Leaves (level 0) follow it
// with an array of Item records whose payloads are packed at the end of the
// block; internal nodes follow it with an array of KeyPtr records.

// Packed sizes of the tree block structures.
const (
	HeaderSize = 101
	ItemSize   = KeySize + 8
	KeyPtrSize = KeySize + 16
)

// Header prefixes every tree block.
type Header struct {
	// Checksum of everything after this field, up to the end of the node.
	Csum [CsumSize]byte
	// Filesystem UUID (the metadata UUID when that feature is enabled).
	FSID UUID
	// Logical address of this node.
	ByteNr LogicalAddr
	// Header flags; the top byte holds the backref revision.
	Flags uint64
	// UUID of the chunk tree.
	ChunkTreeUUID UUID
	// Transaction id that last wrote this node.
	Generation uint64
	// Id of the tree that owns this node.
	Owner uint64
	// Number of Item or KeyPtr records that follow the header.
	NumItems uint32
	// Level of the node: 0 for leaves, the height above the leaves otherwise.
	Level uint8
}

// IsLeaf reports whether the header describes a leaf.
func (h *Header) IsLeaf() bool {
	return h.Level == 0
}

// Item is one record of a leaf's item table.
type Item struct {
	// Key of the item.
	Key Key
	// Offset of the payload, counted from the end of the header.
	Offset uint32
	// Size of the payload in bytes.
	Size uint32
}

// KeyPtr is one record of an internal node.
type KeyPtr struct {
	// Smallest key reachable through the child.
	Key Key
	// Logical address of the child node.
	BlockPtr LogicalAddr
	// Generation the child is expected to carry.
	Generation uint64
}
