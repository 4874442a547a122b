package types

import "fmt"

// KeySize is the packed size of a Key.
const KeySize = 17

// Key locates an item in a B-tree. Keys are ordered by ObjectID, then
// ItemType, then Offset.
type Key struct {
	// The object the item belongs to: an inode number, a tree id, or a
	// well-known id such as FirstChunkTreeObjectID.
	ObjectID uint64
	// The kind of item.
	ItemType uint8
	// Type-specific: a name hash for directory entries, a byte offset for
	// extents, the logical start for chunks.
	Offset uint64
}

// Compare returns -1, 0 or +1 depending on whether k sorts before, equal to
// or after other.
func (k Key) Compare(other Key) int {
	switch {
	case k.ObjectID < other.ObjectID:
		return -1
	case k.ObjectID > other.ObjectID:
		return 1
	case k.ItemType < other.ItemType:
		return -1
	case k.ItemType > other.ItemType:
		return 1
	case k.Offset < other.Offset:
		return -1
	case k.Offset > other.Offset:
		return 1
	}
	return 0
}

// Less reports whether k sorts strictly before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

// Matches reports whether k has the given object id and item type,
// regardless of its offset.
func (k Key) Matches(objectID uint64, itemType uint8) bool {
	return k.ObjectID == objectID && k.ItemType == itemType
}

func (k Key) String() string {
	return fmt.Sprintf("(%d %s %d)", k.ObjectID, ItemTypeName(k.ItemType), k.Offset)
}
