package types

// Item payloads found in the root tree and in filesystem trees.

// Packed sizes of the item payloads.
const (
	InodeItemSize      = 160
	RootItemSize       = 439
	RootItemLegacySize = 239
	DirItemSize        = 30
	InodeRefSize       = 10
)

// InodeItem is the payload of an INODE_ITEM.
type InodeItem struct {
	Generation uint64
	TransID    uint64
	Size       uint64
	NBytes     uint64
	BlockGroup uint64
	NLink      uint32
	UID        uint32
	GID        uint32
	Mode       uint32
	RDev       uint64
	Flags      uint64
	Sequence   uint64
	Reserved   [4]uint64
	ATime      Timespec
	CTime      Timespec
	MTime      Timespec
	OTime      Timespec
}

// RootItem is the payload of a ROOT_ITEM. It describes the root node of a
// tree (a subvolume, the extent tree, the chunk tree and so on).
type RootItem struct {
	// Inode of the tree's root directory; only meaningful for subvolumes.
	Inode      InodeItem
	Generation uint64
	// Object id of the root directory inode, normally FirstFreeObjectID.
	RootDirID uint64
	// Logical address of the tree's root node.
	ByteNr       LogicalAddr
	ByteLimit    uint64
	BytesUsed    uint64
	LastSnapshot uint64
	Flags        uint64
	Refs         uint32
	DropProgress Key
	DropLevel    uint8
	// Level of the root node.
	Level uint8

	// Fields below are absent from legacy items.

	GenerationV2 uint64
	UUID         UUID
	ParentUUID   UUID
	ReceivedUUID UUID
	CTransID     uint64
	OTransID     uint64
	STransID     uint64
	RTransID     uint64
	CTime        Timespec
	OTime        Timespec
	STime        Timespec
	RTime        Timespec
	Reserved     [8]uint64
}

// HasExtendedFields reports whether the item carries the fields past Level.
// Legacy writers leave GenerationV2 out of step with Generation.
func (r *RootItem) HasExtendedFields() bool {
	return r.GenerationV2 == r.Generation
}

// DirItem is the fixed part of a DIR_ITEM or DIR_INDEX entry. It is followed
// by NameLen bytes of name and DataLen bytes of data. A DIR_ITEM payload may
// hold several entries back to back (hash collisions).
type DirItem struct {
	// Key of the target: an INODE_ITEM for files and directories or a
	// ROOT_ITEM for subvolumes.
	Location Key
	TransID  uint64
	DataLen  uint16
	NameLen  uint16
	// One of the FileType constants.
	Type uint8
}

// InodeRef is the fixed part of an INODE_REF entry, followed by NameLen bytes
// of name. The key's offset is the parent directory's inode number.
type InodeRef struct {
	// Index of the entry in the parent directory (the DIR_INDEX offset).
	Index   uint64
	NameLen uint16
}
