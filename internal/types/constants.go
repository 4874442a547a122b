package types

// On-disk constants. These values are part of the format and must not change.

const (
	// Magic is the signature stored in every superblock copy.
	Magic = "_BHRfS_M"

	// SuperblockSize is the size of one superblock copy in bytes.
	SuperblockSize = 4096

	// CsumSize is the size of the checksum field that prefixes superblocks and tree blocks.
	CsumSize = 32
	// FSIDSize is the size of a filesystem UUID.
	FSIDSize = 16
	// UUIDSize is the size of every other UUID.
	UUIDSize = 16
	// LabelSize is the maximum label size, including the terminating NUL.
	LabelSize = 256
	// SystemChunkArraySize is the capacity of the superblock's embedded chunk array.
	SystemChunkArraySize = 2048
	// NumBackupRoots is the number of root backups kept in the superblock.
	NumBackupRoots = 4
)

// Superblock mirror locations. The primary copy is always at SuperblockOffsets[0].
var SuperblockOffsets = [...]PhysicalAddr{
	0x10000,
	0x4000000,
	0x4000000000,
	0x4000000000000,
}

// Checksum algorithms (csum_type).
const (
	CsumTypeCRC32C uint16 = 0
	CsumTypeXXHash uint16 = 1
	CsumTypeSHA256 uint16 = 2
	CsumTypeBlake2 uint16 = 3
)

// ItemType discriminates the kind of item a key locates.
type ItemType = uint8

// Item types.
const (
	InodeItemKey       ItemType = 0x01
	InodeRefKey        ItemType = 0x0C
	InodeExtrefKey     ItemType = 0x0D
	XattrItemKey       ItemType = 0x18
	OrphanItemKey      ItemType = 0x30
	DirItemKey         ItemType = 0x54
	DirIndexKey        ItemType = 0x60
	ExtentDataKey      ItemType = 0x6C
	ExtentCsumKey      ItemType = 0x80
	RootItemKey        ItemType = 0x84
	RootBackrefKey     ItemType = 0x90
	RootRefKey         ItemType = 0x9C
	ExtentItemKey      ItemType = 0xA8
	MetadataItemKey    ItemType = 0xA9
	TreeBlockRefKey    ItemType = 0xB0
	ExtentDataRefKey   ItemType = 0xB2
	SharedBlockRefKey  ItemType = 0xB6
	SharedDataRefKey   ItemType = 0xB8
	BlockGroupItemKey  ItemType = 0xC0
	FreeSpaceInfoKey   ItemType = 0xC6
	FreeSpaceExtentKey ItemType = 0xC7
	FreeSpaceBitmapKey ItemType = 0xC8
	DevExtentKey       ItemType = 0xCC
	DevItemKey         ItemType = 0xD8
	ChunkItemKey       ItemType = 0xE4
	TempItemKey        ItemType = 0xF8
	DevStatsKey        ItemType = 0xF9
	UUIDSubvolKey      ItemType = 0xFB
	UUIDReceivedKey    ItemType = 0xFC
)

var itemTypeNames = map[ItemType]string{
	InodeItemKey:       "INODE_ITEM",
	InodeRefKey:        "INODE_REF",
	InodeExtrefKey:     "INODE_EXTREF",
	XattrItemKey:       "XATTR_ITEM",
	OrphanItemKey:      "ORPHAN_ITEM",
	DirItemKey:         "DIR_ITEM",
	DirIndexKey:        "DIR_INDEX",
	ExtentDataKey:      "EXTENT_DATA",
	ExtentCsumKey:      "EXTENT_CSUM",
	RootItemKey:        "ROOT_ITEM",
	RootBackrefKey:     "ROOT_BACKREF",
	RootRefKey:         "ROOT_REF",
	ExtentItemKey:      "EXTENT_ITEM",
	MetadataItemKey:    "METADATA_ITEM",
	TreeBlockRefKey:    "TREE_BLOCK_REF",
	ExtentDataRefKey:   "EXTENT_DATA_REF",
	SharedBlockRefKey:  "SHARED_BLOCK_REF",
	SharedDataRefKey:   "SHARED_DATA_REF",
	BlockGroupItemKey:  "BLOCK_GROUP_ITEM",
	FreeSpaceInfoKey:   "FREE_SPACE_INFO",
	FreeSpaceExtentKey: "FREE_SPACE_EXTENT",
	FreeSpaceBitmapKey: "FREE_SPACE_BITMAP",
	DevExtentKey:       "DEV_EXTENT",
	DevItemKey:         "DEV_ITEM",
	ChunkItemKey:       "CHUNK_ITEM",
	TempItemKey:        "TEMPORARY_ITEM",
	DevStatsKey:        "DEV_STATS",
	UUIDSubvolKey:      "UUID_KEY_SUBVOL",
	UUIDReceivedKey:    "UUID_KEY_RECEIVED_SUBVOL",
}

// ItemTypeName returns the conventional name of an item type, or "UNKNOWN".
func ItemTypeName(t ItemType) string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Well-known object ids.
const (
	RootTreeObjectID      uint64 = 1
	ExtentTreeObjectID    uint64 = 2
	ChunkTreeObjectID     uint64 = 3
	DevTreeObjectID       uint64 = 4
	FSTreeObjectID        uint64 = 5
	RootTreeDirObjectID   uint64 = 6
	CsumTreeObjectID      uint64 = 7
	QuotaTreeObjectID     uint64 = 8
	UUIDTreeObjectID      uint64 = 9
	FreeSpaceTreeObjectID uint64 = 10

	// FirstChunkTreeObjectID is the object id of every CHUNK_ITEM key.
	FirstChunkTreeObjectID uint64 = 256
	// FirstFreeObjectID is the inode number of a subvolume's root directory.
	FirstFreeObjectID uint64 = 256

	DataRelocTreeObjectID uint64 = 0xFFFFFFFFFFFFFFF7
	LastFreeObjectID      uint64 = 0xFFFFFFFFFFFFFF00
)

// Block group / chunk type flags.
const (
	BlockGroupData     uint64 = 1 << 0
	BlockGroupSystem   uint64 = 1 << 1
	BlockGroupMetadata uint64 = 1 << 2
	BlockGroupRAID0    uint64 = 1 << 3
	BlockGroupRAID1    uint64 = 1 << 4
	BlockGroupDUP      uint64 = 1 << 5
	BlockGroupRAID10   uint64 = 1 << 6
	BlockGroupRAID5    uint64 = 1 << 7
	BlockGroupRAID6    uint64 = 1 << 8
	BlockGroupRAID1C3  uint64 = 1 << 9
	BlockGroupRAID1C4  uint64 = 1 << 10
)

// Incompatible feature flags.
const (
	FeatureIncompatMixedBackref   uint64 = 1 << 0
	FeatureIncompatDefaultSubvol  uint64 = 1 << 1
	FeatureIncompatMixedGroups    uint64 = 1 << 2
	FeatureIncompatCompressLZO    uint64 = 1 << 3
	FeatureIncompatCompressZSTD   uint64 = 1 << 4
	FeatureIncompatBigMetadata    uint64 = 1 << 5
	FeatureIncompatExtendedIref   uint64 = 1 << 6
	FeatureIncompatRAID56         uint64 = 1 << 7
	FeatureIncompatSkinnyMetadata uint64 = 1 << 8
	FeatureIncompatNoHoles        uint64 = 1 << 9
	FeatureIncompatMetadataUUID   uint64 = 1 << 10
	FeatureIncompatRAID1C34       uint64 = 1 << 11
)

// Directory entry file types.
const (
	FileTypeUnknown  uint8 = 0
	FileTypeRegular  uint8 = 1
	FileTypeDir      uint8 = 2
	FileTypeChardev  uint8 = 3
	FileTypeBlockdev uint8 = 4
	FileTypeFifo     uint8 = 5
	FileTypeSocket   uint8 = 6
	FileTypeSymlink  uint8 = 7
	FileTypeXattr    uint8 = 8
)
