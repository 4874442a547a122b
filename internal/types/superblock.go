package types

import "bytes"

// Superblock
// The superblock is the entry point of the filesystem. Up to four copies are
// stored at SuperblockOffsets; the copy with the highest generation that
// passes validation is authoritative.

// DevItemSize is the packed size of a DevItem.
const DevItemSize = 98

// RootBackupSize is the packed size of a RootBackup.
const RootBackupSize = 168

// Superblock is the packed 4096-byte superblock.
type Superblock struct {
	// Checksum of everything past this field.
	Csum [CsumSize]byte
	// Filesystem UUID.
	FSID UUID
	// Physical address of this copy.
	ByteNr PhysicalAddr
	Flags  uint64
	// Must equal Magic.
	Magic [8]byte
	// Transaction id of the commit that wrote this copy.
	Generation uint64
	// Logical address of the root tree root.
	RootTree LogicalAddr
	// Logical address of the chunk tree root.
	ChunkTree LogicalAddr
	// Logical address of the log tree root.
	LogTree         LogicalAddr
	LogRootTransID  uint64
	TotalBytes      uint64
	BytesUsed       uint64
	RootDirObjectID uint64
	NumDevices      uint64
	SectorSize      uint32
	NodeSize        uint32
	// Unused and must equal NodeSize.
	LeafSize   uint32
	StripeSize uint32
	// Number of valid bytes in SysChunkArray.
	SysChunkArraySize   uint32
	ChunkRootGeneration uint64
	CompatFlags         uint64
	CompatROFlags       uint64
	IncompatFlags       uint64
	// Checksum algorithm used for every checksummed structure.
	CsumType       uint16
	RootLevel      uint8
	ChunkRootLevel uint8
	LogRootLevel   uint8
	// The device this copy was read from.
	DevItem DevItem
	// NUL-terminated label.
	Label              [LabelSize]byte
	CacheGeneration    uint64
	UUIDTreeGeneration uint64
	// Metadata UUID, valid when FeatureIncompatMetadataUUID is set.
	MetadataUUID UUID
	Reserved     [28]uint64
	// Packed (Key, ChunkItem, Stripe...) records describing the system
	// chunks, required to read the chunk tree.
	SysChunkArray [SystemChunkArraySize]byte
	// Rolling backups of the tree roots.
	SuperRoots [NumBackupRoots]RootBackup
	Padding    [565]byte
}

// HasMagic reports whether the magic field holds the BTRFS signature.
func (sb *Superblock) HasMagic() bool {
	return string(sb.Magic[:]) == Magic
}

// LabelString returns the label up to its first NUL byte.
func (sb *Superblock) LabelString() string {
	if i := bytes.IndexByte(sb.Label[:], 0); i >= 0 {
		return string(sb.Label[:i])
	}
	return string(sb.Label[:])
}

// SystemChunks returns the valid part of the system chunk array. The
// declared size is clamped to the array capacity.
func (sb *Superblock) SystemChunks() []byte {
	n := sb.SysChunkArraySize
	if n > SystemChunkArraySize {
		n = SystemChunkArraySize
	}
	return sb.SysChunkArray[:n]
}

// MetadataFSID returns the UUID stamped into tree block headers.
func (sb *Superblock) MetadataFSID() UUID {
	if sb.IncompatFlags&FeatureIncompatMetadataUUID != 0 {
		return sb.MetadataUUID
	}
	return sb.FSID
}

// DevItem describes one device of the filesystem.
type DevItem struct {
	DevID       uint64
	TotalBytes  uint64
	BytesUsed   uint64
	IOAlign     uint32
	IOWidth     uint32
	SectorSize  uint32
	Type        uint64
	Generation  uint64
	StartOffset uint64
	DevGroup    uint32
	SeekSpeed   uint8
	Bandwidth   uint8
	// Device UUID.
	UUID UUID
	// Filesystem UUID the device belongs to.
	FSID UUID
}

// RootBackup records the tree roots of a recent commit.
type RootBackup struct {
	TreeRoot        LogicalAddr
	TreeRootGen     uint64
	ChunkRoot       LogicalAddr
	ChunkRootGen    uint64
	ExtentRoot      LogicalAddr
	ExtentRootGen   uint64
	FSRoot          LogicalAddr
	FSRootGen       uint64
	DevRoot         LogicalAddr
	DevRootGen      uint64
	CsumRoot        LogicalAddr
	CsumRootGen     uint64
	TotalBytes      uint64
	BytesUsed       uint64
	NumDevices      uint64
	Unused64        [4]uint64
	TreeRootLevel   uint8
	ChunkRootLevel  uint8
	ExtentRootLevel uint8
	FSRootLevel     uint8
	DevRootLevel    uint8
	CsumRootLevel   uint8
	Unused8         [10]uint8
}
