package interfaces

import (
	"time"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// FilesystemEntryPoints is what an OS integration layer needs from a mounted
// filesystem. Mounting itself is services.Mount.
type FilesystemEntryPoints interface {
	// Attributes returns statfs-style information about the filesystem.
	Attributes() VolumeAttributes

	// RootInode returns the inode of the default subvolume's root directory.
	RootInode() (*types.InodeItem, error)

	// RootDirEntries lists the root directory in index order.
	RootDirEntries() ([]DirectoryEntry, error)

	// Unmount releases the device and every cached block.
	Unmount() error
}

// VolumeAttributes describes a mounted filesystem.
type VolumeAttributes struct {
	Label      string `json:"label" yaml:"label"`
	FSID       string `json:"fsid" yaml:"fsid"`
	DeviceUUID string `json:"device_uuid" yaml:"device_uuid"`
	Generation uint64 `json:"generation" yaml:"generation"`
	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`
	BytesUsed  uint64 `json:"bytes_used" yaml:"bytes_used"`
	SectorSize uint32 `json:"sector_size" yaml:"sector_size"`
	NodeSize   uint32 `json:"node_size" yaml:"node_size"`
	NumDevices uint64 `json:"num_devices" yaml:"num_devices"`

	// Physical address of the superblock copy in use.
	SuperblockAddr uint64 `json:"superblock_addr" yaml:"superblock_addr"`

	RootTree  TreeLocation `json:"root_tree" yaml:"root_tree"`
	ChunkTree TreeLocation `json:"chunk_tree" yaml:"chunk_tree"`
	FSTree    TreeLocation `json:"fs_tree" yaml:"fs_tree"`

	// Number of entries in the chunk map.
	Chunks int `json:"chunks" yaml:"chunks"`
}

// TreeLocation is where the root node of a tree lives.
type TreeLocation struct {
	Logical  uint64 `json:"logical" yaml:"logical"`
	Physical uint64 `json:"physical" yaml:"physical"`
	Level    uint8  `json:"level" yaml:"level"`
}

// DirectoryEntry is one entry of a directory listing.
type DirectoryEntry struct {
	Name     string    `json:"name" yaml:"name"`
	Inode    uint64    `json:"inode" yaml:"inode"`
	Index    uint64    `json:"index" yaml:"index"`
	FileType uint8     `json:"file_type" yaml:"file_type"`
	TypeName string    `json:"type" yaml:"type"`
	Size     uint64    `json:"size" yaml:"size"`
	Mode     uint32    `json:"mode" yaml:"mode"`
	ModTime  time.Time `json:"mod_time" yaml:"mod_time"`

	// Set when the entry's INODE_ITEM does not exist; Size, Mode and
	// ModTime are then unknown.
	InodeMissing bool `json:"inode_missing,omitempty" yaml:"inode_missing,omitempty"`
}
