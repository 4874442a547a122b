package tree

import "github.com/deploymenttheory/go-btrfs/pkg/app"

// Tree names accepted by a dump request
const (
	TreeRoot  = "root"
	TreeChunk = "chunk"
	TreeFS    = "fs"
)

// Request represents a tree dump request
type Request struct {
	Target app.DeviceTarget
	Tree   string

	// Stop after this many leaf items; 0 means no limit
	MaxItems int
}

// Response represents a tree dump
type Response struct {
	Device    string  `json:"device" yaml:"device"`
	Tree      string  `json:"tree" yaml:"tree"`
	Root      uint64  `json:"root" yaml:"root"`
	Level     uint8   `json:"level" yaml:"level"`
	Blocks    []Block `json:"blocks" yaml:"blocks"`
	Items     int     `json:"items" yaml:"items"`
	Truncated bool    `json:"truncated" yaml:"truncated"`
}

// Block is one tree block in walk order
type Block struct {
	Logical  uint64 `json:"logical" yaml:"logical"`
	Level    uint8  `json:"level" yaml:"level"`
	Depth    int    `json:"depth" yaml:"depth"`
	Owner    uint64 `json:"owner" yaml:"owner"`
	NumItems uint32 `json:"num_items" yaml:"num_items"`

	// Set when the header promised more records than the block holds
	Partial string `json:"partial,omitempty" yaml:"partial,omitempty"`

	Items []Item       `json:"items,omitempty" yaml:"items,omitempty"`
	Ptrs  []KeyPointer `json:"ptrs,omitempty" yaml:"ptrs,omitempty"`
}

// Item is a leaf item
type Item struct {
	Key      string `json:"key" yaml:"key"`
	ObjectID uint64 `json:"objectid" yaml:"objectid"`
	Type     uint8  `json:"type" yaml:"type"`
	Offset   uint64 `json:"offset" yaml:"offset"`
	Size     uint32 `json:"size" yaml:"size"`
}

// KeyPointer is an internal node entry
type KeyPointer struct {
	Key        string `json:"key" yaml:"key"`
	BlockPtr   uint64 `json:"blockptr" yaml:"blockptr"`
	Generation uint64 `json:"generation" yaml:"generation"`
}
