// Package interfaces declares the contracts between the filesystem engine and
// the code around it.
package interfaces

import (
	"io"
)

// BlockSource is the read side of a block device or image. ReadAt must be
// safe for concurrent use, as io.ReaderAt requires.
type BlockSource interface {
	io.ReaderAt

	// Size returns the size of the source in bytes.
	Size() int64
}

// BlockCacheStats contains cache performance statistics
type BlockCacheStats struct {
	// Total number of cache hits
	Hits uint64 `json:"hits" yaml:"hits"`

	// Total number of cache misses
	Misses uint64 `json:"misses" yaml:"misses"`

	// Current number of blocks in cache
	BlocksInCache int `json:"blocks_in_cache" yaml:"blocks_in_cache"`

	// Maximum number of blocks the cache can hold
	MaxBlocks int `json:"max_blocks" yaml:"max_blocks"`
}
