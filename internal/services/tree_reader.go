package services

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// TreeReader reads tree blocks by logical address: it translates through the
// chunk map, reads nodesize bytes, verifies the block and caches it.
type TreeReader struct {
	dev       interfaces.BlockSource
	chunks    *chunkmap.ChunkMap
	nodeSize  int
	fsid      types.UUID
	opts      Options
	validator *btrees.TreeBlockValidator
	log       logrus.FieldLogger

	mu     sync.RWMutex
	cache  map[types.LogicalAddr][]byte
	order  []types.LogicalAddr // insertion order, for eviction
	hits   uint64
	misses uint64
}

// NewTreeReader creates a reader for blocks of nodeSize bytes. fsid, when
// non-zero, must match every block header.
func NewTreeReader(dev interfaces.BlockSource, chunks *chunkmap.ChunkMap, nodeSize uint32, fsid types.UUID, opts Options) *TreeReader {
	opts = opts.withDefaults()
	return &TreeReader{
		dev:       dev,
		chunks:    chunks,
		nodeSize:  int(nodeSize),
		fsid:      fsid,
		opts:      opts,
		validator: btrees.NewTreeBlockValidator(),
		log:       opts.Logger,
		cache:     make(map[types.LogicalAddr][]byte),
	}
}

// NodeSize returns the tree block size.
func (r *TreeReader) NodeSize() int {
	return r.nodeSize
}

// ReadBlock returns the raw tree block at logical. The block must lie inside
// a single chunk, carry a valid checksum (unless disabled) and record logical
// as its own address. The returned slice is a copy.
func (r *TreeReader) ReadBlock(logical types.LogicalAddr) ([]byte, error) {
	r.mu.RLock()
	if cached, ok := r.cache[logical]; ok {
		r.mu.RUnlock()
		r.mu.Lock()
		r.hits++
		r.mu.Unlock()
		return append([]byte{}, cached...), nil
	}
	r.mu.RUnlock()

	if r.nodeSize < types.HeaderSize {
		return nil, types.NewError("read tree block", types.ErrCorrupt, uint64(logical),
			fmt.Errorf("node size %d smaller than a block header", r.nodeSize))
	}
	if r.nodeSize > r.opts.MaxBlockSize {
		return nil, types.NewError("read tree block", types.ErrOutOfMemory, uint64(logical),
			fmt.Errorf("node size %d exceeds limit %d", r.nodeSize, r.opts.MaxBlockSize))
	}

	tr, err := r.chunks.Resolve(logical)
	if err != nil {
		return nil, fmt.Errorf("read tree block: %w", err)
	}
	if tr.Remaining < uint64(r.nodeSize) {
		return nil, types.NewError("read tree block", types.ErrCorrupt, uint64(logical),
			fmt.Errorf("block of %d bytes crosses end of chunk at 0x%x", r.nodeSize, tr.Entry.End()))
	}

	data, err := readPhysical(r.dev, tr.Physical, r.nodeSize, r.opts.ReadChunkSize)
	if err != nil {
		return nil, fmt.Errorf("read tree block at logical 0x%x: %w", logical, err)
	}

	if r.opts.VerifyTreeChecksums {
		inspector := checksum.NewBlockInspector(data)
		if !inspector.Verify() {
			return nil, types.NewError("read tree block", types.ErrCorrupt, uint64(logical),
				fmt.Errorf("checksum mismatch: stored 0x%08X, computed 0x%08X", inspector.Stored(), inspector.Computed()))
		}
	}

	var header types.Header
	if err := types.Unpack(data[:types.HeaderSize], &header); err != nil {
		return nil, types.NewError("read tree block", types.ErrCorrupt, uint64(logical), err)
	}
	if header.ByteNr != logical {
		return nil, types.NewError("read tree block", types.ErrCorrupt, uint64(logical),
			fmt.Errorf("header records address 0x%x", header.ByteNr))
	}

	r.log.WithFields(logrus.Fields{
		"logical":  uint64(logical),
		"physical": uint64(tr.Physical),
		"level":    header.Level,
		"owner":    header.Owner,
	}).Trace("read tree block")

	r.mu.Lock()
	r.misses++
	r.cacheBlock(logical, data)
	r.mu.Unlock()

	return append([]byte{}, data...), nil
}

// ReadTreeBlock reads and parses the block at logical. level, when non-nil,
// is the level the block must have.
func (r *TreeReader) ReadTreeBlock(logical types.LogicalAddr, level *uint8) (*btrees.TreeBlock, error) {
	data, err := r.ReadBlock(logical)
	if err != nil {
		return nil, err
	}

	tb, err := btrees.ParseBlock(data)
	if err != nil {
		return nil, types.NewError("parse tree block", types.ErrCorrupt, uint64(logical), err)
	}

	result := r.validator.ValidateBlock(tb, btrees.Expectation{ByteNr: logical, FSID: r.fsid, Level: level})
	if !result.IsValid() {
		return nil, types.NewError("validate tree block", types.ErrCorrupt, uint64(logical),
			fmt.Errorf("%s", result.ErrorString()))
	}
	if len(result.Warnings) > 0 {
		r.log.WithField("logical", uint64(logical)).Warn(result.WarningString())
	}
	return tb, nil
}

// cacheBlock adds a block to the cache, evicting the oldest entry when full.
// Must be called with mu locked
func (r *TreeReader) cacheBlock(logical types.LogicalAddr, data []byte) {
	if r.opts.CacheBlocks == 0 {
		return
	}
	if _, ok := r.cache[logical]; ok {
		return
	}
	for len(r.order) >= r.opts.CacheBlocks {
		delete(r.cache, r.order[0])
		r.order = r.order[1:]
	}
	r.cache[logical] = append([]byte{}, data...)
	r.order = append(r.order, logical)
}

// ClearCache removes all cached blocks
func (r *TreeReader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[types.LogicalAddr][]byte)
	r.order = nil
}

// CacheStats returns cache statistics
func (r *TreeReader) CacheStats() interfaces.BlockCacheStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return interfaces.BlockCacheStats{
		Hits:          r.hits,
		Misses:        r.misses,
		BlocksInCache: len(r.cache),
		MaxBlocks:     r.opts.CacheBlocks,
	}
}
