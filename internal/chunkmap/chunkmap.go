// Package chunkmap holds the logical-to-physical chunk mapping of a mounted
// filesystem.
package chunkmap

import (
	"errors"
	"fmt"

	"github.com/google/btree"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// ErrFrozen is returned by Insert once the map has been frozen.
var ErrFrozen = errors.New("chunk map is frozen")

const degree = 8

// Translation is the result of translating a logical address.
type Translation struct {
	// Physical is the device offset of the translated address.
	Physical types.PhysicalAddr
	// Entry is the chunk containing the address.
	Entry types.ChunkEntry
	// Remaining is the number of bytes from the address to the end of the
	// chunk.
	Remaining uint64
}

// ChunkMap is an ordered set of chunk entries keyed by logical start. Entries
// are assumed not to overlap; this is not enforced. Inserting an entry whose
// start equals an existing entry's start replaces it.
//
// The map is built by a single goroutine during mount and then frozen. A
// frozen map is safe for concurrent lookups.
type ChunkMap struct {
	tree   *btree.BTreeG[types.ChunkEntry]
	frozen bool
}

func lessByStart(a, b types.ChunkEntry) bool {
	return a.LogicalStart < b.LogicalStart
}

// New returns an empty map.
func New() *ChunkMap {
	return &ChunkMap{tree: btree.NewG(degree, lessByStart)}
}

// Insert adds an entry. It reports whether an entry with the same logical
// start was replaced.
func (m *ChunkMap) Insert(e types.ChunkEntry) (bool, error) {
	if m.frozen {
		return false, fmt.Errorf("insert chunk at 0x%x: %w", e.LogicalStart, ErrFrozen)
	}
	_, replaced := m.tree.ReplaceOrInsert(e)
	return replaced, nil
}

// Translate maps a logical address to a physical one. It reports false when
// no entry contains the address.
func (m *ChunkMap) Translate(logical types.LogicalAddr) (Translation, bool) {
	var (
		found types.ChunkEntry
		ok    bool
	)
	m.tree.DescendLessOrEqual(types.ChunkEntry{LogicalStart: logical}, func(e types.ChunkEntry) bool {
		found, ok = e, true
		return false
	})
	if !ok || !found.Contains(logical) {
		return Translation{}, false
	}

	delta := uint64(logical - found.LogicalStart)
	return Translation{
		Physical:  found.PhysicalOffset + types.PhysicalAddr(delta),
		Entry:     found,
		Remaining: found.Size - delta,
	}, true
}

// Resolve is Translate returning a types.ErrAddressUnmapped error for
// unmapped addresses.
func (m *ChunkMap) Resolve(logical types.LogicalAddr) (Translation, error) {
	tr, ok := m.Translate(logical)
	if !ok {
		return Translation{}, types.NewError("translate", types.ErrAddressUnmapped, uint64(logical), nil)
	}
	return tr, nil
}

// Len returns the number of entries.
func (m *ChunkMap) Len() int {
	return m.tree.Len()
}

// Entries returns all entries in ascending logical order.
func (m *ChunkMap) Entries() []types.ChunkEntry {
	out := make([]types.ChunkEntry, 0, m.tree.Len())
	m.tree.Ascend(func(e types.ChunkEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Freeze makes the map read-only.
func (m *ChunkMap) Freeze() {
	m.frozen = true
}

// Frozen reports whether the map has been frozen.
func (m *ChunkMap) Frozen() bool {
	return m.frozen
}
