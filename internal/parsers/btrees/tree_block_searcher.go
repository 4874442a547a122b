package btrees

import (
	"sort"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// Search looks up key in the block.
//
// In a leaf it returns the index of the first item whose key is not less than
// key, and whether that item's key equals key.
//
// In an internal node it returns the slot of the child whose subtree can
// contain key: the last pointer whose key is not greater than key, or 0 when
// key sorts before every pointer. The boolean reports an exact match.
func (tb *TreeBlock) Search(key types.Key) (int, bool) {
	n := tb.Len()
	i := sort.Search(n, func(i int) bool {
		return tb.Key(i).Compare(key) >= 0
	})

	if tb.IsLeaf() {
		return i, i < n && tb.Key(i) == key
	}

	if i < n && tb.Key(i) == key {
		return i, true
	}
	if i > 0 {
		i--
	}
	return i, false
}

// LowerBound returns the index of the first record whose key is not less
// than key.
func (tb *TreeBlock) LowerBound(key types.Key) int {
	return sort.Search(tb.Len(), func(i int) bool {
		return tb.Key(i).Compare(key) >= 0
	})
}
