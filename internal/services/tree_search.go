package services

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// keyRange is the inclusive key interval [low, high].
type keyRange struct {
	low, high types.Key
}

func (kr keyRange) contains(k types.Key) bool {
	return kr.low.Compare(k) <= 0 && k.Compare(kr.high) <= 0
}

// itemRange returns the range covering every offset of (objectID, itemType).
func itemRange(objectID uint64, itemType uint8) keyRange {
	return keyRange{
		low:  types.Key{ObjectID: objectID, ItemType: itemType},
		high: types.Key{ObjectID: objectID, ItemType: itemType, Offset: ^uint64(0)},
	}
}

// treeSearcher runs keyed lookups over trees read through a TreeReader.
type treeSearcher struct {
	reader *TreeReader
}

// first returns the first leaf item, in tree order, whose key lies in kr.
// Leaves are scanned in item order. It returns types.ErrNotFound when no
// item matches.
func (s treeSearcher) first(tb *btrees.TreeBlock, kr keyRange) (*btrees.LeafItem, error) {
	var found *btrees.LeafItem
	err := s.visit(tb, kr, func(item *btrees.LeafItem) bool {
		found = item
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, types.NewError("search", types.ErrNotFound, kr.low.ObjectID,
			fmt.Errorf("no item in %s..%s", kr.low, kr.high))
	}
	return found, nil
}

// collect returns every leaf item whose key lies in kr, in tree order.
func (s treeSearcher) collect(tb *btrees.TreeBlock, kr keyRange) ([]btrees.LeafItem, error) {
	var out []btrees.LeafItem
	err := s.visit(tb, kr, func(item *btrees.LeafItem) bool {
		out = append(out, *item)
		return true
	})
	return out, err
}

// visit calls fn for each leaf item in kr until fn returns false. Internal
// nodes are descended starting at the child that can hold kr.low; children
// whose first key is above kr.high are skipped.
func (s treeSearcher) visit(tb *btrees.TreeBlock, kr keyRange, fn func(*btrees.LeafItem) bool) error {
	_, err := s.walk(tb, kr, fn)
	return err
}

func (s treeSearcher) walk(tb *btrees.TreeBlock, kr keyRange, fn func(*btrees.LeafItem) bool) (bool, error) {
	if tb.IsLeaf() {
		for i := range tb.Items {
			if kr.contains(tb.Items[i].Key) && !fn(&tb.Items[i]) {
				return false, nil
			}
		}
		return true, nil
	}

	if len(tb.Ptrs) == 0 {
		return true, nil
	}
	slot, _ := tb.Search(kr.low)
	childLevel := tb.Level() - 1
	for i := slot; i < len(tb.Ptrs); i++ {
		if i > slot && kr.high.Less(tb.Ptrs[i].Key) {
			break
		}
		child, err := s.reader.ReadTreeBlock(tb.Ptrs[i].BlockPtr, &childLevel)
		if err != nil {
			return false, err
		}
		more, err := s.walk(child, kr, fn)
		if err != nil || !more {
			return more, err
		}
	}
	return true, nil
}

// WalkFunc is called for every block of a tree, parents before children.
// depth is 0 for the root.
type WalkFunc func(tb *btrees.TreeBlock, depth int) error

// walkTree visits every block below the root at logical, depth first.
func (s treeSearcher) walkTree(logical types.LogicalAddr, level *uint8, depth int, fn WalkFunc) error {
	tb, err := s.reader.ReadTreeBlock(logical, level)
	if err != nil {
		return err
	}
	if err := fn(tb, depth); err != nil {
		return err
	}
	if tb.IsLeaf() {
		return nil
	}

	childLevel := tb.Level() - 1
	for _, ptr := range tb.Ptrs {
		if err := s.walkTree(ptr.BlockPtr, &childLevel, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
