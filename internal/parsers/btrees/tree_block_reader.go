// Package btrees parses BTRFS tree blocks (leaves and internal nodes) and
// decodes the item payloads the engine needs.
package btrees

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// LeafItem is a decoded leaf item together with its payload. Payload aliases
// the block buffer.
type LeafItem struct {
	types.Item
	Payload []byte
}

// TreeBlock is a parsed tree block.
type TreeBlock struct {
	Header types.Header
	// Items holds the leaf items of a level 0 block.
	Items []LeafItem
	// Ptrs holds the child pointers of an internal block.
	Ptrs []types.KeyPtr
	// Truncated is set when a record or payload ran past the end of the
	// block. Items or Ptrs then hold the records decoded before it.
	Truncated       bool
	TruncatedReason string

	data []byte
}

// ParseBlock parses a tree block. A buffer too short for the header is an
// error; records running past the end of the buffer are not, they end
// decoding and mark the block Truncated.
func ParseBlock(buf []byte) (*TreeBlock, error) {
	if len(buf) < types.HeaderSize {
		return nil, fmt.Errorf("%w: tree block too short for header: %d bytes", types.ErrCorrupt, len(buf))
	}

	tb := &TreeBlock{data: buf}
	if err := types.Unpack(buf[:types.HeaderSize], &tb.Header); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tree block header: %w", types.ErrCorrupt, err)
	}

	if tb.Header.IsLeaf() {
		tb.parseLeaf()
	} else {
		tb.parseInternal()
	}
	return tb, nil
}

func (tb *TreeBlock) parseLeaf() {
	n := int(tb.Header.NumItems)
	tb.Items = make([]LeafItem, 0, min(n, len(tb.data)/types.ItemSize))

	for i := 0; i < n; i++ {
		at := types.HeaderSize + i*types.ItemSize
		if at+types.ItemSize > len(tb.data) {
			tb.truncate("item %d record at %d runs past end of block", i, at)
			return
		}

		var item types.Item
		if err := types.Unpack(tb.data[at:at+types.ItemSize], &item); err != nil {
			tb.truncate("item %d record: %v", i, err)
			return
		}

		start := uint64(types.HeaderSize) + uint64(item.Offset)
		end := start + uint64(item.Size)
		if end > uint64(len(tb.data)) {
			tb.truncate("item %d payload [%d, %d) runs past end of block", i, start, end)
			return
		}

		tb.Items = append(tb.Items, LeafItem{Item: item, Payload: tb.data[start:end]})
	}
}

func (tb *TreeBlock) parseInternal() {
	n := int(tb.Header.NumItems)
	tb.Ptrs = make([]types.KeyPtr, 0, min(n, len(tb.data)/types.KeyPtrSize))

	for i := 0; i < n; i++ {
		at := types.HeaderSize + i*types.KeyPtrSize
		if at+types.KeyPtrSize > len(tb.data) {
			tb.truncate("key pointer %d at %d runs past end of block", i, at)
			return
		}

		var ptr types.KeyPtr
		if err := types.Unpack(tb.data[at:at+types.KeyPtrSize], &ptr); err != nil {
			tb.truncate("key pointer %d: %v", i, err)
			return
		}
		tb.Ptrs = append(tb.Ptrs, ptr)
	}
}

func (tb *TreeBlock) truncate(format string, args ...interface{}) {
	tb.Truncated = true
	tb.TruncatedReason = fmt.Sprintf(format, args...)
}

// IsLeaf reports whether the block is a leaf.
func (tb *TreeBlock) IsLeaf() bool {
	return tb.Header.IsLeaf()
}

// Level returns the block's level.
func (tb *TreeBlock) Level() uint8 {
	return tb.Header.Level
}

// ByteNr returns the logical address recorded in the header.
func (tb *TreeBlock) ByteNr() types.LogicalAddr {
	return tb.Header.ByteNr
}

// Owner returns the id of the tree owning the block.
func (tb *TreeBlock) Owner() uint64 {
	return tb.Header.Owner
}

// Len returns the number of decoded records.
func (tb *TreeBlock) Len() int {
	if tb.IsLeaf() {
		return len(tb.Items)
	}
	return len(tb.Ptrs)
}

// Key returns the key of record i.
func (tb *TreeBlock) Key(i int) types.Key {
	if tb.IsLeaf() {
		return tb.Items[i].Key
	}
	return tb.Ptrs[i].Key
}

// Data returns the raw block.
func (tb *TreeBlock) Data() []byte {
	return tb.data
}

// Payload returns the payload of leaf item i.
func (tb *TreeBlock) Payload(i int) ([]byte, error) {
	if !tb.IsLeaf() {
		return nil, fmt.Errorf("payload requested from internal node at level %d", tb.Header.Level)
	}
	if i < 0 || i >= len(tb.Items) {
		return nil, fmt.Errorf("item index %d out of range [0, %d)", i, len(tb.Items))
	}
	return tb.Items[i].Payload, nil
}

// Find returns the leaf items whose key has the given object id and type, in
// key order.
func (tb *TreeBlock) Find(objectID uint64, itemType uint8) []LeafItem {
	var out []LeafItem
	for _, it := range tb.Items {
		if it.Key.Matches(objectID, itemType) {
			out = append(out, it)
		}
	}
	return out
}
