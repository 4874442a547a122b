package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/chunks"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// ChunkTreeLoader completes a bootstrapped chunk map with every CHUNK_ITEM
// of the chunk tree.
type ChunkTreeLoader struct {
	reader *TreeReader
	chunks *chunkmap.ChunkMap
	log    logrus.FieldLogger
}

// NewChunkTreeLoader creates a loader inserting into m through reader.
func NewChunkTreeLoader(reader *TreeReader, m *chunkmap.ChunkMap) *ChunkTreeLoader {
	return &ChunkTreeLoader{reader: reader, chunks: m, log: reader.log}
}

// ReadRoot reads the chunk tree root, which must sit at the given level.
func (l *ChunkTreeLoader) ReadRoot(root types.LogicalAddr, level uint8) (*btrees.TreeBlock, error) {
	tb, err := l.reader.ReadTreeBlock(root, &level)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk tree root: %w", err)
	}
	return tb, nil
}

// Extend reads the chunk tree rooted at root and inserts every chunk it
// describes. It returns the number of CHUNK_ITEMs found.
func (l *ChunkTreeLoader) Extend(root types.LogicalAddr, level uint8) (int, error) {
	tb, err := l.ReadRoot(root, level)
	if err != nil {
		return 0, err
	}
	return l.ExtendFrom(tb)
}

// ExtendFrom walks the chunk tree below an already read root block. Child
// levels must step down by one, which bounds the depth by the root's level.
func (l *ChunkTreeLoader) ExtendFrom(tb *btrees.TreeBlock) (int, error) {
	if tb.Truncated {
		l.log.WithField("logical", uint64(tb.ByteNr())).Warnf("chunk tree block truncated: %s", tb.TruncatedReason)
	}

	if tb.IsLeaf() {
		return l.addLeaf(tb)
	}

	total := 0
	childLevel := tb.Level() - 1
	for _, ptr := range tb.Ptrs {
		child, err := l.reader.ReadTreeBlock(ptr.BlockPtr, &childLevel)
		if err != nil {
			return total, fmt.Errorf("failed to read chunk tree node: %w", err)
		}
		n, err := l.ExtendFrom(child)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *ChunkTreeLoader) addLeaf(tb *btrees.TreeBlock) (int, error) {
	n := 0
	for _, item := range tb.Items {
		if item.Key.ItemType != types.ChunkItemKey {
			continue
		}

		chunk, stripes, err := chunks.DecodeChunkItem(item.Payload)
		if err != nil {
			return n, types.NewError("decode chunk item", types.ErrCorrupt, item.Key.Offset, err)
		}
		entry := chunks.Entry(item.Key, chunk, stripes)
		replaced, err := l.chunks.Insert(entry)
		if err != nil {
			return n, err
		}
		n++

		l.log.WithFields(logrus.Fields{
			"logical":  uint64(entry.LogicalStart),
			"size":     entry.Size,
			"physical": uint64(entry.PhysicalOffset),
			"replaced": replaced,
		}).Debug("chunk tree entry")
	}
	return n, nil
}
