package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// FsTreeRoot is a resolved tree root: the ROOT_ITEM describing it and the
// location of its root node.
type FsTreeRoot struct {
	Key      types.Key
	Item     *types.RootItem
	Logical  types.LogicalAddr
	Physical types.PhysicalAddr
	Level    uint8
}

// RootResolver finds tree roots through the root tree.
type RootResolver struct {
	reader   *TreeReader
	chunks   *chunkmap.ChunkMap
	sb       *types.Superblock
	searcher treeSearcher
	log      logrus.FieldLogger
}

// NewRootResolver creates a resolver for the root tree named by sb.
func NewRootResolver(reader *TreeReader, m *chunkmap.ChunkMap, sb *types.Superblock) *RootResolver {
	return &RootResolver{
		reader:   reader,
		chunks:   m,
		sb:       sb,
		searcher: treeSearcher{reader: reader},
		log:      reader.log,
	}
}

// ReadRootTreeRoot reads the root block of the root tree.
func (r *RootResolver) ReadRootTreeRoot() ([]byte, error) {
	data, err := r.reader.ReadBlock(r.sb.RootTree)
	if err != nil {
		return nil, fmt.Errorf("failed to read root tree root: %w", err)
	}
	return data, nil
}

// FindFSTreeRoot locates the ROOT_ITEM of the default filesystem tree.
func (r *RootResolver) FindFSTreeRoot(rootTreeRoot []byte) (*FsTreeRoot, error) {
	return r.FindTreeRoot(rootTreeRoot, types.FSTreeObjectID)
}

// FindTreeRoot locates the first ROOT_ITEM with the given object id below
// the root tree block rootTreeRoot and translates its root node address.
func (r *RootResolver) FindTreeRoot(rootTreeRoot []byte, objectID uint64) (*FsTreeRoot, error) {
	tb, err := btrees.ParseBlock(rootTreeRoot)
	if err != nil {
		return nil, types.NewError("parse root tree root", types.ErrCorrupt, uint64(r.sb.RootTree), err)
	}
	if tb.Truncated {
		r.log.WithField("logical", uint64(tb.ByteNr())).Warnf("root tree block truncated: %s", tb.TruncatedReason)
	}

	item, err := r.searcher.first(tb, itemRange(objectID, types.RootItemKey))
	if err != nil {
		return nil, fmt.Errorf("failed to find root item %d: %w", objectID, err)
	}

	rootItem, err := btrees.DecodeRootItem(item.Payload)
	if err != nil {
		return nil, types.NewError("decode root item", types.ErrCorrupt, objectID, err)
	}

	tr, err := r.chunks.Resolve(rootItem.ByteNr)
	if err != nil {
		return nil, fmt.Errorf("failed to translate root of tree %d: %w", objectID, err)
	}

	r.log.WithFields(logrus.Fields{
		"tree":     objectID,
		"logical":  uint64(rootItem.ByteNr),
		"physical": uint64(tr.Physical),
		"level":    rootItem.Level,
	}).Debug("resolved tree root")

	return &FsTreeRoot{
		Key:      item.Key,
		Item:     rootItem,
		Logical:  rootItem.ByteNr,
		Physical: tr.Physical,
		Level:    rootItem.Level,
	}, nil
}
