package imagebuilder

import (
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// Layout of the sample image. A single chunk maps logical [0, 0x10000) onto
// physical [0x20000, 0x30000) and holds every tree.
const (
	SampleImageSize     = 0x30000
	SampleChunkLogical  = types.LogicalAddr(0)
	SampleChunkSize     = 0x10000
	SampleChunkPhysical = types.PhysicalAddr(0x20000)

	SampleChunkTree  = types.LogicalAddr(0x0000)
	SampleRootTree   = types.LogicalAddr(0x1000)
	SampleFSTree     = types.LogicalAddr(0x2000)
	SampleExtentTree = types.LogicalAddr(0x3000)
)

// Sample FSID and label.
var (
	SampleFSID  = types.UUID(uuid.MustParse("0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"))
	SampleLabel = "sample"
)

// SampleEntry is a root directory entry of the sample image.
type SampleEntry struct {
	Name  string
	Inode uint64
	Index uint64
	Type  uint8
}

// SampleEntries lists the root directory of the sample image in index order.
var SampleEntries = []SampleEntry{
	{Name: "hello.txt", Inode: 257, Index: 2, Type: types.FileTypeRegular},
	{Name: "docs", Inode: 258, Index: 3, Type: types.FileTypeDir},
}

// SampleMTime is the modification time stamped on every sample inode.
var SampleMTime = types.Timespec{Sec: 1700000000, NSec: 500}

// Physical returns the physical address of a logical address inside the
// sample chunk.
func Physical(logical types.LogicalAddr) types.PhysicalAddr {
	return SampleChunkPhysical + types.PhysicalAddr(logical-SampleChunkLogical)
}

// Sample builds the sample image: a chunk tree leaf, a root tree leaf with
// ROOT_ITEMs for the extent and fs trees, an empty extent tree leaf and an fs
// tree leaf holding the root directory with two entries. Only the primary
// superblock is written. opts.Label and opts.FSID default to SampleLabel and
// SampleFSID.
func Sample(opts Options) (*Builder, error) {
	if opts.Label == "" {
		opts.Label = SampleLabel
	}
	if opts.FSID.IsZero() {
		opts.FSID = SampleFSID
	}
	b := New(SampleImageSize, opts)

	if err := b.AddSystemChunk(SampleChunkLogical, SampleChunkSize, SampleChunkPhysical); err != nil {
		return nil, err
	}

	chunkItem, err := ChunkItemPayload(SampleChunkSize, types.BlockGroupSystem, SampleChunkPhysical)
	if err != nil {
		return nil, err
	}
	devItem, err := Pack(&b.sb.DevItem)
	if err != nil {
		return nil, err
	}
	if err := b.WriteLeaf(Physical(SampleChunkTree), SampleChunkTree, types.ChunkTreeObjectID, []Item{
		{Key: types.Key{ObjectID: 1, ItemType: types.DevItemKey, Offset: 1}, Data: devItem},
		{Key: types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey, Offset: uint64(SampleChunkLogical)}, Data: chunkItem},
	}); err != nil {
		return nil, err
	}

	extentRoot, err := RootItemPayload(SampleExtentTree, 0, b.opts.Generation)
	if err != nil {
		return nil, err
	}
	fsRoot, err := RootItemPayload(SampleFSTree, 0, b.opts.Generation)
	if err != nil {
		return nil, err
	}
	if err := b.WriteLeaf(Physical(SampleRootTree), SampleRootTree, types.RootTreeObjectID, []Item{
		{Key: types.Key{ObjectID: types.ExtentTreeObjectID, ItemType: types.RootItemKey}, Data: extentRoot},
		{Key: types.Key{ObjectID: types.FSTreeObjectID, ItemType: types.RootItemKey}, Data: fsRoot},
	}); err != nil {
		return nil, err
	}

	if err := b.WriteLeaf(Physical(SampleExtentTree), SampleExtentTree, types.ExtentTreeObjectID, nil); err != nil {
		return nil, err
	}

	fsItems, err := SampleFSItems()
	if err != nil {
		return nil, err
	}
	if err := b.WriteLeaf(Physical(SampleFSTree), SampleFSTree, types.FSTreeObjectID, fsItems); err != nil {
		return nil, err
	}

	sb := b.Superblock()
	sb.RootTree = SampleRootTree
	sb.ChunkTree = SampleChunkTree
	sb.BytesUsed = 4 * uint64(b.opts.NodeSize)
	sb.DevItem.BytesUsed = SampleChunkSize
	if err := b.WriteSuperblock(0); err != nil {
		return nil, err
	}
	return b, nil
}

// SampleImage returns the bytes of the default sample image.
func SampleImage() ([]byte, error) {
	b, err := Sample(Options{})
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// WriteSampleFile writes the default sample image to path.
func WriteSampleFile(path string) error {
	img, err := SampleImage()
	if err != nil {
		return err
	}
	return os.WriteFile(path, img, 0o644)
}

// SampleFSItems returns the sorted fs tree items of the sample root
// directory and its two entries.
func SampleFSItems() ([]Item, error) {
	var items []Item
	add := func(key types.Key, data []byte, err error) error {
		if err != nil {
			return err
		}
		items = append(items, Item{Key: key, Data: data})
		return nil
	}

	rootDir := types.FirstFreeObjectID
	var dirSize uint64
	for _, e := range SampleEntries {
		dirSize += 2 * uint64(len(e.Name))
	}

	data, err := InodeItemPayload(0o40755, dirSize, 1, SampleMTime)
	if err := add(types.Key{ObjectID: rootDir, ItemType: types.InodeItemKey}, data, err); err != nil {
		return nil, err
	}
	data, err = InodeRefPayload(0, "..")
	if err := add(types.Key{ObjectID: rootDir, ItemType: types.InodeRefKey, Offset: rootDir}, data, err); err != nil {
		return nil, err
	}

	for _, e := range SampleEntries {
		data, err := DirItemPayload(e.Inode, e.Name, e.Type)
		if err := add(types.Key{ObjectID: rootDir, ItemType: types.DirItemKey, Offset: uint64(checksum.NameHash(e.Name))}, data, err); err != nil {
			return nil, err
		}
		if err := add(types.Key{ObjectID: rootDir, ItemType: types.DirIndexKey, Offset: e.Index}, data, nil); err != nil {
			return nil, err
		}

		mode, size, nlink := uint32(0o100644), uint64(12), uint32(1)
		if e.Type == types.FileTypeDir {
			mode, size, nlink = 0o40755, 0, 1
		}
		data, err = InodeItemPayload(mode, size, nlink, SampleMTime)
		if err := add(types.Key{ObjectID: e.Inode, ItemType: types.InodeItemKey}, data, err); err != nil {
			return nil, err
		}
		data, err = InodeRefPayload(e.Index, e.Name)
		if err := add(types.Key{ObjectID: e.Inode, ItemType: types.InodeRefKey, Offset: rootDir}, data, err); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(items, func(a, b Item) int { return a.Key.Compare(b.Key) })
	return items, nil
}
