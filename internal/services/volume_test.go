package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/device"
	"github.com/deploymenttheory/go-btrfs/internal/imagebuilder"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

func TestMountSample(t *testing.T) {
	vol := mountTestSample(t)

	assert.Equal(t, FsTreeRootResolved, vol.State())
	assert.True(t, vol.ChunkMap().Frozen())
	assert.True(t, vol.BootstrapReport().Complete())

	want := []types.ChunkEntry{{
		LogicalStart:   imagebuilder.SampleChunkLogical,
		Size:           imagebuilder.SampleChunkSize,
		PhysicalOffset: imagebuilder.SampleChunkPhysical,
	}}
	if diff := cmp.Diff(want, vol.ChunkMap().Entries()); diff != "" {
		t.Errorf("chunk map mismatch (-want +got):\n%s", diff)
	}

	fsTree := vol.FSTree()
	require.NotNil(t, fsTree)
	assert.Equal(t, imagebuilder.SampleFSTree, fsTree.Logical)
	assert.Equal(t, imagebuilder.Physical(imagebuilder.SampleFSTree), fsTree.Physical)
	assert.Equal(t, uint8(0), fsTree.Level)
	assert.Equal(t, types.Key{ObjectID: types.FSTreeObjectID, ItemType: types.RootItemKey}, fsTree.Key)

	_, err := vol.ChunkMap().Insert(types.ChunkEntry{LogicalStart: 0x100000, Size: 0x1000})
	assert.ErrorIs(t, err, chunkmap.ErrFrozen)
}

func TestMountAttributes(t *testing.T) {
	vol := mountTestSample(t)
	attrs := vol.Attributes()

	assert.Equal(t, imagebuilder.SampleLabel, attrs.Label)
	assert.Equal(t, imagebuilder.SampleFSID.String(), attrs.FSID)
	assert.Equal(t, uint64(1), attrs.Generation)
	assert.Equal(t, uint32(imagebuilder.DefaultNodeSize), attrs.NodeSize)
	assert.Equal(t, uint64(imagebuilder.SampleImageSize), attrs.TotalBytes)
	assert.Equal(t, uint64(types.SuperblockOffsets[0]), attrs.SuperblockAddr)
	assert.Equal(t, 1, attrs.Chunks)

	assert.Equal(t, uint64(imagebuilder.SampleChunkTree), attrs.ChunkTree.Logical)
	assert.Equal(t, uint64(imagebuilder.Physical(imagebuilder.SampleChunkTree)), attrs.ChunkTree.Physical)
	assert.Equal(t, uint64(imagebuilder.SampleRootTree), attrs.RootTree.Logical)
	assert.Equal(t, uint64(imagebuilder.Physical(imagebuilder.SampleRootTree)), attrs.RootTree.Physical)
	assert.Equal(t, uint64(imagebuilder.SampleFSTree), attrs.FSTree.Logical)
	assert.Equal(t, uint64(imagebuilder.Physical(imagebuilder.SampleFSTree)), attrs.FSTree.Physical)
}

func TestMountRootInode(t *testing.T) {
	vol := mountTestSample(t)

	inode, err := vol.RootInode()
	require.NoError(t, err)
	assert.Equal(t, uint32(0o40755), inode.Mode)
	assert.Equal(t, uint64(2*(len("hello.txt")+len("docs"))), inode.Size)
	assert.Equal(t, imagebuilder.SampleMTime, inode.MTime)

	_, err = vol.LookupInode(999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMountRootDirEntries(t *testing.T) {
	vol := mountTestSample(t)

	entries, err := vol.RootDirEntries()
	require.NoError(t, err)
	require.Len(t, entries, len(imagebuilder.SampleEntries))

	for i, want := range imagebuilder.SampleEntries {
		got := entries[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Inode, got.Inode)
		assert.Equal(t, want.Index, got.Index)
		assert.Equal(t, want.Type, got.FileType)
		assert.Equal(t, imagebuilder.SampleMTime.Time(), got.ModTime)
	}
	assert.Equal(t, "file", entries[0].TypeName)
	assert.Equal(t, uint64(12), entries[0].Size)
	assert.Equal(t, uint32(0o100644), entries[0].Mode)
	assert.Equal(t, "dir", entries[1].TypeName)
}

// rewriteTestFSLeaf replaces the sample fs tree leaf with the sample items
// after edit has run on them.
func rewriteTestFSLeaf(t *testing.T, b *imagebuilder.Builder, edit func([]imagebuilder.Item) []imagebuilder.Item) {
	t.Helper()
	items, err := imagebuilder.SampleFSItems()
	require.NoError(t, err)
	require.NoError(t, b.WriteLeaf(imagebuilder.Physical(imagebuilder.SampleFSTree), imagebuilder.SampleFSTree, types.FSTreeObjectID, edit(items)))
}

func TestMountRootDirEntriesInodeFailures(t *testing.T) {
	helloInode := types.Key{ObjectID: 257, ItemType: types.InodeItemKey}

	t.Run("truncated inode item", func(t *testing.T) {
		b := createTestSample(t)
		rewriteTestFSLeaf(t, b, func(items []imagebuilder.Item) []imagebuilder.Item {
			for i := range items {
				if items[i].Key == helloInode {
					items[i].Data = items[i].Data[:10]
				}
			}
			return items
		})

		vol, err := Mount(device.NewMemory(b.Bytes()), testOptions())
		require.NoError(t, err)

		_, err = vol.LookupInode(257)
		assert.ErrorIs(t, err, types.ErrCorrupt)

		entries, err := vol.RootDirEntries()
		assert.ErrorIs(t, err, types.ErrCorrupt)
		assert.Nil(t, entries)
	})

	t.Run("missing inode item", func(t *testing.T) {
		b := createTestSample(t)
		rewriteTestFSLeaf(t, b, func(items []imagebuilder.Item) []imagebuilder.Item {
			kept := items[:0]
			for _, it := range items {
				if it.Key != helloInode {
					kept = append(kept, it)
				}
			}
			return kept
		})

		vol, err := Mount(device.NewMemory(b.Bytes()), testOptions())
		require.NoError(t, err)

		entries, err := vol.RootDirEntries()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "hello.txt", entries[0].Name)
		assert.True(t, entries[0].InodeMissing)
		assert.Zero(t, entries[0].Size)
		assert.False(t, entries[1].InodeMissing)
		assert.Equal(t, uint32(0o40755), entries[1].Mode)
	})
}

func TestMountWalkTree(t *testing.T) {
	vol := mountTestSample(t)

	var owners []uint64
	err := vol.WalkTree(imagebuilder.SampleRootTree, func(tb *btrees.TreeBlock, depth int) error {
		assert.Equal(t, 0, depth)
		owners = append(owners, tb.Owner())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{types.RootTreeObjectID}, owners)

	logical, level, err := vol.TreeRoot("fs")
	require.NoError(t, err)
	assert.Equal(t, imagebuilder.SampleFSTree, logical)
	assert.Equal(t, uint8(0), level)

	_, _, err = vol.TreeRoot("extent")
	assert.Error(t, err)
}

func TestMountUnmount(t *testing.T) {
	dev := newCountingDevice(createTestSample(t).Bytes())
	vol, err := Mount(dev, testOptions())
	require.NoError(t, err)

	require.NoError(t, vol.Unmount())
	assert.Equal(t, Unmounted, vol.State())
	assert.True(t, dev.closed)

	_, err = vol.RootInode()
	assert.ErrorIs(t, err, ErrUnmounted)
	_, err = vol.RootDirEntries()
	assert.ErrorIs(t, err, ErrUnmounted)
	assert.ErrorIs(t, vol.Unmount(), ErrUnmounted)
}

func TestMountCacheHits(t *testing.T) {
	vol := mountTestSample(t)

	_, err := vol.RootInode()
	require.NoError(t, err)
	before := vol.Reader().CacheStats()

	_, err = vol.RootInode()
	require.NoError(t, err)
	after := vol.Reader().CacheStats()

	assert.Greater(t, after.Hits, before.Hits)
	assert.Equal(t, before.Misses, after.Misses)
}

func TestMountFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, b *imagebuilder.Builder)
		opts    func(o *Options)
		wantErr []error
	}{
		{
			name: "blank device",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				clear(b.Bytes())
			},
			wantErr: []error{types.ErrNotRecognized},
		},
		{
			name: "corrupt root tree root block",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				b.Bytes()[imagebuilder.Physical(imagebuilder.SampleRootTree)+200] ^= 0x10
			},
			wantErr: []error{types.ErrCorrupt},
		},
		{
			name: "corrupt chunk tree root block",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				b.Bytes()[imagebuilder.Physical(imagebuilder.SampleChunkTree)+40] ^= 0x10
			},
			wantErr: []error{types.ErrCorrupt},
		},
		{
			name: "root tree outside every chunk",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				b.Superblock().RootTree = 0x200000
				require.NoError(t, b.WriteSuperblock(0))
			},
			wantErr: []error{types.ErrAddressUnmapped},
		},
		{
			name: "root tree block records another address",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				require.NoError(t, b.WriteLeaf(imagebuilder.Physical(imagebuilder.SampleRootTree), 0x5000, types.RootTreeObjectID, nil))
			},
			wantErr: []error{types.ErrCorrupt},
		},
		{
			name: "no fs tree root item",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				data, err := imagebuilder.RootItemPayload(imagebuilder.SampleExtentTree, 0, 1)
				require.NoError(t, err)
				require.NoError(t, b.WriteLeaf(imagebuilder.Physical(imagebuilder.SampleRootTree), imagebuilder.SampleRootTree, types.RootTreeObjectID, []imagebuilder.Item{
					{Key: types.Key{ObjectID: types.ExtentTreeObjectID, ItemType: types.RootItemKey}, Data: data},
				}))
			},
			wantErr: []error{types.ErrCorrupt, types.ErrNotFound},
		},
		{
			name: "malformed chunk item in chunk tree",
			mutate: func(t *testing.T, b *imagebuilder.Builder) {
				require.NoError(t, b.WriteLeaf(imagebuilder.Physical(imagebuilder.SampleChunkTree), imagebuilder.SampleChunkTree, types.ChunkTreeObjectID, []imagebuilder.Item{
					{Key: types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey, Offset: 0x100000}, Data: make([]byte, 10)},
				}))
			},
			wantErr: []error{types.ErrCorrupt},
		},
		{
			name:    "node size above block limit",
			opts:    func(o *Options) { o.MaxBlockSize = 2048 },
			wantErr: []error{types.ErrOutOfMemory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestSample(t)
			if tt.mutate != nil {
				tt.mutate(t, b)
			}
			opts := testOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}

			vol, err := Mount(device.NewMemory(b.Bytes()), opts)
			require.Error(t, err)
			assert.Nil(t, vol)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestMountChecksumVerificationDisabled(t *testing.T) {
	b := createTestSample(t)
	b.Bytes()[imagebuilder.Physical(imagebuilder.SampleFSTree)+imagebuilder.DefaultNodeSize-1] ^= 0x01

	opts := testOptions()
	vol, err := Mount(device.NewMemory(b.Bytes()), opts)
	require.NoError(t, err, "the fs tree root is not read during mount")
	_, err = vol.RootInode()
	assert.ErrorIs(t, err, types.ErrCorrupt)

	opts.VerifyTreeChecksums = false
	vol, err = Mount(device.NewMemory(b.Bytes()), opts)
	require.NoError(t, err)
	_, err = vol.RootInode()
	assert.NoError(t, err)
}

func TestMountNewerMirror(t *testing.T) {
	b := createTestSample(t)
	img := createTestMirrorImage(t, b.Bytes(), *b.Superblock(), 5)

	vol, err := Mount(device.NewMemory(img), testOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, vol.Located().Mirror)
	assert.Equal(t, uint64(5), vol.Superblock().Generation)
	assert.Equal(t, uint64(types.SuperblockOffsets[1]), vol.Attributes().SuperblockAddr)
}

// Layout of the two-level image. The system chunk holds the chunk tree; a
// second chunk, only described by the chunk tree, holds the root and fs
// trees.
const (
	deepImageSize     = 0x40000
	deepDataLogical   = types.LogicalAddr(0x100000)
	deepDataSize      = 0x10000
	deepDataPhysical  = types.PhysicalAddr(0x30000)
	deepChunkRoot     = types.LogicalAddr(0x0000)
	deepChunkLeaf     = types.LogicalAddr(0x4000)
	deepRootTree      = deepDataLogical
	deepRootLeafLow   = deepDataLogical + 0x1000
	deepRootLeafHigh  = deepDataLogical + 0x2000
	deepFSTree        = deepDataLogical + 0x3000
	deepSystemPhysOff = types.PhysicalAddr(0x20000)
)

func deepPhysical(logical types.LogicalAddr) types.PhysicalAddr {
	if logical >= deepDataLogical {
		return deepDataPhysical + types.PhysicalAddr(logical-deepDataLogical)
	}
	return deepSystemPhysOff + types.PhysicalAddr(logical)
}

// createTestDeepImage builds an image whose chunk tree and root tree both
// have an internal root node above their leaves.
func createTestDeepImage(t testing.TB) *imagebuilder.Builder {
	t.Helper()
	b := imagebuilder.New(deepImageSize, imagebuilder.Options{Label: "deep", FSID: imagebuilder.SampleFSID})
	require.NoError(t, b.AddSystemChunk(0, 0x10000, deepSystemPhysOff))

	sysChunk, err := imagebuilder.ChunkItemPayload(0x10000, types.BlockGroupSystem, deepSystemPhysOff)
	require.NoError(t, err)
	dataChunk, err := imagebuilder.ChunkItemPayload(deepDataSize, types.BlockGroupMetadata, deepDataPhysical)
	require.NoError(t, err)

	sysKey := types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey, Offset: 0}
	dataKey := types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey, Offset: uint64(deepDataLogical)}
	require.NoError(t, b.WriteLeaf(deepPhysical(deepChunkLeaf), deepChunkLeaf, types.ChunkTreeObjectID, []imagebuilder.Item{
		{Key: sysKey, Data: sysChunk},
		{Key: dataKey, Data: dataChunk},
	}))
	require.NoError(t, b.WriteNode(deepPhysical(deepChunkRoot), deepChunkRoot, types.ChunkTreeObjectID, 1, []types.KeyPtr{
		{Key: sysKey, BlockPtr: deepChunkLeaf, Generation: 1},
	}))

	extentRoot, err := imagebuilder.RootItemPayload(0x5000, 0, 1)
	require.NoError(t, err)
	fsRoot, err := imagebuilder.RootItemPayload(deepFSTree, 0, 1)
	require.NoError(t, err)
	extentKey := types.Key{ObjectID: types.ExtentTreeObjectID, ItemType: types.RootItemKey}
	fsKey := types.Key{ObjectID: types.FSTreeObjectID, ItemType: types.RootItemKey}
	require.NoError(t, b.WriteLeaf(deepPhysical(deepRootLeafLow), deepRootLeafLow, types.RootTreeObjectID, []imagebuilder.Item{
		{Key: extentKey, Data: extentRoot},
	}))
	require.NoError(t, b.WriteLeaf(deepPhysical(deepRootLeafHigh), deepRootLeafHigh, types.RootTreeObjectID, []imagebuilder.Item{
		{Key: fsKey, Data: fsRoot},
	}))
	require.NoError(t, b.WriteNode(deepPhysical(deepRootTree), deepRootTree, types.RootTreeObjectID, 1, []types.KeyPtr{
		{Key: extentKey, BlockPtr: deepRootLeafLow, Generation: 1},
		{Key: fsKey, BlockPtr: deepRootLeafHigh, Generation: 1},
	}))

	fsItems, err := imagebuilder.SampleFSItems()
	require.NoError(t, err)
	require.NoError(t, b.WriteLeaf(deepPhysical(deepFSTree), deepFSTree, types.FSTreeObjectID, fsItems))

	sb := b.Superblock()
	sb.ChunkTree = deepChunkRoot
	sb.ChunkRootLevel = 1
	sb.RootTree = deepRootTree
	sb.RootLevel = 1
	require.NoError(t, b.WriteSuperblock(0))
	return b
}

func TestMountTwoLevelTrees(t *testing.T) {
	b := createTestDeepImage(t)

	vol, err := Mount(device.NewMemory(b.Bytes()), testOptions())
	require.NoError(t, err)

	want := []types.ChunkEntry{
		{LogicalStart: 0, Size: 0x10000, PhysicalOffset: deepSystemPhysOff},
		{LogicalStart: deepDataLogical, Size: deepDataSize, PhysicalOffset: deepDataPhysical},
	}
	if diff := cmp.Diff(want, vol.ChunkMap().Entries()); diff != "" {
		t.Errorf("chunk map mismatch (-want +got):\n%s", diff)
	}

	fsTree := vol.FSTree()
	assert.Equal(t, deepFSTree, fsTree.Logical)
	assert.Equal(t, deepPhysical(deepFSTree), fsTree.Physical)

	entries, err := vol.RootDirEntries()
	require.NoError(t, err)
	assert.Len(t, entries, len(imagebuilder.SampleEntries))

	var visited []types.LogicalAddr
	var depths []int
	err = vol.WalkTree(deepRootTree, func(tb *btrees.TreeBlock, depth int) error {
		visited = append(visited, tb.ByteNr())
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []types.LogicalAddr{deepRootTree, deepRootLeafLow, deepRootLeafHigh}, visited)
	assert.Equal(t, []int{0, 1, 1}, depths)
}

func TestMountTwoLevelWrongChildLevel(t *testing.T) {
	b := createTestDeepImage(t)
	sysKey := types.Key{ObjectID: types.FirstChunkTreeObjectID, ItemType: types.ChunkItemKey}
	require.NoError(t, b.WriteNode(deepPhysical(deepChunkRoot), deepChunkRoot, types.ChunkTreeObjectID, 2, []types.KeyPtr{
		{Key: sysKey, BlockPtr: deepChunkLeaf, Generation: 1},
	}))
	b.Superblock().ChunkRootLevel = 2
	require.NoError(t, b.WriteSuperblock(0))

	_, err := Mount(device.NewMemory(b.Bytes()), testOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCorrupt)
}

func TestMountStateString(t *testing.T) {
	assert.Equal(t, "Unmounted", Unmounted.String())
	assert.Equal(t, "ChunkMapExtended", ChunkMapExtended.String())
	assert.Equal(t, "FsTreeRootResolved", FsTreeRootResolved.String())
	assert.Equal(t, "MountState(42)", MountState(42).String())
}
