package services

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/chunks"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// MountState is a step of the mount sequence.
type MountState int

const (
	Unmounted MountState = iota
	SuperblockLocated
	ChunkMapBootstrapped
	ChunkTreeRootRead
	ChunkMapExtended
	RootTreeRootRead
	FsTreeRootResolved
)

var mountStateNames = map[MountState]string{
	Unmounted:            "Unmounted",
	SuperblockLocated:    "SuperblockLocated",
	ChunkMapBootstrapped: "ChunkMapBootstrapped",
	ChunkTreeRootRead:    "ChunkTreeRootRead",
	ChunkMapExtended:     "ChunkMapExtended",
	RootTreeRootRead:     "RootTreeRootRead",
	FsTreeRootResolved:   "FsTreeRootResolved",
}

func (s MountState) String() string {
	if name, ok := mountStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("MountState(%d)", int(s))
}

// ErrUnmounted is returned by Volume methods after Unmount.
var ErrUnmounted = errors.New("volume is unmounted")

// Volume is a mounted filesystem. Its methods are safe for concurrent use
// until Unmount is called.
type Volume struct {
	dev       interfaces.BlockSource
	opts      Options
	log       logrus.FieldLogger
	located   *LocatedSuperblock
	sb        *types.Superblock
	chunks    *chunkmap.ChunkMap
	bootstrap *chunks.ScanReport
	reader    *TreeReader
	resolver  *RootResolver
	searcher  treeSearcher
	fsTree    *FsTreeRoot

	mu    sync.RWMutex
	state MountState
}

var _ interfaces.FilesystemEntryPoints = (*Volume)(nil)

// Mount runs the mount sequence against dev: locate the superblock, bootstrap
// the chunk map from the system chunk array, read the chunk tree and extend
// the map, read the root tree and resolve the default filesystem tree. The
// first failure aborts the sequence; no partially mounted volume is returned.
// After a successful mount the chunk map is frozen.
func Mount(dev interfaces.BlockSource, opts Options) (*Volume, error) {
	opts = opts.withDefaults()
	v := &Volume{dev: dev, opts: opts, log: opts.Logger}

	located, err := LocateSuperblock(dev, opts)
	if err != nil {
		return nil, v.fail(err)
	}
	v.located = located
	v.sb = located.Superblock()
	v.log = v.log.WithField("fsid", v.sb.FSID.String())
	v.advance(SuperblockLocated)

	m, report := chunks.Bootstrap(v.sb)
	v.chunks = m
	v.bootstrap = report
	logEntry := v.log.WithFields(logrus.Fields{"chunks": report.Entries, "consumed": report.Consumed, "size": report.Size})
	if report.Complete() {
		logEntry.Debug("bootstrapped chunk map")
	} else {
		logEntry.Warnf("system chunk array scan stopped early: %s", report.Reason)
	}
	v.advance(ChunkMapBootstrapped)

	opts.Logger = v.log
	v.reader = NewTreeReader(dev, m, v.sb.NodeSize, v.sb.MetadataFSID(), opts)
	v.searcher = treeSearcher{reader: v.reader}

	loader := NewChunkTreeLoader(v.reader, m)
	chunkRoot, err := loader.ReadRoot(v.sb.ChunkTree, v.sb.ChunkRootLevel)
	if err != nil {
		return nil, v.fail(err)
	}
	v.advance(ChunkTreeRootRead)

	if _, err := loader.ExtendFrom(chunkRoot); err != nil {
		return nil, v.fail(fmt.Errorf("failed to extend chunk map: %w", err))
	}
	v.advance(ChunkMapExtended)

	v.resolver = NewRootResolver(v.reader, m, v.sb)
	rootTreeRoot, err := v.resolver.ReadRootTreeRoot()
	if err != nil {
		return nil, v.fail(err)
	}
	v.advance(RootTreeRootRead)

	fsTree, err := v.resolver.FindFSTreeRoot(rootTreeRoot)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			err = types.NewError("resolve fs tree", types.ErrCorrupt, uint64(v.sb.RootTree), err)
		}
		return nil, v.fail(err)
	}
	v.fsTree = fsTree
	m.Freeze()
	v.advance(FsTreeRootResolved)

	v.log.WithFields(logrus.Fields{
		"label":      v.sb.LabelString(),
		"generation": v.sb.Generation,
		"chunks":     m.Len(),
	}).Info("mounted filesystem")
	return v, nil
}

func (v *Volume) advance(s MountState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
	v.log.WithField("state", s.String()).Debug("mount state")
}

func (v *Volume) fail(err error) error {
	v.log.WithField("state", v.State().String()).WithError(err).Error("mount failed")
	if v.reader != nil {
		v.reader.ClearCache()
	}
	return err
}

// State returns the current mount state.
func (v *Volume) State() MountState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *Volume) checkMounted() error {
	if v.State() != FsTreeRootResolved {
		return ErrUnmounted
	}
	return nil
}

// Unmount drops the block cache and closes the device when it is an
// io.Closer. The volume is unusable afterwards.
func (v *Volume) Unmount() error {
	v.mu.Lock()
	if v.state == Unmounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	v.state = Unmounted
	v.mu.Unlock()

	v.reader.ClearCache()
	v.log.WithField("state", Unmounted.String()).Debug("unmounted filesystem")
	if closer, ok := v.dev.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Superblock returns the superblock in use.
func (v *Volume) Superblock() *types.Superblock {
	return v.sb
}

// Located returns the superblock selection details.
func (v *Volume) Located() *LocatedSuperblock {
	return v.located
}

// ChunkMap returns the frozen chunk map.
func (v *Volume) ChunkMap() *chunkmap.ChunkMap {
	return v.chunks
}

// BootstrapReport returns the outcome of the system chunk array scan.
func (v *Volume) BootstrapReport() *chunks.ScanReport {
	return v.bootstrap
}

// FSTree returns the resolved default filesystem tree root.
func (v *Volume) FSTree() *FsTreeRoot {
	return v.fsTree
}

// Reader returns the tree block reader.
func (v *Volume) Reader() *TreeReader {
	return v.reader
}

// Attributes returns statfs-style information about the filesystem.
func (v *Volume) Attributes() interfaces.VolumeAttributes {
	sb := v.sb
	attrs := interfaces.VolumeAttributes{
		Label:          sb.LabelString(),
		FSID:           sb.FSID.String(),
		DeviceUUID:     sb.DevItem.UUID.String(),
		Generation:     sb.Generation,
		TotalBytes:     sb.TotalBytes,
		BytesUsed:      sb.BytesUsed,
		SectorSize:     sb.SectorSize,
		NodeSize:       sb.NodeSize,
		NumDevices:     sb.NumDevices,
		SuperblockAddr: uint64(v.located.Addr),
		RootTree:       v.location(sb.RootTree, sb.RootLevel),
		ChunkTree:      v.location(sb.ChunkTree, sb.ChunkRootLevel),
		Chunks:         v.chunks.Len(),
	}
	if v.fsTree != nil {
		attrs.FSTree = interfaces.TreeLocation{
			Logical:  uint64(v.fsTree.Logical),
			Physical: uint64(v.fsTree.Physical),
			Level:    v.fsTree.Level,
		}
	}
	return attrs
}

func (v *Volume) location(logical types.LogicalAddr, level uint8) interfaces.TreeLocation {
	loc := interfaces.TreeLocation{Logical: uint64(logical), Level: level}
	if tr, ok := v.chunks.Translate(logical); ok {
		loc.Physical = uint64(tr.Physical)
	}
	return loc
}

// TreeRoot returns the logical address and level of a tree root by name:
// "root", "chunk" or "fs".
func (v *Volume) TreeRoot(name string) (types.LogicalAddr, uint8, error) {
	switch name {
	case "root":
		return v.sb.RootTree, v.sb.RootLevel, nil
	case "chunk":
		return v.sb.ChunkTree, v.sb.ChunkRootLevel, nil
	case "fs":
		return v.fsTree.Logical, v.fsTree.Level, nil
	default:
		return 0, 0, fmt.Errorf("unknown tree %q: want root, chunk or fs", name)
	}
}

// WalkTree visits every block of the tree whose root is at logical, parents
// before children.
func (v *Volume) WalkTree(logical types.LogicalAddr, fn WalkFunc) error {
	if err := v.checkMounted(); err != nil {
		return err
	}
	return v.searcher.walkTree(logical, nil, 0, fn)
}

// fsTreeRoot reads the root block of the default filesystem tree.
func (v *Volume) fsTreeRoot() (*btrees.TreeBlock, error) {
	if err := v.checkMounted(); err != nil {
		return nil, err
	}
	level := v.fsTree.Level
	return v.reader.ReadTreeBlock(v.fsTree.Logical, &level)
}

// LookupInode returns the INODE_ITEM of inode ino in the default
// filesystem tree.
func (v *Volume) LookupInode(ino uint64) (*types.InodeItem, error) {
	root, err := v.fsTreeRoot()
	if err != nil {
		return nil, err
	}
	item, err := v.searcher.first(root, keyRange{
		low:  types.Key{ObjectID: ino, ItemType: types.InodeItemKey},
		high: types.Key{ObjectID: ino, ItemType: types.InodeItemKey},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up inode %d: %w", ino, err)
	}
	inode, err := btrees.DecodeInodeItem(item.Payload)
	if err != nil {
		return nil, types.NewError("decode inode item", types.ErrCorrupt, ino, err)
	}
	return inode, nil
}

// RootInode returns the inode of the root directory of the default
// filesystem tree.
func (v *Volume) RootInode() (*types.InodeItem, error) {
	return v.LookupInode(v.RootDirID())
}

// RootDirID returns the inode number of the default filesystem tree's root
// directory.
func (v *Volume) RootDirID() uint64 {
	if v.fsTree != nil && v.fsTree.Item.RootDirID != 0 {
		return v.fsTree.Item.RootDirID
	}
	return types.FirstFreeObjectID
}

// RootDirEntries lists the root directory from its DIR_INDEX items, in index
// order. Each entry carries the size, mode and mtime of its inode. An entry
// whose INODE_ITEM does not exist is returned with InodeMissing set; any
// other failure to read the inode fails the listing.
func (v *Volume) RootDirEntries() ([]interfaces.DirectoryEntry, error) {
	root, err := v.fsTreeRoot()
	if err != nil {
		return nil, err
	}

	items, err := v.searcher.collect(root, itemRange(v.RootDirID(), types.DirIndexKey))
	if err != nil {
		return nil, fmt.Errorf("failed to list root directory: %w", err)
	}

	var entries []interfaces.DirectoryEntry
	for _, item := range items {
		dirItems, err := btrees.DecodeDirItems(item.Payload)
		if err != nil {
			return nil, types.NewError("decode dir index", types.ErrCorrupt, item.Key.Offset, err)
		}
		for _, d := range dirItems {
			entry := interfaces.DirectoryEntry{
				Name:     d.Name,
				Inode:    d.Location.ObjectID,
				Index:    item.Key.Offset,
				FileType: d.Type,
				TypeName: fileTypeName(d.Type),
			}
			if d.Location.ItemType == types.InodeItemKey {
				inode, err := v.LookupInode(d.Location.ObjectID)
				switch {
				case err == nil:
					entry.Size = inode.Size
					entry.Mode = inode.Mode
					entry.ModTime = inode.MTime.Time()
				case errors.Is(err, types.ErrNotFound):
					entry.InodeMissing = true
					v.log.WithFields(logrus.Fields{"inode": d.Location.ObjectID, "name": d.Name}).Warn("directory entry without inode item")
				default:
					return nil, fmt.Errorf("failed to read inode of entry %q: %w", d.Name, err)
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func fileTypeName(t uint8) string {
	switch t {
	case types.FileTypeRegular:
		return "file"
	case types.FileTypeDir:
		return "dir"
	case types.FileTypeChardev:
		return "chardev"
	case types.FileTypeBlockdev:
		return "blockdev"
	case types.FileTypeFifo:
		return "fifo"
	case types.FileTypeSocket:
		return "socket"
	case types.FileTypeSymlink:
		return "symlink"
	case types.FileTypeXattr:
		return "xattr"
	default:
		return "unknown"
	}
}
