package imagebuilder

import (
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// ChunkItemPayload encodes a CHUNK_ITEM with one stripe on device 1.
func ChunkItemPayload(size uint64, flags uint64, physical types.PhysicalAddr) ([]byte, error) {
	return ChunkItemStripes(size, flags, []types.Stripe{{DevID: 1, Offset: physical}})
}

// ChunkItemStripes encodes a CHUNK_ITEM followed by the given stripes.
func ChunkItemStripes(size uint64, flags uint64, stripes []types.Stripe) ([]byte, error) {
	out, err := Pack(&types.ChunkItem{
		Size:       size,
		Owner:      types.ExtentTreeObjectID,
		StripeLen:  0x10000,
		Type:       flags,
		IOAlign:    4096,
		IOWidth:    4096,
		SectorSize: 4096,
		NumStripes: uint16(len(stripes)),
	})
	if err != nil {
		return nil, err
	}
	for i := range stripes {
		raw, err := Pack(&stripes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, raw...)
	}
	return out, nil
}

// RootItemPayload encodes a full-size ROOT_ITEM whose tree root sits at
// bytenr.
func RootItemPayload(bytenr types.LogicalAddr, level uint8, generation uint64) ([]byte, error) {
	item := types.RootItem{
		Generation:   generation,
		GenerationV2: generation,
		RootDirID:    types.FirstFreeObjectID,
		ByteNr:       bytenr,
		Refs:         1,
		Level:        level,
	}
	item.Inode.Generation = 1
	item.Inode.NLink = 1
	item.Inode.Mode = 0o40755
	item.Inode.Size = 3
	item.Inode.NBytes = 16384
	return Pack(&item)
}

// InodeItemPayload encodes an INODE_ITEM.
func InodeItemPayload(mode uint32, size uint64, nlink uint32, mtime types.Timespec) ([]byte, error) {
	return Pack(&types.InodeItem{
		Generation: 1,
		TransID:    1,
		Size:       size,
		NLink:      nlink,
		Mode:       mode,
		ATime:      mtime,
		CTime:      mtime,
		MTime:      mtime,
		OTime:      mtime,
	})
}

// DirItemPayload encodes one DIR_ITEM or DIR_INDEX entry pointing at the
// inode with the given number.
func DirItemPayload(inode uint64, name string, fileType uint8) ([]byte, error) {
	out, err := Pack(&types.DirItem{
		Location: types.Key{ObjectID: inode, ItemType: types.InodeItemKey},
		TransID:  1,
		NameLen:  uint16(len(name)),
		Type:     fileType,
	})
	if err != nil {
		return nil, err
	}
	return append(out, name...), nil
}

// InodeRefPayload encodes one INODE_REF entry.
func InodeRefPayload(index uint64, name string) ([]byte, error) {
	out, err := Pack(&types.InodeRef{Index: index, NameLen: uint16(len(name))})
	if err != nil {
		return nil, err
	}
	return append(out, name...), nil
}
