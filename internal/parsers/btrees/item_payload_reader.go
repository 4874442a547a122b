package btrees

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// DecodeRootItem decodes a ROOT_ITEM payload. Legacy payloads that stop after
// the Level field are accepted; the missing fields read as zero.
func DecodeRootItem(payload []byte) (*types.RootItem, error) {
	if len(payload) < types.RootItemLegacySize {
		return nil, fmt.Errorf("%w: root item payload too short: %d bytes", types.ErrCorrupt, len(payload))
	}

	data := payload
	if len(data) < types.RootItemSize {
		data = make([]byte, types.RootItemSize)
		copy(data, payload)
	}

	item := &types.RootItem{}
	if err := types.Unpack(data[:types.RootItemSize], item); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
	return item, nil
}

// DecodeInodeItem decodes an INODE_ITEM payload.
func DecodeInodeItem(payload []byte) (*types.InodeItem, error) {
	if len(payload) < types.InodeItemSize {
		return nil, fmt.Errorf("%w: inode item payload too short: %d bytes", types.ErrCorrupt, len(payload))
	}
	item := &types.InodeItem{}
	if err := types.Unpack(payload[:types.InodeItemSize], item); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
	return item, nil
}

// DirEntry is one entry of a DIR_ITEM or DIR_INDEX payload.
type DirEntry struct {
	types.DirItem
	Name string
	Data []byte
}

// DecodeDirItems decodes every entry packed into a DIR_ITEM or DIR_INDEX
// payload.
func DecodeDirItems(payload []byte) ([]DirEntry, error) {
	var entries []DirEntry
	for pos := 0; pos < len(payload); {
		if len(payload)-pos < types.DirItemSize {
			return entries, fmt.Errorf("%w: dir item header at %d runs past payload of %d bytes", types.ErrCorrupt, pos, len(payload))
		}

		var e DirEntry
		if err := types.Unpack(payload[pos:pos+types.DirItemSize], &e.DirItem); err != nil {
			return entries, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
		}

		nameAt := pos + types.DirItemSize
		dataAt := nameAt + int(e.NameLen)
		next := dataAt + int(e.DataLen)
		if next > len(payload) {
			return entries, fmt.Errorf("%w: dir item name and data run past payload (%d > %d)", types.ErrCorrupt, next, len(payload))
		}

		e.Name = string(payload[nameAt:dataAt])
		if e.DataLen > 0 {
			e.Data = payload[dataAt:next]
		}
		entries = append(entries, e)
		pos = next
	}
	return entries, nil
}

// InodeRefEntry is one entry of an INODE_REF payload.
type InodeRefEntry struct {
	types.InodeRef
	Name string
}

// DecodeInodeRefs decodes every entry packed into an INODE_REF payload.
func DecodeInodeRefs(payload []byte) ([]InodeRefEntry, error) {
	var refs []InodeRefEntry
	for pos := 0; pos < len(payload); {
		if len(payload)-pos < types.InodeRefSize {
			return refs, fmt.Errorf("%w: inode ref header at %d runs past payload of %d bytes", types.ErrCorrupt, pos, len(payload))
		}

		var r InodeRefEntry
		if err := types.Unpack(payload[pos:pos+types.InodeRefSize], &r.InodeRef); err != nil {
			return refs, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
		}

		nameAt := pos + types.InodeRefSize
		next := nameAt + int(r.NameLen)
		if next > len(payload) {
			return refs, fmt.Errorf("%w: inode ref name runs past payload (%d > %d)", types.ErrCorrupt, next, len(payload))
		}
		r.Name = string(payload[nameAt:next])
		refs = append(refs, r)
		pos = next
	}
	return refs, nil
}
