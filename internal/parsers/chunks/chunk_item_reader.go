// Package chunks decodes CHUNK_ITEM records, both from the superblock's
// system chunk array and from chunk tree leaves.
package chunks

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// DecodeChunkItem decodes a CHUNK_ITEM payload and all of its stripes.
func DecodeChunkItem(payload []byte) (*types.ChunkItem, []types.Stripe, error) {
	if len(payload) < types.ChunkItemSize {
		return nil, nil, fmt.Errorf("%w: chunk item payload too short: %d bytes", types.ErrCorrupt, len(payload))
	}

	chunk := &types.ChunkItem{}
	if err := types.Unpack(payload[:types.ChunkItemSize], chunk); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
	if chunk.NumStripes == 0 {
		return nil, nil, fmt.Errorf("%w: chunk item has no stripes", types.ErrCorrupt)
	}

	need := types.ChunkItemSize + int(chunk.NumStripes)*types.StripeSize
	if len(payload) < need {
		return nil, nil, fmt.Errorf("%w: chunk item declares %d stripes, payload holds %d bytes, need %d",
			types.ErrCorrupt, chunk.NumStripes, len(payload), need)
	}

	stripes, err := decodeStripes(payload[types.ChunkItemSize:need], int(chunk.NumStripes))
	if err != nil {
		return nil, nil, err
	}
	return chunk, stripes, nil
}

func decodeStripes(data []byte, n int) ([]types.Stripe, error) {
	stripes := make([]types.Stripe, n)
	for i := range stripes {
		off := i * types.StripeSize
		if err := types.Unpack(data[off:off+types.StripeSize], &stripes[i]); err != nil {
			return nil, fmt.Errorf("%w: stripe %d: %w", types.ErrCorrupt, i, err)
		}
	}
	return stripes, nil
}

// Entry builds the chunk map entry for a chunk item. Only stripe 0 is used.
func Entry(key types.Key, chunk *types.ChunkItem, stripes []types.Stripe) types.ChunkEntry {
	return types.ChunkEntry{
		LogicalStart:   types.LogicalAddr(key.Offset),
		Size:           chunk.Size,
		PhysicalOffset: stripes[0].Offset,
	}
}
