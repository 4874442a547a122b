package chunks

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/chunkmap"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// StopReason says why a system chunk array scan ended.
type StopReason int

const (
	// StopEndOfArray means every declared byte was consumed.
	StopEndOfArray StopReason = iota
	// StopShortRecord means the bytes left cannot hold a key and chunk item.
	StopShortRecord
	// StopNotChunkItem means a key of another item type was found.
	StopNotChunkItem
	// StopZeroStripes means a chunk item declared no stripes.
	StopZeroStripes
	// StopShortStripes means the declared stripes run past the array.
	StopShortStripes
	// StopInsertFailed means the chunk map refused an entry.
	StopInsertFailed
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfArray:
		return "end of array"
	case StopShortRecord:
		return "short record"
	case StopNotChunkItem:
		return "not a chunk item"
	case StopZeroStripes:
		return "zero stripes"
	case StopShortStripes:
		return "stripes past end of array"
	case StopInsertFailed:
		return "insert failed"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// ScanReport describes the outcome of a system chunk array scan.
type ScanReport struct {
	// Number of entries inserted.
	Entries int
	// Bytes of the array consumed by complete records.
	Consumed int
	// Size of the array that was scanned.
	Size int
	// Reason the scan ended.
	Reason StopReason
	// Key of the record that ended the scan, when one was decoded.
	StopKey *types.Key
}

// Complete reports whether the whole array was consumed.
func (r *ScanReport) Complete() bool {
	return r.Reason == StopEndOfArray
}

// Bootstrap seeds a new chunk map from the superblock's system chunk array.
// Malformed records end the scan; entries found before them are kept.
func Bootstrap(sb *types.Superblock) (*chunkmap.ChunkMap, *ScanReport) {
	m := chunkmap.New()
	report := ScanSystemChunkArray(sb.SystemChunks(), m)
	return m, report
}

// ScanSystemChunkArray walks packed (Key, ChunkItem, Stripe...) records and
// inserts one entry per chunk into m.
func ScanSystemChunkArray(array []byte, m *chunkmap.ChunkMap) *ScanReport {
	report := &ScanReport{Size: len(array)}
	pos := 0

	for {
		if pos == len(array) {
			report.Reason = StopEndOfArray
			return report
		}
		if len(array)-pos < types.KeySize+types.ChunkItemSize {
			report.Reason = StopShortRecord
			return report
		}

		var key types.Key
		if err := types.Unpack(array[pos:pos+types.KeySize], &key); err != nil {
			report.Reason = StopShortRecord
			return report
		}
		if key.ItemType != types.ChunkItemKey {
			report.Reason = StopNotChunkItem
			report.StopKey = &key
			return report
		}

		chunkAt := pos + types.KeySize
		var chunk types.ChunkItem
		if err := types.Unpack(array[chunkAt:chunkAt+types.ChunkItemSize], &chunk); err != nil {
			report.Reason = StopShortRecord
			report.StopKey = &key
			return report
		}
		if chunk.NumStripes == 0 {
			report.Reason = StopZeroStripes
			report.StopKey = &key
			return report
		}

		stripesAt := chunkAt + types.ChunkItemSize
		next := stripesAt + int(chunk.NumStripes)*types.StripeSize
		if next > len(array) {
			report.Reason = StopShortStripes
			report.StopKey = &key
			return report
		}

		stripes, err := decodeStripes(array[stripesAt:next], int(chunk.NumStripes))
		if err != nil {
			report.Reason = StopShortStripes
			report.StopKey = &key
			return report
		}
		if _, err := m.Insert(Entry(key, &chunk, stripes)); err != nil {
			report.Reason = StopInsertFailed
			report.StopKey = &key
			return report
		}

		report.Entries++
		pos = next
		report.Consumed = pos
	}
}
