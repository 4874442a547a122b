package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/superblock"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// RejectedSuperblock is a superblock copy that failed validation.
type RejectedSuperblock struct {
	Mirror int
	Addr   types.PhysicalAddr
	Reason error
}

// LocatedSuperblock is the superblock copy selected for mounting.
type LocatedSuperblock struct {
	Reader *superblock.SuperblockReader
	// Mirror index and physical address of the selected copy.
	Mirror int
	Addr   types.PhysicalAddr
	// Number of copies that fit on the device and were examined.
	Examined int
	// Copies that were examined and failed validation. They are never used.
	Rejected []RejectedSuperblock
}

// Superblock returns the selected superblock.
func (l *LocatedSuperblock) Superblock() *types.Superblock {
	return l.Reader.Superblock()
}

// LocateSuperblock reads the superblock mirrors that fit on dev, validates
// them and returns the valid copy with the highest generation. Ties go to the
// lowest address. With opts.CheckMirrors unset only the primary copy is read.
func LocateSuperblock(dev interfaces.BlockSource, opts Options) (*LocatedSuperblock, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	mirrors := len(types.SuperblockOffsets)
	if !opts.CheckMirrors {
		mirrors = 1
	}

	located := &LocatedSuperblock{Mirror: -1}
	for i := 0; i < mirrors; i++ {
		addr := types.SuperblockOffsets[i]
		if uint64(addr)+types.SuperblockSize > uint64(dev.Size()) {
			break
		}
		located.Examined++

		raw, err := readPhysical(dev, addr, types.SuperblockSize, opts.ReadChunkSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read superblock mirror %d: %w", i, err)
		}

		reader, err := superblock.NewSuperblockReader(raw)
		if err != nil {
			log.WithFields(logrus.Fields{"mirror": i, "physical": uint64(addr)}).
				WithError(err).Warn("rejected superblock copy")
			located.Rejected = append(located.Rejected, RejectedSuperblock{Mirror: i, Addr: addr, Reason: err})
			continue
		}

		log.WithFields(logrus.Fields{
			"mirror":     i,
			"physical":   uint64(addr),
			"generation": reader.Generation(),
		}).Debug("valid superblock copy")

		if located.Reader == nil || reader.Generation() > located.Reader.Generation() {
			located.Reader = reader
			located.Mirror = i
			located.Addr = addr
		}
	}

	if located.Reader == nil {
		cause := fmt.Errorf("no valid superblock among %d examined copies", located.Examined)
		if len(located.Rejected) > 0 {
			cause = fmt.Errorf("no valid superblock among %d examined copies: %w", located.Examined, located.Rejected[0].Reason)
		}
		return nil, types.NewError("locate superblock", types.ErrNotRecognized, uint64(types.SuperblockOffsets[0]), cause)
	}
	return located, nil
}
