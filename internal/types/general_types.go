// Package types implements the on-disk data structures of the BTRFS filesystem.
// All multi-byte fields are little-endian and every structure is packed.
package types

import (
	"time"

	"github.com/google/uuid"
)

// General-Purpose Types
// Basic types that are used in a variety of contexts, and aren't associated with
// any particular tree.

// LogicalAddr is a byte address in the filesystem's virtual address space.
// It must be translated through the chunk map before any device read.
type LogicalAddr uint64

// PhysicalAddr is a byte offset on the backing device.
type PhysicalAddr uint64

// UUID represents a universally unique identifier as stored on disk.
type UUID [UUIDSize]byte

// String renders the UUID in its canonical textual form.
func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// IsZero reports whether every byte of the UUID is zero.
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// ParseUUID parses the canonical textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}
	return UUID(parsed), nil
}

// Timespec is a timestamp as stored in inode and root items.
type Timespec struct {
	// Seconds since 1970-01-01T00:00:00Z.
	Sec int64
	// Nanoseconds since the beginning of the second.
	NSec uint32
}

// Time converts the on-disk timestamp to a time.Time.
func (t Timespec) Time() time.Time {
	return time.Unix(t.Sec, int64(t.NSec)).UTC()
}
