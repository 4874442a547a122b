package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the engine matches exactly one of
// these with errors.Is.
var (
	// ErrIOFailure reports a failed or short read on the block source.
	ErrIOFailure = errors.New("i/o failure")
	// ErrNotRecognized reports that no valid superblock was found.
	ErrNotRecognized = errors.New("not a btrfs filesystem")
	// ErrOutOfMemory reports a buffer request above the configured limit.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrCorrupt reports a structurally inconsistent on-disk structure.
	ErrCorrupt = errors.New("corrupt filesystem")
	// ErrAddressUnmapped reports a logical address outside every known chunk.
	ErrAddressUnmapped = errors.New("logical address not mapped")
	// ErrNotFound reports that a searched item does not exist.
	ErrNotFound = errors.New("item not found")
)

// FsError carries the operation and address a failure relates to.
type FsError struct {
	// Operation that failed, e.g. "read tree block".
	Op string
	// One of the Err* kinds.
	Kind error
	// Address involved, logical or physical depending on Op.
	Addr uint64
	// Underlying cause; may be nil.
	Err error
}

// NewError builds an FsError.
func NewError(op string, kind error, addr uint64, cause error) *FsError {
	return &FsError{Op: op, Kind: kind, Addr: addr, Err: cause}
}

// Error names the kind once: a cause that already carries the kind is
// printed on its own.
func (e *FsError) Error() string {
	prefix := fmt.Sprintf("%s at 0x%x", e.Op, e.Addr)
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", prefix, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", prefix, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *FsError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
