package app

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// DeviceTarget represents device selection across commands
type DeviceTarget struct {
	Path string
	// Byte offset of the filesystem inside Path
	PartitionOffset int64
}

// Validate ensures the device target is valid
func (dt *DeviceTarget) Validate() error {
	if dt.Path == "" {
		return errors.New("device path is required")
	}
	if dt.PartitionOffset < 0 {
		return fmt.Errorf("partition offset %d is negative", dt.PartitionOffset)
	}
	return nil
}

// String returns a string representation of the device target
func (dt *DeviceTarget) String() string {
	if dt.PartitionOffset != 0 {
		return fmt.Sprintf("%s (offset %d)", dt.Path, dt.PartitionOffset)
	}
	return dt.Path
}

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeDeviceAccess     = "DEVICE_ACCESS"
	ErrCodeNotRecognized    = "NOT_RECOGNIZED"
	ErrCodeIOFailure        = "IO_FAILURE"
	ErrCodeCorrupt          = "CORRUPT"
	ErrCodeOutOfMemory      = "OUT_OF_MEMORY"
	ErrCodeAddressUnmapped  = "ADDRESS_UNMAPPED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnsupportedValue = "UNSUPPORTED_VALUE"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// engineCodes maps engine error kinds to codes, most specific first.
var engineCodes = []struct {
	kind error
	code string
}{
	{types.ErrNotRecognized, ErrCodeNotRecognized},
	{types.ErrOutOfMemory, ErrCodeOutOfMemory},
	{types.ErrAddressUnmapped, ErrCodeAddressUnmapped},
	{types.ErrCorrupt, ErrCodeCorrupt},
	{types.ErrNotFound, ErrCodeNotFound},
	{types.ErrIOFailure, ErrCodeIOFailure},
}

// ErrorCode returns the code matching an engine error, or
// ErrCodeDeviceAccess when err carries no engine kind.
func ErrorCode(err error) string {
	for _, ec := range engineCodes {
		if errors.Is(err, ec.kind) {
			return ec.code
		}
	}
	return ErrCodeDeviceAccess
}

// WrapError wraps an engine error in a CommonError carrying its code.
// CommonErrors are returned unchanged.
func WrapError(message string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CommonError
	if errors.As(err, &ce) {
		return err
	}
	return NewError(ErrorCode(err), message, err)
}
