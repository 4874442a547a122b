package btrees

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// MaxLevel is the deepest level a BTRFS tree can have.
const MaxLevel = 7

// Expectation describes what a caller knows about a block before reading it.
type Expectation struct {
	// ByteNr is the logical address the block was read from.
	ByteNr types.LogicalAddr
	// FSID, when non-zero, must match the header.
	FSID types.UUID
	// Level, when non-nil, must match the header.
	Level *uint8
}

// ValidationResult collects the problems found in one tree block. Errors
// make the block unusable; warnings are reported and tolerated.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// TreeBlockValidator checks a parsed block for structural consistency.
type TreeBlockValidator struct{}

// NewTreeBlockValidator returns a stateless validator.
func NewTreeBlockValidator() *TreeBlockValidator {
	return &TreeBlockValidator{}
}

// ValidateBlock checks the block's header against exp and its records for
// ordering and bounds. Ordering problems and truncation are warnings; header
// mismatches are errors.
func (v *TreeBlockValidator) ValidateBlock(tb *TreeBlock, exp Expectation) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	v.checkHeader(tb, exp, result)
	v.checkKeyOrder(tb, result)
	v.checkItemCount(tb, result)
	if tb.Truncated {
		result.Warnings = append(result.Warnings, "block truncated: "+tb.TruncatedReason)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result
}

func (v *TreeBlockValidator) checkHeader(tb *TreeBlock, exp Expectation, result *ValidationResult) {
	h := &tb.Header
	if h.ByteNr != exp.ByteNr {
		result.Errors = append(result.Errors, fmt.Sprintf("header bytenr 0x%x does not match read address 0x%x", h.ByteNr, exp.ByteNr))
	}
	if !exp.FSID.IsZero() && h.FSID != exp.FSID {
		result.Errors = append(result.Errors, fmt.Sprintf("header fsid %s does not match filesystem %s", h.FSID, exp.FSID))
	}
	if h.Level > MaxLevel {
		result.Errors = append(result.Errors, fmt.Sprintf("level %d exceeds maximum %d", h.Level, MaxLevel))
	}
	if exp.Level != nil && h.Level != *exp.Level {
		result.Errors = append(result.Errors, fmt.Sprintf("level %d, expected %d", h.Level, *exp.Level))
	}
}

func (v *TreeBlockValidator) checkKeyOrder(tb *TreeBlock, result *ValidationResult) {
	for i := 1; i < tb.Len(); i++ {
		if !tb.Key(i - 1).Less(tb.Key(i)) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("key %d %s does not sort after key %d %s", i, tb.Key(i), i-1, tb.Key(i-1)))
			return
		}
	}
}

func (v *TreeBlockValidator) checkItemCount(tb *TreeBlock, result *ValidationResult) {
	if !tb.IsLeaf() && tb.Header.NumItems == 0 {
		result.Errors = append(result.Errors, "internal node has no key pointers")
	}
}

// IsValid reports whether the block can be used, i.e. no errors were recorded.
func (vr *ValidationResult) IsValid() bool {
	return vr.Valid
}

// ErrorString joins the recorded errors with "; ".
func (vr *ValidationResult) ErrorString() string {
	return strings.Join(vr.Errors, "; ")
}

// WarningString joins the ordering and truncation warnings with "; ".
func (vr *ValidationResult) WarningString() string {
	return strings.Join(vr.Warnings, "; ")
}
