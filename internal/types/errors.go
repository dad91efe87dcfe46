// =============================================================================
// Price Compare - Error Types
// =============================================================================
//
// File-level and destination-level failures. Row-level problems (a bad price
// cell) are never errors; they are absorbed by the normalizer as zero prices.
//
//   ColumnNotFoundError        -> the owning source is skipped
//   UnreadableSourceError      -> the owning source is skipped
//   MalformedExportTargetError -> the export stops; earlier files stay written
//   ImportSchemaError          -> nothing is loaded
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// ColumnNotFoundError reports a mapping that names a column the source
// does not have.
type ColumnNotFoundError struct {
	File   string
	Column string

	// Role is "item", "description" or "price".
	Role string

	// Available lists the labels the header row did have.
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s column %q not found (available: %s)",
		e.File, e.Role, e.Column, strings.Join(e.Available, ", "))
}

// UnreadableSourceError reports a source file that could not be opened
// or parsed.
type UnreadableSourceError struct {
	File string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("%s: unreadable source: %v", e.File, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}

// MalformedExportTargetError reports an export destination that could not
// be written.
type MalformedExportTargetError struct {
	Path string
	Err  error
}

func (e *MalformedExportTargetError) Error() string {
	return fmt.Sprintf("cannot write export target %s: %v", e.Path, e.Err)
}

func (e *MalformedExportTargetError) Unwrap() error {
	return e.Err
}

// ImportSchemaError reports a results file that lacks mandatory columns.
type ImportSchemaError struct {
	Missing []string
	Err     error
}

func (e *ImportSchemaError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("invalid results file: %v", e.Err)
	}
	return fmt.Sprintf("invalid results file: missing column(s) %s", strings.Join(e.Missing, ", "))
}

func (e *ImportSchemaError) Unwrap() error {
	return e.Err
}
