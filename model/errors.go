package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedGeometry indicates a rectangle with inverted or non-finite edges
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrInvalidMergeGraph indicates a row-merge adjacency map that contains a cycle
	ErrInvalidMergeGraph = errors.New("invalid merge graph")
)

// MalformedGeometryError is returned when a detected rectangle violates
// left <= right and top <= bottom. Such input is rejected, never clamped.
type MalformedGeometryError struct {
	Rect   Rect
	Reason string
}

// Error implements the error interface
func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("malformed rectangle %s: %s", e.Rect, e.Reason)
}

// Is implements errors.Is support
func (e *MalformedGeometryError) Is(target error) bool {
	return target == ErrMalformedGeometry
}

// InvalidMergeGraphError is returned when following merge decisions from a
// row leads back to a row already in the same chain.
type InvalidMergeGraphError struct {
	Table string
	Cycle []int // row ids in visiting order, first id repeated at the end
}

// Error implements the error interface
func (e *InvalidMergeGraphError) Error() string {
	ids := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("merge graph for table %q contains a cycle: %s", e.Table, strings.Join(ids, " -> "))
}

// Is implements errors.Is support
func (e *InvalidMergeGraphError) Is(target error) bool {
	return target == ErrInvalidMergeGraph
}

// WarningCode classifies a non-fatal condition
type WarningCode string

const (
	// WarnDegenerateRow: a detected row had no columns and was emitted empty
	WarnDegenerateRow WarningCode = "degenerate_row"

	// WarnAmbiguousMergeSource: a row was the source of more than one positive
	// merge decision; the first one seen was kept
	WarnAmbiguousMergeSource WarningCode = "ambiguous_merge_source"

	// WarnSharedMergeTarget: a merge chain reached a row that had already been
	// emitted and stopped there
	WarnSharedMergeTarget WarningCode = "shared_merge_target"

	// WarnOCRFailed: text recognition failed for a cell and its text was left empty
	WarnOCRFailed WarningCode = "ocr_failed"
)

// Warning is a non-fatal issue found while building or reconciling a table.
// Processing continues after a warning.
type Warning struct {
	Code    WarningCode
	Message string
	Table   string
	RowID   int // -1 when the warning is not tied to a row
}

// String formats the warning for display
func (w Warning) String() string {
	var sb strings.Builder
	sb.WriteString(string(w.Code))
	if w.Table != "" {
		sb.WriteString(" [")
		sb.WriteString(w.Table)
		if w.RowID >= 0 {
			fmt.Fprintf(&sb, " row %d", w.RowID)
		}
		sb.WriteString("]")
	} else if w.RowID >= 0 {
		fmt.Fprintf(&sb, " [row %d]", w.RowID)
	}
	if w.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(w.Message)
	}
	return sb.String()
}

// FormatWarnings joins warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
