package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/tabstruct/model"
)

// Role is the label a structure-recognition model assigns to a detected box.
// The numeric values match the detector's label ids.
type Role int

const (
	RoleTable Role = iota
	RoleColumn
	RoleRow
	RoleColumnHeader
	RoleProjectedRowHeader
	RoleSpanningCell
)

var roleNames = map[Role]string{
	RoleTable:              "table",
	RoleColumn:             "table column",
	RoleRow:                "table row",
	RoleColumnHeader:       "table column header",
	RoleProjectedRowHeader: "table projected row header",
	RoleSpanningCell:       "table spanning cell",
}

// String returns the detector's label name for the role
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// RoleFromLabel converts a detector label id to a Role
func RoleFromLabel(label int) (Role, error) {
	r := Role(label)
	if _, ok := roleNames[r]; !ok {
		return 0, fmt.Errorf("unknown detection label %d", label)
	}
	return r, nil
}

// ParseRole accepts either the full label name ("table spanning cell") or the
// short form ("spanning cell", "spanning_cell", "row"). A decimal string is
// read as a label id.
func ParseRole(s string) (Role, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return RoleFromLabel(id)
	}
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.TrimPrefix(name, "table ")
	for r, full := range roleNames {
		if name == strings.TrimPrefix(full, "table ") || name == full {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown detection role %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("unknown detection role %d", int(r))
	}
	return []byte(strings.TrimPrefix(roleNames[r], "table ")), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Primitive is one labeled rectangle produced by the detector for a table image
type Primitive struct {
	Role   Role
	Bounds model.Rect
}

// Layout holds validated primitives grouped by role. Order within each slice
// is the detector's order; the builder does all sorting.
type Layout struct {
	Rows          []model.Rect
	Columns       []model.Rect
	ColumnHeaders []model.Rect
	SpanningCells []model.Rect
}

// Partition validates primitives and groups them by role. Whole-table and
// projected-row-header boxes are ignored. The first malformed rectangle
// aborts with a *model.MalformedGeometryError.
func Partition(primitives []Primitive) (Layout, error) {
	var layout Layout
	for i, p := range primitives {
		if err := p.Bounds.Validate(); err != nil {
			return Layout{}, fmt.Errorf("primitive %d (%s): %w", i, p.Role, err)
		}
		switch p.Role {
		case RoleRow:
			layout.Rows = append(layout.Rows, p.Bounds)
		case RoleColumn:
			layout.Columns = append(layout.Columns, p.Bounds)
		case RoleColumnHeader:
			layout.ColumnHeaders = append(layout.ColumnHeaders, p.Bounds)
		case RoleSpanningCell:
			layout.SpanningCells = append(layout.SpanningCells, p.Bounds)
		}
	}
	return layout, nil
}
