package model

import (
	"strings"
)

// Cell represents a table cell
type Cell struct {
	Bounds  *Rect // nil when the cell was loaded without geometry
	Text    string
	ColSpan int
	RowSpan int
}

// NewCell creates a single-column cell covering bounds
func NewCell(bounds Rect) Cell {
	return Cell{Bounds: bounds.Ptr(), ColSpan: 1, RowSpan: 1}
}

// IsEmpty reports whether the cell holds no visible text
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Span returns the column span, treating unset spans as 1
func (c Cell) Span() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// Row is an ordered sequence of cells. ID is unique within its table.
type Row struct {
	ID     int
	Bounds *Rect
	Cells  []Cell
}

// EmptyCellCount returns the number of cells without visible text
func (r Row) EmptyCellCount() int {
	n := 0
	for _, c := range r.Cells {
		if c.IsEmpty() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether every cell in the row is blank
func (r Row) IsEmpty() bool {
	return r.EmptyCellCount() == len(r.Cells)
}

// Width returns the number of grid columns covered by the row
func (r Row) Width() int {
	total := 0
	for _, c := range r.Cells {
		total += c.Span()
	}
	return total
}

// Texts returns the text of each cell in order
func (r Row) Texts() []string {
	texts := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		texts[i] = c.Text
	}
	return texts
}

// Table represents one detected table region
type Table struct {
	Name       string
	Bounds     *Rect
	Rows       []Row
	PageWidth  float64 // zero when unknown
	PageHeight float64 // zero when unknown

	nextID int
}

// NewTable creates an empty named table
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddRow appends a row built from cells and returns its id. Ids are assigned
// monotonically in insertion order.
func (t *Table) AddRow(bounds *Rect, cells ...Cell) int {
	id := t.nextID
	for _, r := range t.Rows {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	t.Rows = append(t.Rows, Row{ID: id, Bounds: bounds, Cells: cells})
	t.nextID = id + 1
	return id
}

// SetPageInfo records the dimensions of the page the table came from
func (t *Table) SetPageInfo(width, height float64) {
	t.PageWidth = width
	t.PageHeight = height
}

// HasPageInfo reports whether page dimensions were recorded
func (t *Table) HasPageInfo() bool {
	return t.PageWidth > 0 && t.PageHeight > 0
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the widest row measured in grid columns
func (t *Table) ColCount() int {
	max := 0
	for _, r := range t.Rows {
		if w := r.Width(); w > max {
			max = w
		}
	}
	return max
}

// RowByID returns the row with the given id, or nil
func (t *Table) RowByID(id int) *Row {
	for i := range t.Rows {
		if t.Rows[i].ID == id {
			return &t.Rows[i]
		}
	}
	return nil
}

// GetText returns the table text with tab-separated cells and one line per row
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			sb.WriteString(cell.Text)
			if j < len(row.Cells)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// MakeHomogeneous pads every row with empty cells until it covers ColCount
// grid columns.
func (t *Table) MakeHomogeneous() {
	numCols := t.ColCount()
	for i := range t.Rows {
		for w := t.Rows[i].Width(); w < numCols; w++ {
			t.Rows[i].Cells = append(t.Rows[i].Cells, Cell{ColSpan: 1, RowSpan: 1})
		}
	}
}

// DropEmptyRows removes rows whose cells are all blank and renumbers the
// remaining rows from 0.
func (t *Table) DropEmptyRows() {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if len(r.Cells) > 0 && !r.IsEmpty() {
			kept = append(kept, r)
		}
	}
	t.Rows = kept
	t.Renumber()
}

// Renumber reassigns row ids sequentially from 0 in row order
func (t *Table) Renumber() {
	for i := range t.Rows {
		t.Rows[i].ID = i
	}
	t.nextID = len(t.Rows)
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	c := &Table{
		Name:       t.Name,
		Bounds:     cloneRect(t.Bounds),
		PageWidth:  t.PageWidth,
		PageHeight: t.PageHeight,
		nextID:     t.nextID,
	}
	if t.Rows != nil {
		c.Rows = make([]Row, len(t.Rows))
		for i, r := range t.Rows {
			c.Rows[i] = r.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	c := Row{ID: r.ID, Bounds: cloneRect(r.Bounds)}
	if r.Cells != nil {
		c.Cells = make([]Cell, len(r.Cells))
		for i, cell := range r.Cells {
			cell.Bounds = cloneRect(cell.Bounds)
			c.Cells[i] = cell
		}
	}
	return c
}

func cloneRect(r *Rect) *Rect {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
