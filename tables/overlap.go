package tables

import (
	"github.com/tsawler/tabstruct/model"
)

// DefaultOverlapThreshold is how far (in pixels) a row's bottom edge may
// extend past the next row's top edge before the two are treated as one.
const DefaultOverlapThreshold = 10.0

// RowsOverlap reports whether row1 extends more than threshold past the top
// of row2. Rows without bounds never overlap.
func RowsOverlap(row1, row2 model.Row, threshold float64) bool {
	if row1.Bounds == nil || row2.Bounds == nil {
		return false
	}
	return row1.Bounds.Bottom > row2.Bounds.Top+threshold
}

// MergeOverlappingRows returns a copy of t in which consecutive rows whose
// detected boxes overlap vertically are collapsed. It makes a single pass:
// a merged pair is not merged again with the following row. Cell text is
// joined with a space and row ids are renumbered from 0.
func MergeOverlappingRows(t *model.Table, threshold float64) *model.Table {
	out := t.Clone()
	out.Rows = nil

	rows := t.Rows
	for i := 0; i < len(rows); {
		if i+1 < len(rows) && RowsOverlap(rows[i], rows[i+1], threshold) {
			out.Rows = append(out.Rows, mergeRowPair(rows[i], rows[i+1]))
			i += 2
			continue
		}
		out.Rows = append(out.Rows, rows[i].Clone())
		i++
	}
	out.Renumber()
	return out
}

// mergeRowPair pairs cells by index; cells beyond the shorter row are dropped.
func mergeRowPair(row1, row2 model.Row) model.Row {
	merged := model.Row{}
	if row1.Bounds != nil && row2.Bounds != nil {
		b := *row1.Bounds
		b.Bottom = row2.Bounds.Bottom
		merged.Bounds = &b
	}

	n := len(row1.Cells)
	if len(row2.Cells) < n {
		n = len(row2.Cells)
	}
	merged.Cells = make([]model.Cell, n)
	for i := 0; i < n; i++ {
		c1, c2 := row1.Cells[i], row2.Cells[i]
		cell := model.Cell{Text: c1.Text + " " + c2.Text, ColSpan: c1.ColSpan, RowSpan: c1.RowSpan}
		if c1.Bounds != nil {
			b := *c1.Bounds
			if c2.Bounds != nil {
				b.Bottom = c2.Bounds.Bottom
			}
			cell.Bounds = &b
		}
		merged.Cells[i] = cell
	}
	return merged
}
