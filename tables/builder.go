package tables

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabstruct/model"
)

// GridBuilder turns detected row, column and spanning-cell rectangles into an
// ordered grid of cells.
type GridBuilder struct {
	// Slack (in pixels) allowed when deciding whether a spanning cell covers
	// a column gap. Zero means exact comparison.
	SpanTolerance float64

	Logger zerolog.Logger
}

// NewGridBuilder creates a grid builder with default settings
func NewGridBuilder() *GridBuilder {
	return &GridBuilder{
		SpanTolerance: 0,
		Logger:        zerolog.Nop(),
	}
}

// BuildFromPrimitives partitions primitives by role and builds the table
func (gb *GridBuilder) BuildFromPrimitives(name string, primitives []Primitive) (*model.Table, []model.Warning, error) {
	layout, err := Partition(primitives)
	if err != nil {
		return nil, nil, err
	}
	return gb.Build(name, layout)
}

// Build builds a table from an already partitioned layout
func (gb *GridBuilder) Build(name string, layout Layout) (*model.Table, []model.Warning, error) {
	return gb.BuildTable(name, layout.Rows, layout.Columns, layout.SpanningCells)
}

// BuildTable builds a table from unordered row, column and spanning-cell
// rectangles. Rows in the result are in top-to-bottom order with ids starting
// at 0; cell text is empty. The input slices are not modified.
func (gb *GridBuilder) BuildTable(name string, rows, cols, spans []model.Rect) (*model.Table, []model.Warning, error) {
	for _, group := range []struct {
		kind  string
		rects []model.Rect
	}{{"row", rows}, {"column", cols}, {"spanning cell", spans}} {
		for i, r := range group.rects {
			if err := r.Validate(); err != nil {
				return nil, nil, fmt.Errorf("%s %d: %w", group.kind, i, err)
			}
		}
	}

	sortedCols := sortedRects(cols, func(a, b model.Rect) bool { return a.Left < b.Left })
	sortedRows := sortedRects(rows, func(a, b model.Rect) bool { return a.Top < b.Top })
	boundaries := ColumnBoundaries(sortedCols)
	owned := gb.assignSpanningCells(name, sortedRows, spans)

	table := model.NewTable(name)
	var warnings []model.Warning

	for i, rowRect := range sortedRows {
		cells := gb.buildRow(rowRect, boundaries, owned[i])
		id := table.AddRow(rowRect.Ptr(), cells...)

		if len(boundaries) == 0 {
			w := model.Warning{
				Code:    model.WarnDegenerateRow,
				Message: "empty row (no column info)",
				Table:   name,
				RowID:   id,
			}
			warnings = append(warnings, w)
			gb.Logger.Warn().Str("table", name).Int("row", id).Msg(w.Message)
		}
	}

	gb.Logger.Debug().
		Str("table", name).
		Int("rows", len(sortedRows)).
		Int("columns", len(sortedCols)).
		Int("spanning_cells", len(spans)).
		Msg("built table grid")

	return table, warnings, nil
}

// ColumnBoundaries returns the vertical grid lines of columns sorted by left
// edge: the left of every column plus the right of the last one. Zero columns
// yield no boundaries.
func ColumnBoundaries(sortedCols []model.Rect) []float64 {
	if len(sortedCols) == 0 {
		return nil
	}
	boundaries := make([]float64, 0, len(sortedCols)+1)
	for _, c := range sortedCols {
		boundaries = append(boundaries, c.Left)
	}
	return append(boundaries, sortedCols[len(sortedCols)-1].Right)
}

// assignSpanningCells attributes each spanning cell to the first row, in
// top-to-bottom order, that contains it. A spanning cell is owned by at most
// one row; cells outside every row are dropped.
func (gb *GridBuilder) assignSpanningCells(name string, sortedRows, spans []model.Rect) [][]model.Rect {
	owned := make([][]model.Rect, len(sortedRows))
	orphans := 0
	for _, sc := range spans {
		assigned := false
		for i, row := range sortedRows {
			if row.Contains(sc) {
				owned[i] = append(owned[i], sc)
				assigned = true
				break
			}
		}
		if !assigned {
			orphans++
		}
	}
	if orphans > 0 {
		gb.Logger.Debug().Str("table", name).Int("count", orphans).Msg("spanning cells outside every row ignored")
	}
	return owned
}

// buildRow walks the column gaps left to right, emitting one cell per gap or
// one spanning cell for each run of gaps a candidate covers.
func (gb *GridBuilder) buildRow(row model.Rect, boundaries []float64, candidates []model.Rect) []model.Cell {
	if len(boundaries) < 2 {
		return nil
	}

	candidates = sortedRects(candidates, func(a, b model.Rect) bool { return a.Left < b.Left })
	tol := gb.SpanTolerance
	gaps := len(boundaries) - 1
	cells := make([]model.Cell, 0, gaps)

	next := 0
	for k := 0; k < gaps; {
		left, right := boundaries[k], boundaries[k+1]

		// a candidate ending before this gap can cover neither it nor any later gap
		for next < len(candidates) && candidates[next].Right < right-tol {
			gb.Logger.Debug().Stringer("spanning_cell", candidates[next]).Msg("spanning cell covers no full column gap")
			next++
		}

		if next < len(candidates) && candidates[next].Left <= left+tol {
			sc := candidates[next]
			span := 1
			for k+span < gaps && sc.Right >= boundaries[k+span+1]-tol {
				span++
			}
			cells = append(cells, model.Cell{
				Bounds:  &model.Rect{Left: sc.Left, Top: row.Top, Right: sc.Right, Bottom: row.Bottom},
				ColSpan: span,
				RowSpan: 1,
			})
			next++
			k += span
			continue
		}

		cells = append(cells, model.NewCell(model.Rect{Left: left, Top: row.Top, Right: right, Bottom: row.Bottom}))
		k++
	}
	return cells
}

func sortedRects(rects []model.Rect, less func(a, b model.Rect) bool) []model.Rect {
	out := make([]model.Rect, len(rects))
	copy(out, rects)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
