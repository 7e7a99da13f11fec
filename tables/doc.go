// Package tables synthesizes table structure from object-detection output.
//
// A structure-recognition model labels rectangles inside a table image as
// rows, columns, column headers and spanning cells ([Primitive]). This
// package turns those unordered boxes into a [model.Table]: an ordered grid
// of rows and cells whose geometry the OCR stage can crop.
//
// # Building
//
//	builder := tables.NewGridBuilder()
//	table, warnings, err := builder.BuildFromPrimitives(name, primitives)
//
// The algorithm:
//
//  1. Validate every rectangle (malformed input fails with
//     [model.MalformedGeometryError])
//  2. Sort columns by left edge and rows by top edge
//  3. Derive the column grid lines: each column's left edge plus the right
//     edge of the last column
//  4. Attribute each spanning cell to the first row that contains it
//  5. Walk the grid lines of every row, emitting one cell per column gap or a
//     single cell with ColSpan > 1 where a spanning cell covers several gaps
//
// A row built without any columns is emitted empty together with a
// [model.WarnDegenerateRow] warning.
//
// # Configuration
//
// [GridBuilder.SpanTolerance] relaxes the coverage test for spanning cells
// whose edges fall a few pixels short of a grid line.
//
// # Overlapping rows
//
// [MergeOverlappingRows] collapses consecutive rows whose boxes overlap by
// more than a threshold (default [DefaultOverlapThreshold]).
package tables
