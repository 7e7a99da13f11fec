// Package model provides the data types shared by the table structure
// builder, the row-merge reconciler and the serializers.
//
// # Tables
//
// A [Table] is an ordered sequence of [Row] values, each an ordered sequence
// of [Cell] values:
//
//	t := model.NewTable("paper_1_page_3_table_1")
//	t.AddRow(nil, model.Cell{Text: "Antibody", ColSpan: 1}, model.Cell{Text: "RRID", ColSpan: 1})
//
// Row ids are assigned in insertion order and are unique within a table.
// Tables are owned linearly: the grid builder creates them, the OCR filler
// sets cell text in place, and the reconciler produces a new table rather
// than modifying its input.
//
// # Geometry
//
// [Rect] is an immutable rectangle in detection space (pixels, Y down).
// [Rect.Validate] rejects inverted or non-finite rectangles with a
// [MalformedGeometryError].
//
// # Errors and Warnings
//
// Fatal problems are returned as errors that match the sentinels
// [ErrMalformedGeometry] and [ErrInvalidMergeGraph] with errors.Is.
// Non-fatal problems are returned as a []Warning next to the result.
package model
