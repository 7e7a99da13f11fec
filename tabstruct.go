// Package tabstruct provides a fluent API for turning detected table
// structure into clean tables.
//
// Basic usage:
//
//	json, warnings, err := tabstruct.FromPrimitives("t1", primitives).JSON()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", tabstruct.FormatWarnings(warnings))
//	}
//
// With options:
//
//	html, _, err := tabstruct.FromPrimitives("t1", primitives).
//	    SpanTolerance(0.5).
//	    FillText(pageImage, ocrClient).
//	    Reconcile(scores).
//	    HTML()
//
// For finer control, the tables, rowmerge, and export packages are also
// available.
package tabstruct

import (
	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/tables"
)

// Warning is a non-fatal issue found while building or merging a table
type Warning = model.Warning

// FormatWarnings joins warnings one per line
func FormatWarnings(warnings []Warning) string {
	return model.FormatWarnings(warnings)
}

// FromPrimitives starts from detector output for one table image. The grid
// is built when a terminal operation runs.
//
// Example:
//
//	table, warnings, err := tabstruct.FromPrimitives("t1", primitives).Table()
func FromPrimitives(name string, primitives []tables.Primitive) *Builder {
	return &Builder{
		name:       name,
		primitives: append([]tables.Primitive(nil), primitives...),
		options:    defaultOptions(),
	}
}

// FromTable starts from an existing table. The table is copied and never
// modified.
func FromTable(t *model.Table) *Builder {
	return &Builder{
		source:  t.Clone(),
		options: defaultOptions(),
	}
}

// FromJSON starts from a table in the canonical JSON format. A decoding
// error is reported by the terminal operation.
//
// Example:
//
//	csv, _, err := tabstruct.FromJSON(data).DropEmptyRows().CSV()
func FromJSON(data []byte) *Builder {
	t, err := export.FromJSON(data)
	if err != nil {
		return &Builder{err: err, options: defaultOptions()}
	}
	return &Builder{source: t, options: defaultOptions()}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	data := tabstruct.Must(export.ToJSON(table))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a terminal operation such as JSON() or
// CSV() and panics if the error is non-nil. It discards warnings and returns
// just the value.
//
// Example:
//
//	html := tabstruct.MustText(tabstruct.FromPrimitives("t1", prims).HTML())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
