package tabstruct

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/rowmerge"
	"github.com/tsawler/tabstruct/tables"
)

// Builder provides a fluent interface for building, filling, merging, and
// serializing one table. Each configuration method returns a new Builder,
// so a partially configured Builder can be reused safely.
type Builder struct {
	// Source (primitives or an existing table)
	name       string
	primitives []tables.Primitive
	source     *model.Table

	// Configuration
	options BuildOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Builder with a deep copy of options.
func (b *Builder) clone() *Builder {
	return &Builder{
		name:       b.name,
		primitives: b.primitives,
		source:     b.source,
		options:    b.options.clone(),
		err:        b.err,
	}
}

// SpanTolerance lets a spanning cell cover a column gap it misses by up to
// tol pixels on either edge.
func (b *Builder) SpanTolerance(tol float64) *Builder {
	nb := b.clone()
	nb.options.spanTolerance = tol
	return nb
}

// MergeOverlappingRows collapses consecutive rows whose boxes overlap by more
// than threshold pixels, before text is recognized.
func (b *Builder) MergeOverlappingRows(threshold float64) *Builder {
	nb := b.clone()
	if threshold <= 0 {
		threshold = tables.DefaultOverlapThreshold
	}
	nb.options.overlapThreshold = threshold
	return nb
}

// FillText recognizes the text of every cell from img, which must be in the
// same pixel space as the primitives.
func (b *Builder) FillText(img image.Image, r ocr.Recognizer) *Builder {
	nb := b.clone()
	nb.options.image = img
	nb.options.recognizer = r
	return nb
}

// Reconcile merges rows split across physical lines using classifier scores.
func (b *Builder) Reconcile(scores []rowmerge.Score) *Builder {
	nb := b.clone()
	nb.options.scores = append([]rowmerge.Score{}, scores...)
	return nb
}

// MergeConfig replaces the merge vote constants used by Reconcile.
func (b *Builder) MergeConfig(cfg rowmerge.Config) *Builder {
	nb := b.clone()
	nb.options.mergeConfig = cfg
	return nb
}

// DropEmptyRows removes rows whose cells are all blank.
func (b *Builder) DropEmptyRows() *Builder {
	nb := b.clone()
	nb.options.dropEmptyRows = true
	return nb
}

// Homogeneous pads short rows with empty cells to the table's column count.
func (b *Builder) Homogeneous() *Builder {
	nb := b.clone()
	nb.options.homogeneous = true
	return nb
}

// Logger sets the logger passed to every stage.
func (b *Builder) Logger(log zerolog.Logger) *Builder {
	nb := b.clone()
	nb.options.logger = log
	return nb
}

// Table runs every configured stage and returns the resulting table.
func (b *Builder) Table() (*model.Table, []Warning, error) {
	return b.TableContext(context.Background())
}

// TableContext is Table with a context that is checked between cells during
// text recognition.
func (b *Builder) TableContext(ctx context.Context) (*model.Table, []Warning, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	opts := b.options
	var warnings []Warning

	var t *model.Table
	if b.source != nil {
		t = b.source.Clone()
	} else {
		gb := tables.NewGridBuilder()
		gb.SpanTolerance = opts.spanTolerance
		gb.Logger = opts.logger
		built, w, err := gb.BuildFromPrimitives(b.name, b.primitives)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		t = built
	}

	if opts.overlapThreshold > 0 {
		t = tables.MergeOverlappingRows(t, opts.overlapThreshold)
	}

	if opts.image != nil && opts.recognizer != nil {
		filler := ocr.NewCellFiller(opts.recognizer)
		filler.Logger = opts.logger
		w, err := filler.FillTable(ctx, opts.image, t)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
	}

	if opts.scores != nil {
		rc := rowmerge.NewReconciler()
		rc.Config = opts.mergeConfig
		rc.Logger = opts.logger
		merged, w, err := rc.Reconcile(t, opts.scores)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		t = merged
	}

	if opts.dropEmptyRows {
		t.DropEmptyRows()
	}
	if opts.homogeneous {
		t.MakeHomogeneous()
	}
	return t, warnings, nil
}

// JSON returns the table in the canonical JSON format.
func (b *Builder) JSON() ([]byte, []Warning, error) {
	t, warnings, err := b.Table()
	if err != nil {
		return nil, warnings, err
	}
	data, err := export.ToJSON(t)
	return data, warnings, err
}

// StructureJSON returns the table with its geometry.
func (b *Builder) StructureJSON() ([]byte, []Warning, error) {
	t, warnings, err := b.Table()
	if err != nil {
		return nil, warnings, err
	}
	data, err := export.ToStructureJSON(t)
	return data, warnings, err
}

// HTML returns the table as an HTML <table>.
func (b *Builder) HTML() (string, []Warning, error) {
	t, warnings, err := b.Table()
	if err != nil {
		return "", warnings, err
	}
	s, err := export.ToHTML(t)
	return s, warnings, err
}

// CSV returns the table as CSV. Spans are dropped.
func (b *Builder) CSV() (string, []Warning, error) {
	t, warnings, err := b.Table()
	if err != nil {
		return "", warnings, err
	}
	s, err := export.ToCSV(t)
	return s, warnings, err
}

// Markdown returns the table as a markdown table.
func (b *Builder) Markdown() (string, []Warning, error) {
	t, warnings, err := b.Table()
	if err != nil {
		return "", warnings, err
	}
	return export.ToMarkdown(t), warnings, nil
}
