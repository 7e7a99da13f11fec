package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/logging"
	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/rowmerge"
	"github.com/tsawler/tabstruct/tables"
)

// ErrNoTables is returned when a job contains no table inputs
var ErrNoTables = errors.New("job contains no tables")

// Job is one paper's worth of detected tables
type Job struct {
	PaperID string
	Pages   []Page

	// Run the row-merge reconciler on every table
	MergeRows bool
}

// Page holds the tables detected on one page image
type Page struct {
	Number int
	Width  float64
	Height float64

	// Page raster; nil skips text recognition
	Image image.Image

	Tables []TableInput
}

// TableInput is the detector output for one table region
type TableInput struct {
	// Table region in page pixels; primitives are relative to its top-left
	// corner. Nil means the primitives are in page coordinates.
	Region *model.Rect

	Primitives []tables.Primitive

	// Classifier merge scores, used when the job merges rows
	Scores []rowmerge.Score
}

// TableResult is the outcome for one table. When Err is set, Table is nil
// and the other tables of the job are unaffected.
type TableResult struct {
	Name     string
	Page     int
	Index    int
	Table    *model.Table
	Warnings []model.Warning
	Err      error
}

// Result collects the outcome of a job
type Result struct {
	PaperID string
	Tables  []TableResult

	// Text rows of the successful tables grouped by page
	Paper *export.PaperResult
}

// Failed returns the results that carry an error
func (r *Result) Failed() []TableResult {
	var failed []TableResult
	for _, t := range r.Tables {
		if t.Err != nil {
			failed = append(failed, t)
		}
	}
	return failed
}

// Warnings returns the warnings of all tables in job order
func (r *Result) Warnings() []model.Warning {
	var warnings []model.Warning
	for _, t := range r.Tables {
		warnings = append(warnings, t.Warnings...)
	}
	return warnings
}

// Processor runs the build, fill, and merge stages for each table of a job
type Processor struct {
	Builder *tables.GridBuilder

	// Optional; without it cell text stays empty
	Filler *ocr.CellFiller

	// Optional; used only when a job sets MergeRows
	Reconciler *rowmerge.Reconciler

	// Collapse vertically overlapping detected rows before text recognition
	MergeOverlapping bool
	OverlapThreshold float64

	// Maximum number of tables processed at once; 0 means GOMAXPROCS
	Workers int

	Logger zerolog.Logger
}

// NewProcessor creates a processor with a default grid builder and reconciler
func NewProcessor() *Processor {
	return &Processor{
		Builder:          tables.NewGridBuilder(),
		Reconciler:       rowmerge.NewReconciler(),
		OverlapThreshold: tables.DefaultOverlapThreshold,
		Logger:           zerolog.Nop(),
	}
}

type task struct {
	page  *Page
	input *TableInput
	index int
}

// Process handles every table of the job concurrently. Each table is owned
// by one goroutine from build to merge. A failing table is recorded in its
// TableResult; only cancellation of ctx fails the whole job.
func (p *Processor) Process(ctx context.Context, job *Job) (*Result, error) {
	var tasks []task
	for i := range job.Pages {
		page := &job.Pages[i]
		for k := range page.Tables {
			tasks = append(tasks, task{page: page, input: &page.Tables[k], index: k + 1})
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: paper %q", ErrNoTables, job.PaperID)
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := p.Logger.With().Str("paper", job.PaperID).Logger()
	log.Info().Int("tables", len(tasks)).Int("workers", workers).Msg("processing job")
	ctx = logging.WithLogger(ctx, &log)

	results := make([]TableResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, tk := range tasks {
		i, tk := i, tk
		g.Go(func() error {
			results[i] = p.processTable(gctx, job, tk)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{PaperID: job.PaperID, Tables: results}

	var done []*model.Table
	for _, r := range results {
		if r.Err == nil {
			done = append(done, r.Table)
		}
	}
	paper, err := export.BuildPaperResult(done)
	if err != nil {
		return nil, err
	}
	if paper.PaperID == "" {
		paper.PaperID = job.PaperID
	}
	res.Paper = paper

	log.Info().
		Int("tables", len(results)).
		Int("failed", len(res.Failed())).
		Int("warnings", len(res.Warnings())).
		Msg("job complete")
	return res, nil
}

func (p *Processor) processTable(ctx context.Context, job *Job, tk task) TableResult {
	name := export.TableName(job.PaperID, tk.page.Number, tk.index)
	res := TableResult{Name: name, Page: tk.page.Number, Index: tk.index}

	log := logging.FromContext(ctx).With().Str("table", name).Logger()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	table, warnings, err := p.Builder.BuildFromPrimitives(name, tk.input.Primitives)
	if err != nil {
		return fail(log, res, warnings, fmt.Errorf("building %s: %w", name, err))
	}
	res.Warnings = append(res.Warnings, warnings...)
	table.Bounds = tk.input.Region
	table.SetPageInfo(tk.page.Width, tk.page.Height)

	if p.MergeOverlapping {
		table = tables.MergeOverlappingRows(table, p.OverlapThreshold)
	}

	if p.Filler != nil && tk.page.Image != nil {
		img := tk.page.Image
		if tk.input.Region != nil {
			img = CropImage(img, *tk.input.Region)
		}
		warnings, err := p.Filler.FillTable(ctx, img, table)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return fail(log, res, nil, fmt.Errorf("filling %s: %w", name, err))
		}
	}

	if job.MergeRows && p.Reconciler != nil {
		merged, warnings, err := p.Reconciler.Reconcile(table, tk.input.Scores)
		res.Warnings = append(res.Warnings, warnings...)
		if err != nil {
			return fail(log, res, nil, fmt.Errorf("merging rows of %s: %w", name, err))
		}
		table = merged
	}

	res.Table = table
	log.Debug().Int("rows", table.RowCount()).Int("cols", table.ColCount()).Msg("table done")
	return res
}

func fail(log zerolog.Logger, res TableResult, warnings []model.Warning, err error) TableResult {
	res.Warnings = append(res.Warnings, warnings...)
	res.Err = err
	log.Error().Err(err).Msg("table failed")
	return res
}

// CropImage copies region of img into a new image whose origin is the
// region's top-left corner. The region is clamped to the image bounds.
func CropImage(img image.Image, region model.Rect) image.Image {
	r := ocr.CropRect(region, img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
