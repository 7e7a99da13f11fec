package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/pipeline"
)

func (a *app) newRunCommand() *cobra.Command {
	var (
		outDir string
		format string
		noOCR  bool
		merge  bool
	)

	cmd := &cobra.Command{
		Use:     "run <job.yaml>",
		GroupID: "pipeline",
		Short:   "Build, fill, and merge every table of a paper",
		Long: `Run processes a job file describing the pages of one paper and the
tables detected on each. Every table is built, filled by OCR when the
binary has OCR support and the page has an image, and merged when the job
(or --merge) asks for it. Tables are processed concurrently; a failing
table is reported and does not stop the others.

With --output-dir each table is written as <name>.<ext> and the paper's
text rows as <paper_id>.json. Without it the paper result is printed.`,
		Example: `  tabstruct run job.yaml -o out/
  tabstruct run job.yaml --no-ocr --merge --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jf, err := pipeline.LoadJobFile(args[0])
			if err != nil {
				return err
			}
			job, err := jf.Job(filepath.Dir(args[0]), a.cfg.Detection.MinScore)
			if err != nil {
				return err
			}
			if merge {
				job.MergeRows = true
			}

			p := a.cfg.Processor(a.log)
			if a.cfg.OCR.Enabled && !noOCR {
				client, err := ocr.NewWithOptions(a.cfg.OCROptions())
				switch {
				case errors.Is(err, ocr.ErrOCRNotEnabled):
					a.log.Warn().Msg("built without OCR support; cell text stays empty")
				case err != nil:
					return err
				default:
					defer client.Close()
					p.Filler = a.cfg.CellFiller(client, a.log)
				}
			}

			res, err := p.Process(cmd.Context(), job)
			if err != nil {
				return err
			}
			logWarnings(cmd.Context(), res.Warnings())

			if outDir == "" {
				data, err := res.Paper.JSON()
				if err != nil {
					return err
				}
				if err := writeOutput(cmd, "", append(data, '\n')); err != nil {
					return err
				}
			} else if err := a.writeResults(res, outDir, format); err != nil {
				return err
			}

			if failed := res.Failed(); len(failed) > 0 {
				for _, f := range failed {
					a.log.Error().Err(f.Err).Str("table", f.Name).Msg("table failed")
				}
				return fmt.Errorf("%d of %d tables failed", len(failed), len(res.Tables))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outDir, "output-dir", "o", "", "directory for per-table output")
	f.StringVarP(&format, "format", "f", "json", "per-table format: "+export.FormatNames())
	f.BoolVar(&noOCR, "no-ocr", false, "skip text recognition")
	f.BoolVar(&merge, "merge", false, "merge split rows even if the job does not ask for it")
	f.Int("workers", 0, "tables processed at once (0 = number of CPUs)")
	f.Float64("min-score", 0.6, "drop detections scoring below this")
	f.Float64("span-tolerance", 0, "pixels a spanning cell may miss a column edge by")
	f.Bool("merge-overlapping", false, "collapse vertically overlapping rows")
	f.Float64("threshold", 0.5, "minimum averaged score for two rows to merge")
	f.Bool("strict", false, "fail a table when a row merges into more than one row")
	f.String("lang", "eng", "Tesseract language(s), '+' separated")
	return cmd
}

// writeResults writes each successful table and the paper result to dir
func (a *app) writeResults(res *pipeline.Result, dir, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	for _, tr := range res.Tables {
		if tr.Err != nil {
			continue
		}
		data, err := export.Render(tr.Table, f)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, tr.Name+f.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		a.log.Debug().Str("file", path).Msg("wrote table")
	}

	data, err := res.Paper.JSON()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, res.PaperID+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.log.Info().Str("dir", dir).Int("tables", len(res.Tables)-len(res.Failed())).Msg("wrote results")
	return nil
}
