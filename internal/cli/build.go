package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/pipeline"
	"github.com/tsawler/tabstruct/tables"
)

func (a *app) newBuildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "build <detections.yaml>",
		GroupID: "stages",
		Short:   "Build a table grid from detected rows, columns, and spanning cells",
		Long: `Build reads the structure detector output for one table (YAML or JSON)
and writes the resulting grid, with cell geometry, as structure JSON.
Cell text is left empty; fill it with the ocr command.`,
		Example: `  tabstruct build detections.yaml -o table.json
  tabstruct build detections.json --span-tolerance 2 --min-score 0.7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := pipeline.LoadTableFile(args[0])
			if err != nil {
				return err
			}
			input, err := tf.Input(a.cfg.Detection.MinScore)
			if err != nil {
				return err
			}

			name := tf.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			table, warnings, err := a.cfg.GridBuilder(a.log).BuildFromPrimitives(name, input.Primitives)
			if err != nil {
				return err
			}
			logWarnings(cmd.Context(), warnings)
			table.Bounds = input.Region
			if a.cfg.Grid.MergeOverlapping {
				table = tables.MergeOverlappingRows(table, a.cfg.Grid.OverlapThreshold)
			}

			data, err := export.ToStructureJSON(table)
			if err != nil {
				return err
			}
			a.log.Info().Str("table", name).Int("rows", table.RowCount()).Int("cols", table.ColCount()).Msg("built table")
			return writeOutput(cmd, output, data)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	f.Float64("span-tolerance", 0, "pixels a spanning cell may miss a column edge by")
	f.Bool("merge-overlapping", false, "collapse vertically overlapping rows")
	f.Float64("min-score", 0.6, "drop detections scoring below this")
	return cmd
}
