package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/rowmerge"
)

func (a *app) newMergeCommand() *cobra.Command {
	var (
		output     string
		scoresPath string
	)

	cmd := &cobra.Command{
		Use:     "merge <table.json>",
		GroupID: "stages",
		Short:   "Merge rows split across lines using classifier scores",
		Long: `Merge reads a table (structure or canonical JSON) and a JSON array of
merge scores, each {"table", "row1", "row2", "column", "score"}, and
collapses every chain of rows the scores vote to join. Scores naming a
different table are ignored. The merged table is written as canonical
JSON.`,
		Example: `  tabstruct merge filled.json --scores scores.json
  tabstruct merge filled.json --scores scores.json --threshold 0.6 --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}

			r, err := openInput(cmd, scoresPath)
			if err != nil {
				return err
			}
			scores, err := rowmerge.DecodeScores(r)
			r.Close()
			if err != nil {
				return err
			}

			merged, warnings, err := a.cfg.Reconciler(a.log).Reconcile(table, scores)
			logWarnings(cmd.Context(), warnings)
			if err != nil {
				return err
			}
			a.log.Info().Str("table", table.Name).Int("rows_before", table.RowCount()).Int("rows_after", merged.RowCount()).Msg("merged rows")

			data, err := export.ToJSON(merged)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(data, '\n'))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&scoresPath, "scores", "", "merge scores JSON file, or - for stdin")
	f.Float64("threshold", 0.5, "minimum averaged score for two rows to merge")
	f.Float64("empty-weight", 0.5, "weight credited to each blank column")
	f.Bool("strict", false, "fail when a row merges into more than one row")
	_ = cmd.MarkFlagRequired("scores")
	return cmd
}

func (a *app) newCandidatesCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "candidates <table.json>",
		GroupID: "stages",
		Short:   "List the row pairs and columns a merge classifier should score",
		Long: `Candidates lists, for every pair of vertically adjacent rows, each column
where both cells have text, together with the text of both lines. Feed the
list to a classifier, then pass its scores to the merge command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(rowmerge.Candidates(table), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(data, '\n'))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
