package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
)

func formatCompletions() []string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = f.String()
	}
	return names
}

func (a *app) newExportCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:     "export <table>",
		GroupID: "stages",
		Short:   "Convert a table to JSON, HTML, CSV, or Markdown",
		Long: `Export reads a table (structure JSON, canonical JSON, or HTML) and writes
it in another format. CSV and Markdown drop span information. When no
format is given it is taken from the output file's extension.`,
		Example: `  tabstruct export merged.json --format html
  tabstruct export merged.json -o table.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.JSON
			switch {
			case format != "":
				var err error
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			case output != "" && export.Detect(output) != export.Unknown:
				f = export.Detect(output)
			}

			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := export.Render(table, f)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	fl.StringVarP(&format, "format", "f", "", "output format: "+export.FormatNames())
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(formatCompletions(), cobra.ShellCompDirectiveNoFileComp))
	return cmd
}
