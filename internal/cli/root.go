// Package cli implements the tabstruct command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tsawler/tabstruct/config"
	"github.com/tsawler/tabstruct/logging"
)

// flagKeys maps command-line flags to configuration keys. A flag overrides
// the config file and environment when it is set.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"no-color":          "log.no_color",
	"span-tolerance":    "grid.span_tolerance",
	"merge-overlapping": "grid.merge_overlapping",
	"threshold":         "merge.threshold",
	"empty-weight":      "merge.empty_column_weight",
	"strict":            "merge.strict_sources",
	"lang":              "ocr.language",
	"contrast":          "ocr.contrast",
	"debug-dir":         "ocr.debug_dir",
	"min-score":         "detection.min_score",
	"workers":           "pipeline.workers",
}

// app holds state shared by the commands of one invocation
type app struct {
	configFile string
	verbose    bool
	quiet      bool

	v   *viper.Viper
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand builds the tabstruct command tree
func NewRootCommand(version string) *cobra.Command {
	a := &app{log: logging.Nop}

	root := &cobra.Command{
		Use:   "tabstruct",
		Short: "Table structure synthesis and row-merge reconciliation",
		Long: `tabstruct turns the row, column, and spanning-cell boxes found by a
table structure detector into a grid of cells, fills cell text by OCR,
merges rows that were split across physical lines using classifier
scores, and writes the result as JSON, HTML, CSV, or Markdown.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.AddGroup(
		&cobra.Group{ID: "stages", Title: "Stage Commands:"},
		&cobra.Group{ID: "pipeline", Title: "Pipeline Commands:"},
	)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is ./.tabstruct.yaml or $HOME/.tabstruct.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "log warnings and errors only")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "log format (auto, console, json)")
	pf.Bool("no-color", false, "disable colored log output")

	root.AddCommand(
		a.newBuildCommand(),
		a.newOCRCommand(),
		a.newMergeCommand(),
		a.newCandidatesCommand(),
		a.newExportCommand(),
		a.newRunCommand(),
	)
	return root
}

// setup loads configuration and the logger before any command runs
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	opts := config.Options{File: a.configFile}
	a.v = config.New(opts)

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := flagKeys[f.Name]
		if key == "" || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}

	cfg, err := config.Read(a.v, opts)
	if err != nil {
		return err
	}
	switch {
	case a.verbose:
		cfg.Log.Level = "debug"
	case a.quiet:
		cfg.Log.Level = "warn"
	}
	a.cfg = cfg

	a.log = logging.New(cfg.Logging())
	logging.SetDefault(a.log)
	cmd.SetContext(logging.WithLogger(cmd.Context(), &a.log))
	if cfg.ConfigFile != "" {
		a.log.Debug().Str("file", cfg.ConfigFile).Msg("using config file")
	}
	return nil
}

// writeOutput writes data to path, or to the command's output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// openInput opens path, or the command's input when path is "-"
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}
