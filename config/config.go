// Package config loads tabstruct settings from, in order of precedence,
// TABSTRUCT_* environment variables (including those set by .env and
// .env.local), a YAML config file, and built-in defaults. Command-line flags
// are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/tsawler/tabstruct/logging"
	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/pipeline"
	"github.com/tsawler/tabstruct/rowmerge"
	"github.com/tsawler/tabstruct/tables"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TABSTRUCT_MERGE_THRESHOLD for merge.threshold.
const EnvPrefix = "TABSTRUCT"

// ErrInvalidConfig indicates a setting outside its allowed range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Grid      GridConfig      `mapstructure:"grid"`
	Merge     MergeConfig     `mapstructure:"merge"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Detection DetectionConfig `mapstructure:"detection"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`

	// Path of the config file that was read, if any
	ConfigFile string `mapstructure:"-"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Output  string `mapstructure:"output"`
	NoColor bool   `mapstructure:"no_color"`
}

// GridConfig configures grid building
type GridConfig struct {
	SpanTolerance    float64 `mapstructure:"span_tolerance"`
	MergeOverlapping bool    `mapstructure:"merge_overlapping"`
	OverlapThreshold float64 `mapstructure:"overlap_threshold"`
}

// MergeConfig configures the row-merge vote
type MergeConfig struct {
	Threshold         float64 `mapstructure:"threshold"`
	EmptyColumnWeight float64 `mapstructure:"empty_column_weight"`
	StrictSources     bool    `mapstructure:"strict_sources"`
}

// OCRConfig configures cell text recognition
type OCRConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Language      string  `mapstructure:"language"`
	Contrast      float64 `mapstructure:"contrast"`
	MinCellHeight int     `mapstructure:"min_cell_height"`
	DebugDir      string  `mapstructure:"debug_dir"`
}

// DetectionConfig configures how detector output is read
type DetectionConfig struct {
	MinScore float64 `mapstructure:"min_score"`
}

// PipelineConfig configures job processing
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// Options controls where configuration is read from
type Options struct {
	// Explicit config file; when empty .tabstruct.yaml is searched for in
	// the working and home directories
	File string

	// .env files to load; nil means .env and .env.local
	EnvFiles []string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", os.Getenv("NO_COLOR") != "")

	v.SetDefault("grid.span_tolerance", 0.0)
	v.SetDefault("grid.merge_overlapping", false)
	v.SetDefault("grid.overlap_threshold", tables.DefaultOverlapThreshold)

	def := rowmerge.DefaultConfig()
	v.SetDefault("merge.threshold", def.Threshold)
	v.SetDefault("merge.empty_column_weight", def.EmptyColumnWeight)
	v.SetDefault("merge.strict_sources", def.StrictSources)

	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.language", ocr.DefaultOptions().Language)
	v.SetDefault("ocr.contrast", 1.8)
	v.SetDefault("ocr.min_cell_height", 32)
	v.SetDefault("ocr.debug_dir", "")

	v.SetDefault("detection.min_score", 0.6)

	v.SetDefault("pipeline.workers", 0)
}

// New returns a viper instance with defaults, environment binding, and
// config file search paths set up, ready for flags to be bound to it.
func New(opts Options) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".tabstruct")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	return v
}

// Load reads .env files and the config file, then decodes and validates
// the result. A missing config file is not an error unless it was named
// explicitly.
func Load(opts Options) (*Config, *viper.Viper, error) {
	v := New(opts)
	cfg, err := Read(v, opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Read is Load for a viper instance created by New, typically after command
// flags have been bound to it.
func Read(v *viper.Viper, opts Options) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return Decode(v)
}

// Decode builds a Config from v and validates it
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads environment variables from .env files. Variables that
// are already set are not overridden; missing files are skipped.
func loadEnvFiles(files []string) {
	if files == nil {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Validate checks every setting is in range
func (c *Config) Validate() error {
	switch {
	case c.Merge.Threshold < 0 || c.Merge.Threshold > 1:
		return fmt.Errorf("%w: merge.threshold %v outside [0,1]", ErrInvalidConfig, c.Merge.Threshold)
	case c.Merge.EmptyColumnWeight < 0 || c.Merge.EmptyColumnWeight > 1:
		return fmt.Errorf("%w: merge.empty_column_weight %v outside [0,1]", ErrInvalidConfig, c.Merge.EmptyColumnWeight)
	case c.Grid.SpanTolerance < 0:
		return fmt.Errorf("%w: grid.span_tolerance must not be negative", ErrInvalidConfig)
	case c.Grid.OverlapThreshold < 0:
		return fmt.Errorf("%w: grid.overlap_threshold must not be negative", ErrInvalidConfig)
	case c.OCR.Contrast <= 0:
		return fmt.Errorf("%w: ocr.contrast must be positive", ErrInvalidConfig)
	case c.OCR.MinCellHeight < 0:
		return fmt.Errorf("%w: ocr.min_cell_height must not be negative", ErrInvalidConfig)
	case c.Detection.MinScore < 0 || c.Detection.MinScore > 1:
		return fmt.Errorf("%w: detection.min_score %v outside [0,1]", ErrInvalidConfig, c.Detection.MinScore)
	case c.Pipeline.Workers < 0:
		return fmt.Errorf("%w: pipeline.workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Logging returns the logger configuration
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Output:  c.Log.Output,
		NoColor: c.Log.NoColor,
	}
}

// MergeSettings returns the reconciler configuration
func (c *Config) MergeSettings() rowmerge.Config {
	return rowmerge.Config{
		Threshold:         c.Merge.Threshold,
		EmptyColumnWeight: c.Merge.EmptyColumnWeight,
		StrictSources:     c.Merge.StrictSources,
	}
}

// OCROptions returns the Tesseract client options
func (c *Config) OCROptions() ocr.Options {
	opts := ocr.DefaultOptions()
	opts.Language = c.OCR.Language
	return opts
}

// GridBuilder returns a grid builder configured from c
func (c *Config) GridBuilder(log zerolog.Logger) *tables.GridBuilder {
	gb := tables.NewGridBuilder()
	gb.SpanTolerance = c.Grid.SpanTolerance
	gb.Logger = log
	return gb
}

// Reconciler returns a row-merge reconciler configured from c
func (c *Config) Reconciler(log zerolog.Logger) *rowmerge.Reconciler {
	rc := rowmerge.NewReconciler()
	rc.Config = c.MergeSettings()
	rc.Logger = log
	return rc
}

// CellFiller returns a cell filler using r, configured from c
func (c *Config) CellFiller(r ocr.Recognizer, log zerolog.Logger) *ocr.CellFiller {
	f := ocr.NewCellFiller(r)
	f.Contrast = c.OCR.Contrast
	f.MinCellHeight = c.OCR.MinCellHeight
	f.DebugDir = c.OCR.DebugDir
	f.Logger = log
	return f
}

// Processor returns a pipeline processor configured from c. The filler is
// left unset; the caller attaches one when OCR is available.
func (c *Config) Processor(log zerolog.Logger) *pipeline.Processor {
	p := pipeline.NewProcessor()
	p.Builder = c.GridBuilder(log)
	p.Reconciler = c.Reconciler(log)
	p.MergeOverlapping = c.Grid.MergeOverlapping
	p.OverlapThreshold = c.Grid.OverlapThreshold
	p.Workers = c.Pipeline.Workers
	p.Logger = log
	return p
}
