package tabstruct

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/rowmerge"
)

// BuildOptions holds configuration for building and cleaning a table.
type BuildOptions struct {
	// Grid building
	spanTolerance float64

	// Geometric overlap merge (0 disables)
	overlapThreshold float64

	// Text recognition
	image      image.Image
	recognizer ocr.Recognizer

	// Row merging (nil scores skip the reconciler)
	scores      []rowmerge.Score
	mergeConfig rowmerge.Config

	// Cleanup
	dropEmptyRows bool
	homogeneous   bool

	logger zerolog.Logger
}

// defaultOptions returns the default build options.
func defaultOptions() BuildOptions {
	return BuildOptions{
		spanTolerance:    0,
		overlapThreshold: 0,
		mergeConfig:      rowmerge.DefaultConfig(),
		dropEmptyRows:    false,
		homogeneous:      false,
		logger:           zerolog.Nop(),
	}
}

// clone creates a deep copy of BuildOptions.
func (o BuildOptions) clone() BuildOptions {
	newOpts := o

	// Deep copy scores slice
	if o.scores != nil {
		newOpts.scores = make([]rowmerge.Score, len(o.scores))
		copy(newOpts.scores, o.scores)
	}

	return newOpts
}
