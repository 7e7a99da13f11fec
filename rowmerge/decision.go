package rowmerge

import (
	"github.com/tsawler/tabstruct/model"
)

// Config holds the tunable constants of the merge vote
type Config struct {
	// Minimum averaged score for two rows to merge (inclusive)
	Threshold float64

	// Weight credited for each column the classifier could not score when
	// the scores do not cover every column of the first row
	EmptyColumnWeight float64

	// Fail with ErrAmbiguousMergeSource instead of warning when a row is the
	// source of more than one positive decision
	StrictSources bool
}

// DefaultConfig returns the default merge constants
func DefaultConfig() Config {
	return Config{
		Threshold:         0.5,
		EmptyColumnWeight: 0.5,
		StrictSources:     false,
	}
}

// ColumnScore is one classifier score for a column of a row pair
type ColumnScore struct {
	Column int
	Value  float64
}

// Decision accumulates the scores for one (row1, row2) pair
type Decision struct {
	Row1   *model.Row
	Row2   *model.Row
	Scores []ColumnScore
}

// Add records a column score
func (d *Decision) Add(column int, value float64) {
	d.Scores = append(d.Scores, ColumnScore{Column: column, Value: value})
}

// FullCoverage reports whether there is exactly one score for each column of
// the first row. A first row without cells is never covered.
func (d *Decision) FullCoverage() bool {
	n := len(d.Row1.Cells)
	if n == 0 || len(d.Scores) != n {
		return false
	}
	seen := make(map[int]bool, n)
	for _, s := range d.Scores {
		if s.Column < 0 || s.Column >= n || seen[s.Column] {
			return false
		}
		seen[s.Column] = true
	}
	return true
}

// EmptyColumnCount returns the larger number of blank cells of the two rows
func (d *Decision) EmptyColumnCount() int {
	n1, n2 := d.Row1.EmptyCellCount(), d.Row2.EmptyCellCount()
	if n2 > n1 {
		return n2
	}
	return n1
}

// Score returns the aggregated vote. With full coverage it is the mean score;
// otherwise each blank column (counted on the sparser row) adds
// EmptyColumnWeight and the total is divided by the first row's column count.
func (d *Decision) Score(cfg Config) float64 {
	total := 0.0
	for _, s := range d.Scores {
		total += s.Value
	}

	if d.FullCoverage() {
		return total / float64(len(d.Scores))
	}

	cols := len(d.Row1.Cells)
	if cols == 0 {
		return 0
	}
	total += cfg.EmptyColumnWeight * float64(d.EmptyColumnCount())
	return total / float64(cols)
}

// ShouldMerge reports whether the two rows are one logical row
func (d *Decision) ShouldMerge(cfg Config) bool {
	if len(d.Row1.Cells) == 0 {
		return false
	}
	return d.Score(cfg) >= cfg.Threshold
}
