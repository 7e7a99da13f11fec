package rowmerge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabstruct/model"
)

func textRow(id int, texts ...string) *model.Row {
	row := &model.Row{ID: id}
	for _, s := range texts {
		row.Cells = append(row.Cells, model.Cell{Text: s, ColSpan: 1, RowSpan: 1})
	}
	return row
}

func TestDecisionFullCoverageMean(t *testing.T) {
	d := &Decision{Row1: textRow(0, "Alpha", "1"), Row2: textRow(1, "Beta continuation", "")}
	d.Add(0, 0.9)
	d.Add(1, 0.8)

	assert.True(t, d.FullCoverage())
	assert.InDelta(t, 0.85, d.Score(DefaultConfig()), 1e-9)
	assert.True(t, d.ShouldMerge(DefaultConfig()))
}

func TestDecisionEmptyColumnBoundary(t *testing.T) {
	d := &Decision{Row1: textRow(0, "a", "b"), Row2: textRow(1, "", "")}

	assert.False(t, d.FullCoverage())
	assert.Equal(t, 2, d.EmptyColumnCount())
	assert.InDelta(t, 0.5, d.Score(DefaultConfig()), 1e-9)
	assert.True(t, d.ShouldMerge(DefaultConfig()), "threshold is inclusive")
}

func TestDecisionPartialCoverage(t *testing.T) {
	tests := []struct {
		name   string
		row1   *model.Row
		row2   *model.Row
		scores []ColumnScore
		want   float64
		merge  bool
	}{
		{
			name:   "one scored column plus one blank",
			row1:   textRow(0, "x", "y"),
			row2:   textRow(1, "z", ""),
			scores: []ColumnScore{{0, 0.6}},
			want:   (0.6 + 0.5) / 2,
			merge:  true,
		},
		{
			name:   "blank compensation not enough",
			row1:   textRow(0, "x", "y"),
			row2:   textRow(1, "z", ""),
			scores: []ColumnScore{{0, 0.2}},
			want:   (0.2 + 0.5) / 2,
			merge:  false,
		},
		{
			name:   "low score no blanks",
			row1:   textRow(0, "x", "y", "w"),
			row2:   textRow(1, "z", "q", "r"),
			scores: []ColumnScore{{0, 0.9}},
			want:   0.3,
			merge:  false,
		},
		{
			name:   "duplicate column breaks coverage",
			row1:   textRow(0, "x", "y"),
			row2:   textRow(1, "z", "q"),
			scores: []ColumnScore{{0, 0.9}, {0, 0.9}},
			want:   0.9,
			merge:  true,
		},
		{
			name:   "column out of range breaks coverage",
			row1:   textRow(0, "x"),
			row2:   textRow(1, "z"),
			scores: []ColumnScore{{3, 0.4}},
			want:   0.4,
			merge:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Decision{Row1: tt.row1, Row2: tt.row2, Scores: tt.scores}
			assert.False(t, d.FullCoverage())
			assert.InDelta(t, tt.want, d.Score(DefaultConfig()), 1e-9)
			assert.Equal(t, tt.merge, d.ShouldMerge(DefaultConfig()))
		})
	}
}

func TestDecisionConfigurableConstants(t *testing.T) {
	d := &Decision{Row1: textRow(0, "a", "b"), Row2: textRow(1, "", "")}

	cfg := Config{Threshold: 0.6, EmptyColumnWeight: 0.5}
	assert.False(t, d.ShouldMerge(cfg))

	cfg = Config{Threshold: 0.6, EmptyColumnWeight: 0.75}
	assert.True(t, d.ShouldMerge(cfg))
}

func TestDecisionEmptyFirstRowNeverMerges(t *testing.T) {
	d := &Decision{Row1: textRow(0), Row2: textRow(1, "a")}
	assert.False(t, d.FullCoverage())
	assert.Equal(t, 0.0, d.Score(DefaultConfig()))
	assert.False(t, d.ShouldMerge(Config{Threshold: 0}))
}

// ============================================================================
// Scores
// ============================================================================

func TestScoreValidate(t *testing.T) {
	tests := []struct {
		name  string
		score Score
		ok    bool
	}{
		{"valid", Score{Row1: 0, Row2: 1, Column: 0, Value: 0.5}, true},
		{"value zero", Score{Row1: 0, Row2: 1, Value: 0}, true},
		{"value one", Score{Row1: 0, Row2: 1, Value: 1}, true},
		{"value above one", Score{Row1: 0, Row2: 1, Value: 1.01}, false},
		{"negative value", Score{Row1: 0, Row2: 1, Value: -0.1}, false},
		{"negative row", Score{Row1: -1, Row2: 1, Value: 0.5}, false},
		{"negative column", Score{Row1: 0, Row2: 1, Column: -2, Value: 0.5}, false},
		{"self pair", Score{Row1: 2, Row2: 2, Value: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.score.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidScore)
			}
		})
	}
}

func TestDecodeScores(t *testing.T) {
	in := `[
		{"table": "t1", "row1": 0, "row2": 1, "column": 0, "score": 0.9},
		{"table": "t1", "row1": 0, "row2": 1, "column": 1, "score": 0.8}
	]`
	scores, err := DecodeScores(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, Score{Table: "t1", Row1: 0, Row2: 1, Column: 1, Value: 0.8}, scores[1])

	_, err = DecodeScores(strings.NewReader(`[{"row1": 0, "row2": 1, "score": 3}]`))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = DecodeScores(strings.NewReader(`{not json`))
	assert.Error(t, err)
}

func TestGroupByTable(t *testing.T) {
	groups := GroupByTable([]Score{
		{Table: "a", Row1: 0, Row2: 1},
		{Table: "b", Row1: 0, Row2: 1},
		{Table: "a", Row1: 1, Row2: 2},
	})
	require.Len(t, groups, 2)
	assert.Len(t, groups["a"], 2)
	assert.Equal(t, 1, groups["a"][1].Row1)
}
