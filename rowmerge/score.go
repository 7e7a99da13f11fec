package rowmerge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrInvalidScore indicates a merge score outside [0,1] or with bad row ids
	ErrInvalidScore = errors.New("invalid merge score")

	// ErrUnknownRow indicates a merge score that refers to a row id the table lacks
	ErrUnknownRow = errors.New("unknown row")

	// ErrAmbiguousMergeSource is returned in strict mode when a row is the
	// source of more than one positive merge decision
	ErrAmbiguousMergeSource = errors.New("ambiguous merge source")
)

// Score is the classifier's probability that the cells at Column of two
// vertically adjacent rows belong to one logical row.
type Score struct {
	Table  string  `json:"table"`
	Row1   int     `json:"row1"`
	Row2   int     `json:"row2"`
	Column int     `json:"column"`
	Value  float64 `json:"score"`
}

// Validate checks the score is usable. A row paired with itself is valid
// here; if it votes to merge, Reconcile reports it as a one-row cycle.
func (s Score) Validate() error {
	if math.IsNaN(s.Value) || s.Value < 0 || s.Value > 1 {
		return fmt.Errorf("%w: value %v outside [0,1]", ErrInvalidScore, s.Value)
	}
	if s.Row1 < 0 || s.Row2 < 0 || s.Column < 0 {
		return fmt.Errorf("%w: negative index in (%d, %d, col %d)", ErrInvalidScore, s.Row1, s.Row2, s.Column)
	}
	return nil
}

// DecodeScores reads a JSON array of scores
func DecodeScores(r io.Reader) ([]Score, error) {
	var scores []Score
	if err := json.NewDecoder(r).Decode(&scores); err != nil {
		return nil, fmt.Errorf("decoding merge scores: %w", err)
	}
	for i, s := range scores {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("score %d: %w", i, err)
		}
	}
	return scores, nil
}

// GroupByTable splits scores by table name, preserving order within each table
func GroupByTable(scores []Score) map[string][]Score {
	groups := make(map[string][]Score)
	for _, s := range scores {
		groups[s.Table] = append(groups[s.Table], s)
	}
	return groups
}
