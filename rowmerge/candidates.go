package rowmerge

import (
	"github.com/tsawler/tabstruct/model"
)

// Candidate is one cell pair the merge classifier is expected to score. Line1
// and Line2 hold the cell text of the upper and lower row.
type Candidate struct {
	Table  string `json:"table"`
	Row1   int    `json:"row1"`
	Row2   int    `json:"row2"`
	Column int    `json:"column"`
	Line1  string `json:"line1"`
	Line2  string `json:"line2"`
}

// Candidates enumerates, for every pair of vertically adjacent rows, the
// columns where both cells carry text. Columns where either side is blank are
// credited by EmptyColumnWeight instead of being scored.
func Candidates(t *model.Table) []Candidate {
	var out []Candidate
	for i := 0; i+1 < len(t.Rows); i++ {
		upper, lower := t.Rows[i], t.Rows[i+1]
		n := len(upper.Cells)
		if len(lower.Cells) < n {
			n = len(lower.Cells)
		}
		for col := 0; col < n; col++ {
			c1, c2 := upper.Cells[col], lower.Cells[col]
			if c1.IsEmpty() || c2.IsEmpty() {
				continue
			}
			out = append(out, Candidate{
				Table:  t.Name,
				Row1:   upper.ID,
				Row2:   lower.ID,
				Column: col,
				Line1:  c1.Text,
				Line2:  c2.Text,
			})
		}
	}
	return out
}

// Score converts the candidate into a score carrying value
func (c Candidate) Score(value float64) Score {
	return Score{Table: c.Table, Row1: c.Row1, Row2: c.Row2, Column: c.Column, Value: value}
}
