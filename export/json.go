package export

import (
	"encoding/json"
	"fmt"

	"github.com/tsawler/tabstruct/model"
)

// cellJSON is one cell of the canonical table format. Rowspan is written
// only when it is greater than 1.
type cellJSON struct {
	Content string `json:"content"`
	ColSpan int    `json:"colspan"`
	RowSpan int    `json:"rowspan,omitempty"`
}

type tableJSON struct {
	Name       string       `json:"name"`
	PageWidth  float64      `json:"page_width,omitempty"`
	PageHeight float64      `json:"page_height,omitempty"`
	Rows       [][]cellJSON `json:"rows"`
}

// ToJSON encodes the table in the canonical format
//
//	{"name": ..., "rows": [[{"content": ..., "colspan": n}, ...], ...]}
//
// Page dimensions are included only when set. Geometry is not written; use
// ToStructureJSON to keep it.
func ToJSON(t *model.Table) ([]byte, error) {
	doc := tableJSON{
		Name: t.Name,
		Rows: make([][]cellJSON, len(t.Rows)),
	}
	if t.HasPageInfo() {
		doc.PageWidth = t.PageWidth
		doc.PageHeight = t.PageHeight
	}

	for i, row := range t.Rows {
		cells := make([]cellJSON, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = cellJSON{Content: c.Text, ColSpan: c.Span()}
			if c.RowSpan > 1 {
				cells[j].RowSpan = c.RowSpan
			}
		}
		doc.Rows[i] = cells
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding table %q: %w", t.Name, err)
	}
	return data, nil
}

// FromJSON decodes a table written by ToJSON. A missing colspan or rowspan
// is read as 1. Row ids are assigned from 0 in document order.
func FromJSON(data []byte) (*model.Table, error) {
	var doc tableJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding table: %w", err)
	}
	return doc.table(), nil
}

func (doc tableJSON) table() *model.Table {
	t := model.NewTable(doc.Name)
	t.SetPageInfo(doc.PageWidth, doc.PageHeight)
	for _, row := range doc.Rows {
		cells := make([]model.Cell, len(row))
		for j, c := range row {
			cells[j] = model.Cell{Text: c.Content, ColSpan: atLeastOne(c.ColSpan), RowSpan: atLeastOne(c.RowSpan)}
		}
		t.AddRow(nil, cells...)
	}
	return t
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
