package export

import (
	"encoding/json"
	"fmt"

	"github.com/tsawler/tabstruct/model"
)

// box is a rectangle written as [left, top, right, bottom]
type box [4]float64

func toBox(r *model.Rect) *box {
	if r == nil {
		return nil
	}
	return &box{r.Left, r.Top, r.Right, r.Bottom}
}

func (b *box) rect() (*model.Rect, error) {
	if b == nil {
		return nil, nil
	}
	r, err := model.NewRect(b[0], b[1], b[2], b[3])
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type structureCell struct {
	Bounds  *box   `json:"bounds,omitempty"`
	Text    string `json:"text"`
	ColSpan int    `json:"colspan"`
	RowSpan int    `json:"rowspan"`
}

type structureRow struct {
	ID     int             `json:"id"`
	Bounds *box            `json:"bounds,omitempty"`
	Cells  []structureCell `json:"cells"`
}

type structureTable struct {
	Name       string         `json:"name"`
	Bounds     *box           `json:"bounds,omitempty"`
	PageWidth  float64        `json:"page_width,omitempty"`
	PageHeight float64        `json:"page_height,omitempty"`
	Rows       []structureRow `json:"rows"`
}

// ToStructureJSON encodes the table together with its geometry and row ids.
// It is the hand-off format between the build and ocr stages.
func ToStructureJSON(t *model.Table) ([]byte, error) {
	doc := structureTable{
		Name:       t.Name,
		Bounds:     toBox(t.Bounds),
		PageWidth:  t.PageWidth,
		PageHeight: t.PageHeight,
		Rows:       make([]structureRow, len(t.Rows)),
	}
	for i, row := range t.Rows {
		sr := structureRow{ID: row.ID, Bounds: toBox(row.Bounds), Cells: make([]structureCell, len(row.Cells))}
		for j, c := range row.Cells {
			sr.Cells[j] = structureCell{
				Bounds:  toBox(c.Bounds),
				Text:    c.Text,
				ColSpan: c.Span(),
				RowSpan: atLeastOne(c.RowSpan),
			}
		}
		doc.Rows[i] = sr
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding table structure %q: %w", t.Name, err)
	}
	return data, nil
}

// FromStructureJSON decodes a table written by ToStructureJSON. Row ids are
// kept as written. Malformed rectangles are rejected.
func FromStructureJSON(data []byte) (*model.Table, error) {
	var doc structureTable
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding table structure: %w", err)
	}

	t := model.NewTable(doc.Name)
	t.SetPageInfo(doc.PageWidth, doc.PageHeight)

	var err error
	if t.Bounds, err = doc.Bounds.rect(); err != nil {
		return nil, fmt.Errorf("table %q bounds: %w", doc.Name, err)
	}

	seen := make(map[int]bool, len(doc.Rows))
	for _, sr := range doc.Rows {
		if seen[sr.ID] {
			return nil, fmt.Errorf("table %q: duplicate row id %d", doc.Name, sr.ID)
		}
		seen[sr.ID] = true

		row := model.Row{ID: sr.ID, Cells: make([]model.Cell, len(sr.Cells))}
		if row.Bounds, err = sr.Bounds.rect(); err != nil {
			return nil, fmt.Errorf("table %q row %d: %w", doc.Name, sr.ID, err)
		}
		for j, sc := range sr.Cells {
			cell := model.Cell{Text: sc.Text, ColSpan: atLeastOne(sc.ColSpan), RowSpan: atLeastOne(sc.RowSpan)}
			if cell.Bounds, err = sc.Bounds.rect(); err != nil {
				return nil, fmt.Errorf("table %q row %d cell %d: %w", doc.Name, sr.ID, j, err)
			}
			row.Cells[j] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
