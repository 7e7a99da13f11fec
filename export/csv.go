package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tsawler/tabstruct/model"
)

// WriteCSV writes one record per row and one field per cell. Spans are not
// representable in CSV and are dropped; no padding fields are written for
// spanned columns.
func WriteCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	for _, row := range t.Rows {
		if err := cw.Write(row.Texts()); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", row.ID, t.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToCSV returns the table as CSV text
func ToCSV(t *model.Table) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}
