package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/tsawler/tabstruct/model"
)

// ErrTableName indicates a table name that does not follow
// "<paper>_page_<n>_table_<k>"
var ErrTableName = errors.New("invalid table name")

var tableNameRe = regexp.MustCompile(`^(.+)_page_(\d+)_table_(\d+)$`)

// TableName formats the name of table k on page n of a paper
func TableName(paperID string, page, index int) string {
	return fmt.Sprintf("%s_page_%d_table_%d", paperID, page, index)
}

// ParseTableName splits a name produced by TableName
func ParseTableName(name string) (paperID string, page, index int, err error) {
	m := tableNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrTableName, name)
	}
	page, _ = strconv.Atoi(m[2])
	index, _ = strconv.Atoi(m[3])
	return m[1], page, index, nil
}

// PaperResult groups the text rows of every table of a paper by page
type PaperResult struct {
	PaperID string     `json:"paper_id"`
	Result  PaperPages `json:"result"`
}

// PaperPages is the page list of a PaperResult
type PaperPages struct {
	Pages []PageTables `json:"pages"`
}

// PageTables holds the tables found on one page
type PageTables struct {
	Page   int         `json:"page"`
	Tables []TableRows `json:"tables"`
}

// TableRows is a table reduced to its cell text
type TableRows struct {
	Rows [][]string `json:"rows"`
}

// BuildPaperResult collects tables named by TableName into a PaperResult.
// Pages are sorted numerically; tables keep their input order within a page.
// All tables must belong to the same paper.
func BuildPaperResult(tables []*model.Table) (*PaperResult, error) {
	res := &PaperResult{Result: PaperPages{Pages: []PageTables{}}}
	pageIndex := make(map[int]int)

	for _, t := range tables {
		paperID, page, _, err := ParseTableName(t.Name)
		if err != nil {
			return nil, err
		}
		if res.PaperID == "" {
			res.PaperID = paperID
		} else if paperID != res.PaperID {
			return nil, fmt.Errorf("table %q belongs to paper %q, not %q", t.Name, paperID, res.PaperID)
		}

		i, ok := pageIndex[page]
		if !ok {
			i = len(res.Result.Pages)
			pageIndex[page] = i
			res.Result.Pages = append(res.Result.Pages, PageTables{Page: page})
		}

		rows := make([][]string, len(t.Rows))
		for j, row := range t.Rows {
			rows[j] = row.Texts()
		}
		res.Result.Pages[i].Tables = append(res.Result.Pages[i].Tables, TableRows{Rows: rows})
	}

	sort.SliceStable(res.Result.Pages, func(a, b int) bool {
		return res.Result.Pages[a].Page < res.Result.Pages[b].Page
	})
	return res, nil
}

// JSON encodes the result with two-space indentation
func (p *PaperResult) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
