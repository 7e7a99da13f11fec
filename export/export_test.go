package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabstruct/model"
)

func rridTable() *model.Table {
	t := model.NewTable("t1")
	t.AddRow(nil, model.Cell{Text: "RRID:AB_12345", ColSpan: 2, RowSpan: 1})
	return t
}

func sampleTable() *model.Table {
	t := model.NewTable("paper1_page_2_table_0")
	t.AddRow(nil,
		model.Cell{Text: "Antibody", ColSpan: 1, RowSpan: 1},
		model.Cell{Text: "Source", ColSpan: 1, RowSpan: 1},
	)
	t.AddRow(nil,
		model.Cell{Text: "anti-GFP", ColSpan: 1, RowSpan: 2},
		model.Cell{Text: "Abcam | ab290", ColSpan: 1, RowSpan: 1},
	)
	return t
}

// ============================================================================
// Canonical JSON
// ============================================================================

func TestJSONRoundTrip(t *testing.T) {
	data, err := ToJSON(rridTable())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"t1","rows":[[{"content":"RRID:AB_12345","colspan":2}]]}`, string(data))

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "t1", back.Name)
	require.Len(t, back.Rows, 1)
	require.Len(t, back.Rows[0].Cells, 1)
	assert.Equal(t, "RRID:AB_12345", back.Rows[0].Cells[0].Text)
	assert.Equal(t, 2, back.Rows[0].Cells[0].ColSpan)

	again, err := ToJSON(back)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestJSONPageInfoAndRowSpan(t *testing.T) {
	table := sampleTable()
	table.SetPageInfo(612, 792)

	data, err := ToJSON(table)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"page_width":612`)
	assert.Contains(t, s, `"page_height":792`)
	assert.Contains(t, s, `"rowspan":2`)
	assert.Equal(t, 1, strings.Count(s, "rowspan"))

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, back.HasPageInfo())
	assert.Equal(t, 2, back.Rows[1].Cells[0].RowSpan)
	assert.Equal(t, 1, back.Rows[1].Cells[1].RowSpan)
}

func TestJSONOmitsUnsetPageInfo(t *testing.T) {
	data, err := ToJSON(rridTable())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "page_width")
}

func TestFromJSONDefaultsColSpan(t *testing.T) {
	back, err := FromJSON([]byte(`{"name":"x","rows":[[{"content":"a"}],[]]}`))
	require.NoError(t, err)
	require.Len(t, back.Rows, 2)
	assert.Equal(t, 1, back.Rows[0].Cells[0].ColSpan)
	assert.Equal(t, []int{0, 1}, []int{back.Rows[0].ID, back.Rows[1].ID})

	_, err = FromJSON([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestToJSONEmptyTable(t *testing.T) {
	data, err := ToJSON(model.NewTable("empty"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"empty","rows":[]}`, string(data))
}

// ============================================================================
// Structure JSON
// ============================================================================

func TestStructureJSONKeepsGeometry(t *testing.T) {
	table := model.NewTable("t1")
	table.Bounds = &model.Rect{Left: 0, Top: 0, Right: 150, Bottom: 40}
	cell := model.NewCell(model.Rect{Left: 0, Top: 0, Right: 100, Bottom: 20})
	cell.ColSpan = 2
	table.AddRow(&model.Rect{Left: 0, Top: 0, Right: 150, Bottom: 20}, cell, model.NewCell(model.Rect{Left: 100, Top: 0, Right: 150, Bottom: 20}))
	table.Rows[0].ID = 4

	data, err := ToStructureJSON(table)
	require.NoError(t, err)

	back, err := FromStructureJSON(data)
	require.NoError(t, err)
	assert.Equal(t, table.Bounds, back.Bounds)
	require.Len(t, back.Rows, 1)
	assert.Equal(t, 4, back.Rows[0].ID)
	assert.Equal(t, table.Rows[0].Bounds, back.Rows[0].Bounds)
	assert.Equal(t, table.Rows[0].Cells, back.Rows[0].Cells)
}

func TestFromStructureJSONRejectsMalformed(t *testing.T) {
	in := `{"name":"t","rows":[{"id":0,"bounds":[10,0,5,20],"cells":[]}]}`
	_, err := FromStructureJSON([]byte(in))
	assert.ErrorIs(t, err, model.ErrMalformedGeometry)

	dup := `{"name":"t","rows":[{"id":0,"cells":[]},{"id":0,"cells":[]}]}`
	_, err = FromStructureJSON([]byte(dup))
	assert.Error(t, err)
}

// ============================================================================
// HTML
// ============================================================================

func TestToHTML(t *testing.T) {
	out, err := ToHTML(sampleTable())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<table>"))
	assert.Contains(t, out, "<td>Antibody</td>")
	assert.Contains(t, out, `<td rowspan="2">anti-GFP</td>`)
	assert.NotContains(t, out, "colspan")
}

func TestToHTMLEscapesText(t *testing.T) {
	table := model.NewTable("t")
	table.AddRow(nil, model.Cell{Text: `<b>&"x"`, ColSpan: 3, RowSpan: 1})

	out, err := ToHTML(table)
	require.NoError(t, err)
	assert.Contains(t, out, `colspan="3"`)
	assert.Contains(t, out, "&lt;b&gt;&amp;")
	assert.NotContains(t, out, "<b>")
}

func TestToHTMLKeepsCellText(t *testing.T) {
	table := model.NewTable("t")
	table.AddRow(nil, model.Cell{Text: "  lead and trail ", ColSpan: 1, RowSpan: 1})

	out, err := ToHTML(table)
	require.NoError(t, err)
	assert.Contains(t, out, "<td>  lead and trail </td>")

	csv, err := ToCSV(table)
	require.NoError(t, err)
	assert.Equal(t, "\"  lead and trail \"\n", csv)
}

func TestHTMLRoundTrip(t *testing.T) {
	out, err := ToHTML(sampleTable())
	require.NoError(t, err)

	tables, err := FromHTML(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	got := tables[0]
	assert.Equal(t, "table_0", got.Name)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"Antibody", "Source"}, got.Rows[0].Texts())
	assert.Equal(t, []string{"anti-GFP", "Abcam | ab290"}, got.Rows[1].Texts())
	assert.Equal(t, 2, got.Rows[1].Cells[0].RowSpan)
}

func TestFromHTMLSections(t *testing.T) {
	in := `<html><body>
<table id="gold"><thead><tr><th>A</th><th colspan="2">B  C</th></tr></thead>
<tbody><tr><td>1</td><td>2</td><td>3</td></tr></tbody></table>
<p>between</p>
<table><tr><td>x</td></tr></table>
</body></html>`

	tables, err := FromHTML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "gold", tables[0].Name)
	assert.Equal(t, []string{"A", "B C"}, tables[0].Rows[0].Texts())
	assert.Equal(t, 2, tables[0].Rows[0].Cells[1].ColSpan)
	assert.Equal(t, 3, tables[0].ColCount())

	assert.Equal(t, "table_1", tables[1].Name)
	assert.Equal(t, "x\n", tables[1].GetText())
}

// ============================================================================
// CSV and Markdown
// ============================================================================

func TestToCSVDropsSpans(t *testing.T) {
	out, err := ToCSV(rridTable())
	require.NoError(t, err)
	assert.Equal(t, "RRID:AB_12345\n", out)
}

func TestToCSVQuotes(t *testing.T) {
	table := model.NewTable("t")
	table.AddRow(nil,
		model.Cell{Text: "a,b", ColSpan: 1},
		model.Cell{Text: `say "hi"`, ColSpan: 1},
	)

	out, err := ToCSV(table)
	require.NoError(t, err)
	assert.Equal(t, "\"a,b\",\"say \"\"hi\"\"\"\n", out)
}

func TestToMarkdown(t *testing.T) {
	table := model.NewTable("t")
	table.AddRow(nil, model.Cell{Text: "Name", ColSpan: 1}, model.Cell{Text: "Value", ColSpan: 1})
	table.AddRow(nil, model.Cell{Text: "wide|cell", ColSpan: 2})
	table.AddRow(nil, model.Cell{Text: "short", ColSpan: 1})

	want := "| Name | Value |\n" +
		"| --- | --- |\n" +
		"| wide\\|cell |  |\n" +
		"| short |  |\n"
	assert.Equal(t, want, ToMarkdown(table))
	assert.Equal(t, "", ToMarkdown(model.NewTable("empty")))
}

// ============================================================================
// Paper result
// ============================================================================

func TestParseTableName(t *testing.T) {
	tests := []struct {
		name  string
		paper string
		page  int
		index int
		ok    bool
	}{
		{"PMC123_456_page_3_table_1", "PMC123_456", 3, 1, true},
		{TableName("p", 10, 0), "p", 10, 0, true},
		{"p_page_x_table_1", "", 0, 0, false},
		{"no_structure", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paper, page, index, err := ParseTableName(tt.name)
			if !tt.ok {
				assert.True(t, errors.Is(err, ErrTableName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.paper, paper)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestBuildPaperResult(t *testing.T) {
	mk := func(name, text string) *model.Table {
		tbl := model.NewTable(name)
		tbl.AddRow(nil, model.Cell{Text: text, ColSpan: 1})
		return tbl
	}

	res, err := BuildPaperResult([]*model.Table{
		mk("p1_page_10_table_0", "ten"),
		mk("p1_page_2_table_0", "two-a"),
		mk("p1_page_2_table_1", "two-b"),
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.PaperID)
	require.Len(t, res.Result.Pages, 2)
	assert.Equal(t, 2, res.Result.Pages[0].Page)
	assert.Equal(t, [][]string{{"two-a"}}, res.Result.Pages[0].Tables[0].Rows)
	assert.Equal(t, [][]string{{"two-b"}}, res.Result.Pages[0].Tables[1].Rows)
	assert.Equal(t, 10, res.Result.Pages[1].Page)

	data, err := res.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"paper_id":"p1","result":{"pages":[
		{"page":2,"tables":[{"rows":[["two-a"]]},{"rows":[["two-b"]]}]},
		{"page":10,"tables":[{"rows":[["ten"]]}]}]}}`, string(data))

	_, err = BuildPaperResult([]*model.Table{mk("p1_page_1_table_0", "a"), mk("p2_page_1_table_0", "b")})
	assert.Error(t, err)

	_, err = BuildPaperResult([]*model.Table{mk("bad", "a")})
	assert.ErrorIs(t, err, ErrTableName)
}
