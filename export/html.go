package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/tabstruct/model"
)

// ToHTML renders the table as an HTML <table>. Cells carry colspan and
// rowspan attributes only when the span is greater than 1. Cell text is
// written as stored and escaped by the renderer.
func ToHTML(t *model.Table) (string, error) {
	table := element(atom.Table)
	table.AppendChild(textNode("\n"))

	for _, row := range t.Rows {
		tr := element(atom.Tr)
		tr.AppendChild(textNode("\n"))
		for _, c := range row.Cells {
			td := element(atom.Td)
			if c.Span() > 1 {
				td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(c.Span())})
			}
			if c.RowSpan > 1 {
				td.Attr = append(td.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(c.RowSpan)})
			}
			td.AppendChild(textNode(c.Text))
			tr.AppendChild(td)
			tr.AppendChild(textNode("\n"))
		}
		table.AppendChild(tr)
		table.AppendChild(textNode("\n"))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, table); err != nil {
		return "", fmt.Errorf("rendering table %q: %w", t.Name, err)
	}
	buf.WriteString("\n")
	return buf.String(), nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// FromHTML parses every <table> element in r, in document order. A table
// is named by its id attribute, or "table_<n>" when it has none. Cell text
// is whitespace-normalized and header cells are read like data cells.
func FromHTML(r io.Reader) ([]*model.Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var tables []*model.Table
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			name := attr(n, "id")
			if name == "" {
				name = fmt.Sprintf("table_%d", len(tables))
			}
			tables = append(tables, parseTable(name, n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables, nil
}

// parseTable reads rows from thead, tbody, tfoot, and direct tr children.
func parseTable(name string, tableNode *html.Node) *model.Table {
	t := model.NewTable(name)
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.DataAtom == atom.Tr {
					t.AddRow(nil, parseRow(tr)...)
				}
			}
		case atom.Tr:
			t.AddRow(nil, parseRow(c)...)
		}
	}
	return t
}

func parseRow(tr *html.Node) []model.Cell {
	var cells []model.Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := model.Cell{
			Text:    strings.Join(strings.Fields(textContent(c)), " "),
			ColSpan: 1,
			RowSpan: 1,
		}
		if n, err := strconv.Atoi(attr(c, "colspan")); err == nil && n > 1 {
			cell.ColSpan = n
		}
		if n, err := strconv.Atoi(attr(c, "rowspan")); err == nil && n > 1 {
			cell.RowSpan = n
		}
		cells = append(cells, cell)
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
