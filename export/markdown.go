package export

import (
	"strings"

	"github.com/tsawler/tabstruct/model"
)

// ToMarkdown renders the table as a GitHub-flavored markdown table. The
// first row is used as the header. A cell spanning n columns is followed by
// n-1 empty cells so every row has the same width.
func ToMarkdown(t *model.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}

	cols := t.ColCount()
	var sb strings.Builder

	writeMarkdownRow(&sb, t.Rows[0], cols)
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows[1:] {
		writeMarkdownRow(&sb, row, cols)
	}
	return sb.String()
}

func writeMarkdownRow(sb *strings.Builder, row model.Row, cols int) {
	sb.WriteString("|")
	written := 0
	for _, c := range row.Cells {
		sb.WriteString(" " + escapeMarkdown(c.Text) + " |")
		for i := 1; i < c.Span(); i++ {
			sb.WriteString("  |")
		}
		written += c.Span()
	}
	for ; written < cols; written++ {
		sb.WriteString("  |")
	}
	sb.WriteString("\n")
}

// escapeMarkdown escapes pipes and flattens line breaks
func escapeMarkdown(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case '|':
			sb.WriteString("\\|")
		case '\n':
			sb.WriteString(" ")
		case '\r':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
