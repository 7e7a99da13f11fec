// Package export serializes reconstructed tables.
//
// # Formats
//
//   - Canonical JSON ([ToJSON], [FromJSON]): name, page size, and per-cell
//     content and spans. Round trips exactly.
//   - Structure JSON ([ToStructureJSON], [FromStructureJSON]): the canonical
//     content plus row ids and table, row, and cell bounds.
//   - HTML ([ToHTML], [FromHTML]): a <table> with colspan/rowspan attributes.
//   - CSV ([ToCSV], [WriteCSV]): one field per cell. Spans are lost.
//   - Markdown ([ToMarkdown]).
//   - Paper result ([BuildPaperResult]): the text rows of every table of a
//     paper grouped by page, keyed by names of the form
//     "<paper>_page_<n>_table_<k>".
package export
