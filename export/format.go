package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabstruct/model"
)

// Format is a table serialization format
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JSON is the canonical {"name", "rows"} format.
	JSON
	// Structure is JSON with geometry and row ids.
	Structure
	// HTML is a <table> element.
	HTML
	// CSV drops span information.
	CSV
	// Markdown is a GitHub-flavored table; spans are dropped.
	Markdown
)

// Formats lists the known formats in help order
var Formats = []Format{JSON, Structure, HTML, CSV, Markdown}

// String returns the format's command-line name
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case Structure:
		return "structure"
	case HTML:
		return "html"
	case CSV:
		return "csv"
	case Markdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// Extension returns the file extension used for the format
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case Structure:
		return ".structure.json"
	case HTML:
		return ".html"
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	default:
		return ""
	}
}

// FormatNames returns the names of Formats, comma separated
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

// ParseFormat converts a format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "structure":
		return Structure, nil
	case "html", "htm":
		return HTML, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return Unknown, fmt.Errorf("unknown format %q (want one of %s)", name, FormatNames())
}

// Detect determines the format from a filename extension. Plain .json is
// reported as JSON; use DetectFromContent to tell it from Structure.
func Detect(filename string) Format {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".structure.json") {
		return Structure
	}
	switch filepath.Ext(lower) {
	case ".json":
		return JSON
	case ".html", ".htm":
		return HTML
	case ".csv":
		return CSV
	case ".md", ".markdown":
		return Markdown
	default:
		return Unknown
	}
}

// DetectFromContent inspects data to tell the readable formats apart:
// HTML, structure JSON (rows are objects), and canonical JSON (rows are
// arrays).
func DetectFromContent(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Unknown
	}
	if trimmed[0] == '<' {
		if isHTML(trimmed) {
			return HTML
		}
		return Unknown
	}
	if trimmed[0] != '{' {
		return Unknown
	}

	var probe struct {
		Rows []json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Unknown
	}
	for _, r := range probe.Rows {
		r = bytes.TrimSpace(r)
		if len(r) == 0 {
			continue
		}
		switch r[0] {
		case '{':
			return Structure
		case '[':
			return JSON
		}
	}
	// No rows; the structure decoder also keeps bounds
	return Structure
}

func isHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	upper := strings.ToUpper(string(head))
	for _, sig := range []string{"<!DOCTYPE HTML", "<HTML", "<TABLE", "<BODY"} {
		if strings.HasPrefix(upper, sig) {
			return true
		}
	}
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// Render serializes t in format f
func Render(t *model.Table, f Format) ([]byte, error) {
	switch f {
	case JSON:
		data, err := ToJSON(t)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case Structure:
		data, err := ToStructureJSON(t)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case HTML:
		s, err := ToHTML(t)
		return []byte(s), err
	case CSV:
		s, err := ToCSV(t)
		return []byte(s), err
	case Markdown:
		return []byte(ToMarkdown(t)), nil
	}
	return nil, fmt.Errorf("cannot render format %s", f)
}

// Read decodes the first table in data, which may be canonical JSON,
// structure JSON, or HTML.
func Read(data []byte) (*model.Table, error) {
	switch DetectFromContent(data) {
	case JSON:
		return FromJSON(data)
	case Structure:
		return FromStructureJSON(data)
	case HTML:
		tables, err := FromHTML(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(tables) == 0 {
			return nil, fmt.Errorf("no <table> element found")
		}
		return tables[0], nil
	}
	return nil, fmt.Errorf("unrecognized table format")
}
