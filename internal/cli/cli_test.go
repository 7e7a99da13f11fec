package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/model"
)

const detectionsYAML = `name: demo
detections:
  - {label: table row, bbox: [0, 0, 100, 20], score: 0.95}
  - {label: table row, bbox: [0, 20, 100, 40], score: 0.9}
  - {label: table column, bbox: [0, 0, 60, 40], score: 0.99}
  - {label: table column, bbox: [60, 0, 100, 40], score: 0.97}
  - {label: table column, bbox: [90, 0, 100, 40], score: 0.2}
`

const splitTableJSON = `{"name":"t","rows":[
  [{"content":"Alpha","colspan":1},{"content":"1","colspan":1}],
  [{"content":"Beta continuation","colspan":1},{"content":"","colspan":1}]
]}`

const splitScoresJSON = `[{"table":"t","row1":0,"row2":1,"column":0,"score":0.9}]`

// execute runs the command tree with args and returns what it wrote
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--quiet"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================================
// build
// ============================================================================

func TestBuildWritesStructure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "detections.yaml", detectionsYAML)

	out, err := execute(t, "build", path)
	require.NoError(t, err)

	table, err := export.FromStructureJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "demo", table.Name)
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, 2, table.ColCount(), "low-scoring column dropped")
	require.NotNil(t, table.Rows[1].Cells[1].Bounds)
	assert.Equal(t, model.Rect{Left: 60, Top: 20, Right: 100, Bottom: 40}, *table.Rows[1].Cells[1].Bounds)
}

func TestBuildMinScoreFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "detections.yaml", detectionsYAML)

	out, err := execute(t, "build", path, "--min-score", "0.1")
	require.NoError(t, err)

	table, err := export.FromStructureJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 3, table.ColCount())
}

func TestBuildNameFromFile(t *testing.T) {
	dir := t.TempDir()
	doc := strings.Replace(detectionsYAML, "name: demo\n", "", 1)
	path := writeFile(t, dir, "p1_page_2_table_1.yaml", doc)
	target := filepath.Join(dir, "out.json")

	out, err := execute(t, "build", path, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	table, err := export.FromStructureJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "p1_page_2_table_1", table.Name)
}

func TestBuildRejectsBadDetections(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "detections:\n  - {label: table row, bbox: [50, 0, 10, 20]}\n")

	_, err := execute(t, "build", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedGeometry)
}

// ============================================================================
// merge
// ============================================================================

func TestMergeCollapsesRows(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", splitScoresJSON)

	out, err := execute(t, "merge", table, "--scores", scores)
	require.NoError(t, err)

	merged, err := export.FromJSON([]byte(out))
	require.NoError(t, err)
	require.Equal(t, 1, merged.RowCount())
	assert.Equal(t, []string{"Alpha Beta continuation", "1"}, merged.Rows[0].Texts())
}

func TestMergeThresholdFromFlag(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", splitScoresJSON)

	out, err := execute(t, "merge", table, "--scores", scores, "--threshold", "0.9")
	require.NoError(t, err)

	merged, err := export.FromJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 2, merged.RowCount())
}

func TestMergeThresholdFromEnv(t *testing.T) {
	t.Setenv("TABSTRUCT_MERGE_THRESHOLD", "0.9")
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", splitScoresJSON)

	out, err := execute(t, "merge", table, "--scores", scores)
	require.NoError(t, err)

	merged, err := export.FromJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 2, merged.RowCount())
}

func TestMergeThresholdFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", splitScoresJSON)
	cfg := writeFile(t, dir, "tabstruct.yaml", "merge:\n  threshold: 0.9\n")

	out, err := execute(t, "merge", table, "--scores", scores, "--config", cfg)
	require.NoError(t, err)

	merged, err := export.FromJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 2, merged.RowCount())
}

func TestMergeRejectsCycle(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", `[
  {"table":"t","row1":0,"row2":1,"column":0,"score":1},
  {"table":"t","row1":0,"row2":1,"column":1,"score":1},
  {"table":"t","row1":1,"row2":0,"column":0,"score":1},
  {"table":"t","row1":1,"row2":0,"column":1,"score":1}
]`)

	_, err := execute(t, "merge", table, "--scores", scores)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidMergeGraph)
}

func TestMergeWarningsReachConfiguredLog(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "tabstruct.log")
	t.Setenv("TABSTRUCT_LOG_OUTPUT", logFile)
	t.Setenv("TABSTRUCT_LOG_FORMAT", "json")

	table := writeFile(t, dir, "t.json", `{"name":"t","rows":[
  [{"content":"a","colspan":1}],
  [{"content":"b","colspan":1}],
  [{"content":"c","colspan":1}]
]}`)
	scores := writeFile(t, dir, "scores.json", `[
  {"table":"t","row1":0,"row2":1,"column":0,"score":1},
  {"table":"t","row1":0,"row2":2,"column":0,"score":1}
]`)

	_, err := execute(t, "merge", table, "--scores", scores)
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"code":"ambiguous_merge_source"`)
}

func TestMergeRequiresScores(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)

	_, err := execute(t, "merge", table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scores")
}

func TestInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	scores := writeFile(t, dir, "scores.json", splitScoresJSON)

	_, err := execute(t, "merge", table, "--scores", scores, "--threshold", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge.threshold")
}

// ============================================================================
// candidates and export
// ============================================================================

func TestCandidates(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)

	out, err := execute(t, "candidates", table)
	require.NoError(t, err)
	assert.Contains(t, out, `"line1": "Alpha"`)
	assert.Contains(t, out, `"line2": "Beta continuation"`)
	assert.NotContains(t, out, `"column": 1`)
}

func TestExportFormats(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)

	tests := []struct {
		format string
		want   string
	}{
		{"csv", "Alpha,1\nBeta continuation,\n"},
		{"html", "<td>Beta continuation</td>"},
		{"markdown", "| Alpha | 1 |"},
		{"json", `"content":"Alpha"`},
		{"structure", `"id": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, "export", table, "--format", tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)

	_, err := execute(t, "export", table, "-f", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestExportFormatFromOutputName(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "t.json", splitTableJSON)
	target := filepath.Join(dir, "t.csv")

	_, err := execute(t, "export", table, "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Alpha,1\nBeta continuation,\n", string(data))
}

// ============================================================================
// run
// ============================================================================

const jobYAML = `paper_id: P1
merge_rows: true
pages:
  - page: 2
    width: 600
    height: 800
    tables:
      - region: [10, 10, 110, 50]
        detections:
          - {label: table row, bbox: [0, 0, 100, 20]}
          - {label: table row, bbox: [0, 20, 100, 40]}
          - {label: table column, bbox: [0, 0, 100, 40]}
      - detections:
          - {label: table row, bbox: [0, 0, 100, 20]}
          - {label: table row, bbox: [0, 20, 100, 40]}
          - {label: table column, bbox: [0, 0, 100, 40]}
        scores:
          - {row1: 0, row2: 1, column: 0, score: 1}
          - {row1: 1, row2: 0, column: 0, score: 1}
`

func TestRunWritesResults(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.yaml", jobYAML)
	outDir := filepath.Join(dir, "out")

	_, err := execute(t, "run", job, "--no-ocr", "-o", outDir)
	require.Error(t, err, "second table has a merge cycle")
	assert.Contains(t, err.Error(), "1 of 2 tables failed")

	_, err = os.Stat(filepath.Join(outDir, "P1_page_2_table_1.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "P1_page_2_table_2.json"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(outDir, "P1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paper_id": "P1"`)
}

func TestRunPrintsPaperResult(t *testing.T) {
	dir := t.TempDir()
	doc := jobYAML[:strings.Index(jobYAML, "      - detections:")]
	job := writeFile(t, dir, "job.yaml", doc)

	out, err := execute(t, "run", job, "--no-ocr")
	require.NoError(t, err)

	var paper export.PaperResult
	require.NoError(t, json.Unmarshal([]byte(out), &paper))
	assert.Equal(t, "P1", paper.PaperID)
	require.Len(t, paper.Result.Pages, 1)
	assert.Equal(t, 2, paper.Result.Pages[0].Page)
	require.Len(t, paper.Result.Pages[0].Tables, 1)
	assert.Equal(t, [][]string{{""}, {""}}, paper.Result.Pages[0].Tables[0].Rows)
}
