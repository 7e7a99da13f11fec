package pipeline

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/rowmerge"
	"github.com/tsawler/tabstruct/tables"
)

// JobFile is the on-disk form of a Job. It is read as YAML, so JSON files
// are accepted too.
type JobFile struct {
	PaperID   string     `yaml:"paper_id"`
	MergeRows bool       `yaml:"merge_rows"`
	Pages     []PageFile `yaml:"pages"`
}

// PageFile describes one page. Image is a PNG or JPEG path, relative to the
// job file's directory.
type PageFile struct {
	Number int         `yaml:"page"`
	Width  float64     `yaml:"width"`
	Height float64     `yaml:"height"`
	Image  string      `yaml:"image,omitempty"`
	Tables []TableFile `yaml:"tables"`
}

// TableFile is one detected table region. Name is used only when the file
// describes a single table.
type TableFile struct {
	Name       string       `yaml:"name,omitempty"`
	Region     []float64    `yaml:"region,omitempty"`
	Detections []Detection  `yaml:"detections"`
	Scores     []ScoreEntry `yaml:"scores,omitempty"`
}

// Detection is one labeled box from the structure detector. Label is a
// label name such as "table row" or a quoted label id such as "2".
type Detection struct {
	Label string    `yaml:"label"`
	BBox  []float64 `yaml:"bbox"`
	Score float64   `yaml:"score,omitempty"`
}

// ScoreEntry is one classifier merge score
type ScoreEntry struct {
	Row1   int     `yaml:"row1"`
	Row2   int     `yaml:"row2"`
	Column int     `yaml:"column"`
	Score  float64 `yaml:"score"`
}

// LoadJobFile reads and decodes a job file
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("decoding job file %s: %w", path, err)
	}
	return &jf, nil
}

// Job converts the file to a Job. Detections scoring below minScore are
// dropped; a detection without a score is kept. Page images are loaded
// from baseDir.
func (jf *JobFile) Job(baseDir string, minScore float64) (*Job, error) {
	job := &Job{PaperID: jf.PaperID, MergeRows: jf.MergeRows}

	for _, pf := range jf.Pages {
		page := Page{Number: pf.Number, Width: pf.Width, Height: pf.Height}
		if pf.Image != "" {
			img, err := LoadImage(filepath.Join(baseDir, pf.Image))
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pf.Number, err)
			}
			page.Image = img
			if page.Width == 0 && page.Height == 0 {
				b := img.Bounds()
				page.Width, page.Height = float64(b.Dx()), float64(b.Dy())
			}
		}

		for k, tf := range pf.Tables {
			input, err := tf.Input(minScore)
			if err != nil {
				return nil, fmt.Errorf("page %d table %d: %w", pf.Number, k+1, err)
			}
			page.Tables = append(page.Tables, input)
		}
		job.Pages = append(job.Pages, page)
	}
	return job, nil
}

// LoadTableFile reads a single-table detection file
func LoadTableFile(path string) (*TableFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading detection file: %w", err)
	}
	var tf TableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("decoding detection file %s: %w", path, err)
	}
	return &tf, nil
}

// Input converts the file to a TableInput, dropping detections that score
// below minScore.
func (tf TableFile) Input(minScore float64) (TableInput, error) {
	var input TableInput

	if len(tf.Region) > 0 {
		r, err := rectFrom(tf.Region)
		if err != nil {
			return input, fmt.Errorf("region: %w", err)
		}
		input.Region = &r
	}

	for i, d := range tf.Detections {
		if d.Score > 0 && d.Score < minScore {
			continue
		}
		p, err := d.Primitive()
		if err != nil {
			return input, fmt.Errorf("detection %d: %w", i, err)
		}
		input.Primitives = append(input.Primitives, p)
	}

	for _, s := range tf.Scores {
		input.Scores = append(input.Scores, rowmerge.Score{Row1: s.Row1, Row2: s.Row2, Column: s.Column, Value: s.Score})
	}
	return input, nil
}

// Primitive converts the detection to a validated grid primitive
func (d Detection) Primitive() (tables.Primitive, error) {
	role, err := tables.ParseRole(d.Label)
	if err != nil {
		return tables.Primitive{}, err
	}
	r, err := rectFrom(d.BBox)
	if err != nil {
		return tables.Primitive{}, err
	}
	return tables.Primitive{Role: role, Bounds: r}, nil
}

func rectFrom(v []float64) (model.Rect, error) {
	if len(v) != 4 {
		return model.Rect{}, fmt.Errorf("box needs 4 coordinates, got %d", len(v))
	}
	return model.NewRect(v[0], v[1], v[2], v[3])
}

// LoadImage decodes a PNG or JPEG file
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return img, nil
}
