package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/tabstruct/model"
)

// Recognizer turns an encoded image into text. *Client implements it.
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// CellFiller recognizes the text of every cell of a table
type CellFiller struct {
	Recognizer Recognizer

	// Contrast factor applied around the mean gray level; 1 leaves the
	// crop unchanged
	Contrast float64

	// Crops shorter than this many pixels are upscaled to it; 0 disables
	// upscaling
	MinCellHeight int

	// When set, each preprocessed crop is written here as
	// row_<i>_cell_<j>.png
	DebugDir string

	Logger zerolog.Logger
}

// NewCellFiller creates a filler with default preprocessing
func NewCellFiller(r Recognizer) *CellFiller {
	return &CellFiller{
		Recognizer:    r,
		Contrast:      1.8,
		MinCellHeight: 32,
		Logger:        zerolog.Nop(),
	}
}

// FillTable sets the text of each cell of t from the matching region of img.
// Cells without bounds are left as they are. A cell whose recognition fails
// gets empty text and an ocr_failed warning; the remaining cells are still
// processed. The context is checked before each cell.
func (f *CellFiller) FillTable(ctx context.Context, img image.Image, t *model.Table) ([]model.Warning, error) {
	var warnings []model.Warning

	for i := range t.Rows {
		row := &t.Rows[i]
		for j := range row.Cells {
			if err := ctx.Err(); err != nil {
				return warnings, err
			}
			cell := &row.Cells[j]
			if cell.Bounds == nil {
				continue
			}

			text, err := f.recognizeCell(img, *cell.Bounds, i, j)
			if err != nil {
				cell.Text = ""
				warnings = append(warnings, model.Warning{
					Code:    model.WarnOCRFailed,
					Message: fmt.Sprintf("cell %d: %v", j, err),
					Table:   t.Name,
					RowID:   row.ID,
				})
				f.Logger.Warn().Err(err).Str("table", t.Name).Int("row", row.ID).Int("cell", j).Msg("cell text extraction failed")
				continue
			}
			cell.Text = text
		}
	}

	f.Logger.Debug().Str("table", t.Name).Int("rows", t.RowCount()).Int("failed", len(warnings)).Msg("filled cell text")
	return warnings, nil
}

// RecognizeRegion returns the cleaned text of one region of img, such as a
// whole table when its structure could not be recovered.
func (f *CellFiller) RecognizeRegion(img image.Image, region model.Rect) (string, error) {
	return f.recognizeCell(img, region, -1, -1)
}

func (f *CellFiller) recognizeCell(img image.Image, bounds model.Rect, row, col int) (string, error) {
	if f.Recognizer == nil {
		return "", ErrOCRNotEnabled
	}

	crop := CropRect(bounds, img.Bounds())
	if crop.Empty() {
		return "", fmt.Errorf("cell %s lies outside the image", bounds)
	}

	prepared := f.Prepare(img, crop)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return "", fmt.Errorf("encoding cell image: %w", err)
	}

	if f.DebugDir != "" && row >= 0 {
		name := filepath.Join(f.DebugDir, fmt.Sprintf("row_%d_cell_%d.png", row, col))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			f.Logger.Debug().Err(err).Str("path", name).Msg("could not save cell image")
		}
	}

	text, err := f.Recognizer.RecognizeImage(buf.Bytes())
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// CropRect converts detection-space bounds to a pixel rectangle clamped to
// the image bounds. Fractional edges are widened outward.
func CropRect(r model.Rect, bounds image.Rectangle) image.Rectangle {
	px := image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	)
	return px.Intersect(bounds)
}

// Prepare crops img to r and returns the grayscale, contrast-enhanced and,
// when needed, upscaled image that is sent to the recognizer.
func (f *CellFiller) Prepare(img image.Image, r image.Rectangle) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(gray, gray.Bounds(), img, r.Min, draw.Src)

	if f.Contrast > 0 && f.Contrast != 1 {
		enhanceContrast(gray, f.Contrast)
	}

	if f.MinCellHeight > 0 && gray.Bounds().Dy() < f.MinCellHeight {
		scale := float64(f.MinCellHeight) / float64(gray.Bounds().Dy())
		w := int(float64(gray.Bounds().Dx())*scale + 0.5)
		if w < 1 {
			w = 1
		}
		scaled := image.NewGray(image.Rect(0, 0, w, f.MinCellHeight))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), draw.Src, nil)
		gray = scaled
	}
	return gray
}

// enhanceContrast scales each pixel's distance from the mean gray level by factor
func enhanceContrast(img *image.Gray, factor float64) {
	if len(img.Pix) == 0 {
		return
	}
	sum := 0
	for _, p := range img.Pix {
		sum += int(p)
	}
	mean := math.Round(float64(sum) / float64(len(img.Pix)))

	for i, p := range img.Pix {
		v := mean + (float64(p)-mean)*factor
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		img.Pix[i] = uint8(v + 0.5)
	}
}

// CleanText removes table rule characters picked up as '|', trims
// surrounding whitespace, and normalizes the text to NFC.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "|", "")
	s = strings.TrimSpace(s)
	return norm.NFC.String(s)
}
