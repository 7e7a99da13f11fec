package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Options configures a Tesseract client
type Options struct {
	// Language(s) to recognize, "+" separated (e.g. "eng+deu")
	Language string

	// Segmentation mode; table cells read best as a single block
	PageSegMode PageSegMode
}

// DefaultOptions returns English recognition in single-block mode
func DefaultOptions() Options {
	return Options{
		Language:    "eng",
		PageSegMode: PSM_SINGLE_BLOCK,
	}
}
