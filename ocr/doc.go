// Package ocr fills the text of table cells from the page image.
//
// Text recognition wraps the Tesseract OCR engine via gosseract and is only
// compiled in with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag, [New] returns [ErrOCRNotEnabled]. [CellFiller] accepts any
// [Recognizer], so it can be driven by another engine or a fake in tests.
//
// # Cell preprocessing
//
// Each cell is cropped from the image (clamped to the image bounds),
// converted to grayscale, contrast-enhanced around its mean intensity, and
// upscaled with Catmull-Rom interpolation when it is shorter than
// [CellFiller.MinCellHeight]. Recognized text is cleaned by [CleanText].
package ocr
