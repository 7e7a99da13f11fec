//go:build ocr

package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// PageSegMode controls how Tesseract analyzes the layout of an image.
type PageSegMode = gosseract.PageSegMode

// Page segmentation modes used for table cells.
const (
	PSM_AUTO         = gosseract.PSM_AUTO
	PSM_SINGLE_BLOCK = gosseract.PSM_SINGLE_BLOCK
	PSM_SINGLE_LINE  = gosseract.PSM_SINGLE_LINE
	PSM_SPARSE_TEXT  = gosseract.PSM_SPARSE_TEXT
)

// Client wraps Tesseract for OCR operations. A Client serializes its calls
// and may be shared by goroutines.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a client with DefaultOptions.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a client with the given language and segmentation mode
func NewWithOptions(opts Options) (*Client, error) {
	c := &Client{client: gosseract.NewClient()}
	if opts.Language != "" {
		if err := c.SetLanguage(opts.Language); err != nil {
			c.Close()
			return nil, fmt.Errorf("setting OCR language %q: %w", opts.Language, err)
		}
	}
	if err := c.SetPageSegMode(opts.PageSegMode); err != nil {
		c.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
func (c *Client) SetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetPageSegMode(mode)
}
