package ocr

import (
	"errors"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("text extraction unavailable: built without tesseract support")

// contrastBoost is the relative contrast change applied before recognition.
const contrastBoost = 0.3

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the text found on the screen.
type Result struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions holds individual words. It may be empty even when FullText is
	// not, if bounding boxes could not be read.
	Regions []TextRegion `json:"regions"`

	// Language is the Tesseract language code used.
	Language string `json:"language"`
}

// Preprocess prepares a screen capture for recognition: grayscale, then a
// contrast boost. Dimensions are unchanged so word boxes map back to screen
// coordinates directly.
func Preprocess(img image.Image) *image.RGBA {
	return adjust.Contrast(effect.Grayscale(img), contrastBoost)
}
