//go:build !cgo || !tesseract

package ocr

import "image"

// ExtractText always fails with ErrUnavailable in builds without Tesseract.
func ExtractText(_ image.Image, _ string) (*Result, error) {
	return nil, ErrUnavailable
}
