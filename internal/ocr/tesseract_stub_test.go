//go:build !cgo || !tesseract

package ocr

import (
	"errors"
	"image"
	"testing"
)

func TestExtractText_Unavailable(t *testing.T) {
	_, err := ExtractText(image.NewRGBA(image.Rect(0, 0, 10, 10)), "eng")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
