package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Quality is the JPEG quality (0-100) applied to every screenshot.
const Quality = 60

// MimeType is the content type of EncodeJPEG output.
const MimeType = "image/jpeg"

// Opaque returns a copy of img in NRGBA form with every alpha value set to
// fully opaque. Color channels are kept as stored.
func Opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// EncodeJPEG converts img to opaque color and compresses it at Quality.
//
// Returns:
//   - []byte: The complete JPEG stream.
//   - error: Non-nil if img is empty or the encoder fails.
func EncodeJPEG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to encode")
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("cannot encode empty image (%dx%d)", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Opaque(img), imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
