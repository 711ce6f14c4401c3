package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
)

// ImageInfo contains metadata about an encoded image buffer.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the registered decoder, e.g. "jpeg".
	Format string `json:"format"`

	// SizeBytes is the length of the encoded buffer.
	SizeBytes int `json:"size_bytes"`
}

// Describe reads the header of an encoded image and reports its metadata
// without decoding the pixels.
func Describe(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: len(data),
	}, nil
}
