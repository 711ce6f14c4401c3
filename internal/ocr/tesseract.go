//go:build cgo && tesseract

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// ExtractText runs Tesseract over img and returns the full text together with
// word-level bounding boxes.
//
// The image is preprocessed and handed to Tesseract as an in-memory PNG, so no
// temporary files are created.
func ExtractText(img image.Image, language string) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Preprocess(img)); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Return just text if boxes fail
		return &Result{FullText: text, Regions: []TextRegion{}, Language: language}, nil
	}

	origin := img.Bounds().Min
	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X + origin.X,
				Y1: box.Box.Min.Y + origin.Y,
				X2: box.Box.Max.X + origin.X,
				Y2: box.Box.Max.Y + origin.Y,
			},
		})
	}

	return &Result{FullText: text, Regions: regions, Language: language}, nil
}
