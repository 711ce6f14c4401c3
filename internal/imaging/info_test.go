package imaging

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestDescribe_JPEG(t *testing.T) {
	data, err := EncodeJPEG(createInMemoryImage(120, 80, color.RGBA{0, 128, 255, 255}))
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}

	info, err := Describe(data)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Width != 120 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 120x80", info.Width, info.Height)
	}
	if info.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", info.Format)
	}
	if info.SizeBytes != len(data) {
		t.Errorf("SizeBytes: got %d, want %d", info.SizeBytes, len(data))
	}
}

func TestDescribe_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createInMemoryImage(7, 9, color.White)); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}

	info, err := Describe(buf.Bytes())
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
}

func TestDescribe_Invalid(t *testing.T) {
	if _, err := Describe([]byte("not an image")); err == nil {
		t.Error("Describe should fail for invalid data")
	}
	if _, err := Describe(nil); err == nil {
		t.Error("Describe should fail for empty data")
	}
}
