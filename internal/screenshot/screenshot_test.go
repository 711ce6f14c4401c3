package screenshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/config"
	"github.com/ironsheep/screenshot-mcp/internal/imaging"
	"github.com/ironsheep/screenshot-mcp/internal/logging"
	"github.com/ironsheep/screenshot-mcp/internal/ocr"
	"github.com/ironsheep/screenshot-mcp/internal/storage"
)

// fixedRaster is the deterministic "screen" used by every test.
func fixedRaster() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 5), 128, 255})
		}
	}
	return img
}

func expectedJPEG(t *testing.T) []byte {
	t.Helper()
	data, err := imaging.EncodeJPEG(fixedRaster())
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	return data
}

// countingCapturer records how often the screen was grabbed.
type countingCapturer struct {
	img   image.Image
	err   error
	calls int
}

func (c *countingCapturer) Capture() (image.Image, error) {
	c.calls++
	return c.img, c.err
}

func newTestService(t *testing.T, c capture.Capturer, mutate func(*Options)) *Service {
	t.Helper()
	opts := OptionsFromConfig(config.Default())
	opts.OutputDir = t.TempDir()
	opts.Distro = storage.DistroDetector{
		Default: "Ubuntu",
		Getenv:  func(string) string { return "" },
		List: func(context.Context) ([]byte, error) {
			return nil, errors.New("wsl.exe not found")
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	s := New(c, opts, logging.Discard())
	// WSL translation is exercised as if running on the Windows host
	s.goos = "windows"
	return s
}

func failingCapturer() *countingCapturer {
	return &countingCapturer{err: errors.New("permission denied")}
}

func TestImage(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)

	out := s.Image()
	if out.Failed() {
		t.Fatalf("Image failed: %v", out.Err)
	}
	if out.Kind != KindImage {
		t.Errorf("Kind: got %v, want KindImage", out.Kind)
	}
	if !bytes.Equal(out.Image, expectedJPEG(t)) {
		t.Error("image bytes differ from the encoded raster")
	}
}

func TestImage_CaptureError(t *testing.T) {
	s := newTestService(t, failingCapturer(), nil)

	out := s.Image()
	var ce *capture.Error
	if !errors.As(out.Err, &ce) {
		t.Fatalf("expected *capture.Error, got %v", out.Err)
	}
	if out.Image != nil {
		t.Error("a failed outcome must not carry image bytes")
	}
}

func TestSaveToPath_WritesEncodedImage(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	base := filepath.Join(t.TempDir(), "shots")

	out := s.SaveToPath(base, "a.jpg")
	if out.Message() != "success" {
		t.Fatalf("Message: got %q, want success", out.Message())
	}

	got, err := os.ReadFile(filepath.Join(base, "a.jpg"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if !bytes.Equal(got, expectedJPEG(t)) {
		t.Error("file contents differ from the encoded raster")
	}
}

func TestSaveToPath_DefaultName(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	base := t.TempDir()

	if out := s.SaveToPath(base, ""); out.Failed() {
		t.Fatalf("SaveToPath failed: %v", out.Err)
	}
	if _, err := os.Stat(filepath.Join(base, "screenshot.jpg")); err != nil {
		t.Errorf("default name not used: %v", err)
	}
}

func TestSaveToPath_Traversal(t *testing.T) {
	names := []string{"../../x.jpg", "../../etc/evil.jpg", "/etc/evil.jpg"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			c := &countingCapturer{img: fixedRaster()}
			s := newTestService(t, c, nil)
			root := t.TempDir()
			base := filepath.Join(root, "a", "shots")

			out := s.SaveToPath(base, name)
			if out.Message() != "failed: invalid path" {
				t.Errorf("Message: got %q, want failed: invalid path", out.Message())
			}
			if c.calls != 0 {
				t.Errorf("rejected path should not capture, got %d captures", c.calls)
			}
			if _, err := os.Stat(base); !os.IsNotExist(err) {
				t.Error("rejected path must not create directories")
			}
		})
	}
}

func TestSaveToPath_ContainmentOff(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), func(o *Options) {
		o.SavePathContainment = config.ContainmentOff
	})
	root := t.TempDir()
	base := filepath.Join(root, "inner")

	if out := s.SaveToPath(base, "../outside.jpg"); out.Failed() {
		t.Fatalf("SaveToPath failed: %v", out.Err)
	}
	if _, err := os.Stat(filepath.Join(root, "outside.jpg")); err != nil {
		t.Errorf("file not written outside base: %v", err)
	}
}

func TestSaveToPath_CaptureError(t *testing.T) {
	s := newTestService(t, failingCapturer(), nil)
	base := t.TempDir()

	out := s.SaveToPath(base, "a.jpg")
	if !strings.HasPrefix(out.Message(), "failed: screenshot capture error") {
		t.Errorf("Message: got %q", out.Message())
	}
	if _, err := os.Stat(filepath.Join(base, "a.jpg")); !os.IsNotExist(err) {
		t.Error("no file should be written when capture fails")
	}
}

func TestSaveToPath_WriteError(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "blocker"), []byte("x"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	out := s.SaveToPath(base, "blocker/a.jpg")
	if !strings.HasPrefix(out.Message(), "failed: create directory") {
		t.Errorf("Message: got %q", out.Message())
	}
}

func TestSaveAndReturnPath(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)

	out := s.SaveAndReturnPath("")
	if out.Failed() {
		t.Fatalf("SaveAndReturnPath failed: %v", out.Err)
	}
	if out.Kind != KindPath {
		t.Errorf("Kind: got %v, want KindPath", out.Kind)
	}

	path := out.Message()
	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}
	if filepath.Base(path) != "latest_screenshot.jpg" {
		t.Errorf("default name not used: %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("returned path does not exist: %v", err)
	}
	if !bytes.Equal(got, expectedJPEG(t)) {
		t.Error("file contents differ from the encoded raster")
	}
}

func TestSaveAndReturnPath_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet")
	s := newTestService(t, capture.Static(fixedRaster()), func(o *Options) { o.OutputDir = dir })

	out := s.SaveAndReturnPath("named.jpg")
	if out.Message() != filepath.Join(dir, "named.jpg") {
		t.Errorf("Message: got %q", out.Message())
	}
}

func TestSaveAndReturnPath_PathOrFailure(t *testing.T) {
	tests := []struct {
		name     string
		capturer capture.Capturer
		file     string
	}{
		{"ok", capture.Static(fixedRaster()), "ok.jpg"},
		{"capture error", failingCapturer(), "x.jpg"},
		{"traversal", capture.Static(fixedRaster()), "../../x.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, tt.capturer, nil)
			msg := s.SaveAndReturnPath(tt.file).Message()

			isFailure := strings.HasPrefix(msg, "failed:")
			isPath := filepath.IsAbs(msg)
			if isFailure == isPath {
				t.Fatalf("result must be exactly one of path or failure: %q", msg)
			}
			if isPath {
				if _, err := os.Stat(msg); err != nil {
					t.Errorf("returned path does not exist: %v", err)
				}
			}
		})
	}
}

func TestSaveToWSL_InvalidFormat(t *testing.T) {
	c := &countingCapturer{img: fixedRaster()}
	listed := false
	s := newTestService(t, c, func(o *Options) {
		o.Distro.List = func(context.Context) ([]byte, error) {
			listed = true
			return []byte("Ubuntu\n"), nil
		}
	})

	for _, dir := range []string{"home/me", `C:\shots`, ""} {
		out := s.SaveToWSL(context.Background(), dir, "a.jpg")
		if out.Message() != "failed: invalid path format" {
			t.Errorf("%q: got %q, want failed: invalid path format", dir, out.Message())
		}
	}
	if c.calls != 0 {
		t.Errorf("invalid path should not capture, got %d captures", c.calls)
	}
	if listed {
		t.Error("invalid path should not run distro detection")
	}
}

func TestSaveToWSL_NonWindowsHost(t *testing.T) {
	c := &countingCapturer{img: fixedRaster()}
	listed := false
	s := newTestService(t, c, func(o *Options) {
		o.Distro.List = func(context.Context) ([]byte, error) {
			listed = true
			return []byte("Ubuntu\n"), nil
		}
	})
	s.goos = "linux"
	written := false
	s.write = func(string, []byte) error {
		written = true
		return nil
	}

	out := s.SaveToWSL(context.Background(), "/home/me/shots", "a.jpg")
	if !errors.Is(out.Err, storage.ErrWSLHostOnly) {
		t.Fatalf("Err: got %v, want ErrWSLHostOnly", out.Err)
	}
	if !strings.HasPrefix(out.Message(), "failed: wsl paths are only reachable from a windows host") {
		t.Errorf("Message: got %q", out.Message())
	}
	if c.calls != 0 || listed || written {
		t.Errorf("unsupported host should not capture (%d), detect (%v) or write (%v)", c.calls, listed, written)
	}

	// a malformed path still reports the format error first
	if got := s.SaveToWSL(context.Background(), "home/me", "a.jpg").Message(); got != "failed: invalid path format" {
		t.Errorf("malformed path: got %q", got)
	}
}

func TestSaveToWSL_WritesTranslatedPath(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)

	var gotPath string
	var gotData []byte
	s.write = func(path string, data []byte) error {
		gotPath, gotData = path, data
		return nil
	}

	out := s.SaveToWSL(context.Background(), "/home/me/shots", "")
	if out.Message() != "success" {
		t.Fatalf("Message: got %q", out.Message())
	}
	// detection fails in tests, so the default distro is used
	if gotPath != `\\wsl$\Ubuntu\home\me\shots\screenshot.jpg` {
		t.Errorf("path: got %s", gotPath)
	}
	if !bytes.Equal(gotData, expectedJPEG(t)) {
		t.Error("written bytes differ from the encoded raster")
	}
}

func TestSaveToWSL_DetectedDistro(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), func(o *Options) {
		o.Distro.List = func(context.Context) ([]byte, error) { return []byte("Debian\n"), nil }
	})
	var gotPath string
	s.write = func(path string, _ []byte) error {
		gotPath = path
		return nil
	}

	s.SaveToWSL(context.Background(), "/tmp", "a.jpg")
	if gotPath != `\\wsl$\Debian\tmp\a.jpg` {
		t.Errorf("path: got %s", gotPath)
	}
}

func TestSaveToWSL_StrictContainment(t *testing.T) {
	c := &countingCapturer{img: fixedRaster()}
	s := newTestService(t, c, func(o *Options) { o.WSLContainment = config.ContainmentStrict })

	out := s.SaveToWSL(context.Background(), "/tmp", "../etc/a.jpg")
	if out.Message() != "failed: invalid path" {
		t.Errorf("Message: got %q", out.Message())
	}
	if c.calls != 0 {
		t.Error("rejected path should not capture")
	}
}

func TestSaveToWSL_WriteError(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	s.write = func(path string, _ []byte) error {
		return &storage.PersistError{Op: "write screenshot", Path: path, Err: errors.New("network path not found")}
	}

	out := s.SaveToWSL(context.Background(), "/tmp", "a.jpg")
	if out.Message() != "failed: write screenshot: network path not found" {
		t.Errorf("Message: got %q", out.Message())
	}
}

func TestBase64_MatchesEncodedImage(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)

	out := s.Base64()
	if out.Failed() {
		t.Fatalf("Base64 failed: %v", out.Err)
	}
	decoded, err := base64.StdEncoding.DecodeString(out.Message())
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if !bytes.Equal(decoded, expectedJPEG(t)) {
		t.Error("decoded bytes differ from the encoded raster")
	}
}

func TestBase64_CaptureError(t *testing.T) {
	s := newTestService(t, failingCapturer(), nil)
	msg := s.Base64().Message()
	if msg != "failed: screenshot capture error: permission denied" {
		t.Errorf("Message: got %q", msg)
	}
}

func TestText(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)

	var gotLang string
	s.extract = func(img image.Image, language string) (*ocr.Result, error) {
		gotLang = language
		if img.Bounds().Dx() != 64 {
			t.Errorf("OCR should see the raw raster, got width %d", img.Bounds().Dx())
		}
		return &ocr.Result{FullText: "hello", Regions: []ocr.TextRegion{{Text: "hello"}}, Language: language}, nil
	}

	out := s.Text("")
	if out.Failed() {
		t.Fatalf("Text failed: %v", out.Err)
	}
	if gotLang != "eng" {
		t.Errorf("language: got %s, want eng", gotLang)
	}

	var r ocr.Result
	if err := json.Unmarshal([]byte(out.Message()), &r); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if r.FullText != "hello" {
		t.Errorf("FullText: got %q", r.FullText)
	}
}

func TestText_Unavailable(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	s.extract = func(image.Image, string) (*ocr.Result, error) { return nil, ocr.ErrUnavailable }

	if msg := s.Text("eng").Message(); !strings.HasPrefix(msg, "failed: text extraction unavailable") {
		t.Errorf("Message: got %q", msg)
	}
}

func TestFailureText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{storage.ErrPathTraversal, "failed: invalid path"},
		{errors.Join(errors.New("ctx"), storage.ErrPathTraversal), "failed: invalid path"},
		{storage.ErrInvalidPathFormat, "failed: invalid path format"},
		{&capture.Error{Err: capture.ErrNoDisplay}, "failed: screenshot capture error: no active display found"},
		{errors.New("disk full"), "failed: disk full"},
	}
	for _, tt := range tests {
		if got := FailureText(tt.err); got != tt.want {
			t.Errorf("FailureText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestWithLogger_DoesNotMutate(t *testing.T) {
	s := newTestService(t, capture.Static(fixedRaster()), nil)
	orig := s.log
	cp := s.WithLogger(logging.Discard())
	if s.log != orig {
		t.Error("WithLogger must not change the receiver")
	}
	if cp == s {
		t.Error("WithLogger should return a copy")
	}
}
