// Package screenshot implements the capture-and-deliver operations exposed as
// MCP tools.
//
// Every operation captures the screen once, encodes it as JPEG and then does
// exactly one thing with the bytes: returns them, writes them to disk, or
// turns them into text. Nothing is kept between calls. Failures are reported
// through Outcome so the transport can render them as "failed: ..." strings.
// A failed Image outcome is the one the transport raises as a protocol error.
package screenshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"runtime"
	"time"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/config"
	"github.com/ironsheep/screenshot-mcp/internal/imaging"
	"github.com/ironsheep/screenshot-mcp/internal/ocr"
	"github.com/ironsheep/screenshot-mcp/internal/storage"
)

// Kind tags the payload carried by a successful Outcome.
type Kind int

const (
	// KindStatus is a bare "success".
	KindStatus Kind = iota
	// KindPath carries an absolute file path in Text.
	KindPath
	// KindBase64 carries the base64-encoded JPEG in Text.
	KindBase64
	// KindImage carries the raw JPEG in Image.
	KindImage
	// KindText carries a JSON document in Text.
	KindText
)

// Outcome is the result of one operation: a payload or a failure, never both.
type Outcome struct {
	Kind  Kind
	Text  string
	Image []byte
	Err   error
}

// Failed reports whether the operation failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message renders the outcome as the string returned to the caller.
func (o Outcome) Message() string {
	if o.Err != nil {
		return FailureText(o.Err)
	}
	return o.Text
}

// FailureText converts err into the "failed: ..." string reported to callers.
func FailureText(err error) string {
	switch {
	case errors.Is(err, storage.ErrPathTraversal):
		return "failed: invalid path"
	case errors.Is(err, storage.ErrInvalidPathFormat):
		return "failed: invalid path format"
	default:
		return "failed: " + err.Error()
	}
}

func success() Outcome { return Outcome{Kind: KindStatus, Text: "success"} }

func failure(err error) Outcome { return Outcome{Err: err} }

// Options configures a Service.
type Options struct {
	// OutputDir is the fixed directory used by SaveAndReturnPath.
	OutputDir string
	// DefaultName is used when SaveToPath or SaveToWSL get no name.
	DefaultName string
	// LatestName is used when SaveAndReturnPath gets no name.
	LatestName string

	// Containment per operation.
	SavePathContainment   config.Containment
	ReturnPathContainment config.Containment
	WSLContainment        config.Containment

	// Distro resolves the WSL distribution for SaveToWSL.
	Distro storage.DistroDetector
}

// OptionsFromConfig maps the server configuration onto service options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		OutputDir:             cfg.Output.Dir,
		DefaultName:           cfg.Output.Name,
		LatestName:            cfg.Output.LatestName,
		SavePathContainment:   cfg.Containment.SavePath,
		ReturnPathContainment: cfg.Containment.ReturnPath,
		WSLContainment:        cfg.Containment.WSL,
		Distro: storage.DistroDetector{
			Override: cfg.WSL.Distro,
			Default:  cfg.WSL.DefaultDistro,
			Timeout:  time.Duration(cfg.WSL.DetectTimeoutSeconds) * time.Second,
		},
	}
}

// Service runs the screenshot operations.
type Service struct {
	capturer capture.Capturer
	opts     Options
	log      *slog.Logger
	goos     string

	write   func(path string, data []byte) error
	extract func(img image.Image, language string) (*ocr.Result, error)
}

// New creates a Service. log must not be nil.
func New(c capture.Capturer, opts Options, log *slog.Logger) *Service {
	if opts.DefaultName == "" {
		opts.DefaultName = "screenshot.jpg"
	}
	if opts.LatestName == "" {
		opts.LatestName = "latest_screenshot.jpg"
	}
	return &Service{
		capturer: c,
		opts:     opts,
		log:      log,
		goos:     runtime.GOOS,
		write:    storage.Write,
		extract:  ocr.ExtractText,
	}
}

// WithLogger returns a shallow copy of s that logs through log.
func (s *Service) WithLogger(log *slog.Logger) *Service {
	cp := *s
	cp.log = log
	return &cp
}

// Shoot captures the screen and returns the encoded JPEG.
func (s *Service) Shoot() ([]byte, error) {
	img, err := capture.Grab(s.capturer)
	if err != nil {
		s.log.Error("screen capture failed", "error", err)
		return nil, err
	}

	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		s.log.Error("encoding failed", "error", err)
		return nil, err
	}

	if info, err := imaging.Describe(data); err == nil {
		s.log.Debug("screenshot encoded",
			"width", info.Width, "height", info.Height, "bytes", info.SizeBytes, "quality", imaging.Quality)
	}
	return data, nil
}

// Image captures and returns the raw JPEG. Capture and encoding errors are
// returned in Outcome.Err for the caller to raise.
func (s *Service) Image() Outcome {
	data, err := s.Shoot()
	if err != nil {
		return failure(err)
	}
	return Outcome{Kind: KindImage, Image: data}
}

// SaveToPath writes a screenshot to name inside dir. An empty dir is the
// working directory, an empty name the default name.
func (s *Service) SaveToPath(dir, name string) Outcome {
	if name == "" {
		name = s.opts.DefaultName
	}

	target, err := storage.Resolve(dir, name, s.opts.SavePathContainment.Enforced())
	if err != nil {
		s.log.Error("rejected save path", "dir", dir, "name", name, "error", err)
		return failure(err)
	}

	if err := s.shootAndWrite(target); err != nil {
		return failure(err)
	}
	return success()
}

// SaveAndReturnPath writes a screenshot into the configured output directory
// and returns its absolute path.
func (s *Service) SaveAndReturnPath(name string) Outcome {
	if name == "" {
		name = s.opts.LatestName
	}

	target, err := storage.Resolve(s.opts.OutputDir, name, s.opts.ReturnPathContainment.Enforced())
	if err != nil {
		s.log.Error("rejected save path", "dir", s.opts.OutputDir, "name", name, "error", err)
		return failure(err)
	}

	if err := s.shootAndWrite(target); err != nil {
		return failure(err)
	}
	return Outcome{Kind: KindPath, Text: target}
}

// SaveToWSL translates a POSIX directory inside the WSL distribution to its
// host UNC path and writes a screenshot there. The path is validated before
// anything is captured. Only a Windows host can reach the UNC share; elsewhere
// the call fails without writing.
func (s *Service) SaveToWSL(ctx context.Context, dir, name string) Outcome {
	if name == "" {
		name = s.opts.DefaultName
	}
	if err := storage.CheckWSLDir(dir); err != nil {
		s.log.Error("rejected wsl path", "dir", dir, "error", err)
		return failure(err)
	}
	if err := storage.CheckWSLHost(s.goos); err != nil {
		s.log.Error("wsl save unsupported on this host", "goos", s.goos, "error", err)
		return failure(err)
	}

	distro := s.opts.Distro.Lookup(ctx)
	if distro.Err != nil {
		s.log.Warn("wsl distro detection failed, using default", "distro", distro.Name, "error", distro.Err)
	} else {
		s.log.Debug("wsl distro resolved", "distro", distro.Name, "source", distro.Source)
	}

	target, err := storage.TranslateWSL(dir, name, distro.Name, s.opts.WSLContainment.Enforced())
	if err != nil {
		s.log.Error("rejected wsl path", "dir", dir, "name", name, "error", err)
		return failure(err)
	}

	if err := s.shootAndWrite(target); err != nil {
		return failure(err)
	}
	return success()
}

// Base64 captures and returns the JPEG as standard base64 text.
func (s *Service) Base64() Outcome {
	data, err := s.Shoot()
	if err != nil {
		return failure(err)
	}
	return Outcome{Kind: KindBase64, Text: base64.StdEncoding.EncodeToString(data)}
}

// Text captures the screen and runs OCR over it, returning the result as JSON.
func (s *Service) Text(language string) Outcome {
	if language == "" {
		language = "eng"
	}

	img, err := capture.Grab(s.capturer)
	if err != nil {
		s.log.Error("screen capture failed", "error", err)
		return failure(err)
	}

	result, err := s.extract(img, language)
	if err != nil {
		s.log.Error("text extraction failed", "language", language, "error", err)
		return failure(err)
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return failure(err)
	}
	s.log.Info("screen text extracted", "language", language, "words", len(result.Regions))
	return Outcome{Kind: KindText, Text: string(b)}
}

func (s *Service) shootAndWrite(target string) error {
	data, err := s.Shoot()
	if err != nil {
		return err
	}
	if err := s.write(target, data); err != nil {
		s.log.Error("failed to write screenshot", "path", target, "error", err)
		return err
	}
	s.log.Info("screenshot saved", "path", target, "bytes", len(data))
	return nil
}
