// Package ocr extracts text from a captured screen using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Screens are
// converted to grayscale and contrast-boosted before recognition, which helps
// with anti-aliased UI text on colored backgrounds.
//
// # Prerequisites
//
// Tesseract and its language data must be installed, and the binary must be
// built with cgo and the tesseract build tag:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//   - go build -tags tesseract ./cmd/screenshot-mcp
//
// Other builds get a stub whose ExtractText returns ErrUnavailable; every
// other tool keeps working.
//
// # Supported Languages
//
// The default language is English ("eng"). Other Tesseract language codes such
// as "deu", "fra" or "chi_sim" work when their data files are installed.
package ocr
