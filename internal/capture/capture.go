// Package capture grabs the current contents of the display.
package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no active display found")

// Error reports a failure of the screen-capture step itself.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "screenshot capture error: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Capturer produces one raster snapshot of the display.
type Capturer interface {
	Capture() (image.Image, error)
}

// Func adapts an ordinary function to the Capturer interface.
type Func func() (image.Image, error)

// Capture calls f.
func (f Func) Capture() (image.Image, error) {
	return f()
}

// Static returns a Capturer that always yields img.
func Static(img image.Image) Capturer {
	return Func(func() (image.Image, error) { return img, nil })
}

// Screen captures the primary display.
type Screen struct {
	// Display is the index of the display to capture. Zero is the primary display.
	Display int
}

// Capture grabs the configured display. Any failure, including a missing
// display, is returned as *Error.
func (s Screen) Capture() (img image.Image, err error) {
	// the platform backends can panic when no display server is reachable
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, &Error{Err: fmt.Errorf("capture panicked: %v", r)}
		}
	}()

	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, &Error{Err: ErrNoDisplay}
	}
	if s.Display < 0 || s.Display >= n {
		return nil, &Error{Err: fmt.Errorf("display %d not available (%d active)", s.Display, n)}
	}

	bounds := screenshot.GetDisplayBounds(s.Display)
	rgba, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to capture screen: %w", err)}
	}
	return rgba, nil
}

// Grab runs c and normalises failures to *Error.
func Grab(c Capturer) (image.Image, error) {
	img, err := c.Capture()
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &Error{Err: err}
	}
	if img == nil {
		return nil, &Error{Err: errors.New("capture returned no image")}
	}
	return img, nil
}
