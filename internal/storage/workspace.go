package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// UNCPrefix is the host-side root of every WSL distribution.
const UNCPrefix = `\\wsl$\`

// TranslateWSL maps a POSIX absolute directory inside distro, plus a file
// name, to its UNC path on the Windows host.
//
//	TranslateWSL("/home/me/shots", "a.jpg", "Ubuntu")
//	// \\wsl$\Ubuntu\home\me\shots\a.jpg
//
// With enforce set, a name containing separators or ".." is rejected with
// ErrPathTraversal.
func TranslateWSL(dir, name, distro string, enforce bool) (string, error) {
	if err := CheckWSLDir(dir); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty file name")
	}
	if enforce && escapesDir(name) {
		return "", fmt.Errorf("%w: %q leaves %s", ErrPathTraversal, name, dir)
	}

	parts := []string{distro}
	for _, seg := range strings.Split(dir, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	parts = append(parts, strings.ReplaceAll(name, "/", `\`))

	return UNCPrefix + strings.Join(parts, `\`), nil
}

// ErrWSLHostOnly is returned when a WSL path is used outside a Windows host,
// where the \\wsl$ share does not exist.
var ErrWSLHostOnly = errors.New("wsl paths are only reachable from a windows host")

// CheckWSLHost reports ErrWSLHostOnly unless goos is "windows".
func CheckWSLHost(goos string) error {
	if goos != "windows" {
		return fmt.Errorf("%w (running on %s)", ErrWSLHostOnly, goos)
	}
	return nil
}

// CheckWSLDir reports ErrInvalidPathFormat unless dir is POSIX absolute.
func CheckWSLDir(dir string) error {
	if !strings.HasPrefix(dir, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPathFormat, dir)
	}
	return nil
}

func escapesDir(name string) bool {
	if strings.ContainsAny(name, `/\`) {
		return true
	}
	return name == ".." || name == "."
}

// DistroSource records which branch of the lookup produced a distro name.
type DistroSource string

const (
	SourceOverride DistroSource = "override"
	SourceEnv      DistroSource = "env"
	SourceDetected DistroSource = "detected"
	SourceDefault  DistroSource = "default"
)

// DistroLookup is the outcome of DistroDetector.Lookup. Err holds the
// detection failure that caused a fallback to the default, if any.
type DistroLookup struct {
	Name   string
	Source DistroSource
	Err    error
}

// DistroDetector finds the WSL distribution name.
type DistroDetector struct {
	// Override, when set, is returned without any detection.
	Override string
	// Default is used when nothing else yields a name.
	Default string
	// Timeout bounds the detection command.
	Timeout time.Duration
	// Getenv reads the environment; nil means os.Getenv.
	Getenv func(string) string
	// List runs the listing command; nil means ListDistros.
	List func(ctx context.Context) ([]byte, error)
}

// Lookup resolves the distro name. It never fails: every problem ends in the
// Default branch with Err describing why.
func (d DistroDetector) Lookup(ctx context.Context) DistroLookup {
	if d.Override != "" {
		return DistroLookup{Name: d.Override, Source: SourceOverride}
	}

	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if name := strings.TrimSpace(getenv("WSL_DISTRO_NAME")); name != "" {
		return DistroLookup{Name: name, Source: SourceEnv}
	}

	list := d.List
	if list == nil {
		list = ListDistros
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	out, err := list(ctx)
	if err != nil {
		return DistroLookup{Name: d.Default, Source: SourceDefault, Err: fmt.Errorf("detect distro: %w", err)}
	}
	name, err := ParseDistroList(out)
	if err != nil {
		return DistroLookup{Name: d.Default, Source: SourceDefault, Err: err}
	}
	return DistroLookup{Name: name, Source: SourceDetected}
}

// ListDistros runs `wsl.exe -l -q` and returns its raw output.
func ListDistros(ctx context.Context) ([]byte, error) {
	bin, err := exec.LookPath("wsl.exe")
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, bin, "-l", "-q").Output()
}

// ParseDistroList returns the first distro name in wsl.exe output. The
// command writes UTF-16LE; plain UTF-8 is accepted too.
func ParseDistroList(out []byte) (string, error) {
	text := string(out)
	if bytes.IndexByte(out, 0) >= 0 {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(out)
		if err != nil {
			return "", fmt.Errorf("decode distro list: %w", err)
		}
		text = string(decoded)
	}

	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(strings.Trim(line, "\x00\ufeff\r"))
		if name != "" {
			return name, nil
		}
	}
	return "", errors.New("no WSL distributions listed")
}
