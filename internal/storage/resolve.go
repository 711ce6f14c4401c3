// Package storage decides where a screenshot is written and writes it.
//
// Resolve turns a base directory and file name into an absolute target and
// optionally checks that the target stays inside the base. The check compares
// string prefixes only: symbolic links are not followed and a sibling
// directory sharing the base's prefix (/tmp/shots-evil next to /tmp/shots)
// passes. It keeps casual traversal such as "../../etc/x.jpg" out and is not a
// security boundary.
//
// TranslateWSL rewrites a POSIX path from a WSL distribution into the UNC
// form the Windows host uses to reach the same file.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a resolved target leaves its base directory.
var ErrPathTraversal = errors.New("invalid path")

// ErrInvalidPathFormat is returned when a workspace path is not POSIX absolute.
var ErrInvalidPathFormat = errors.New("invalid path format")

// PersistError reports a failed directory creation or file write.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Resolve joins base and name into an absolute path.
//
// An empty base means the process working directory. An absolute name
// replaces the base entirely. When enforce is true the result must have the
// absolute base as a string prefix, otherwise ErrPathTraversal is returned.
func Resolve(base, name string, enforce bool) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty file name")
	}
	if base == "" {
		base = "."
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory %q: %w", base, err)
	}

	var target string
	if filepath.IsAbs(name) {
		target = filepath.Clean(name)
	} else {
		target, err = filepath.Abs(filepath.Join(absBase, name))
		if err != nil {
			return "", fmt.Errorf("failed to resolve %q: %w", name, err)
		}
	}

	if enforce && !strings.HasPrefix(target, absBase) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrPathTraversal, target, absBase)
	}
	return target, nil
}

// Write creates any missing parent directories and writes data to path.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistError{Op: "create directory", Path: dir, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &PersistError{Op: "write screenshot", Path: path, Err: err}
	}
	return nil
}
