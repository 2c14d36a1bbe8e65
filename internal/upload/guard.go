// Package upload validates incoming media before any work is done on it.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gotranscribe/internal/config"
)

var (
	// ErrTooLarge reports media above the configured size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType reports media whose extension is not accepted.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmpty reports a zero-byte upload.
	ErrEmpty = errors.New("file is empty")
)

// Guard enforces the size limit and extension allow-list.
type Guard struct {
	MaxBytes   int64
	Extensions []string
}

// NewGuard builds a guard from the [upload] config section.
func NewGuard(cfg *config.Config) Guard {
	return Guard{
		MaxBytes:   cfg.Upload.MaxBytes,
		Extensions: append([]string(nil), cfg.Upload.AllowedExtensions...),
	}
}

// Check validates a file name and size.
func (g Guard) Check(name string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrEmpty, filepath.Base(name))
	}
	if g.MaxBytes > 0 && size > g.MaxBytes {
		return fmt.Errorf("%w: File size exceeds %s limit", ErrTooLarge, FormatLimit(g.MaxBytes))
	}
	if len(g.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(g.Extensions, ext) {
			return fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedType, ext, strings.Join(g.Extensions, ", "))
		}
	}
	return nil
}

// CheckFile stats path and validates it.
func (g Guard) CheckFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), g.Check(path, info.Size())
}

// LimitReader caps r one byte past the limit so an oversized stream is
// detected by Copy without reading it entirely.
func (g Guard) LimitReader(r io.Reader) io.Reader {
	if g.MaxBytes <= 0 {
		return r
	}
	return io.LimitReader(r, g.MaxBytes+1)
}

// Copy streams r into dst, enforcing the size limit. It returns the number of
// bytes written.
func (g Guard) Copy(dst io.Writer, r io.Reader, name string) (int64, error) {
	if len(g.Extensions) > 0 {
		if err := g.Check(name, 1); err != nil {
			return 0, err
		}
	}
	n, err := io.Copy(dst, g.LimitReader(r))
	if err != nil {
		return n, fmt.Errorf("copy upload: %w", err)
	}
	return n, g.Check(name, n)
}

// FormatLimit renders a byte limit the way users see it: whole mebibytes as
// "25MB", anything else in bytes.
func FormatLimit(limit int64) string {
	const mib = 1024 * 1024
	if limit > 0 && limit%mib == 0 {
		return fmt.Sprintf("%dMB", limit/mib)
	}
	return fmt.Sprintf("%d bytes", limit)
}
