// Package storage persists uploaded scan images on local disk and
// hands back relative reference paths for the scans table.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors surfaced to handlers as 400-level responses.
var (
	// ErrMissingPayload indicates no image bytes were provided.
	ErrMissingPayload = errors.New("missing image payload")
	// ErrInvalidFormat indicates the filename extension is not on
	// the allow-list.
	ErrInvalidFormat = errors.New("invalid image format")
)

// allowedExt is the extension allow-list for uploaded images.
var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes image bytes beneath a single upload directory.
type ImageStore struct {
	dir string
}

// NewImageStore creates the upload directory if needed and returns a
// store rooted there.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

// AllowedFilename reports whether the filename carries an allowed
// image extension.
func AllowedFilename(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// SanitizeFilename reduces an untrusted filename hint to a safe
// storage key: base name only, unsafe runes replaced, lowercase
// extension preserved.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	stem = b.String()
	if stem == "" {
		stem = "image"
	}
	return stem + ext
}

// SaveBytes validates the filename hint, writes the bytes under a
// timestamp-prefixed sanitized name, and returns the relative
// reference path to store on the scan row.
func (s *ImageStore) SaveBytes(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", ErrMissingPayload
	}
	if !AllowedFilename(filename) {
		return "", ErrInvalidFormat
	}
	name := time.Now().UTC().Format("20060102_150405") + "_" + SanitizeFilename(filename)
	full := filepath.Join(s.dir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(s.dir), name)), nil
}
