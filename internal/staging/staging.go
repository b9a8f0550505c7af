// Package staging holds uploaded bytes in a transient file for the lifetime of one extraction.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Area is a directory where uploads are staged. The zero value stages into os.TempDir().
type Area struct {
	Dir string
}

// NewArea returns an Area rooted at dir, creating it when missing.
func NewArea(dir string) (*Area, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
	}
	return &Area{Dir: dir}, nil
}

// With writes content to a new file named upload-<uuid>.<ext>, calls fn with its
// path and removes the file before returning, on every path. An error from fn
// takes precedence over a removal error.
func (a *Area) With(ext string, content []byte, fn func(path string) error) (err error) {
	path, err := a.write(ext, content)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("remove staged file: %w", rmErr)
		}
	}()
	return fn(path)
}

func (a *Area) write(ext string, content []byte) (string, error) {
	dir := a.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	name := "upload-" + uuid.NewString()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + filepath.Base(ext)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}
