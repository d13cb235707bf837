package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// File stores one file per key under a root directory.
// Writes go to a temp file first and are renamed into place.
type File struct {
	root string
	perm os.FileMode
	mu   sync.Mutex
}

var _ Storage = (*File)(nil)

// FileOption configures File storage.
type FileOption func(*File)

// WithFilePermissions sets the mode of created files. Directories get the execute bits added.
func WithFilePermissions(perm os.FileMode) FileOption {
	return func(f *File) {
		f.perm = perm
	}
}

// NewFile creates a file storage rooted at dir, creating it if needed.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}
	f := &File{root: filepath.Clean(dir), perm: 0o600}
	for _, opt := range opts {
		opt(f)
	}
	if err := os.MkdirAll(f.root, f.perm|0o700); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return f, nil
}

// path maps a key to a file name. Keys are escaped so namespace separators
// and other special characters can never leave the root directory.
func (f *File) path(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	return filepath.Join(f.root, url.PathEscape(key)+".json"), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return data, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := tmp.Chmod(f.perm); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}
