package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskURLPrefix is the path the app serves the upload directory under.
const DiskURLPrefix = "/uploads/"

// Disk stores uploads in a local directory. Returned URLs are
// root-relative and resolve against the deployment origin.
type Disk struct {
	dir string
}

// NewDisk ensures dir exists and returns a Disk backend rooted there.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Name implements Backend.
func (d *Disk) Name() string { return "disk" }

// Dir returns the root directory.
func (d *Disk) Dir() string { return d.dir }

// path maps a key to a file below the root, rejecting keys that escape it.
func (d *Disk) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(d.dir, clean), nil
}

// Put writes body to a temporary file and renames it into place, so a
// partially written upload is never served.
func (d *Disk) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	dst, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("disk upload %s: %w", key, err)
	}
	return DiskURLPrefix + key, nil
}

// Delete removes the file stored under key. A missing file is not an error.
func (d *Disk) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disk delete %s: %w", key, err)
	}
	return nil
}
