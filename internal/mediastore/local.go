package mediastore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Local stores files in dir and addresses them under urlPath ("/media/").
type Local struct {
	dir     string
	urlPath string
}

func NewLocal(dir, urlPath string) *Local {
	return &Local{dir: dir, urlPath: urlPath}
}

// Dir returns the storage directory.
func (l *Local) Dir() string {
	return l.dir
}

// Path returns the file path for name.
func (l *Local) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(l.dir, name), nil
}

// Put writes data and returns baseURL + urlPath + name. The file is written
// under a temporary name and renamed so readers never see partial audio.
func (l *Local) Put(ctx context.Context, name string, data []byte, baseURL string) (string, error) {
	path, err := l.Path(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(l.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}

	return baseURL + l.urlPath + url.PathEscape(name), nil
}

// Delete removes name. A missing file is not an error.
func (l *Local) Delete(ctx context.Context, name string) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
