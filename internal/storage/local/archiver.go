// Package local archives ingested documents into a directory on the same host.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"faturas/internal/domain"
	"faturas/internal/port"
)

type archiver struct {
	dir string
}

// NewArchiver creates a DocumentArchiver that moves files into dir. The
// directory must already exist.
func NewArchiver(dir string) port.DocumentArchiver {
	return &archiver{dir: dir}
}

// Archive moves path into the archive directory under its base name. An
// existing file with the same name is replaced.
func (a *archiver) Archive(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(a.dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrArchiveUnavailable, a.dir)
	}

	dest := filepath.Join(a.dir, filepath.Base(path))
	err = os.Rename(path, dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}

	// Different filesystems: copy, then remove the source.
	if err := copyFile(path, dest); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("archiving %s: removing source: %w", path, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
