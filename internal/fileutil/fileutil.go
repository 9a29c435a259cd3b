// Package fileutil provides the small filesystem helpers shared by the
// download and tagging pipelines.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CopyFile streams src to dst with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// ReplaceFile moves src over dest, removing any existing dest first. A rename
// across filesystems falls back to copy-and-remove.
func ReplaceFile(src, dest string) error {
	if src == dest {
		return nil
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing target: %w", err)
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := CopyFile(src, dest); err != nil {
		return fmt.Errorf("replace %s: %w", dest, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// TempSibling returns a unique hidden temp path in the same directory as
// target, so the final rename into place stays on one filesystem.
func TempSibling(target string) string {
	dir := filepath.Dir(target)
	return filepath.Join(dir, fmt.Sprintf(".opuskit-%s.tmp", uuid.NewString()))
}

// SizeMiB returns the file size in mebibytes, or 0 when the file cannot be
// inspected.
func SizeMiB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}
