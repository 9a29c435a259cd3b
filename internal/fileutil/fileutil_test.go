package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestReplaceFileOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new.opus")
	dest := filepath.Join(dir, "track.opus")

	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceFile(src, dest); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected replacement content, got %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source to be gone after replace")
	}
}

func TestTempSiblingStaysInDirectory(t *testing.T) {
	target := filepath.Join("/some/dir", "track.opus")
	tmp := TempSibling(target)
	if filepath.Dir(tmp) != "/some/dir" {
		t.Fatalf("temp sibling left the directory: %s", tmp)
	}
	if !strings.HasPrefix(filepath.Base(tmp), ".opuskit-") || !strings.HasSuffix(tmp, ".tmp") {
		t.Fatalf("unexpected temp name: %s", tmp)
	}
	if TempSibling(target) == tmp {
		t.Fatal("expected unique temp names")
	}
}
