package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteAtomic(path, []byte("new content"), 0o640); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new content" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be gone, dir has %d entries", len(entries))
	}
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "doc.json")
	if err := WriteAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNonEmptyFile(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "full.nc")
	if err := os.WriteFile(full, []byte("CDF\x01"), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := NonEmptyFile(full)
	if err != nil || size != 4 {
		t.Fatalf("NonEmptyFile(full) = %d, %v", size, err)
	}

	empty := filepath.Join(dir, "empty.nc")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NonEmptyFile(empty); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}

	if _, err := NonEmptyFile(filepath.Join(dir, "missing.nc")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := NonEmptyFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if !Exists(dir) {
		t.Fatal("temp dir should exist")
	}
	if Exists(filepath.Join(dir, "nope")) {
		t.Fatal("missing path should not exist")
	}
}
