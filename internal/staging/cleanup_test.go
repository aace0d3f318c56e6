package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hyperspectral/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldDir := filepath.Join(tmpDir, DirPrefix+"old")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	target := filepath.Join(tmpDir, "target_raw")
	if err := os.WriteFile(target, []byte("cube"), 0o644); err != nil {
		t.Fatalf("create target: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(oldDir, "target_raw")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentDir := filepath.Join(tmpDir, DirPrefix+"recent")
	if err := os.Mkdir(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != oldDir {
		t.Errorf("expected %s to be removed, got %s", oldDir, result.Removed[0])
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
	if _, err := os.Stat(target); err != nil {
		t.Error("link target must survive cleanup")
	}
}

func TestCleanStaleZeroAgeRemovesAll(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{DirPrefix + "a", DirPrefix + "b"} {
		if err := os.Mkdir(filepath.Join(tmpDir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	result := CleanStale(context.Background(), tmpDir, 0, logging.NewNop())
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %d", len(result.Removed))
	}
}

func TestCleanStaleIgnoresForeignEntries(t *testing.T) {
	tmpDir := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldFile := filepath.Join(tmpDir, "old-file.txt")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	foreignDir := filepath.Join(tmpDir, "not-ours")
	if err := os.Mkdir(foreignDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	for _, path := range []string{oldFile, foreignDir} {
		if err := os.Chtimes(path, oldTime, oldTime); err != nil {
			t.Fatalf("set old time: %v", err)
		}
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals, got %v", result.Removed)
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
	if _, err := os.Stat(foreignDir); err != nil {
		t.Error("foreign directory should not have been removed")
	}
}

func TestCleanStaleHonoursCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, DirPrefix+"a"), 0o755); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := CleanStale(ctx, tmpDir, 0, logging.NewNop())
	if len(result.Removed) != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected cancellation error only, got %+v", result)
	}
}

func TestListDirectoriesInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		dirs, err := ListDirectories(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if dirs != nil {
			t.Errorf("expected nil for path %q, got %v", path, dirs)
		}
	}
}

func TestListDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	dir1 := filepath.Join(tmpDir, DirPrefix+"1")
	if err := os.Mkdir(dir1, 0o755); err != nil {
		t.Fatalf("create dir1: %v", err)
	}
	dir2 := filepath.Join(tmpDir, DirPrefix+"2")
	if err := os.Mkdir(dir2, 0o755); err != nil {
		t.Fatalf("create dir2: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "other"), 0o755); err != nil {
		t.Fatalf("create other: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "not-a-dir.txt"), []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}

	target := filepath.Join(tmpDir, "cube_raw")
	if err := os.WriteFile(target, []byte("12345"), 0o644); err != nil {
		t.Fatalf("create target: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(dir1, "cube_raw")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "gone"), filepath.Join(dir1, "dangling")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directories, got %d", len(dirs))
	}

	var foundDir1 bool
	for _, d := range dirs {
		if d.Name == DirPrefix+"1" {
			foundDir1 = true
			if d.Links != 2 {
				t.Errorf("links = %d, want 2", d.Links)
			}
			if d.TargetBytes != 5 {
				t.Errorf("target bytes = %d, want 5", d.TargetBytes)
			}
			if d.Path != dir1 || d.ModTime.IsZero() {
				t.Errorf("unexpected info %+v", d)
			}
		}
	}
	if !foundDir1 {
		t.Error("did not find first staging directory in results")
	}
}
