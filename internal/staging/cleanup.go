package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hyperspectral/internal/logging"
)

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// DirInfo describes a staging directory left under the staging root.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	// Links counts directory entries; TargetBytes sums the sizes of the files
	// they point at (dangling links count zero).
	Links       int
	TargetBytes int64
}

// CleanStale removes staging directories older than maxAge. Only directories
// this package created (DirPrefix) are considered; a zero maxAge removes all
// of them.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	fail := func(path string, err error) {
		result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
	}

	cutoff := time.Now().Add(-maxAge)
	err := walkAreas(stagingDir, func(dir DirInfo, statErr error) bool {
		if ctx.Err() != nil {
			fail(stagingDir, ctx.Err())
			return false
		}
		if statErr != nil {
			fail(dir.Path, statErr)
			return true
		}
		if maxAge > 0 && !dir.ModTime.Before(cutoff) {
			return true
		}
		// RemoveAll unlinks symlinks without following them.
		if err := os.RemoveAll(dir.Path); err != nil {
			fail(dir.Path, err)
			logging.WarnWithContext(logger, "failed to remove stale staging directory", "staging_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				logging.String(logging.FieldImpact, "leftover links remain in staging_dir"),
			)
			return true
		}
		result.Removed = append(result.Removed, dir.Path)
		if logger != nil {
			logger.Info("removed stale staging directory",
				logging.String("path", dir.Path),
				logging.Duration("age", time.Since(dir.ModTime)),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
		return true
	})
	if err != nil {
		fail(stagingDir, err)
	}
	return result
}

// ListDirectories returns the staging directories under stagingDir with their
// link counts. A missing staging root lists nothing.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	var dirs []DirInfo
	err := walkAreas(stagingDir, func(dir DirInfo, statErr error) bool {
		if statErr == nil {
			dir.Links, dir.TargetBytes = linkStats(dir.Path)
			dirs = append(dirs, dir)
		}
		return true
	})
	return dirs, err
}

// walkAreas calls visit for every DirPrefix directory under root until visit
// returns false. A blank or missing root is not an error.
func walkAreas(root string, visit func(DirInfo, error) bool) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		dir := DirInfo{Name: entry.Name(), Path: filepath.Join(root, entry.Name())}
		info, err := entry.Info()
		if err == nil {
			dir.ModTime = info.ModTime()
		}
		if !visit(dir, err) {
			return nil
		}
	}
	return nil
}

func linkStats(dir string) (int, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	var total int64
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || info.IsDir() {
			continue
		}
		total += info.Size()
	}
	return len(entries), total
}
