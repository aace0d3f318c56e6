package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Capture is one unit of work: a dataset name, an optional remote dataset
// ID, and the absolute paths of its members.
type Capture struct {
	Name      string
	DatasetID string
	Files     []string
}

// FromDirectory lists the regular files (and links) in dir as a capture. An
// empty name is derived from the directory layout
// ".../<SENSOR>/<date>/<timestamp>" as "<SENSOR> - <timestamp>".
func FromDirectory(dir, name string) (Capture, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Capture{}, fmt.Errorf("resolve %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return Capture{}, fmt.Errorf("list %s: %w", abs, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(abs, entry.Name()))
	}
	sort.Strings(files)

	if strings.TrimSpace(name) == "" {
		name = nameFromLayout(abs)
	}
	return Capture{Name: name, Files: files}, nil
}

func nameFromLayout(dir string) string {
	timestamp := filepath.Base(dir)
	sensor := filepath.Base(filepath.Dir(filepath.Dir(dir)))
	return strings.ToUpper(sensor) + " - " + timestamp
}
