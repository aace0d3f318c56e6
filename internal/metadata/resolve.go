package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hyperspectral/internal/capture"
	"hyperspectral/internal/fileutil"
	"hyperspectral/internal/services"
)

// Resolve returns the capture's metadata document and makes sure the
// RoleMetadata slot of fs points at a capture-shaped file.
func Resolve(fs *capture.FileSet) (Document, error) {
	if fs == nil {
		return Document{}, services.Wrap(services.ErrMissingMetadata, "metadata", "resolve", "no file set", nil)
	}

	if path := fs.Path(capture.RoleMetadata); path != "" {
		fields, err := loadObject(path)
		if err != nil {
			return Document{}, err
		}
		return NewDocument(fields, path), nil
	}

	if fs.DatasetMetadata == "" {
		return Document{}, services.Wrap(services.ErrMissingMetadata, "metadata", "resolve",
			fmt.Sprintf("no capture or dataset metadata near %s", describe(fs)), nil)
	}

	raw, err := os.ReadFile(fs.DatasetMetadata)
	if err != nil {
		return Document{}, services.Wrap(services.ErrMissingMetadata, "metadata", "read dataset metadata", fs.DatasetMetadata, err)
	}
	fields, err := Normalize(raw)
	if err != nil {
		return Document{}, err
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return Document{}, services.Wrap(services.ErrMissingMetadata, "metadata", "encode normalized metadata", fs.DatasetMetadata, err)
	}
	if err := fileutil.WriteAtomic(fs.DatasetMetadata, encoded, 0o644); err != nil {
		return Document{}, services.Wrap(services.ErrMissingMetadata, "metadata", "rewrite dataset metadata", fs.DatasetMetadata, err)
	}

	attached := fs.DatasetMetadata
	if sibling := findSibling(fs.Path(capture.RoleRaw)); sibling != "" {
		attached = sibling
	}
	fs.Set(capture.RoleMetadata, attached)
	return NewDocument(fields, fs.DatasetMetadata), nil
}

// findSibling looks for a capture-level metadata file next to the raw cube.
func findSibling(rawPath string) string {
	if rawPath == "" {
		return ""
	}
	dir := filepath.Dir(rawPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, capture.MetadataSuffix) {
			continue
		}
		if name == "_dataset_metadata.json" || name == capture.MetadataSuffix {
			continue
		}
		return filepath.Join(dir, name)
	}
	return ""
}

func loadObject(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingMetadata, "metadata", "read capture metadata", path, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, services.Wrap(services.ErrMissingMetadata, "metadata", "decode capture metadata", path, err)
	}
	return fields, nil
}

func describe(fs *capture.FileSet) string {
	if raw := fs.Path(capture.RoleRaw); raw != "" {
		return raw
	}
	return "capture"
}
