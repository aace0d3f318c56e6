package capture

import (
	"path/filepath"
	"strings"
)

// File is one resolved member of a capture.
type File struct {
	Name string
	Path string
}

// FileSet maps each role to at most one file.
type FileSet struct {
	files map[Role]File

	// DatasetMetadata is the container-level metadata document, if one was
	// seen among the candidate paths.
	DatasetMetadata string

	// PathsMatch is true when every non-metadata member lives in the same
	// directory.
	PathsMatch bool
}

// NewFileSet returns an empty, trivially co-located set.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[Role]File), PathsMatch: true}
}

// Resolve classifies candidate paths into roles. Later duplicates replace
// earlier ones for the same role.
func Resolve(paths []string) *FileSet {
	fs := NewFileSet()
	lastDir := ""
	for _, path := range paths {
		role, ok := Classify(path)
		if !ok {
			continue
		}
		if role == RoleMetadata {
			switch {
			case strings.HasSuffix(path, DatasetMetadataSuffix):
				fs.DatasetMetadata = path
			case strings.HasSuffix(path, bareMetadataSuffix):
			default:
				fs.Set(RoleMetadata, path)
			}
			continue
		}

		dir := filepath.Dir(path)
		if lastDir != "" && dir != lastDir {
			fs.PathsMatch = false
		}
		lastDir = dir
		fs.Set(role, path)
	}
	return fs
}

// Set assigns path to role.
func (fs *FileSet) Set(role Role, path string) {
	if fs.files == nil {
		fs.files = make(map[Role]File)
	}
	fs.files[role] = File{Name: filepath.Base(path), Path: path}
}

// Get returns the file resolved for role.
func (fs *FileSet) Get(role Role) (File, bool) {
	f, ok := fs.files[role]
	return f, ok
}

// Path returns the resolved path for role or "".
func (fs *FileSet) Path(role Role) string {
	return fs.files[role].Path
}

// Complete reports whether every role is resolved.
func (fs *FileSet) Complete() bool {
	return len(fs.Missing()) == 0
}

// Missing lists unresolved roles in table order.
func (fs *FileSet) Missing() []Role {
	var missing []Role
	for _, role := range AllRoles() {
		if _, ok := fs.files[role]; !ok {
			missing = append(missing, role)
		}
	}
	return missing
}

// Resolved lists the resolved roles in table order.
func (fs *FileSet) Resolved() []Role {
	var roles []Role
	for _, role := range AllRoles() {
		if _, ok := fs.files[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasAllFiles reports whether a listing names every non-metadata role.
// Only suffixes are inspected.
func HasAllFiles(names []string) bool {
	found := make(map[Role]bool, len(DataRoles()))
	for _, name := range names {
		for _, role := range DataRoles() {
			if strings.HasSuffix(name, role.Suffix()) {
				found[role] = true
			}
		}
	}
	for _, role := range DataRoles() {
		if !found[role] {
			return false
		}
	}
	return true
}
