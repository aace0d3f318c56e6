package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hyperspectral/internal/capture"
	"hyperspectral/internal/services"
)

// DirPrefix prefixes every staging directory created under the root.
const DirPrefix = "capture-"

// Area is a temporary directory of links to one capture's members. The zero
// value (no directory) is returned for co-located captures.
type Area struct {
	Dir   string
	Links []string

	rawPath string
}

// Build links every resolved member of fs into a fresh directory under root,
// unless the members are already co-located. On a link failure the partially
// built Area is returned alongside the error so the caller can clean it up.
func Build(fs *capture.FileSet, root string) (*Area, error) {
	if fs == nil {
		return &Area{}, services.Wrap(services.ErrStaging, "staging", "build", "no file set", nil)
	}
	area := &Area{rawPath: fs.Path(capture.RoleRaw)}
	if fs.PathsMatch {
		return area, nil
	}

	if strings.TrimSpace(root) != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return area, services.Wrap(services.ErrStaging, "staging", "create root", root, err)
		}
	}
	dir, err := os.MkdirTemp(root, DirPrefix+"*")
	if err != nil {
		return area, services.Wrap(services.ErrStaging, "staging", "create directory", root, err)
	}
	area.Dir = dir

	raw, hasRaw := fs.Get(capture.RoleRaw)
	for _, role := range fs.Resolved() {
		member, _ := fs.Get(role)
		name := member.Name
		if role == capture.RoleMetadata && hasRaw {
			name = MetadataLinkName(raw.Name)
		}
		link := filepath.Join(dir, name)
		if err := os.Symlink(member.Path, link); err != nil {
			return area, services.Wrap(services.ErrStaging, "staging", "link "+role.String(), link, err)
		}
		area.Links = append(area.Links, link)
		if role == capture.RoleRaw {
			area.rawPath = link
		}
	}
	return area, nil
}

// MetadataLinkName derives the metadata link name from the raw cube's base
// name so the workflow pairs them ("x_raw" becomes "x_metadata.json").
func MetadataLinkName(rawName string) string {
	return strings.Replace(rawName, "_raw", "", 1) + capture.MetadataSuffix
}

// Staged reports whether a directory was created.
func (a *Area) Staged() bool {
	return a != nil && a.Dir != ""
}

// RawPath is the raw cube path the converter should read.
func (a *Area) RawPath() string {
	if a == nil {
		return ""
	}
	return a.rawPath
}

// Cleanup removes every recorded link and then the directory. It is safe to
// call more than once; all removal errors are returned joined.
func (a *Area) Cleanup() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	var errs []error
	for _, link := range a.Links {
		if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove link %s: %w", link, err))
		}
	}
	if err := os.Remove(a.Dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove staging directory %s: %w", a.Dir, err))
	}
	if len(errs) == 0 {
		a.Links = nil
	}
	return errors.Join(errs...)
}
