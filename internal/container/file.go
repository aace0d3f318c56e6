package container

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

var (
	// ErrNoVariable is returned when a named variable is absent.
	ErrNoVariable = errors.New("variable not found")
	// ErrNoGroup is returned when a named subgroup is absent.
	ErrNoGroup = errors.New("group not found")
	// ErrUnsupportedType is returned for variables that are not numeric.
	ErrUnsupportedType = errors.New("unsupported variable type")
)

// Dimension is a named dimension and its cardinality.
type Dimension struct {
	Name   string
	Length int
}

// File is a read-only handle on a container. The embedded Group is the root.
// It is not safe for concurrent use.
type File struct {
	*Group
	path   string
	closed bool
}

// Open opens path read-only. Classic and NetCDF-4 files are both accepted.
func Open(filename string) (*File, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	nc, err := netcdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", filename, err)
	}
	return newFile(filename, &ncGroup{g: nc}), nil
}

func newFile(filename string, root source) *File {
	return &File{Group: &Group{name: "/", src: root}, path: filename}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Close releases the underlying file. Closing twice is a no-op.
func (f *File) Close() error {
	if f == nil || f.Group == nil || f.closed {
		return nil
	}
	f.closed = true
	f.src.close()
	return nil
}

// Group is one node of the container tree.
type Group struct {
	name string
	src  source
}

// Name returns the absolute group path; the root is "/".
func (g *Group) Name() string { return g.name }

// Dimensions lists the dimensions declared in this group, sorted by name.
func (g *Group) Dimensions() []Dimension {
	return g.src.dimensions()
}

// DimLen returns the cardinality of a dimension declared in this group.
func (g *Group) DimLen(name string) (int, bool) {
	for _, dim := range g.Dimensions() {
		if dim.Name == name {
			return dim.Length, true
		}
	}
	return 0, false
}

// VariableNames lists the variables of this group.
func (g *Group) VariableNames() []string {
	return g.src.variables()
}

// HasVariable reports whether name is declared in this group.
func (g *Group) HasVariable(name string) bool {
	return slices.Contains(g.VariableNames(), name)
}

// Variable returns a handle on the named variable of this group.
func (g *Group) Variable(name string) (*Variable, error) {
	if !g.HasVariable(name) {
		return nil, fmt.Errorf("%w: %s", ErrNoVariable, path.Join(g.name, name))
	}
	vs, err := g.src.variable(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Join(g.name, name), err)
	}
	return &Variable{
		Name:    name,
		Group:   g.name,
		Dims:    vs.dims(),
		Lengths: vs.shape(),
		src:     vs,
	}, nil
}

// Attribute returns a group attribute value.
func (g *Group) Attribute(name string) (any, bool) {
	return orEmpty(g.src.attributes()).Get(name)
}

// StringAttribute returns a group text attribute.
func (g *Group) StringAttribute(name string) (string, bool) {
	return textValue(g.Attribute(name))
}

// Groups lists the names of the direct subgroups.
func (g *Group) Groups() []string {
	return g.src.subgroups()
}

// Subgroup opens a direct subgroup by name.
func (g *Group) Subgroup(name string) (*Group, error) {
	if !slices.Contains(g.Groups(), name) {
		return nil, fmt.Errorf("%w: %s", ErrNoGroup, path.Join(g.name, name))
	}
	src, err := g.src.subgroup(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Join(g.name, name), err)
	}
	return &Group{name: path.Join(g.name, name), src: src}, nil
}

// Walk calls fn for g and then every descendant, depth first.
func (g *Group) Walk(fn func(*Group) error) error {
	if err := fn(g); err != nil {
		return err
	}
	for _, name := range g.Groups() {
		child, err := g.Subgroup(name)
		if err != nil {
			return err
		}
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// VariablesByAttribute returns the variables of this group whose text
// attribute attr equals value.
func (g *Group) VariablesByAttribute(attr, value string) []string {
	var matches []string
	for _, name := range g.VariableNames() {
		vs, err := g.src.variable(name)
		if err != nil {
			continue
		}
		if got, ok := textValue(orEmpty(vs.attributes()).Get(attr)); ok && got == value {
			matches = append(matches, name)
		}
	}
	return matches
}

// FindVariables searches the whole tree under g for variables whose text
// attribute attr equals value.
func (g *Group) FindVariables(attr, value string) ([]*Variable, error) {
	var found []*Variable
	err := g.Walk(func(group *Group) error {
		for _, name := range group.VariablesByAttribute(attr, value) {
			v, err := group.Variable(name)
			if err != nil {
				return err
			}
			found = append(found, v)
		}
		return nil
	})
	return found, err
}

func textValue(value any, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return "", false
}
