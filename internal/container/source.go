package container

import (
	"cmp"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// attributes is the read side of an attribute mapping.
type attributes interface {
	Keys() []string
	Get(key string) (any, bool)
}

// source is one group of an open container.
type source interface {
	dimensions() []Dimension
	variables() []string
	attributes() attributes
	variable(name string) (varSource, error)
	subgroups() []string
	subgroup(name string) (source, error)
	close()
}

// varSource is one variable of a source.
type varSource interface {
	dims() []string
	shape() []int
	attributes() attributes
	// rows returns elements [begin, end) along the first dimension.
	rows(begin, end int) (any, error)
	values() (any, error)
}

type noAttributes struct{}

func (noAttributes) Keys() []string         { return nil }
func (noAttributes) Get(string) (any, bool) { return nil, false }

func orEmpty(attrs attributes) attributes {
	if attrs == nil {
		return noAttributes{}
	}
	return attrs
}

// ncGroup adapts a go-native-netcdf group. Dimensions declared by an
// ancestor are visible to descendants, as in NetCDF-4.
type ncGroup struct {
	g      api.Group
	parent *ncGroup
}

func (n *ncGroup) dimensions() []Dimension {
	names := n.g.ListDimensions()
	dims := make([]Dimension, 0, len(names))
	for _, name := range names {
		length, _ := n.g.GetDimension(name)
		dims = append(dims, Dimension{Name: name, Length: int(length)})
	}
	slices.SortFunc(dims, func(a, b Dimension) int { return cmp.Compare(a.Name, b.Name) })
	return dims
}

func (n *ncGroup) dimLen(name string) int {
	for g := n; g != nil; g = g.parent {
		if length, ok := g.g.GetDimension(name); ok {
			return int(length)
		}
	}
	return 0
}

func (n *ncGroup) variables() []string { return n.g.ListVariables() }

func (n *ncGroup) attributes() attributes {
	if attrs := n.g.Attributes(); attrs != nil {
		return attrs
	}
	return noAttributes{}
}

func (n *ncGroup) variable(name string) (varSource, error) {
	vg, err := n.g.GetVarGetter(name)
	if err != nil {
		return nil, err
	}
	names := vg.Dimensions()
	lengths := make([]int, len(names))
	for i, dim := range names {
		lengths[i] = n.dimLen(dim)
	}
	return &ncVar{vg: vg, names: names, lengths: lengths}, nil
}

func (n *ncGroup) subgroups() []string { return n.g.ListSubgroups() }

func (n *ncGroup) subgroup(name string) (source, error) {
	g, err := n.g.GetGroup(name)
	if err != nil {
		return nil, err
	}
	return &ncGroup{g: g, parent: n}, nil
}

func (n *ncGroup) close() { n.g.Close() }

type ncVar struct {
	vg      api.VarGetter
	names   []string
	lengths []int
}

func (v *ncVar) dims() []string       { return v.names }
func (v *ncVar) shape() []int         { return v.lengths }
func (v *ncVar) values() (any, error) { return v.vg.Values() }

func (v *ncVar) attributes() attributes {
	if attrs := v.vg.Attributes(); attrs != nil {
		return attrs
	}
	return noAttributes{}
}

func (v *ncVar) rows(begin, end int) (any, error) {
	return v.vg.GetSlice(int64(begin), int64(end))
}
