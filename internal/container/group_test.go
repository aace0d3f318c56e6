package container

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type memAttrs map[string]any

func (m memAttrs) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m memAttrs) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

type memVar struct {
	names  []string
	sizes  []int
	attrs  memAttrs
	data   any
	sliced [][2]int
}

func (v *memVar) dims() []string         { return v.names }
func (v *memVar) shape() []int           { return v.sizes }
func (v *memVar) attributes() attributes { return v.attrs }
func (v *memVar) values() (any, error)   { return v.data, nil }

func (v *memVar) rows(begin, end int) (any, error) {
	v.sliced = append(v.sliced, [2]int{begin, end})
	return nil, errors.New("not sliceable")
}

type memGroup struct {
	dims   []Dimension
	vars   map[string]*memVar
	order  []string
	attrs  memAttrs
	groups map[string]*memGroup
	names  []string
	closed bool
}

func (g *memGroup) dimensions() []Dimension { return g.dims }
func (g *memGroup) variables() []string     { return g.order }
func (g *memGroup) attributes() attributes {
	if g.attrs == nil {
		return nil
	}
	return g.attrs
}
func (g *memGroup) subgroups() []string { return g.names }
func (g *memGroup) close()              { g.closed = true }

func (g *memGroup) variable(name string) (varSource, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, errors.New("no such variable")
	}
	return v, nil
}

func (g *memGroup) subgroup(name string) (source, error) {
	child, ok := g.groups[name]
	if !ok {
		return nil, errors.New("no such group")
	}
	return child, nil
}

// productTree mirrors a NetCDF-4 product: root data plus metadata groups.
func productTree() *memGroup {
	sensor := &memGroup{
		vars: map[string]*memVar{
			"exposure": {attrs: memAttrs{"units": "ms"}, data: float32(35)},
		},
		order: []string{"exposure"},
		attrs: memAttrs{"sensor_product_name": "VNIR"},
	}
	header := &memGroup{
		vars: map[string]*memVar{
			"red_band_index": {attrs: memAttrs{"standard_name": "band_index"}, data: int16(234)},
		},
		order: []string{"red_band_index"},
	}
	root := &memGroup{
		dims: []Dimension{{Name: "time", Length: 2}, {Name: "wavelength", Length: 3}},
		vars: map[string]*memVar{
			"wavelength": {names: []string{"wavelength"}, sizes: []int{3}, attrs: memAttrs{}, data: []float64{4e-7, 5e-7, 6e-7}},
		},
		order:  []string{"wavelength"},
		attrs:  memAttrs{"history": "created"},
		groups: map[string]*memGroup{"sensor_fixed_metadata": sensor, "header_info": header},
		names:  []string{"sensor_fixed_metadata", "header_info"},
	}
	return root
}

func TestGroupTree(t *testing.T) {
	root := productTree()
	f := newFile("product.nc", root)

	if diff := cmp.Diff([]string{"sensor_fixed_metadata", "header_info"}, f.Groups()); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	sensor, err := f.Subgroup("sensor_fixed_metadata")
	if err != nil {
		t.Fatalf("Subgroup: %v", err)
	}
	if sensor.Name() != "/sensor_fixed_metadata" {
		t.Fatalf("Name = %q", sensor.Name())
	}
	if name, ok := sensor.StringAttribute("sensor_product_name"); !ok || name != "VNIR" {
		t.Fatalf("sensor attribute = %q, %v", name, ok)
	}
	exposure, err := sensor.Variable("exposure")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	if exposure.Group != "/sensor_fixed_metadata" || exposure.Size() != 1 {
		t.Fatalf("exposure = %+v", exposure)
	}
	if v, err := exposure.First(); err != nil || v != 35 {
		t.Fatalf("First = %v, %v", v, err)
	}

	if _, err := f.Subgroup("user_given_metadata"); !errors.Is(err, ErrNoGroup) {
		t.Fatalf("expected ErrNoGroup, got %v", err)
	}
	if _, err := sensor.Variable("wavelength"); !errors.Is(err, ErrNoVariable) {
		t.Fatalf("root variable must not resolve in a subgroup, got %v", err)
	}

	var visited []string
	if err := f.Walk(func(g *Group) error {
		visited = append(visited, g.Name())
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if diff := cmp.Diff([]string{"/", "/sensor_fixed_metadata", "/header_info"}, visited); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}

	if err := f.Close(); err != nil || !root.closed {
		t.Fatalf("Close = %v, closed %v", err, root.closed)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}
}

func TestFindVariablesSearchesSubgroups(t *testing.T) {
	f := newFile("product.nc", productTree())
	found, err := f.FindVariables("standard_name", "band_index")
	if err != nil {
		t.Fatalf("FindVariables: %v", err)
	}
	if len(found) != 1 || found[0].Name != "red_band_index" || found[0].Group != "/header_info" {
		t.Fatalf("found = %+v", found)
	}
	if v, err := found[0].First(); err != nil || v != 234 {
		t.Fatalf("First = %v, %v", v, err)
	}
}

func TestNilGroupAttributesReadAsEmpty(t *testing.T) {
	f := newFile("product.nc", productTree())
	header, err := f.Subgroup("header_info")
	if err != nil {
		t.Fatalf("Subgroup: %v", err)
	}
	if _, ok := header.Attribute("history"); ok {
		t.Fatal("header_info has no attributes")
	}
}

func TestScanSmallVariablesReadWhole(t *testing.T) {
	v := &memVar{names: []string{"t"}, sizes: []int{3}, data: [][]float32{{1, 2}, {3}}}
	variable := &Variable{Name: "nested", Lengths: v.sizes, src: v}
	var got []float64
	if err := variable.Scan(func(x float64) bool {
		got = append(got, x)
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(v.sliced) != 0 {
		t.Fatalf("small variable should not be sliced, got %v", v.sliced)
	}

	bad := &Variable{Name: "label", src: &memVar{data: "text"}}
	if _, err := bad.First(); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
