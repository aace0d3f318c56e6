package container

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// Attr is a text attribute written by Create.
type Attr struct {
	Name  string
	Value string
}

// VariableSpec declares one variable for Create. Data is a flat []float64,
// []float32, []int32, []int16 or []int8 in row-major order whose length is
// the product of the variable's dimension lengths. A variable without Dims is
// a scalar; its Data is a single number or a one-element slice.
type VariableSpec struct {
	Name       string
	Dims       []string
	Data       any
	Attributes []Attr
}

// Schema declares a whole container for Create.
type Schema struct {
	Dimensions []Dimension
	Variables  []VariableSpec
	Attributes []Attr
}

var writableKinds = []reflect.Kind{reflect.Float64, reflect.Float32, reflect.Int32, reflect.Int16, reflect.Int8}

// Create writes a new classic-format container at path. Every dimension
// needs a positive length; a dimension no variable uses gets an int32
// coordinate variable of the same name so it is still declared.
func Create(path string, schema Schema) error {
	lengths := make(map[string]int, len(schema.Dimensions))
	for _, dim := range schema.Dimensions {
		if dim.Length <= 0 {
			return fmt.Errorf("dimension %s: length must be positive", dim.Name)
		}
		lengths[dim.Name] = dim.Length
	}

	type prepared struct {
		name string
		vr   api.Variable
	}
	var vars []prepared
	used := make(map[string]bool)
	for _, spec := range schema.Variables {
		shape := make([]int, len(spec.Dims))
		for i, dim := range spec.Dims {
			n, ok := lengths[dim]
			if !ok {
				return fmt.Errorf("variable %s: undeclared dimension %s", spec.Name, dim)
			}
			shape[i], used[dim] = n, true
		}
		values, err := shaped(spec.Data, shape)
		if err != nil {
			return fmt.Errorf("variable %s: %w", spec.Name, err)
		}
		attrs, err := attributeMap(spec.Attributes)
		if err != nil {
			return fmt.Errorf("variable %s: %w", spec.Name, err)
		}
		vars = append(vars, prepared{spec.Name, api.Variable{Values: values, Dimensions: slices.Clone(spec.Dims), Attributes: attrs}})
	}
	for _, dim := range schema.Dimensions {
		if used[dim.Name] {
			continue
		}
		index := make([]int32, dim.Length)
		for i := range index {
			index[i] = int32(i)
		}
		attrs, _ := attributeMap(nil)
		vars = append(vars, prepared{dim.Name, api.Variable{Values: index, Dimensions: []string{dim.Name}, Attributes: attrs}})
	}

	global, err := attributeMap(schema.Attributes)
	if err != nil {
		return err
	}
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create container %s: %w", path, err)
	}
	if len(schema.Attributes) > 0 {
		if err := cw.AddGlobalAttrs(global); err != nil {
			_ = cw.Close()
			return fmt.Errorf("write global attributes: %w", err)
		}
	}
	for _, v := range vars {
		if err := cw.AddVar(v.name, v.vr); err != nil {
			_ = cw.Close()
			return fmt.Errorf("write %s: %w", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close container %s: %w", path, err)
	}
	return nil
}

func attributeMap(attrs []Attr) (*util.OrderedMap, error) {
	keys := make([]string, 0, len(attrs))
	values := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		if _, dup := values[attr.Name]; !dup {
			keys = append(keys, attr.Name)
		}
		values[attr.Name] = attr.Value
	}
	return util.NewOrderedMap(keys, values)
}

// shaped turns flat row-major data into the nested slices the writer
// expects: [][]T for two dimensions and so on, a bare T for a scalar.
func shaped(data any, shape []int) (any, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		if len(shape) == 0 && rv.IsValid() && slices.Contains(writableKinds, rv.Kind()) {
			return data, nil
		}
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
	}
	if !slices.Contains(writableKinds, rv.Type().Elem().Kind()) {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
	}
	total := 1
	for _, n := range shape {
		total *= n
	}
	if rv.Len() != total {
		return nil, fmt.Errorf("have %d values for shape %v", rv.Len(), shape)
	}
	if len(shape) == 0 {
		return rv.Index(0).Interface(), nil
	}
	return nest(rv, shape).Interface(), nil
}

func nest(flat reflect.Value, shape []int) reflect.Value {
	if len(shape) == 1 {
		return flat
	}
	typ := flat.Type()
	for range shape[1:] {
		typ = reflect.SliceOf(typ)
	}
	step := flat.Len() / shape[0]
	out := reflect.MakeSlice(typ, shape[0], shape[0])
	for i := range shape[0] {
		out.Index(i).Set(nest(flat.Slice(i*step, (i+1)*step), shape[1:]))
	}
	return out
}
