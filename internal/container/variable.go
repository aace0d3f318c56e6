package container

import (
	"fmt"
	"path"
	"reflect"
)

// scanChunk bounds the number of elements decoded per read.
const scanChunk = 1 << 16

// Variable is a named array in a container group.
type Variable struct {
	Name string
	// Group is the absolute path of the owning group.
	Group   string
	Dims    []string
	Lengths []int

	src varSource
}

// Size is the element count (product of dimension lengths). A scalar has size 1.
func (v *Variable) Size() int {
	n := 1
	for _, l := range v.Lengths {
		n *= l
	}
	return n
}

// Attribute returns an attribute value.
func (v *Variable) Attribute(name string) (any, bool) {
	return orEmpty(v.src.attributes()).Get(name)
}

// StringAttribute returns a text attribute.
func (v *Variable) StringAttribute(name string) (string, bool) {
	return textValue(v.Attribute(name))
}

// MissingAttributes returns the names in want that the variable lacks.
func (v *Variable) MissingAttributes(want ...string) []string {
	attrs := orEmpty(v.src.attributes())
	var missing []string
	for _, name := range want {
		if _, ok := attrs.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Scan streams every element in row-major order, converted to float64.
// Returning false from fn stops the scan early.
func (v *Variable) Scan(fn func(float64) bool) error {
	if len(v.Lengths) == 0 || v.Size() <= scanChunk {
		data, err := v.src.values()
		if err != nil {
			return fmt.Errorf("read %s: %w", v.path(), err)
		}
		_, err = visit(reflect.ValueOf(data), fn)
		return v.wrap(err)
	}

	rows := v.Lengths[0]
	step := max(1, scanChunk/(v.Size()/rows))
	for begin := 0; begin < rows; begin += step {
		end := min(begin+step, rows)
		data, err := v.src.rows(begin, end)
		if err != nil {
			return fmt.Errorf("read %s rows %d-%d: %w", v.path(), begin, end, err)
		}
		more, err := visit(reflect.ValueOf(data), fn)
		if err != nil || !more {
			return v.wrap(err)
		}
	}
	return nil
}

// First returns the first element of the flattened variable.
func (v *Variable) First() (float64, error) {
	var (
		first float64
		found bool
	)
	err := v.Scan(func(value float64) bool {
		first, found = value, true
		return false
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%s is empty", v.path())
	}
	return first, nil
}

// Max returns the largest element.
func (v *Variable) Max() (float64, error) {
	return v.reduce(func(acc, value float64) bool { return value > acc })
}

// Min returns the smallest element.
func (v *Variable) Min() (float64, error) {
	return v.reduce(func(acc, value float64) bool { return value < acc })
}

func (v *Variable) reduce(better func(acc, value float64) bool) (float64, error) {
	var (
		acc   float64
		found bool
	)
	err := v.Scan(func(value float64) bool {
		if !found || better(acc, value) {
			acc, found = value, true
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%s is empty", v.path())
	}
	return acc, nil
}

func (v *Variable) path() string {
	if v.Group == "" {
		return v.Name
	}
	return path.Join(v.Group, v.Name)
}

func (v *Variable) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", v.path(), err)
}

// visit walks a scalar or (nested) slice of numbers in row-major order. It
// reports false once fn asks to stop.
func visit(rv reflect.Value, fn func(float64) bool) (bool, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			more, err := visit(rv.Index(i), fn)
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return true, nil
		}
		return visit(rv.Elem(), fn)
	case reflect.Float32, reflect.Float64:
		return fn(rv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fn(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fn(float64(rv.Uint())), nil
	case reflect.Invalid:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type())
	}
}
