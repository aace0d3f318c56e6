package testsupport

import (
	"testing"

	"hyperspectral/internal/container"
)

// ProductSpec describes a synthetic level-1 container. DefaultProduct
// returns one that satisfies every non-expected-failure validation check.
type ProductSpec struct {
	Bands           int
	FirstWavelength float64
	Frames          int
	Y               int
	X               int
	// ExtraDimensions are appended after the core ones.
	ExtraDimensions []container.Dimension

	History           string
	FirstFrametime    float64
	FrametimeCalendar string
	FrametimeUnits    string
	Zenith            []float64
	ReflectancePeak   float32
	ExposurePeak      float32
	OmitVariables     []string
	OmitAttributes    map[string][]string
	OmitGlobalHistory bool
}

// HistoryLine matches the historical provenance format.
const HistoryLine = "Thu Apr 27 10:03:21 2017: python hyperspectral_metadata.py dbg=yes --fmt=4 --mtd=meta.json"

// DefaultProduct returns a valid product. Reflectance and exposure peaks sit
// above the default ceilings, as the current product does.
func DefaultProduct() ProductSpec {
	return ProductSpec{
		Bands:             273,
		FirstWavelength:   4e-7,
		Frames:            3,
		Y:                 3,
		X:                 2,
		ExtraDimensions:   []container.Dimension{{Name: "rgb", Length: 3}},
		History:           HistoryLine,
		FirstFrametime:    17283.4,
		FrametimeCalendar: "gregorian",
		FrametimeUnits:    "days since 1970-01-01 00:00:00",
		Zenith:            nil,
		ReflectancePeak:   0.8,
		ExposurePeak:      70000,
	}
}

// WriteProduct writes spec to path.
func WriteProduct(t testing.TB, path string, spec ProductSpec) {
	t.Helper()
	if err := container.Create(path, spec.Schema()); err != nil {
		t.Fatalf("write product %s: %v", path, err)
	}
}

// Schema converts the spec into a container schema.
func (spec ProductSpec) Schema() container.Schema {
	dims := []container.Dimension{
		{Name: "wavelength", Length: spec.Bands},
		{Name: "x", Length: spec.X},
		{Name: "y", Length: spec.Y},
		{Name: "time", Length: spec.Frames},
	}
	dims = append(dims, spec.ExtraDimensions...)

	wavelengths := make([]float64, spec.Bands)
	for i := range wavelengths {
		wavelengths[i] = spec.FirstWavelength + float64(i)*2.2e-9
	}
	frametime := make([]float64, spec.Frames)
	for i := range frametime {
		frametime[i] = spec.FirstFrametime + float64(i)*1e-5
	}
	zenith := spec.Zenith
	if zenith == nil {
		zenith = make([]float64, spec.Frames)
		for i := range zenith {
			zenith[i] = 30 + float64(i)
		}
	}
	cube := spec.Bands * spec.Y * spec.X
	reflectance := make([]float32, cube)
	exposure := make([]float32, cube)
	for i := range reflectance {
		reflectance[i] = 0.25
		exposure[i] = 1200
	}
	if cube > 0 {
		reflectance[cube-1] = spec.ReflectancePeak
		exposure[cube-1] = spec.ExposurePeak
	}

	geo := func(units, long string) []container.Attr {
		return []container.Attr{
			{Name: "units", Value: units},
			{Name: "reference_point", Value: "Southeast corner of field"},
			{Name: "long_name", Value: long},
			{Name: "algorithm", Value: "1) Compute pixel size 2) Offset by gantry position"},
		}
	}

	variables := []container.VariableSpec{
		{Name: "wavelength", Dims: []string{"wavelength"}, Data: wavelengths,
			Attributes: []container.Attr{{Name: "units", Value: "meter"}}},
		{Name: "frametime", Dims: []string{"time"}, Data: frametime,
			Attributes: []container.Attr{
				{Name: "calender", Value: spec.FrametimeCalendar},
				{Name: "units", Value: spec.FrametimeUnits},
			}},
		{Name: "x", Dims: []string{"x"}, Data: ramp(spec.X, 0.001), Attributes: geo("meter", "North distance from southeast corner of field")},
		{Name: "y", Dims: []string{"y"}, Data: ramp(spec.Y, 0.001), Attributes: geo("meter", "West distance from southeast corner of field")},
		{Name: "rfl_img", Dims: []string{"wavelength", "y", "x"}, Data: reflectance},
		{Name: "xps_img", Dims: []string{"wavelength", "y", "x"}, Data: exposure},
		{Name: "solar_zenith_angle", Dims: []string{"time"}, Data: zenith,
			Attributes: []container.Attr{{Name: "units", Value: "degree"}}},
	}

	omitted := make(map[string]bool, len(spec.OmitVariables))
	for _, name := range spec.OmitVariables {
		omitted[name] = true
	}
	kept := variables[:0]
	for _, v := range variables {
		if omitted[v.Name] {
			continue
		}
		if drop := spec.OmitAttributes[v.Name]; len(drop) > 0 {
			v.Attributes = withoutAttrs(v.Attributes, drop)
		}
		kept = append(kept, v)
	}

	schema := container.Schema{Dimensions: dims, Variables: kept}
	if !spec.OmitGlobalHistory {
		schema.Attributes = []container.Attr{{Name: "history", Value: spec.History}}
	}
	return schema
}

// WriteIndices writes a derived-indices container holding one scalar
// variable tagged with standardName, the shape the workflow produces.
func WriteIndices(t testing.TB, path, standardName string, value float64) {
	t.Helper()
	err := container.Create(path, container.Schema{
		Variables: []container.VariableSpec{
			{Name: "NDVI705", Data: value,
				Attributes: []container.Attr{
					{Name: "standard_name", Value: standardName},
					{Name: "long_name", Value: "Chlorophyll Index NDVI705"},
				}},
		},
	})
	if err != nil {
		t.Fatalf("write indices %s: %v", path, err)
	}
}

func ramp(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

func withoutAttrs(attrs []container.Attr, drop []string) []container.Attr {
	skip := make(map[string]bool, len(drop))
	for _, name := range drop {
		skip[name] = true
	}
	out := make([]container.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if !skip[attr.Name] {
			out = append(out, attr)
		}
	}
	return out
}
