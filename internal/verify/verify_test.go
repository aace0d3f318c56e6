package verify_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hyperspectral/internal/container"
	"hyperspectral/internal/services"
	"hyperspectral/internal/testsupport"
	"hyperspectral/internal/verify"
)

const ndviName = "normalized_difference_chlorophyll_index_750_705"

func TestOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nc")

	if _, err := verify.Output(path); !errors.Is(err, services.ErrOutputNotProduced) {
		t.Fatalf("missing output: expected ErrOutputNotProduced, got %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := verify.Output(path); !errors.Is(err, services.ErrOutputNotProduced) {
		t.Fatalf("empty output: expected ErrOutputNotProduced, got %v", err)
	}
	if err := os.WriteFile(path, []byte("CDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := verify.Output(path)
	if err != nil || size != 3 {
		t.Fatalf("Output = %d, %v", size, err)
	}
}

func indices(t *testing.T, vars ...container.VariableSpec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ind.nc")
	err := container.Create(path, container.Schema{
		Dimensions: []container.Dimension{{Name: "x", Length: 1}, {Name: "y", Length: 2}},
		Variables:  vars,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return path
}

func TestExtractIndexScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ind.nc")
	testsupport.WriteIndices(t, path, ndviName, 0.37)
	value, err := verify.ExtractIndex(path, ndviName)
	if err != nil {
		t.Fatalf("ExtractIndex: %v", err)
	}
	if value != 0.37 {
		t.Fatalf("value = %v, want 0.37", value)
	}
}

func TestExtractIndexRavelsGrid(t *testing.T) {
	path := indices(t,
		container.VariableSpec{Name: "other", Dims: []string{"x"}, Data: []float64{9}},
		container.VariableSpec{
			Name:       "NDVI705",
			Dims:       []string{"x", "y"},
			Data:       []float64{0.42, 0.1},
			Attributes: []container.Attr{{Name: "standard_name", Value: ndviName}},
		},
	)
	value, err := verify.ExtractIndex(path, ndviName)
	if err != nil {
		t.Fatalf("ExtractIndex: %v", err)
	}
	if value != 0.42 {
		t.Fatalf("value = %v, want 0.42", value)
	}
}

func TestExtractIndexRejectsDuplicates(t *testing.T) {
	tagged := []container.Attr{{Name: "standard_name", Value: ndviName}}
	path := indices(t,
		container.VariableSpec{Name: "a", Data: 0.1, Attributes: tagged},
		container.VariableSpec{Name: "b", Data: 0.2, Attributes: tagged},
	)
	if _, err := verify.ExtractIndex(path, ndviName); !errors.Is(err, services.ErrTraitExtraction) {
		t.Fatalf("expected ErrTraitExtraction, got %v", err)
	}
}

func TestExtractIndexMissingVariable(t *testing.T) {
	path := indices(t, container.VariableSpec{Name: "other", Dims: []string{"x"}, Data: []float64{9}})
	if _, err := verify.ExtractIndex(path, ndviName); !errors.Is(err, services.ErrTraitExtraction) {
		t.Fatalf("expected ErrTraitExtraction, got %v", err)
	}
}

func TestExtractIndexMissingFile(t *testing.T) {
	_, err := verify.ExtractIndex(filepath.Join(t.TempDir(), "nope.nc"), ndviName)
	if !errors.Is(err, services.ErrTraitExtraction) {
		t.Fatalf("expected ErrTraitExtraction, got %v", err)
	}
}
