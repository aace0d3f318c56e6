package metadata_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hyperspectral/internal/capture"
	"hyperspectral/internal/metadata"
	"hyperspectral/internal/services"
)

const datasetDoc = `[
  {"agent": {"name": "other"}, "content": {"unrelated": true}},
  {"agent": {"name": "cleaner"}, "content": {
    "terraref_cleaned_metadata": true,
    "gantry_variable_metadata": {"datetime": "2017-04-27T10:03:21"},
    "sensor_fixed_metadata": {"sensor_id": "VNIR"}
  }}
]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveUsesCaptureLevelDocument(t *testing.T) {
	dir := t.TempDir()
	meta := filepath.Join(dir, "a_metadata.json")
	writeFile(t, meta, `{"terraref_cleaned_metadata": true, "sensor_fixed_metadata": {"sensor_id": "SWIR"}}`)
	dataset := filepath.Join(dir, "_dataset_metadata.json")
	writeFile(t, dataset, datasetDoc)

	fs := capture.Resolve([]string{filepath.Join(dir, "a_raw"), meta, dataset})
	doc, err := metadata.Resolve(fs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if doc.SensorType() != "SWIR" || doc.Source() != meta {
		t.Fatalf("unexpected document %v from %s", doc.Fields(), doc.Source())
	}

	untouched, err := os.ReadFile(dataset)
	if err != nil {
		t.Fatal(err)
	}
	if string(untouched) != datasetDoc {
		t.Fatal("dataset document must not be rewritten when a capture document exists")
	}
}

func TestResolveNormalizesDatasetDocumentInPlace(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw", "a_raw")
	writeFile(t, raw, "cube")
	dataset := filepath.Join(dir, "ds", "_dataset_metadata.json")
	writeFile(t, dataset, datasetDoc)

	fs := capture.Resolve([]string{raw, dataset})
	doc, err := metadata.Resolve(fs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want, err := metadata.Normalize([]byte(datasetDoc))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if diff := cmp.Diff(want, doc.Fields()); diff != "" {
		t.Fatalf("resolved document mismatch (-want +got):\n%s", diff)
	}

	var onDisk map[string]any
	data, err := os.ReadFile(dataset)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("rewritten document is not an object: %v", err)
	}
	if diff := cmp.Diff(want, onDisk); diff != "" {
		t.Fatalf("on-disk document mismatch (-want +got):\n%s", diff)
	}

	if got := fs.Path(capture.RoleMetadata); got != dataset {
		t.Fatalf("metadata role = %q, want rewritten dataset document", got)
	}
	if doc.Timestamp() != "2017-04-27T10:03:21" || doc.SensorType() != "VNIR" {
		t.Fatalf("unexpected accessors: %q %q", doc.Timestamp(), doc.SensorType())
	}
}

func TestResolveLemnaTecFallbackIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw", "a_raw")
	writeFile(t, raw, "cube")
	dataset := filepath.Join(dir, "ds", "_dataset_metadata.json")
	writeFile(t, dataset, `[
  {"agent": {"name": "other"}, "content": {"unrelated": true}},
  {"agent": {"name": "lemnatec"}, "content": {"lemnatec_measurement_metadata": {"sensor_fixed_metadata": {"sensor_id": "VNIR"}}}}
]`)

	first, err := metadata.Resolve(capture.Resolve([]string{raw, dataset}))
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	// A retry sees the rewritten document and must accept it as is.
	second, err := metadata.Resolve(capture.Resolve([]string{raw, dataset}))
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if diff := cmp.Diff(first.Fields(), second.Fields()); diff != "" {
		t.Fatalf("second resolution differs (-first +second):\n%s", diff)
	}
	if _, ok := second.Fields()["lemnatec_measurement_metadata"]; !ok {
		t.Fatalf("expected LemnaTec metadata, got %v", second.Fields())
	}
}

func TestResolveAttachesSiblingCaptureDocument(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw", "a_raw")
	writeFile(t, raw, "cube")
	sibling := filepath.Join(dir, "raw", "a_metadata.json")
	writeFile(t, sibling, `{}`)
	dataset := filepath.Join(dir, "ds", "_dataset_metadata.json")
	writeFile(t, dataset, datasetDoc)

	// The sibling is not among the candidate paths; only the scan finds it.
	fs := capture.Resolve([]string{raw, dataset})
	if _, err := metadata.Resolve(fs); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := fs.Path(capture.RoleMetadata); got != sibling {
		t.Fatalf("metadata role = %q, want %q", got, sibling)
	}
}

func TestResolveMissingMetadata(t *testing.T) {
	fs := capture.Resolve([]string{"/data/a_raw", "/data/_metadata.json"})
	_, err := metadata.Resolve(fs)
	if !errors.Is(err, services.ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string
		wantErr bool
	}{
		{name: "cleaned record wins", input: datasetDoc, wantKey: "gantry_variable_metadata"},
		{name: "lemnatec fallback", input: `[{"content": {"lemnatec_measurement_metadata": {}}}]`, wantKey: "lemnatec_measurement_metadata"},
		{name: "single record", input: `{"content": {"terraref_cleaned_metadata": true, "k": 1}}`, wantKey: "k"},
		{name: "already capture shaped", input: `{"terraref_cleaned_metadata": true, "k": 1}`, wantKey: "k"},
		{name: "already lemnatec shaped", input: `{"lemnatec_measurement_metadata": {"k": 1}}`, wantKey: "lemnatec_measurement_metadata"},
		{name: "no usable record", input: `[{"content": {"other": 1}}]`, wantErr: true},
		{name: "not json", input: `nope`, wantErr: true},
		{name: "scalar", input: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := metadata.Normalize([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, services.ErrMissingMetadata) {
					t.Fatalf("expected ErrMissingMetadata, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if _, ok := got[tt.wantKey]; !ok {
				t.Fatalf("expected key %q in %v", tt.wantKey, got)
			}
		})
	}
}

func TestDocumentLookup(t *testing.T) {
	doc := metadata.NewDocument(map[string]any{
		"a": map[string]any{"b": "  value ", "n": 3.0},
	}, "")
	if got := doc.String("a.missing", "a.b"); got != "value" {
		t.Fatalf("String = %q", got)
	}
	if got := doc.String("a.n"); got != "3" {
		t.Fatalf("String numeric = %q", got)
	}
	if _, ok := doc.Lookup("a.b.c"); ok {
		t.Fatal("lookup through scalar should fail")
	}
	if doc.Timestamp() != "" || doc.SensorType() != "" {
		t.Fatal("absent keys should give empty strings")
	}
}
