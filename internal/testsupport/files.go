package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CaptureMetadata is a minimal cleaned capture-level metadata document.
const CaptureMetadata = `{
  "terraref_cleaned_metadata": true,
  "gantry_variable_metadata": {"datetime": "2017-04-27T10:03:21"},
  "sensor_fixed_metadata": {"sensor_id": "VNIR"}
}`

// WriteCapture writes a complete co-located capture under dir, named after
// base (e.g. "2017-04-27__10-03-21-123"), and returns the member paths in
// role table order.
func WriteCapture(t testing.TB, dir, base string) []string {
	t.Helper()
	paths := []string{
		filepath.Join(dir, base+"_raw"),
		filepath.Join(dir, base+"_raw.hdr"),
		filepath.Join(dir, base+"_image.jpg"),
		filepath.Join(dir, base+"_frameIndex.txt"),
		filepath.Join(dir, base+"_settings.txt"),
	}
	for _, path := range paths {
		WriteFile(t, path, 16)
	}
	meta := filepath.Join(dir, base+"_metadata.json")
	WriteText(t, meta, CaptureMetadata)
	return append(paths, meta)
}
