package capture_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"hyperspectral/internal/capture"
)

func capturePaths(dir string) []string {
	return []string{
		dir + "/2017-04-27__10-03-21-123_raw",
		dir + "/2017-04-27__10-03-21-123_raw.hdr",
		dir + "/2017-04-27__10-03-21-123_image.jpg",
		dir + "/2017-04-27__10-03-21-123_frameIndex.txt",
		dir + "/2017-04-27__10-03-21-123_settings.txt",
		dir + "/2017-04-27__10-03-21-123_metadata.json",
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		role capture.Role
		ok   bool
	}{
		{"a_raw", capture.RoleRaw, true},
		{"a_raw.hdr", capture.RoleHeader, true},
		{"a_image.jpg", capture.RolePreview, true},
		{"a_frameIndex.txt", capture.RoleFrameIndex, true},
		{"a_settings.txt", capture.RoleSettings, true},
		{"a_metadata.json", capture.RoleMetadata, true},
		{"readme.md", 0, false},
	}
	for _, tt := range tests {
		role, ok := capture.Classify(tt.name)
		if ok != tt.ok || (ok && role != tt.role) {
			t.Errorf("Classify(%q) = %v, %v; want %v, %v", tt.name, role, ok, tt.role, tt.ok)
		}
	}
}

func TestResolveCoLocated(t *testing.T) {
	fs := capture.Resolve(capturePaths("/data/a"))
	if !fs.PathsMatch {
		t.Fatal("expected co-located set")
	}
	if !fs.Complete() {
		t.Fatalf("expected complete set, missing %v", fs.Missing())
	}
	if got := fs.Path(capture.RoleRaw); got != "/data/a/2017-04-27__10-03-21-123_raw" {
		t.Fatalf("unexpected raw path %q", got)
	}
	raw, _ := fs.Get(capture.RoleRaw)
	if raw.Name != "2017-04-27__10-03-21-123_raw" {
		t.Fatalf("unexpected raw name %q", raw.Name)
	}
}

func TestResolveDetectsScatteredMembers(t *testing.T) {
	for i := 0; i < 5; i++ {
		paths := capturePaths("/data/a")
		paths[i] = "/data/b/" + paths[i][len("/data/a/"):]
		fs := capture.Resolve(paths)
		if fs.PathsMatch {
			t.Errorf("moving member %d to another directory should clear PathsMatch", i)
		}
	}
}

func TestResolveMetadataDirectoryIgnoredForCoLocation(t *testing.T) {
	paths := capturePaths("/data/a")
	paths[5] = "/meta/2017-04-27__10-03-21-123_metadata.json"
	fs := capture.Resolve(paths)
	if !fs.PathsMatch {
		t.Fatal("metadata location must not affect co-location")
	}
}

func TestResolveTrivialSets(t *testing.T) {
	if fs := capture.Resolve(nil); !fs.PathsMatch || fs.Complete() {
		t.Fatalf("empty set: PathsMatch=%v Complete=%v", fs.PathsMatch, fs.Complete())
	}
	if fs := capture.Resolve([]string{"/x/a_raw"}); !fs.PathsMatch {
		t.Fatal("single role set should be co-located")
	}
}

func TestResolveMetadataSubCases(t *testing.T) {
	fs := capture.Resolve([]string{
		"/data/a/a_raw",
		"/data/ds/_dataset_metadata.json",
		"/data/ds/_metadata.json",
	})
	if fs.DatasetMetadata != "/data/ds/_dataset_metadata.json" {
		t.Fatalf("unexpected dataset metadata %q", fs.DatasetMetadata)
	}
	if _, ok := fs.Get(capture.RoleMetadata); ok {
		t.Fatal("bare and dataset-level documents must not fill the metadata role")
	}
	if diff := cmp.Diff([]capture.Role{capture.RoleHeader, capture.RolePreview, capture.RoleFrameIndex, capture.RoleSettings, capture.RoleMetadata}, fs.Missing()); diff != "" {
		t.Fatalf("missing roles mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveLastWriterWins(t *testing.T) {
	fs := capture.Resolve([]string{"/data/a/first_raw", "/data/a/second_raw"})
	if got := fs.Path(capture.RoleRaw); got != "/data/a/second_raw" {
		t.Fatalf("expected last raw path, got %q", got)
	}
}

func TestHasAllFiles(t *testing.T) {
	names := []string{"x_raw", "x_raw.hdr", "x_image.jpg", "x_frameIndex.txt", "x_settings.txt"}
	if !capture.HasAllFiles(names) {
		t.Fatal("expected all files present")
	}
	for i := range names {
		partial := append(append([]string{}, names[:i]...), names[i+1:]...)
		partial = append(partial, "x_metadata.json")
		if capture.HasAllFiles(partial) {
			t.Errorf("expected false when %q is missing", names[i])
		}
	}
	if capture.HasAllFiles(nil) {
		t.Fatal("empty listing cannot be complete")
	}
}
