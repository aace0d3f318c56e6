package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", results[2])
	}
}

func TestCheckScriptAbsolute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hyperspectral_workflow.sh")
	if err := os.WriteFile(path, []byte("#!/bin/bash\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	status := CheckScript(path, "")
	if !status.Available {
		t.Fatalf("expected script to be available, got %q", status.Detail)
	}
	if status.Command != path {
		t.Fatalf("command = %s", status.Command)
	}
}

func TestCheckScriptRelativeToWorkDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "workflow.sh"), []byte("#!/bin/bash\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	status := CheckScript("workflow.sh", dir)
	if !status.Available {
		t.Fatalf("expected script to be available, got %q", status.Detail)
	}
	if status.Command != filepath.Join(dir, "workflow.sh") {
		t.Fatalf("command = %s", status.Command)
	}
}

func TestCheckScriptMissing(t *testing.T) {
	dir := t.TempDir()
	status := CheckScript("no-such-workflow.sh", dir)
	if status.Available || status.Detail == "" {
		t.Fatalf("expected missing script, got %#v", status)
	}

	status = CheckScript(dir, "")
	if status.Available {
		t.Fatal("directory should not pass as a script")
	}

	if status := CheckScript("", ""); status.Available || status.Detail != "script not configured" {
		t.Fatalf("unexpected status %#v", status)
	}
}

func TestWorkflowShellRequirement(t *testing.T) {
	statuses := CheckBinaries([]Requirement{WorkflowShell(" sh ")})
	if len(statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(statuses))
	}
	got := statuses[0]
	if got.Name != "Workflow shell" || got.Command != "sh" {
		t.Fatalf("unexpected status %#v", got)
	}
	if !got.Available {
		t.Fatalf("expected sh on PATH: %s", got.Detail)
	}
}
