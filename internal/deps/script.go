package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// CheckScript reports whether the workflow script can be read by the shell.
// Scripts are passed to the shell as an argument, so only read access is
// required. A bare name is looked up in workDir first, then on PATH.
func CheckScript(script, workDir string) Status {
	result := Status{Requirement: Requirement{
		Name:        "Workflow script",
		Command:     strings.TrimSpace(script),
		Description: "Converts raw captures into NetCDF products",
	}}
	if result.Command == "" {
		result.Detail = "script not configured"
		return result
	}

	path, ok := locateScript(result.Command, workDir)
	if !ok {
		result.Detail = fmt.Sprintf("script %q not found", result.Command)
		return result
	}
	result.Command = path

	info, err := os.Stat(path)
	if err != nil {
		result.Detail = fmt.Sprintf("stat %s: %v", path, err)
		return result
	}
	if info.IsDir() {
		result.Detail = fmt.Sprintf("%s is a directory", path)
		return result
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		result.Detail = fmt.Sprintf("%s is not readable: %v", path, err)
		return result
	}
	result.Available = true
	return result
}

func locateScript(script, workDir string) (string, bool) {
	if filepath.IsAbs(script) {
		return script, true
	}
	candidate := script
	if workDir != "" {
		candidate = filepath.Join(workDir, script)
	}
	if _, err := os.Stat(candidate); err == nil {
		if abs, absErr := filepath.Abs(candidate); absErr == nil {
			return abs, true
		}
		return candidate, true
	}
	if !strings.ContainsRune(script, filepath.Separator) {
		if found, err := exec.LookPath(script); err == nil {
			return found, true
		}
	}
	return "", false
}
