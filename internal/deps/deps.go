package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program the conversion workflow relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement. For the workflow script,
// Command holds the resolved path once found.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// WorkflowShell describes the interpreter the conversion script runs under.
func WorkflowShell(shell string) Requirement {
	return Requirement{
		Name:        "Workflow shell",
		Command:     shell,
		Description: "Runs the conversion workflow script",
	}
}

// CheckBinaries evaluates each requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkBinary(req))
	}
	return results
}

func checkBinary(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(req.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	return status
}
