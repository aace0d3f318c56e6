package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hyperspectral/internal/container"
)

// Outcome is the reported result of one check.
type Outcome string

const (
	OutcomePass              Outcome = "pass"
	OutcomeFail              Outcome = "fail"
	OutcomeError             Outcome = "error"
	OutcomeExpectedFailure   Outcome = "expected-failure"
	OutcomeUnexpectedSuccess Outcome = "unexpected-success"
)

// Check asserts one property of a container. Run returns nil on success, a
// *Failure when the property does not hold, and any other error when the
// check could not be evaluated.
type Check struct {
	Name            string
	Description     string
	ExpectedFailure bool
	Run             func(f *container.File, env *Env) error
}

// Env is what a check sees besides the file: the thresholds and the
// pre-compiled history pattern.
type Env struct {
	Config  Config
	history *regexp.Regexp
}

// Failure is a check whose property does not hold.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

func failf(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// Result is one check's outcome.
type Result struct {
	Check    string
	Outcome  Outcome
	Message  string
	Duration time.Duration
	// Expected mirrors Check.ExpectedFailure.
	Expected bool
}

// Counts reports whether the result affects the suite verdict.
func (r Result) Counts() bool { return !r.Expected }

// Report aggregates a suite run.
type Report struct {
	Path    string
	Results []Result
	// Err is set when the container could not be opened; no checks ran.
	Err error
}

// Success reports whether every check not marked expected-failure passed.
func (r Report) Success() bool {
	if r.Err != nil {
		return false
	}
	for _, result := range r.Results {
		if result.Counts() && result.Outcome != OutcomePass {
			return false
		}
	}
	return true
}

// Tally counts results per outcome.
func (r Report) Tally() map[Outcome]int {
	tally := make(map[Outcome]int)
	for _, result := range r.Results {
		tally[result.Outcome]++
	}
	return tally
}

// Summary renders a one-line result like "13 checks: 10 pass, 3 expected-failure".
func (r Report) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("could not open %s: %v", r.Path, r.Err)
	}
	tally := r.Tally()
	order := []Outcome{OutcomePass, OutcomeFail, OutcomeError, OutcomeExpectedFailure, OutcomeUnexpectedSuccess}
	parts := make([]string, 0, len(order))
	for _, outcome := range order {
		if n := tally[outcome]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, outcome))
		}
	}
	return fmt.Sprintf("%d checks: %s", len(r.Results), strings.Join(parts, ", "))
}

// Run opens path once and evaluates every check in Checks against it.
func Run(path string, cfg Config) Report {
	f, err := container.Open(path)
	if err != nil {
		return Report{Path: path, Err: err}
	}
	defer f.Close()
	return RunFile(f, cfg, Checks())
}

// RunFile evaluates checks against an open container.
func RunFile(f *container.File, cfg Config, checks []Check) Report {
	env := &Env{Config: cfg}
	var patternErr error
	if pattern := strings.TrimSpace(cfg.HistoryPattern); pattern != "" {
		env.history, patternErr = regexp.Compile(pattern)
	}

	report := Report{Path: f.Path(), Results: make([]Result, 0, len(checks))}
	for _, check := range checks {
		if patternErr != nil && check.Name == CheckHistoryRecorded {
			report.Results = append(report.Results, Result{
				Check:    check.Name,
				Outcome:  OutcomeError,
				Message:  fmt.Sprintf("invalid history pattern: %v", patternErr),
				Expected: check.ExpectedFailure,
			})
			continue
		}
		report.Results = append(report.Results, evaluate(f, env, check))
	}
	return report
}

func evaluate(f *container.File, env *Env, check Check) (result Result) {
	start := time.Now()
	result = Result{Check: check.Name, Expected: check.ExpectedFailure}
	defer func() {
		if recovered := recover(); recovered != nil {
			result.Outcome, result.Message = classify(check, fmt.Errorf("panic: %v", recovered))
		}
		result.Duration = time.Since(start)
	}()
	result.Outcome, result.Message = classify(check, check.Run(f, env))
	return result
}

func classify(check Check, err error) (Outcome, string) {
	var failure *Failure
	switch {
	case err == nil && check.ExpectedFailure:
		return OutcomeUnexpectedSuccess, "passed but is marked expected-failure"
	case err == nil:
		return OutcomePass, ""
	case check.ExpectedFailure:
		return OutcomeExpectedFailure, err.Error()
	case errors.As(err, &failure):
		return OutcomeFail, failure.Message
	default:
		return OutcomeError, err.Error()
	}
}
