package services

import (
	"errors"
	"fmt"
	"strings"

	"hyperspectral/internal/history"
)

var (
	ErrIncompleteFileSet = errors.New("incomplete file set")
	ErrMissingMetadata   = errors.New("missing metadata")
	ErrStaging           = errors.New("staging error")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrOutputNotProduced = errors.New("output not produced")
	ErrTraitExtraction   = errors.New("trait extraction failed")
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrTransient         = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a pipeline error to the history status recorded for the
// capture. Incomplete captures are skipped rather than failed so a later run
// picks them up once the missing files arrive.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, ErrIncompleteFileSet):
		return history.StatusSkipped
	default:
		return history.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
