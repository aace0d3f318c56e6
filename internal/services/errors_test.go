package services_test

import (
	"errors"
	"strings"
	"testing"

	"hyperspectral/internal/history"
	"hyperspectral/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("exit status 2")
	err := services.Wrap(services.ErrConversionFailed, "convert", "hyperspectral_workflow.sh", "script encountered an error", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConversionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "hyperspectral_workflow.sh", "script encountered an error"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerIsTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	incomplete := services.Wrap(services.ErrIncompleteFileSet, "resolve", "", "missing raw.hdr", nil)
	if status := services.FailureStatus(incomplete); status != history.StatusSkipped {
		t.Fatalf("expected skipped for incomplete file set, got %s", status)
	}

	for _, marker := range []error{
		services.ErrMissingMetadata,
		services.ErrConversionFailed,
		services.ErrOutputNotProduced,
		services.ErrStaging,
	} {
		err := services.Wrap(marker, "stage", "op", "boom", nil)
		if status := services.FailureStatus(err); status != history.StatusFailed {
			t.Fatalf("expected failed for %v, got %s", marker, status)
		}
	}

	if status := services.FailureStatus(nil); status != history.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}
