package services_test

import (
	"errors"
	"strings"
	"testing"

	"nightsweep/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ingest", "launch", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ingest", "launch", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "driver", "history", "insert failed", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "driver", "preflight", "lock held", nil)
	if !services.IsFatal(cfgErr) {
		t.Fatalf("configuration error should be fatal: %v", cfgErr)
	}
	toolErr := services.Wrap(services.ErrExternalTool, "ingest", "run", "exit status 2", nil)
	if services.IsFatal(toolErr) {
		t.Fatalf("external tool error should not be fatal: %v", toolErr)
	}
	if services.IsFatal(nil) {
		t.Fatal("nil error should not be fatal")
	}
}
