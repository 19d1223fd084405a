package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks errors that must abort the run before any
	// invocation: empty night list, uncreatable log directory, held lock.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks ingestion subsystem failures: non-zero exit
	// status or a launch that never started.
	ErrExternalTool = errors.New("external tool error")
	// ErrNotFound marks missing raw data for a night.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures worth retrying on a later run.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must terminate the whole run rather than
// being contained as a per-night outcome.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
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
