package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSkeleton marks a base asset with no usable rig. Fatal to the job.
	ErrMissingSkeleton = errors.New("missing skeleton")
	// ErrSourceNotFound marks a motion source that does not exist. Skippable.
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnreadableSource marks a motion source that exists but cannot be
	// decoded. Skippable, and distinct from ErrNoAnimation so the skip log
	// separates corrupt files from genuinely animation-less ones.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrNoAnimation marks a motion source that carries no animation. Skippable.
	ErrNoAnimation = errors.New("no animation")
	// ErrExport marks a failed merged-asset export. Fatal to the job.
	ErrExport = errors.New("export error")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrExport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Skippable reports whether an error degrades the clip set without failing
// the owning job.
func Skippable(err error) bool {
	return errors.Is(err, ErrSourceNotFound) ||
		errors.Is(err, ErrUnreadableSource) ||
		errors.Is(err, ErrNoAnimation)
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
