package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics and notes.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the labels emitted by common compilers and linters.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err", "fatal", "fatal error", "e":
		return SevError, nil
	case "warning", "warn", "w":
		return SevWarning, nil
	case "info", "note", "hint", "information", "i":
		return SevInfo, nil
	default:
		return SevInfo, fmt.Errorf("unknown severity %q", s)
	}
}
