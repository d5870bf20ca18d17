package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line as
// "severity [code ]path:line:col message", in the given order.
func FormatShort(diags []Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		b.WriteString(severityLabel(d.Severity))
		b.WriteByte(' ')
		if d.Code != "" {
			b.WriteString(d.Code)
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%d:%d %s", d.Path, d.Line, d.Column, sanitizeMessage(d.Message))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
