package diag

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// PathFunc maps a path as printed by a tool to the identifier used by the
// caller. A nil PathFunc keeps paths as printed.
type PathFunc func(string) string

var (
	// path:line[:col]: [severity[ code]:] message  (go vet, gcc, clang, eslint -f unix)
	colonLine = regexp.MustCompile(`^((?:[A-Za-z]:)?[^:\s][^:]*):(\d+)(?::(\d+))?:\s*(?:(error|warning|warn|note|info|hint|fatal error)(?:\s*\[([^\]]+)\])?\s*:\s*)?(.*)$`)
	// path(line,col): severity CODE: message  (tsc, msbuild)
	parenLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\):\s*(error|warning|info)\s*([A-Za-z]*\d+)?\s*:\s*(.*)$`)
	// trailing "[Severity/rule]" of eslint -f unix
	ruleSuffix = regexp.MustCompile(`\s*\[(Error|Warning)/([^\]]+)\]$`)
)

// vetPrefix precedes type-check failures printed by go vet.
const vetPrefix = "vet: "

// ParseCompilerOutput scans tool output line by line and reports every
// recognised diagnostic. Lines without a severity label are reported as
// errors. Lines whose line number is not a positive uint32 are skipped.
func ParseCompilerOutput(r io.Reader, rep Reporter, resolve PathFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		d, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		if resolve != nil {
			d.Path = resolve(d.Path)
		}
		rep.Report(d)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read diagnostics: %w", err)
	}
	return nil
}

// ParseLine parses a single line of compiler output.
func ParseLine(text string) (Diagnostic, bool) {
	text = strings.TrimPrefix(strings.TrimRight(text, "\r"), vetPrefix)
	if m := parenLine.FindStringSubmatch(text); m != nil {
		return build(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	if m := colonLine.FindStringSubmatch(text); m != nil {
		return build(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	return Diagnostic{}, false
}

func build(path, line, col, sev, code, msg string) (Diagnostic, bool) {
	ln, ok := positive(line)
	if !ok {
		return Diagnostic{}, false
	}
	var cn uint32
	if col != "" {
		cn, _ = positive(col)
	}
	severity := SevError
	if sev == "" {
		if m := ruleSuffix.FindStringSubmatch(msg); m != nil {
			sev, code = m[1], m[2]
			msg = msg[:len(msg)-len(m[0])]
		}
	}
	if sev != "" {
		parsed, err := ParseSeverity(sev)
		if err != nil {
			return Diagnostic{}, false
		}
		severity = parsed
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return Diagnostic{}, false
	}
	return New(severity, strings.TrimSpace(path), ln, cn, msg).WithCode(code), true
}

func positive(s string) (uint32, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false
	}
	return v, true
}
