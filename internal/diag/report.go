package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
)

// LocationJSON is the location object of a JSON diagnostics report.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine int64  `json:"start_line,omitempty"`
	StartCol  int64  `json:"start_col,omitempty"`
}

// DiagnosticJSON is one entry of a JSON diagnostics report.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput is the root object of a JSON diagnostics report.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// DecodeReport reads a JSON diagnostics report and reports its entries.
// Entries with an unknown severity or without a positive line are skipped.
func DecodeReport(r io.Reader, rep Reporter, resolve PathFunc) error {
	var out DiagnosticsOutput
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return fmt.Errorf("decode diagnostics report: %w", err)
	}
	for _, item := range out.Diagnostics {
		sev, err := ParseSeverity(item.Severity)
		if err != nil {
			continue
		}
		line, err := safecast.Conv[uint32](item.Location.StartLine)
		if err != nil || line == 0 {
			continue
		}
		col, err := safecast.Conv[uint32](item.Location.StartCol)
		if err != nil {
			col = 0
		}
		path := item.Location.File
		if resolve != nil {
			path = resolve(path)
		}
		rep.Report(Diagnostic{
			Severity: sev,
			Code:     item.Code,
			Path:     path,
			Line:     line,
			Column:   col,
			Message:  strings.TrimSpace(item.Message),
		})
	}
	return nil
}

// EncodeReport writes diags as a JSON diagnostics report that DecodeReport
// reads back.
func EncodeReport(w io.Writer, diags []Diagnostic) error {
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(diags)),
		Count:       len(diags),
	}
	for _, d := range diags {
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity: severityLabel(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
			Location: LocationJSON{
				File:      d.Path,
				StartLine: int64(d.Line),
				StartCol:  int64(d.Column),
			},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
