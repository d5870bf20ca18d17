package compose

import "sort"

// ErrorLine is a single error diagnostic attached to a snapshot.
type ErrorLine struct {
	Line    uint32 // 1-based
	Message string
}

// Snapshot is one captured unit submitted for aggregation: the file
// identifier, the user's note, the file text and its error diagnostics,
// all taken at the same instant.
type Snapshot struct {
	FileID  string
	Note    string
	Content string
	Errors  []ErrorLine
}

// SortErrors orders errors by ascending line, keeping the relative order of
// errors reported on the same line. FormatEntry never sorts, so callers
// building a Snapshot from unordered diagnostics use this first.
func SortErrors(errs []ErrorLine) {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Line < errs[j].Line
	})
}
