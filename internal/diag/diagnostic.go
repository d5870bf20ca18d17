package diag

// Diagnostic is a single problem reported against a file. Line and Column
// are 1-based; Column is 0 when the tool did not report one.
type Diagnostic struct {
	Severity Severity
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}
