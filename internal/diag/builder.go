package diag

func New(sev Severity, path string, line, col uint32, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Path:     path,
		Line:     line,
		Column:   col,
		Message:  msg,
	}
}

func NewError(path string, line, col uint32, msg string) Diagnostic {
	return New(SevError, path, line, col, msg)
}

func (d Diagnostic) WithCode(code string) Diagnostic {
	d.Code = code
	return d
}
