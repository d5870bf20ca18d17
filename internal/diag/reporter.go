package diag

// Reporter is the minimal contract for receiving diagnostics from a source.
// Implementations: BagReporter (collects into a Bag), FilterReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adapts a *Bag to Reporter.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// FilterReporter forwards only diagnostics accepted by Keep.
type FilterReporter struct {
	Next Reporter
	Keep func(Diagnostic) bool
}

func (r FilterReporter) Report(d Diagnostic) {
	if r.Next == nil {
		return
	}
	if r.Keep != nil && !r.Keep(d) {
		return
	}
	r.Next.Report(d)
}
