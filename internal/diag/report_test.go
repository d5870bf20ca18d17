package diag

import (
	"strings"
	"testing"
)

func TestDecodeReport(t *testing.T) {
	const report = `{
  "diagnostics": [
    {"severity": "error", "code": "SEM3001", "message": "type mismatch", "location": {"file": "/ws/a.sg", "start_line": 4, "start_col": 2}},
    {"severity": "warning", "code": "LNT1000", "message": "shadowed", "location": {"file": "/ws/a.sg", "start_line": 1, "start_col": 1}},
    {"severity": "bogus", "code": "X", "message": "skip me", "location": {"file": "/ws/a.sg", "start_line": 1}},
    {"severity": "error", "code": "X", "message": "no line", "location": {"file": "/ws/a.sg"}},
    {"severity": "ERROR", "code": "SYN2001", "message": "  unexpected token  ", "location": {"file": "/ws/a.sg", "start_line": 2}}
  ],
  "count": 5
}`
	bag := NewBag(0)
	resolve := func(p string) string { return strings.TrimPrefix(p, "/ws/") }
	if err := DecodeReport(strings.NewReader(report), BagReporter{Bag: bag}, resolve); err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	if bag.Len() != 3 {
		t.Fatalf("len = %d, want 3: %+v", bag.Len(), bag.Items())
	}

	errs := bag.ErrorsFor("a.sg")
	if len(errs) != 2 {
		t.Fatalf("errors = %+v", errs)
	}
	if errs[0].Line != 2 || errs[0].Message != "unexpected token" || errs[0].Code != "SYN2001" {
		t.Fatalf("first error = %+v", errs[0])
	}
	if errs[1].Line != 4 || errs[1].Column != 2 {
		t.Fatalf("second error = %+v", errs[1])
	}
}

func TestDecodeReport_Malformed(t *testing.T) {
	bag := NewBag(0)
	if err := DecodeReport(strings.NewReader("{not json"), BagReporter{Bag: bag}, nil); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestEncodeReportReadsBack(t *testing.T) {
	in := []Diagnostic{
		NewError("pkg/a.go", 7, 3, "undefined: x").WithCode("E100"),
		New(SevWarning, "pkg/a.go", 2, 0, "unused import"),
	}
	var b strings.Builder
	if err := EncodeReport(&b, in); err != nil {
		t.Fatalf("EncodeReport: %v", err)
	}
	if !strings.Contains(b.String(), `"count": 2`) {
		t.Fatalf("report = %s", b.String())
	}

	bag := NewBag(0)
	if err := DecodeReport(strings.NewReader(b.String()), BagReporter{Bag: bag}, nil); err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	bag.Sort()
	got := bag.Items()
	if len(got) != 2 || got[0].Severity != SevWarning || got[1].Code != "E100" || got[1].Column != 3 {
		t.Fatalf("round trip = %+v", got)
	}
}
