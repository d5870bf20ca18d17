package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(10 * time.Millisecond)

	prefetch := tm.Begin("prefetch")
	tm.End(prefetch, "3 files")
	export := tm.Begin("export")
	tm.End(export, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 20 {
		t.Fatalf("report = %+v", r)
	}
	if r.Phases[0].Name != "prefetch" || r.Phases[0].Note != "3 files" || r.Phases[1].DurationMS != 10 {
		t.Fatalf("phases = %+v", r.Phases)
	}

	s := tm.Summary()
	if !strings.Contains(s, "prefetch") || !strings.Contains(s, "(3 files)") || !strings.Contains(s, "total           20.00 ms") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer recorded %+v", r)
	}
}
