package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ezcompose/internal/compose"
)

type fakeEditor struct {
	doc      *Document
	note     string
	cancel   bool
	errs     []compose.ErrorLine
	diagErr  error
	prompted int
}

func (f *fakeEditor) ActiveDocument(context.Context) (Document, bool) {
	if f.doc == nil {
		return Document{}, false
	}
	return *f.doc, true
}

func (f *fakeEditor) PromptNote(context.Context) (string, bool) {
	f.prompted++
	if f.cancel {
		return "", false
	}
	return f.note, true
}

func (f *fakeEditor) ErrorDiagnostics(context.Context, string) ([]compose.ErrorLine, error) {
	return f.errs, f.diagErr
}

type fakeSink struct {
	err     error
	written []compose.State
}

func (f *fakeSink) Name() string { return "clipboard" }

func (f *fakeSink) Write(_ context.Context, st compose.State) error {
	f.written = append(f.written, st)
	return f.err
}

type notice struct {
	message, detail string
	isError         bool
}

type fakeNotifier struct{ got []notice }

func (f *fakeNotifier) Notify(message, detail string) {
	f.got = append(f.got, notice{message: message, detail: detail})
}

func (f *fakeNotifier) NotifyError(message string) {
	f.got = append(f.got, notice{message: message, isError: true})
}

func (f *fakeNotifier) last() notice {
	if len(f.got) == 0 {
		return notice{}
	}
	return f.got[len(f.got)-1]
}

func newTestSession(ed *fakeEditor, sink *fakeSink) (*Session, *compose.Store, *fakeNotifier) {
	store := compose.NewStore()
	n := &fakeNotifier{}
	s := New(Options{Store: store, Editor: ed, Sink: sink, Notifier: n})
	return s, store, n
}

func TestAddFile_SingleEntry(t *testing.T) {
	ed := &fakeEditor{doc: &Document{FileID: "a.ts", Content: "let x=1;"}, note: "fix"}
	sink := &fakeSink{}
	s, store, n := newTestSession(ed, sink)

	status, err := s.AddFile(context.Background())
	if err != nil || status != CaptureOK {
		t.Fatalf("AddFile = %s, %v", status, err)
	}

	st := store.Snapshot()
	want := "file: a.ts\n  notes: fix\n  code:\n  let x=1;\n  ----------------------\n\n"
	if st.Text != want {
		t.Fatalf("aggregate:\nwant %q\ngot  %q", want, st.Text)
	}
	if strings.Contains(st.Text, "errors:") {
		t.Fatal("no errors section expected")
	}
	if len(st.Files) != 1 || st.Files[0] != "a.ts" {
		t.Fatalf("files = %v", st.Files)
	}
	if len(sink.written) != 1 || sink.written[0].Text != st.Text {
		t.Fatalf("sink got %+v", sink.written)
	}
	got := n.last()
	if got.isError || got.message != "File added and accumulated content copied to clipboard." || got.detail != "Files:\na.ts" {
		t.Fatalf("notification = %+v", got)
	}
}

func TestAddFile_ErrorsSortedIntoEntry(t *testing.T) {
	ed := &fakeEditor{
		doc: &Document{FileID: "b.ts"},
		errs: []compose.ErrorLine{
			{Line: 8, Message: "later"},
			{Line: 3, Message: "unused var"},
		},
	}
	s, store, _ := newTestSession(ed, &fakeSink{})

	if _, err := s.AddFile(context.Background()); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	text := store.Snapshot().Text
	if !strings.Contains(text, "  errors:\n  Line 3: unused var\n  Line 8: later\n") {
		t.Fatalf("errors not rendered in line order:\n%s", text)
	}
	if ed.errs[0].Line != 8 {
		t.Fatal("capture must not reorder the editor's slice")
	}
}

func TestAddFile_NoDocument(t *testing.T) {
	ed := &fakeEditor{}
	sink := &fakeSink{}
	s, store, n := newTestSession(ed, sink)

	status, err := s.AddFile(context.Background())
	if err != nil || status != CaptureNoDocument {
		t.Fatalf("AddFile = %s, %v", status, err)
	}
	if store.Phase() != compose.PhaseEmpty || len(sink.written) != 0 {
		t.Fatal("store or sink touched without a document")
	}
	if ed.prompted != 0 {
		t.Fatal("note prompt shown without a document")
	}
	if got := n.last(); !got.isError || got.message != "There is no active document" {
		t.Fatalf("notification = %+v", got)
	}
}

func TestAddFile_Cancelled(t *testing.T) {
	ed := &fakeEditor{doc: &Document{FileID: "a.ts"}, cancel: true}
	sink := &fakeSink{}
	s, store, n := newTestSession(ed, sink)

	status, err := s.AddFile(context.Background())
	if err != nil || status != CaptureCancelled {
		t.Fatalf("AddFile = %s, %v", status, err)
	}
	if store.Len() != 0 || len(sink.written) != 0 || len(n.got) != 0 {
		t.Fatalf("cancel must be silent and side-effect free: store=%d sink=%d notes=%v", store.Len(), len(sink.written), n.got)
	}
}

func TestAddFile_SinkFailureKeepsEntry(t *testing.T) {
	boom := errors.New("clipboard unavailable")
	ed := &fakeEditor{doc: &Document{FileID: "a.ts", Content: "x"}, note: "n"}
	sink := &fakeSink{err: boom}
	s, store, n := newTestSession(ed, sink)

	_, err := s.AddFile(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
	if store.Len() != 1 {
		t.Fatalf("entry rolled back after sink failure: len = %d", store.Len())
	}
	if got := n.last(); !got.isError || got.message != "Error copying content to clipboard" {
		t.Fatalf("notification = %+v", got)
	}

	sink.err = nil
	if err := s.ExportNow(context.Background()); err != nil {
		t.Fatalf("retry export: %v", err)
	}
	if len(sink.written) != 2 || sink.written[1].Text != store.Snapshot().Text {
		t.Fatalf("retry wrote %+v", sink.written)
	}
}

func TestAddFile_DiagnosticsFailureStillAdds(t *testing.T) {
	ed := &fakeEditor{doc: &Document{FileID: "a.go"}, diagErr: errors.New("vet: not found")}
	s, store, _ := newTestSession(ed, &fakeSink{})

	status, err := s.AddFile(context.Background())
	if err != nil || status != CaptureOK {
		t.Fatalf("AddFile = %s, %v", status, err)
	}
	if strings.Contains(store.Snapshot().Text, "errors:") {
		t.Fatal("no errors expected when diagnostics fail")
	}
}

func TestSession_SameFileTwice(t *testing.T) {
	ed := &fakeEditor{doc: &Document{FileID: "same.ts", Content: "x"}, note: "first"}
	s, _, n := newTestSession(ed, &fakeSink{})
	ctx := context.Background()

	if _, err := s.AddFile(ctx); err != nil {
		t.Fatal(err)
	}
	ed.note = "second"
	if _, err := s.AddFile(ctx); err != nil {
		t.Fatal(err)
	}

	st := s.State()
	if len(st.Files) != 2 || st.Files[0] != "same.ts" || st.Files[1] != "same.ts" {
		t.Fatalf("files = %v", st.Files)
	}
	if !strings.Contains(st.Text, "notes: first") || !strings.Contains(st.Text, "notes: second") {
		t.Fatalf("missing a note:\n%s", st.Text)
	}
	if got := n.last().detail; got != "Files:\nsame.ts, same.ts" {
		t.Fatalf("detail = %q", got)
	}
}

func TestSession_ClearThenAdd(t *testing.T) {
	ed := &fakeEditor{note: "n"}
	s, store, n := newTestSession(ed, &fakeSink{})
	ctx := context.Background()

	for _, id := range []string{"A.ts", "B.ts"} {
		ed.doc = &Document{FileID: id}
		if _, err := s.AddFile(ctx); err != nil {
			t.Fatal(err)
		}
	}
	s.Clear()
	if got := n.last(); got.message != "Accumulated content cleared" {
		t.Fatalf("notification = %+v", got)
	}
	s.Clear()

	ed.doc = &Document{FileID: "C.ts", Content: "c"}
	if _, err := s.AddFile(ctx); err != nil {
		t.Fatal(err)
	}

	st := store.Snapshot()
	want := compose.FormatEntry(compose.Snapshot{FileID: "C.ts", Note: "n", Content: "c"})
	if st.Text != want {
		t.Fatalf("aggregate:\nwant %q\ngot  %q", want, st.Text)
	}
	if len(st.Files) != 1 || st.Files[0] != "C.ts" {
		t.Fatalf("files = %v", st.Files)
	}
}

func TestExportNow_Empty(t *testing.T) {
	sink := &fakeSink{}
	s, _, n := newTestSession(&fakeEditor{}, sink)
	if err := s.ExportNow(context.Background()); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("err = %v", err)
	}
	if len(sink.written) != 0 {
		t.Fatal("empty store must not be exported")
	}
	if got := n.last(); got.message != "Nothing accumulated yet" {
		t.Fatalf("notification = %+v", got)
	}
}

func TestCommit_IgnoresFailedCaptures(t *testing.T) {
	s, store, _ := newTestSession(&fakeEditor{}, &fakeSink{})
	for _, status := range []CaptureStatus{CaptureNoDocument, CaptureCancelled} {
		if _, ok := s.Commit(Capture{Status: status, Snapshot: compose.Snapshot{FileID: "x"}}); ok {
			t.Fatalf("Commit accepted status %s", status)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("store mutated: %d", store.Len())
	}
	if s.ID() == "" {
		t.Fatal("session id missing")
	}
}

func TestNew_SessionID(t *testing.T) {
	if s := New(Options{ID: "fixed-id"}); s.ID() != "fixed-id" {
		t.Fatalf("ID = %q", s.ID())
	}
	a, b := New(Options{}), New(Options{})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("generated ids %q and %q should be unique", a.ID(), b.ID())
	}
	if got := New(Options{}).SinkName(); got != "nowhere" {
		t.Fatalf("SinkName without a sink = %q", got)
	}
}

func TestCommit_ConcurrentStateEndsWithOwnEntry(t *testing.T) {
	s, store, _ := newTestSession(&fakeEditor{}, &fakeSink{})
	const workers = 16

	var wg sync.WaitGroup
	mismatches := make(chan string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("f%d.go", w)
			st, ok := s.Commit(Capture{Status: CaptureOK, Snapshot: compose.Snapshot{FileID: id}})
			if !ok || st.Files[len(st.Files)-1] != id {
				mismatches <- id
			}
		}(w)
	}
	wg.Wait()
	close(mismatches)
	for id := range mismatches {
		t.Errorf("state returned for %s does not end with it", id)
	}
	if store.Len() != workers {
		t.Fatalf("len = %d", store.Len())
	}
}
