package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ezcompose/internal/compose"
	"ezcompose/internal/logger"
)

// ErrNothingToExport is returned by ExportNow when the store is empty.
var ErrNothingToExport = errors.New("nothing accumulated yet")

// CaptureStatus is the outcome of the capture step.
type CaptureStatus uint8

const (
	CaptureOK CaptureStatus = iota
	// CaptureNoDocument means there was no active document.
	CaptureNoDocument
	// CaptureCancelled means the user dismissed the note prompt.
	CaptureCancelled
)

func (s CaptureStatus) String() string {
	switch s {
	case CaptureOK:
		return "ok"
	case CaptureNoDocument:
		return "no-document"
	case CaptureCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Capture is the result of gathering one snapshot from the editor.
// Snapshot is only meaningful when Status is CaptureOK.
type Capture struct {
	Status   CaptureStatus
	Snapshot compose.Snapshot
}

// Session binds one store to the host capabilities that feed and drain it.
// Construct one per interactive session and share it with every command
// handler of that session.
type Session struct {
	id       string
	store    *compose.Store
	editor   Editor
	sink     Sink
	notifier Notifier
	log      *logger.Logger
}

type Options struct {
	// ID tags log lines and exports; a random UUID when empty.
	ID       string
	Store    *compose.Store
	Editor   Editor
	Sink     Sink
	Notifier Notifier
	Logger   *logger.Logger
}

func New(opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	store := opts.Store
	if store == nil {
		store = compose.NewStore()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		id:       id,
		store:    store,
		editor:   opts.Editor,
		sink:     opts.Sink,
		notifier: opts.Notifier,
		log:      log.With("session", id),
	}
}

func (s *Session) ID() string { return s.id }

// SinkName names the configured sink for user-facing messages.
func (s *Session) SinkName() string {
	if s.sink == nil {
		return "nowhere"
	}
	return s.sink.Name()
}

// State returns a copy of the accumulated text and touched files.
func (s *Session) State() compose.State { return s.store.Snapshot() }

func (s *Session) Files() []string { return s.store.TouchedFiles() }

// Capture gathers a snapshot from the session's editor.
func (s *Session) Capture(ctx context.Context) Capture {
	return s.CaptureWith(ctx, s.editor)
}

// CaptureWith gathers a snapshot from ed. It never touches the store, so it
// may run off the goroutine that owns the session.
func (s *Session) CaptureWith(ctx context.Context, ed Editor) Capture {
	doc, ok := ed.ActiveDocument(ctx)
	if !ok {
		return Capture{Status: CaptureNoDocument}
	}
	note, ok := ed.PromptNote(ctx)
	if !ok {
		return Capture{Status: CaptureCancelled}
	}

	errs, err := ed.ErrorDiagnostics(ctx, doc.FileID)
	if err != nil {
		s.log.Warn("diagnostics unavailable, adding without errors", "file", doc.FileID, "error", err)
		errs = nil
	}
	errs = append([]compose.ErrorLine(nil), errs...)
	compose.SortErrors(errs)

	return Capture{
		Status: CaptureOK,
		Snapshot: compose.Snapshot{
			FileID:  doc.FileID,
			Note:    note,
			Content: doc.Content,
			Errors:  errs,
		},
	}
}

// Commit appends a successful capture to the store and returns the new
// state. Captures with any other status leave the store untouched.
func (s *Session) Commit(c Capture) (compose.State, bool) {
	if c.Status != CaptureOK {
		return compose.State{}, false
	}
	st := s.store.Append(c.Snapshot)
	s.log.Debug("entry added", "file", c.Snapshot.FileID, "errors", len(c.Snapshot.Errors), "entries", len(st.Files))
	return st, true
}

// Export writes st to the sink. A failure leaves the store as it is.
func (s *Session) Export(ctx context.Context, st compose.State) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Write(ctx, st); err != nil {
		s.log.Error("export failed", "sink", s.sink.Name(), "error", err)
		return fmt.Errorf("export to %s: %w", s.sink.Name(), err)
	}
	s.log.Debug("exported", "sink", s.sink.Name(), "bytes", len(st.Text), "files", len(st.Files))
	return nil
}

// AddFile runs the whole add flow: capture, commit, export, notify.
// Precondition failures are reported through the status and never mutate
// the store; the returned error is an export failure, after which the entry
// stays added.
func (s *Session) AddFile(ctx context.Context) (CaptureStatus, error) {
	c := s.Capture(ctx)
	switch c.Status {
	case CaptureNoDocument:
		s.notifyError("There is no active document")
		return c.Status, nil
	case CaptureCancelled:
		s.log.Debug("note prompt cancelled")
		return c.Status, nil
	}

	st, _ := s.Commit(c)
	if err := s.Export(ctx, st); err != nil {
		s.notifyError(fmt.Sprintf("Error copying content to %s", s.SinkName()))
		return c.Status, err
	}
	s.notify(AddedMessage(s.SinkName()), FilesDetail(st.Files))
	return c.Status, nil
}

// ExportNow re-exports the current aggregate, e.g. after a failed export.
func (s *Session) ExportNow(ctx context.Context) error {
	st := s.store.Snapshot()
	if st.Empty() {
		s.notify("Nothing accumulated yet", "")
		return ErrNothingToExport
	}
	if err := s.Export(ctx, st); err != nil {
		s.notifyError(fmt.Sprintf("Error copying content to %s", s.SinkName()))
		return err
	}
	s.notify(fmt.Sprintf("Accumulated content copied to %s.", s.SinkName()), FilesDetail(st.Files))
	return nil
}

// Clear resets the accumulated content. Idempotent.
func (s *Session) Clear() {
	s.store.Clear()
	s.log.Debug("store cleared")
	s.notify("Accumulated content cleared", "")
}

// AddedMessage is the notification shown after a successful add.
func AddedMessage(sinkName string) string {
	return fmt.Sprintf("File added and accumulated content copied to %s.", sinkName)
}

// FilesDetail lists touched files the way the add notification shows them.
func FilesDetail(files []string) string {
	return "Files:\n" + strings.Join(files, ", ")
}

func (s *Session) notify(message, detail string) {
	if s.notifier != nil {
		s.notifier.Notify(message, detail)
	}
}

func (s *Session) notifyError(message string) {
	if s.notifier != nil {
		s.notifier.NotifyError(message)
	}
}
