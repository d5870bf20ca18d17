package session

import (
	"context"

	"ezcompose/internal/compose"
)

// Document is the text of the active document at capture time.
type Document struct {
	FileID  string
	Content string
}

// Editor provides the inputs of a capture.
type Editor interface {
	// ActiveDocument returns false when there is no document to capture.
	ActiveDocument(ctx context.Context) (Document, bool)
	// PromptNote returns false when the user cancelled the prompt.
	PromptNote(ctx context.Context) (string, bool)
	// ErrorDiagnostics returns error-severity diagnostics for the file.
	ErrorDiagnostics(ctx context.Context, fileID string) ([]compose.ErrorLine, error)
}

// Sink is an external destination for the aggregate, e.g. the clipboard.
type Sink interface {
	Name() string
	Write(ctx context.Context, st compose.State) error
}

// Notifier delivers fire-and-forget feedback to the user.
type Notifier interface {
	Notify(message, detail string)
	NotifyError(message string)
}
