package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ezcompose/internal/compose"
	"ezcompose/internal/diag"
	"ezcompose/internal/logger"
	"ezcompose/internal/session"
)

// ErrNotFocused is returned when no file has been focused yet.
var ErrNotFocused = errors.New("no active document")

// Prompter asks the user for a note. ok is false when the user cancelled.
type Prompter interface {
	PromptNote(ctx context.Context) (note string, ok bool)
}

// FixedNote is a Prompter that always answers with the same note.
type FixedNote string

func (n FixedNote) PromptNote(context.Context) (string, bool) { return string(n), true }

// Cancelled is a Prompter that always cancels.
type Cancelled struct{}

func (Cancelled) PromptNote(context.Context) (string, bool) { return "", false }

// Editor plays the host editor on top of the file system: the focused file
// is the active document, identified by its workspace-relative path.
type Editor struct {
	root     string
	focused  string
	prompter Prompter
	diags    Source
	max      int
	log      *logger.Logger
}

type EditorOptions struct {
	Root     string
	Prompter Prompter
	Source   Source
	// MaxDiagnostics caps the diagnostics collected per capture; 0 means no cap.
	MaxDiagnostics int
	Logger         *logger.Logger
}

func NewEditor(opts EditorOptions) (*Editor, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = Cancelled{}
	}
	return &Editor{
		root:     abs,
		prompter: prompter,
		diags:    opts.Source,
		max:      opts.MaxDiagnostics,
		log:      log,
	}, nil
}

func (e *Editor) Root() string { return e.root }

// WithPrompter returns a copy of the editor that asks p for notes.
func (e *Editor) WithPrompter(p Prompter) *Editor {
	cp := *e
	cp.prompter = p
	return &cp
}

// Focus makes path the active document and returns its file id. Relative
// paths are resolved against the working directory.
func (e *Editor) Focus(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: no such file", path)
		}
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory", path)
	}
	e.focused = abs
	return e.RelativePath(abs), nil
}

// ActivePath returns the absolute path of the active document, or
// ErrNotFocused.
func (e *Editor) ActivePath() (string, error) {
	if e.focused == "" {
		return "", ErrNotFocused
	}
	return e.focused, nil
}

// Focused returns the file id of the active document.
func (e *Editor) Focused() (string, bool) {
	if e.focused == "" {
		return "", false
	}
	return e.RelativePath(e.focused), true
}

// RelativePath turns an absolute path into a file id.
func (e *Editor) RelativePath(abs string) string {
	return RelativePath(e.root, abs)
}

// RelativePath turns an absolute path into a file id: slash-separated,
// NFC-normalised, relative to root when the file is inside it.
func RelativePath(root, abs string) string {
	p := abs
	if rel, err := filepath.Rel(root, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		p = rel
	}
	return norm.NFC.String(filepath.ToSlash(p))
}

// AbsPath maps a file id back to an absolute path.
func (e *Editor) AbsPath(fileID string) string {
	p := filepath.FromSlash(fileID)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.root, p)
}

// ToolPaths returns a diag.PathFunc mapping paths printed by a tool that
// runs in root to file ids.
func ToolPaths(root string) diag.PathFunc {
	return func(p string) string {
		p = filepath.FromSlash(strings.TrimSpace(p))
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		return RelativePath(root, filepath.Clean(p))
	}
}

func (e *Editor) ActiveDocument(ctx context.Context) (session.Document, bool) {
	if e.focused == "" {
		return session.Document{}, false
	}
	data, err := os.ReadFile(e.focused)
	if err != nil {
		e.log.Warn("active document unreadable", "path", e.focused, "error", err)
		return session.Document{}, false
	}
	return session.Document{
		FileID:  e.RelativePath(e.focused),
		Content: string(data),
	}, true
}

func (e *Editor) PromptNote(ctx context.Context) (string, bool) {
	return e.prompter.PromptNote(ctx)
}

func (e *Editor) ErrorDiagnostics(ctx context.Context, fileID string) ([]compose.ErrorLine, error) {
	if e.diags == nil {
		return nil, nil
	}
	bag := diag.NewBag(e.max)
	if err := e.diags.Collect(ctx, e.AbsPath(fileID), diag.FilterReporter{
		Next: diag.BagReporter{Bag: bag},
		Keep: func(d diag.Diagnostic) bool { return d.IsError() && d.Path == fileID },
	}); err != nil {
		return nil, err
	}
	bag.Dedup()
	found := bag.ErrorsFor(fileID)
	out := make([]compose.ErrorLine, 0, len(found))
	for _, d := range found {
		out = append(out, compose.ErrorLine{Line: d.Line, Message: d.Message})
	}
	return out, nil
}

// Diagnostics returns every diagnostic the source reports for fileID,
// whatever its severity.
func (e *Editor) Diagnostics(ctx context.Context, fileID string) ([]diag.Diagnostic, error) {
	if e.diags == nil {
		return nil, nil
	}
	bag := diag.NewBag(e.max)
	if err := e.diags.Collect(ctx, e.AbsPath(fileID), diag.FilterReporter{
		Next: diag.BagReporter{Bag: bag},
		Keep: func(d diag.Diagnostic) bool { return d.Path == fileID },
	}); err != nil {
		return nil, err
	}
	bag.Dedup()
	bag.Sort()
	return bag.Items(), nil
}
