package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"

	"ezcompose/internal/compose"
	"ezcompose/internal/session"
	"ezcompose/internal/workspace"
)

func init() {
	color.NoColor = true
}

type recordingSink struct {
	err     error
	written []compose.State
}

func (r *recordingSink) Name() string { return "clipboard" }

func (r *recordingSink) Write(_ context.Context, st compose.State) error {
	r.written = append(r.written, st)
	return r.err
}

func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEditor(t *testing.T, root string, p workspace.Prompter) *workspace.Editor {
	t.Helper()
	ed, err := workspace.NewEditor(workspace.EditorOptions{Root: root, Prompter: p})
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	return ed
}

func newTestSession(ed *workspace.Editor, sink *recordingSink, n session.Notifier) *session.Session {
	return session.New(session.Options{Editor: ed, Sink: sink, Notifier: n})
}
