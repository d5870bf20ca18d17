package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ezcompose/internal/session"
	"ezcompose/internal/workspace"
)

// LineShell runs session commands read line by line, for pipes and dumb
// terminals. The editor's note prompter should read from the same R.
type LineShell struct {
	R       *bufio.Reader
	Out     io.Writer
	Session *session.Session
	Editor  *workspace.Editor
	Printer *Printer
	Width   int
	// Prompt is printed before every command when set.
	Prompt string
}

// Run executes commands until quit or end of input.
func (l *LineShell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Prompt != "" {
			fmt.Fprint(l.Out, l.Prompt)
		}
		line, err := l.R.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line != "" {
			if quit := l.exec(ctx, parseCommand(line)); quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (l *LineShell) exec(ctx context.Context, c command) bool {
	switch c.name {
	case "":
	case "add":
		if c.arg != "" {
			if _, err := l.Editor.Focus(c.arg); err != nil {
				l.Printer.NotifyError(err.Error())
				return false
			}
		}
		// Export failures are already reported by the session.
		_, _ = l.Session.AddFile(ctx)
	case "clear":
		l.Session.Clear()
	case "show":
		st := l.Session.State()
		if st.Empty() {
			fmt.Fprintln(l.Out, "nothing accumulated yet")
			return false
		}
		fmt.Fprint(l.Out, st.Text)
	case "files":
		fmt.Fprintln(l.Out, FormatFiles(l.Session.Files(), l.Width))
	case "export":
		_ = l.Session.ExportNow(ctx)
	case "help":
		fmt.Fprintln(l.Out, shellHelp)
	case "quit":
		return true
	default:
		l.Printer.NotifyError(fmt.Sprintf("unknown command %q (try help)", strings.TrimSpace(c.name)))
	}
	return false
}
