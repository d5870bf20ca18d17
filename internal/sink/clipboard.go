package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"

	"ezcompose/internal/compose"
)

// ErrClipboardUnavailable is returned when neither a clipboard command nor a
// terminal to send OSC 52 to is available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard copies the aggregate text to the system clipboard. With Command
// set the text is piped to that program (pbcopy, wl-copy, xclip ...);
// otherwise an OSC 52 escape is written to Out, which must be a terminal.
type Clipboard struct {
	Command []string
	Out     io.Writer
}

func (c Clipboard) Name() string { return "clipboard" }

func (c Clipboard) Write(ctx context.Context, st compose.State) error {
	if len(c.Command) > 0 {
		return c.pipe(ctx, st.Text)
	}
	if !isTerminal(c.Out) {
		return ErrClipboardUnavailable
	}
	seq := osc52.New(st.Text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(os.Getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(c.Out); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

func (c Clipboard) pipe(ctx context.Context, text string) error {
	// #nosec G204 -- the command comes from the user's own config
	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrClipboardUnavailable, c.Command[0], err, msg)
		}
		return fmt.Errorf("%w: %s: %v", ErrClipboardUnavailable, c.Command[0], err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
