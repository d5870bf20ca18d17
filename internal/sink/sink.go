package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ezcompose/internal/compose"
	"ezcompose/internal/config"
)

// Sink is an export destination for the aggregate.
type Sink interface {
	Name() string
	Write(ctx context.Context, st compose.State) error
}

// Writer copies the aggregate text to an io.Writer such as stdout.
type Writer struct {
	W     io.Writer
	Label string
}

func (w Writer) Name() string {
	if w.Label == "" {
		return "stdout"
	}
	return w.Label
}

func (w Writer) Write(_ context.Context, st compose.State) error {
	_, err := io.WriteString(w.W, st.Text)
	return err
}

// File writes the aggregate text to a file, replacing it atomically.
type File struct {
	Path string
}

func (f File) Name() string { return f.Path }

func (f File) Write(_ context.Context, st compose.State) error {
	return writeAtomic(f.Path, func(w io.Writer) error {
		_, err := io.WriteString(w, st.Text)
		return err
	})
}

// Multi writes to every sink, even after a failure.
type Multi []Sink

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return strings.Join(names, ", ")
}

func (m Multi) Write(ctx context.Context, st compose.State) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, st); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Options carries the runtime pieces FromConfig cannot read from config.
type Options struct {
	Stdout    io.Writer
	Terminal  io.Writer
	Root      string
	SessionID string
	// Names overrides cfg.Sinks when non-empty.
	Names []string
}

// FromConfig builds the sinks named in the export config.
func FromConfig(cfg config.ExportConfig, opts Options) (Multi, error) {
	names := cfg.Sinks
	if len(opts.Names) > 0 {
		names = opts.Names
	}
	out := make(Multi, 0, len(names))
	for _, raw := range names {
		switch name := strings.ToLower(strings.TrimSpace(raw)); name {
		case config.SinkClipboard:
			out = append(out, Clipboard{Command: cfg.ClipboardCommand, Out: opts.Terminal})
		case config.SinkStdout:
			w := opts.Stdout
			if w == nil {
				w = os.Stdout
			}
			out = append(out, Writer{W: w})
		case config.SinkFile:
			out = append(out, File{Path: resolve(opts.Root, cfg.File)})
		case config.SinkBundle:
			out = append(out, Bundle{Path: resolve(opts.Root, cfg.Bundle), SessionID: opts.SessionID})
		default:
			return nil, fmt.Errorf("unknown sink %q", raw)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}
	return out, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".ezcompose-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
