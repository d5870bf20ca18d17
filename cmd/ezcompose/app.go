package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ezcompose/internal/config"
	"ezcompose/internal/logger"
	"ezcompose/internal/session"
	"ezcompose/internal/sink"
	"ezcompose/internal/ui"
	"ezcompose/internal/workspace"
)

// appOptions are the per-command knobs that shape the wiring.
type appOptions struct {
	sinks    []string
	prompter workspace.Prompter
	// notifier replaces the printer as the session's notifier when set.
	notifier session.Notifier
	tui      bool
	// source wraps the configured diagnostics source, e.g. with a prefetcher.
	source func(workspace.Source) workspace.Source
}

// app is everything one command invocation works with.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	printer *ui.Printer
	editor  *workspace.Editor
	sinks   sink.Multi
	session *session.Session
	stdout  io.Writer
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	levelFlag, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	if err := applyColorMode(colorFlag); err != nil {
		return nil, err
	}

	cfg, err := config.Resolve("", configPath)
	if err != nil {
		return nil, err
	}
	if levelFlag != "" {
		cfg.Log.Level = levelFlag
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log.Debug("config resolved", "path", cfg.Path, "root", cfg.Workspace.Root, "sinks", cfg.Export.Sinks)

	printer := &ui.Printer{
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
		Fancy: opts.tui,
		Quiet: quiet,
		Width: terminalWidth(os.Stdout, 80),
	}

	source := workspace.FromConfig(cfg.Diagnostics, cfg.Workspace.Root)
	if opts.source != nil && source != nil {
		source = opts.source(source)
	}
	editor, err := workspace.NewEditor(workspace.EditorOptions{
		Root:           cfg.Workspace.Root,
		Prompter:       opts.prompter,
		Source:         source,
		MaxDiagnostics: cfg.Diagnostics.Max,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sinks, err := sink.FromConfig(cfg.Export, sink.Options{
		Stdout:    cmd.OutOrStdout(),
		Terminal:  os.Stdout,
		Root:      cfg.Workspace.Root,
		SessionID: id,
		Names:     opts.sinks,
	})
	if err != nil {
		return nil, fmt.Errorf("export sinks: %w", err)
	}

	var notifier session.Notifier = printer
	if opts.notifier != nil {
		notifier = opts.notifier
	}
	sess := session.New(session.Options{
		ID:       id,
		Editor:   editor,
		Sink:     sinks,
		Notifier: notifier,
		Logger:   log,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		printer: printer,
		editor:  editor,
		sinks:   sinks,
		session: sess,
		stdout:  cmd.OutOrStdout(),
	}, nil
}

func (a *app) close() {
	a.log.Sync()
}

func uiModeFlag(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return false, err
	}
	mode, err := readUIMode(value)
	if err != nil {
		return false, err
	}
	return shouldUseTUI(mode), nil
}
