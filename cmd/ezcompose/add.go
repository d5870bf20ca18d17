package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ezcompose/internal/observ"
	"ezcompose/internal/session"
	"ezcompose/internal/ui"
	"ezcompose/internal/workspace"
)

var addCmd = &cobra.Command{
	Use:   "add FILE...",
	Short: "Add files with a note and their errors, then export the result",
	Long: `Add composes the given files in order: each one is captured with a note and
the error diagnostics reported for it, and the accumulated text is exported
once at the end. Diagnostics for all files are collected up front, in
parallel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("note", "", "use this note for every file instead of prompting")
	addCmd.Flags().StringSlice("sink", nil, "export sinks (clipboard|stdout|file|bundle); overrides [export].sinks")
	addCmd.Flags().Int("jobs", 0, "parallel diagnostics collections (default [diagnostics].jobs)")
}

// batchOptions drive composeFiles.
type batchOptions struct {
	prefetch *workspace.Prefetcher
	jobs     int
	// prompterFor returns the note prompter for one file; nil keeps the
	// editor's own.
	prompterFor func(fileID string) workspace.Prompter
	timer       *observ.Timer
}

func runAdd(cmd *cobra.Command, args []string) error {
	noteSet := cmd.Flags().Changed("note")
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return err
	}
	sinks, err := cmd.Flags().GetStringSlice("sink")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must not be negative")
	}
	useTUI, err := uiModeFlag(cmd)
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	var (
		prompter    workspace.Prompter
		prompterFor func(string) workspace.Prompter
	)
	switch {
	case noteSet:
		prompter = workspace.FixedNote(note)
	case useTUI:
		prompter = ui.TUIPrompter{}
		prompterFor = func(fileID string) workspace.Prompter {
			return ui.TUIPrompter{Title: fileID}
		}
	default:
		r, out := bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr()
		prompter = ui.LinePrompter{R: r, Out: out}
		prompterFor = func(fileID string) workspace.Prompter {
			return ui.LinePrompter{R: r, Out: out, Title: fileID}
		}
	}

	var prefetch *workspace.Prefetcher
	a, err := newApp(cmd, appOptions{
		sinks:    sinks,
		prompter: prompter,
		tui:      useTUI,
		source: func(src workspace.Source) workspace.Source {
			prefetch = workspace.NewPrefetcher(src)
			return prefetch
		},
	})
	if err != nil {
		return err
	}
	defer a.close()

	if jobs == 0 {
		jobs = a.cfg.Diagnostics.Jobs
	}
	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), timer.Summary()) }()
	}
	return composeFiles(cmd.Context(), a, args, batchOptions{
		prefetch:    prefetch,
		jobs:        jobs,
		prompterFor: prompterFor,
		timer:       timer,
	})
}

// composeFiles captures every path in order and exports once. Files that
// vanish or whose note is cancelled are skipped; only export failures and
// unreadable paths are errors.
func composeFiles(ctx context.Context, a *app, paths []string, opts batchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		abs = append(abs, resolved)
	}

	if opts.prefetch != nil {
		keys := make([]string, 0, len(abs))
		for _, p := range abs {
			keys = append(keys, a.editor.AbsPath(a.editor.RelativePath(p)))
		}
		phase := opts.timer.Begin("diagnostics")
		err := opts.prefetch.Prefetch(ctx, keys, opts.jobs)
		opts.timer.End(phase, fmt.Sprintf("%d files, %d jobs", len(keys), opts.jobs))
		if err != nil {
			return fmt.Errorf("collect diagnostics: %w", err)
		}
	}

	capture := opts.timer.Begin("capture")
	added := 0
	for _, p := range abs {
		fileID, err := a.editor.Focus(p)
		if err != nil {
			return err
		}
		ed := a.editor
		if opts.prompterFor != nil {
			ed = ed.WithPrompter(opts.prompterFor(fileID))
		}

		c := a.session.CaptureWith(ctx, ed)
		switch c.Status {
		case session.CaptureNoDocument:
			a.printer.NotifyError("There is no active document")
			continue
		case session.CaptureCancelled:
			a.log.Info("note cancelled, skipping file", "file", fileID)
			continue
		}
		a.session.Commit(c)
		added++
	}
	opts.timer.End(capture, fmt.Sprintf("%d of %d added", added, len(abs)))

	if added == 0 {
		a.printer.Notify("Nothing accumulated yet", "")
		return nil
	}

	st := a.session.State()
	export := opts.timer.Begin("export")
	err := a.session.Export(ctx, st)
	opts.timer.End(export, a.session.SinkName())
	if err != nil {
		a.printer.NotifyError(fmt.Sprintf("Error copying content to %s", a.session.SinkName()))
		return err
	}
	a.printer.Notify(session.AddedMessage(a.session.SinkName()), session.FilesDetail(st.Files))
	return nil
}
