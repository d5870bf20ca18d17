package main

import (
	"bufio"
	"context"
	"os"

	"github.com/spf13/cobra"

	"ezcompose/internal/ui"
)

var sessionCmd = &cobra.Command{
	Use:   "session [FILE]",
	Short: "Start an interactive session that accumulates files until you quit",
	Long: `Session keeps one accumulation buffer for as long as it runs. Every add
appends an entry and re-exports the whole buffer; clear resets it. FILE, when
given, becomes the active document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().StringSlice("sink", nil, "export sinks (clipboard|stdout|file|bundle); overrides [export].sinks")
}

func runSession(cmd *cobra.Command, args []string) error {
	sinks, err := cmd.Flags().GetStringSlice("sink")
	if err != nil {
		return err
	}
	useTUI, err := uiModeFlag(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if useTUI {
		feed := &ui.Feed{}
		a, err := newApp(cmd, appOptions{sinks: sinks, notifier: feed, tui: true})
		if err != nil {
			return err
		}
		defer a.close()
		if err := focusInitial(a, args); err != nil {
			return err
		}
		a.log.Info("session started", "id", a.session.ID(), "ui", "tui")
		return ui.NewShell(ctx, a.session, a.editor, feed).Run(os.Stdin, cmd.OutOrStdout())
	}

	r := bufio.NewReader(cmd.InOrStdin())
	a, err := newApp(cmd, appOptions{
		sinks:    sinks,
		prompter: ui.LinePrompter{R: r, Out: cmd.ErrOrStderr()},
	})
	if err != nil {
		return err
	}
	defer a.close()
	if err := focusInitial(a, args); err != nil {
		return err
	}
	a.log.Info("session started", "id", a.session.ID(), "ui", "lines")

	prompt := ""
	if isTerminal(os.Stdin) {
		prompt = "ezcompose> "
	}
	shell := &ui.LineShell{
		R:       r,
		Out:     cmd.OutOrStdout(),
		Session: a.session,
		Editor:  a.editor,
		Printer: a.printer,
		Width:   a.printer.Width,
		Prompt:  prompt,
	}
	return shell.Run(ctx)
}

func focusInitial(a *app, args []string) error {
	if len(args) == 0 {
		return nil
	}
	_, err := a.editor.Focus(args[0])
	return err
}
