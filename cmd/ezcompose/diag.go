package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ezcompose/internal/diag"
)

var diagCmd = &cobra.Command{
	Use:   "diag FILE",
	Short: "Show the diagnostics that would be attached to FILE",
	Long: `Diag runs the configured diagnostics sources for FILE and prints what they
report. Only errors end up in an entry; pass --all to see every severity.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiag,
}

func init() {
	diagCmd.Flags().Bool("all", false, "include warnings and notes")
	diagCmd.Flags().String("format", "short", "output format (short|json)")
}

func runDiag(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "short" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be short or json)", format)
	}

	a, err := newApp(cmd, appOptions{sinks: []string{"stdout"}})
	if err != nil {
		return err
	}
	defer a.close()

	fileID, err := a.editor.Focus(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	diags, err := a.editor.Diagnostics(ctx, fileID)
	if err != nil {
		return fmt.Errorf("%s: %w", fileID, err)
	}
	if !all {
		kept := diags[:0]
		for _, d := range diags {
			if d.IsError() {
				kept = append(kept, d)
			}
		}
		diags = kept
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return diag.EncodeReport(out, diags)
	}
	if len(diags) == 0 {
		a.printer.Notify(fmt.Sprintf("%s: no diagnostics", fileID), "")
		return nil
	}
	fmt.Fprintln(out, diag.FormatShort(diags))
	return nil
}
