package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ezcompose/internal/sink"
	"ezcompose/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect BUNDLE",
	Short: "Print the contents of an exported msgpack bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|text|json)")
}

type inspectPayload struct {
	SessionID  string   `json:"session_id"`
	ExportedAt string   `json:"exported_at"`
	Files      []string `json:"files"`
	Text       string   `json:"text"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorFlag); err != nil {
		return err
	}

	payload, err := sink.ReadBundle(args[0])
	if err != nil {
		return err
	}
	return renderBundle(cmd.OutOrStdout(), payload, strings.ToLower(strings.TrimSpace(format)))
}

func renderBundle(out io.Writer, p sink.BundlePayload, format string) error {
	switch format {
	case "text":
		_, err := io.WriteString(out, p.Text)
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		files := p.Files
		if files == nil {
			files = []string{}
		}
		return enc.Encode(inspectPayload{
			SessionID:  p.SessionID,
			ExportedAt: p.ExportedAt.UTC().Format(time.RFC3339),
			Files:      files,
			Text:       p.Text,
		})
	case "pretty":
		fmt.Fprintf(out, "session:  %s\n", valueOrUnknown(p.SessionID))
		fmt.Fprintf(out, "exported: %s\n", p.ExportedAt.UTC().Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(out, "files:\n%s\n\n", ui.FormatFiles(p.Files, 80))
		_, err := io.WriteString(out, p.Text)
		return err
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, text or json)", format)
	}
}
