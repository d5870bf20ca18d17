package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	infoLabel  = color.New(color.FgGreen)
)

// Printer reports session feedback on a terminal or plain stream.
type Printer struct {
	Out io.Writer
	Err io.Writer
	// Fancy draws info messages in a bordered box.
	Fancy bool
	// Quiet suppresses informational messages; errors are always printed.
	Quiet bool
	Width int
}

func (p *Printer) Notify(message, detail string) {
	if p.Quiet || p.Out == nil {
		return
	}
	if p.Fancy {
		body := titleStyle.Render(message)
		if detail != "" {
			body += "\n" + detail
		}
		style := boxStyle
		if p.Width > 4 {
			style = style.MaxWidth(p.Width)
		}
		fmt.Fprintln(p.Out, style.Render(body))
		return
	}
	infoLabel.Fprint(p.Out, message)
	fmt.Fprintln(p.Out)
	if detail != "" {
		fmt.Fprintln(p.Out, indent(detail))
	}
}

func (p *Printer) NotifyError(message string) {
	w := p.Err
	if w == nil {
		w = p.Out
	}
	if w == nil {
		return
	}
	errorLabel.Fprint(w, "error:")
	fmt.Fprintln(w, " "+message)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
