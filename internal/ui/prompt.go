package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// NotePrompt is the label shown when asking for a note.
const NotePrompt = "Add note:"

type noteModel struct {
	title     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newNoteInput() textinput.Model {
	in := textinput.New()
	in.Prompt = NotePrompt + " "
	in.Placeholder = "what should the reader know about this file?"
	in.CharLimit = 0
	in.Focus()
	return in
}

func newNoteModel(title string) noteModel {
	return noteModel{title: title, input: newNoteInput()}
}

func (m noteModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m noteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m noteModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render("enter to add, esc to cancel"))
	b.WriteByte('\n')
	return b.String()
}

// TUIPrompter asks for a note with a one-shot Bubble Tea program.
type TUIPrompter struct {
	In    io.Reader
	Out   io.Writer
	Title string
}

func (p TUIPrompter) PromptNote(ctx context.Context) (string, bool) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(newNoteModel(p.Title), opts...).Run()
	if err != nil {
		return "", false
	}
	m, ok := final.(noteModel)
	if !ok || !m.done {
		return "", false
	}
	return m.input.Value(), true
}

// LinePrompter reads the note as one line of text. End of input cancels.
type LinePrompter struct {
	R   *bufio.Reader
	Out io.Writer
	// Title names the file the note is for; shown in the prompt when set.
	Title string
}

func (p LinePrompter) PromptNote(context.Context) (string, bool) {
	if p.Out != nil {
		if p.Title != "" {
			fmt.Fprintf(p.Out, "%s (%s) ", NotePrompt, p.Title)
		} else {
			fmt.Fprint(p.Out, NotePrompt+" ")
		}
	}
	line, err := p.R.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
