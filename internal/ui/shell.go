package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ezcompose/internal/compose"
	"ezcompose/internal/session"
	"ezcompose/internal/workspace"
)

const commandPrompt = "› "

// Feed collects session notifications until the shell prints them. It is
// only touched from the shell's Update loop.
type Feed struct {
	lines []string
}

func (f *Feed) Notify(message, detail string) {
	line := infoStyle.Render(message)
	if detail != "" {
		line += "\n" + indent(detail)
	}
	f.lines = append(f.lines, line)
}

func (f *Feed) NotifyError(message string) {
	f.lines = append(f.lines, errorStyle.Render("error: "+message))
}

func (f *Feed) drain() []string {
	out := f.lines
	f.lines = nil
	return out
}

type shellMode uint8

const (
	modeCommand shellMode = iota
	modeNote
	modeBusy
)

type captureMsg struct{ capture session.Capture }

type exportMsg struct {
	state compose.State
	err   error
	added bool
}

// Shell is the interactive session. Captures and exports run as commands
// off the event loop; the store is only mutated inside Update.
type Shell struct {
	ctx      context.Context
	session  *session.Session
	editor   *workspace.Editor
	feed     *Feed
	input    textinput.Model
	spinner  spinner.Model
	mode     shellMode
	pending  string
	width    int
	history  []string
	quitting bool
}

// NewShell builds the shell model. feed must be the session's notifier.
func NewShell(ctx context.Context, sess *session.Session, ed *workspace.Editor, feed *Feed) *Shell {
	in := textinput.New()
	in.Prompt = commandPrompt
	in.Placeholder = "add <path>, clear, show, files, export, help, quit"
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	return &Shell{
		ctx:     ctx,
		session: sess,
		editor:  ed,
		feed:    feed,
		input:   in,
		spinner: sp,
		width:   80,
	}
}

// Run starts the shell on the given terminal streams.
func (m *Shell) Run(in io.Reader, out io.Writer) error {
	_, err := tea.NewProgram(m, tea.WithContext(m.ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	return err
}

func (m *Shell) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.input.Width = msg.Width - 4
		}
		return m, nil
	case spinner.TickMsg:
		if m.mode != modeBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case captureMsg:
		return m, m.onCapture(msg.capture)
	case exportMsg:
		return m, m.onExport(msg)
	case tea.KeyMsg:
		return m, m.onKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Shell) onKey(key tea.KeyMsg) tea.Cmd {
	if key.Type == tea.KeyCtrlC {
		m.quitting = true
		return tea.Quit
	}
	switch m.mode {
	case modeBusy:
		return nil
	case modeNote:
		switch key.Type {
		case tea.KeyEnter:
			note := m.input.Value()
			m.resetInput()
			m.mode = modeBusy
			return tea.Batch(m.captureCmd(note), m.spinner.Tick)
		case tea.KeyEsc:
			m.resetInput()
			m.mode = modeCommand
			return nil
		}
	case modeCommand:
		switch key.Type {
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) != "" {
				m.history = append(m.history, commandPrompt+line)
			}
			return m.exec(parseCommand(line))
		case tea.KeyCtrlD:
			m.quitting = true
			return tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return cmd
}

func (m *Shell) exec(c command) tea.Cmd {
	switch c.name {
	case "":
		return nil
	case "add":
		if c.arg != "" {
			id, err := m.editor.Focus(c.arg)
			if err != nil {
				m.feed.NotifyError(err.Error())
				return m.flush()
			}
			m.pending = id
		} else {
			abs, err := m.editor.ActivePath()
			if errors.Is(err, workspace.ErrNotFocused) {
				m.feed.NotifyError("There is no active document")
				return m.flush()
			}
			m.pending = m.editor.RelativePath(abs)
		}
		m.mode = modeNote
		m.input.Prompt = fmt.Sprintf("%s (%s) ", NotePrompt, m.pending)
		m.input.Placeholder = ""
		return nil
	case "clear":
		m.session.Clear()
		return m.flush()
	case "show":
		st := m.session.State()
		if st.Empty() {
			return m.print("nothing accumulated yet")
		}
		return m.print(strings.TrimRight(st.Text, "\n"))
	case "files":
		return m.print(FormatFiles(m.session.Files(), m.width))
	case "export":
		st := m.session.State()
		if st.Empty() {
			m.feed.Notify("Nothing accumulated yet", "")
			return m.flush()
		}
		m.mode = modeBusy
		return tea.Batch(m.exportCmd(st, false), m.spinner.Tick)
	case "help":
		return m.print(shellHelp)
	case "quit":
		m.quitting = true
		return tea.Quit
	}
	m.feed.NotifyError(fmt.Sprintf("unknown command %q (try help)", c.name))
	return m.flush()
}

func (m *Shell) onCapture(c session.Capture) tea.Cmd {
	switch c.Status {
	case session.CaptureNoDocument:
		m.mode = modeCommand
		m.feed.NotifyError("There is no active document")
		return m.flush()
	case session.CaptureCancelled:
		m.mode = modeCommand
		return nil
	}
	st, _ := m.session.Commit(c)
	return m.exportCmd(st, true)
}

func (m *Shell) onExport(msg exportMsg) tea.Cmd {
	m.mode = modeCommand
	switch {
	case msg.err != nil:
		m.feed.NotifyError(fmt.Sprintf("Error copying content to %s", m.session.SinkName()))
	case msg.added:
		m.feed.Notify(session.AddedMessage(m.session.SinkName()), session.FilesDetail(msg.state.Files))
	default:
		m.feed.Notify(fmt.Sprintf("Accumulated content copied to %s.", m.session.SinkName()), session.FilesDetail(msg.state.Files))
	}
	return m.flush()
}

func (m *Shell) captureCmd(note string) tea.Cmd {
	ed := m.editor.WithPrompter(workspace.FixedNote(note))
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		return captureMsg{capture: sess.CaptureWith(ctx, ed)}
	}
}

func (m *Shell) exportCmd(st compose.State, added bool) tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		return exportMsg{state: st, err: sess.Export(ctx, st), added: added}
	}
}

func (m *Shell) resetInput() {
	m.input.Reset()
	m.input.Prompt = commandPrompt
	m.pending = ""
}

func (m *Shell) print(text string) tea.Cmd {
	m.history = append(m.history, text)
	return tea.Println(text)
}

func (m *Shell) flush() tea.Cmd {
	lines := m.feed.drain()
	if len(lines) == 0 {
		return nil
	}
	return m.print(strings.Join(lines, "\n"))
}

func (m *Shell) View() string {
	if m.quitting {
		return ""
	}
	st := m.session.State()
	phase := compose.PhaseEmpty
	if !st.Empty() {
		phase = compose.PhaseAccumulating
	}
	header := titleStyle.Render("ezcompose") + mutedStyle.Render(fmt.Sprintf(" · %d entries · %s · sink: %s", len(st.Files), phase, m.session.SinkName()))

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	if m.mode == modeBusy {
		b.WriteString(m.spinner.View())
		b.WriteString(" working…")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteByte('\n')
	return b.String()
}
