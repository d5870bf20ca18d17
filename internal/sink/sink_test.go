package sink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ezcompose/internal/compose"
	"ezcompose/internal/config"
)

func sampleState() compose.State {
	store := compose.NewStore()
	store.Add(compose.Snapshot{FileID: "a.go", Note: "n", Content: "package a"})
	store.Add(compose.Snapshot{FileID: "a.go", Note: "again", Content: "package a"})
	return store.Snapshot()
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	st := sampleState()
	if err := (Writer{W: &buf}).Write(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	if buf.String() != st.Text {
		t.Fatalf("wrote %q", buf.String())
	}
}

func TestFile_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "compose.txt")
	f := File{Path: path}
	st := sampleState()

	if err := f.Write(context.Background(), compose.State{Text: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != st.Text {
		t.Fatalf("file = %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestBundle_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compose.mp")
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	b := Bundle{Path: path, SessionID: "sess-1", Now: func() time.Time { return at }}
	st := sampleState()

	if err := b.Write(context.Background(), st); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := ReadBundle(path)
	if err != nil {
		t.Fatalf("ReadBundle: %v", err)
	}
	if got.Text != st.Text || got.SessionID != "sess-1" || !got.ExportedAt.Equal(at) {
		t.Fatalf("payload = %+v", got)
	}
	if strings.Join(got.Files, ",") != "a.go,a.go" {
		t.Fatalf("files = %v", got.Files)
	}
}

func TestReadBundle_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mp")
	if err := os.WriteFile(path, []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBundle(path); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestClipboard_NoTerminal(t *testing.T) {
	var buf bytes.Buffer
	err := Clipboard{Out: &buf}.Write(context.Background(), sampleState())
	if !errors.Is(err, ErrClipboardUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("nothing should be written to a non-terminal")
	}
}

func TestClipboard_Command(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out := filepath.Join(t.TempDir(), "clip.txt")
	c := Clipboard{Command: []string{"sh", "-c", `cat > "$0"`, out}}
	st := sampleState()
	if err := c.Write(context.Background(), st); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != st.Text {
		t.Fatalf("clipboard got %q", data)
	}

	failing := Clipboard{Command: []string{"sh", "-c", "echo nope >&2; exit 3"}}
	err = failing.Write(context.Background(), st)
	if !errors.Is(err, ErrClipboardUnavailable) || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("err = %v", err)
	}
}

type stubSink struct {
	name string
	err  error
	n    int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Write(context.Context, compose.State) error {
	s.n++
	return s.err
}

func TestMulti_WritesAllAndJoins(t *testing.T) {
	boom := errors.New("boom")
	a, b := &stubSink{name: "a", err: boom}, &stubSink{name: "b"}
	m := Multi{a, b}
	err := m.Write(context.Background(), compose.State{})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "a: boom") {
		t.Fatalf("err = %v", err)
	}
	if a.n != 1 || b.n != 1 {
		t.Fatal("every sink must be written")
	}
	if m.Name() != "a, b" {
		t.Fatalf("name = %q", m.Name())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Export
	cfg.Sinks = []string{"stdout", "File", "bundle", "clipboard"}
	root := t.TempDir()

	m, err := FromConfig(cfg, Options{Root: root, SessionID: "s"})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(m) != 4 {
		t.Fatalf("sinks = %d", len(m))
	}
	if f, ok := m[1].(File); !ok || f.Path != filepath.Join(root, "ezcompose.txt") {
		t.Fatalf("file sink = %#v", m[1])
	}
	if b, ok := m[2].(Bundle); !ok || b.SessionID != "s" {
		t.Fatalf("bundle sink = %#v", m[2])
	}

	override, err := FromConfig(cfg, Options{Names: []string{"stdout"}})
	if err != nil || len(override) != 1 || override.Name() != "stdout" {
		t.Fatalf("override = %v, %v", override, err)
	}

	if _, err := FromConfig(cfg, Options{Names: []string{"fax"}}); err == nil {
		t.Fatal("expected an error for an unknown sink")
	}
}
