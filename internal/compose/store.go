package compose

import (
	"strings"
	"sync"
)

// Phase is the logical state of a Store.
type Phase uint8

const (
	// PhaseEmpty is the initial phase and the phase after every Clear.
	PhaseEmpty Phase = iota
	// PhaseAccumulating is entered by the first Add after PhaseEmpty.
	PhaseAccumulating
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseAccumulating:
		return "accumulating"
	}
	return "unknown"
}

// State is a point-in-time copy of the store contents.
type State struct {
	Text  string
	Files []string
}

// Empty reports whether nothing has been added since the last reset.
func (s State) Empty() bool {
	return len(s.Files) == 0
}

// Store owns the aggregate buffer and the touched-file log. One Store lives
// for the length of a session; the zero value is ready to use.
//
// The mutex covers both fields together: a reader never observes the text of
// an entry without its file id or the other way round.
type Store struct {
	mu    sync.Mutex
	text  strings.Builder
	files []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add formats the snapshot and appends it together with its file id.
// Adding the same snapshot twice appends it twice.
func (s *Store) Add(snap Snapshot) {
	block := FormatEntry(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.WriteString(block)
	s.files = append(s.files, snap.FileID)
}

// Append adds the snapshot like Add and returns the contents right after it,
// under the same lock, so no concurrent Add can land in between.
func (s *Store) Append(snap Snapshot) State {
	block := FormatEntry(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.WriteString(block)
	s.files = append(s.files, snap.FileID)
	return State{
		Text:  s.text.String(),
		Files: s.copyFiles(),
	}
}

// Clear resets the buffer and the touched-file log. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.Reset()
	s.files = nil
}

// Snapshot returns the current contents. The result shares nothing with the
// store.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Text:  s.text.String(),
		Files: s.copyFiles(),
	}
}

// TouchedFiles returns the file ids added since the last Clear, in call
// order, duplicates included.
func (s *Store) TouchedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyFiles()
}

// Len returns the number of entries added since the last Clear.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Phase reports whether anything has been added since the last Clear.
func (s *Store) Phase() Phase {
	if s.Len() == 0 {
		return PhaseEmpty
	}
	return PhaseAccumulating
}

func (s *Store) copyFiles() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}
