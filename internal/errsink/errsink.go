// Package errsink collects the diagnostics produced during a parse lifecycle.
package errsink

import "fmt"

// Sink is an ordered list of diagnostic strings, most recent last.
// It is not safe for concurrent use.
type Sink struct {
	entries []string
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Push appends a diagnostic.
func (s *Sink) Push(msg string) {
	s.entries = append(s.entries, msg)
}

// Pushf appends a formatted diagnostic.
func (s *Sink) Pushf(format string, args ...any) {
	s.Push(fmt.Sprintf(format, args...))
}

// PushErr appends err's message. A nil error is ignored.
func (s *Sink) PushErr(err error) {
	if err != nil {
		s.Push(err.Error())
	}
}

// All returns a copy of every diagnostic in push order.
func (s *Sink) All() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Last removes and returns the most recently pushed diagnostic.
func (s *Sink) Last() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return last, true
}

// Len returns the number of diagnostics held.
func (s *Sink) Len() int {
	return len(s.entries)
}

// Clear drops every diagnostic.
func (s *Sink) Clear() {
	s.entries = nil
}
