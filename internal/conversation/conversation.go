// Package conversation holds the ordered turn log of a single
// conversation and its derived counters. A State is owned by exactly
// one session and is threaded explicitly through every operation that
// touches it; there is no ambient global history.
package conversation

import (
	"time"

	"github.com/undergrid/recall/internal/provider"
)

// State is the ordered turn log of one conversation. Turns preserve
// strict insertion order. After a compaction the log contains exactly
// one system turn (the summary) followed by the turns appended since.
type State struct {
	turns     []provider.Message
	createdAt time.Time
}

// New returns an empty State.
func New() *State {
	return &State{createdAt: time.Now()}
}

// Restore builds a State whose turn sequence is exactly the given
// sequence, unmodified. The input is copied.
func Restore(turns []provider.Message) *State {
	s := New()
	s.turns = make([]provider.Message, len(turns))
	copy(s.turns, turns)
	return s
}

// AppendUser appends a user turn.
func (s *State) AppendUser(content string) {
	s.turns = append(s.turns, provider.Message{Role: provider.MessageRoleUser, Content: content})
}

// AppendAssistant appends an assistant turn.
func (s *State) AppendAssistant(content string) {
	s.turns = append(s.turns, provider.Message{Role: provider.MessageRoleAssistant, Content: content})
}

// Replace discards the entire turn sequence and installs the given
// turns in its place. Used by compaction to collapse the log into a
// single summary turn.
func (s *State) Replace(turns []provider.Message) {
	s.turns = make([]provider.Message, len(turns))
	copy(s.turns, turns)
}

// Turns returns a copy of the turn sequence in insertion order.
func (s *State) Turns() []provider.Message {
	out := make([]provider.Message, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *State) Len() int {
	return len(s.turns)
}

// UserTurnCount returns the number of turns with role user. The
// compaction trigger counts user turns so that each user/assistant
// exchange counts once.
func (s *State) UserTurnCount() int {
	n := 0
	for i := range s.turns {
		if s.turns[i].Role == provider.MessageRoleUser {
			n++
		}
	}
	return n
}

// CreatedAt returns the creation time of the State.
func (s *State) CreatedAt() time.Time {
	return s.createdAt
}
