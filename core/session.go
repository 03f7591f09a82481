package core

import (
	"sync"
	"time"
)

// Session is a conversational container holding an ordered turn history.
// It is safe for concurrent access; appends for one session are serialized by
// the internal mutex while different sessions never contend.
//
// Contract:
//   - Append updates the Updated timestamp
//   - History returns a defensive copy so collaborators only see snapshots
//   - Clone performs a deep copy for safe divergence
type Session struct {
	ID      string     `json:"id"`
	Turns   []ChatTurn `json:"turns"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates an empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Turns: []ChatTurn{}, Created: now, Updated: now}
}

// Append adds a turn to the history updating the Updated timestamp.
func (s *Session) Append(turn ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, turn)
	s.Updated = time.Now().UTC()
}

// History returns a copy of the full turn slice to prevent callers from
// mutating internal state.
func (s *Session) History() []ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]ChatTurn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// LastUserMessage returns the content of the most recent user turn, or the
// empty string if the session has none.
func (s *Session) LastUserMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i].Content
		}
	}
	return ""
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Turns: make([]ChatTurn, len(s.Turns)), Created: s.Created, Updated: s.Updated}
	copy(clone.Turns, s.Turns)
	return clone
}

// SessionStore persists sessions and their evolving turn history. The turn
// pipeline is the single writer; collaborators read snapshots via Get.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendTurn(sessionID string, turn ChatTurn) error
}
