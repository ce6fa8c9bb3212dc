package agent

import (
	"sync"

	"github.com/tsagbook/booking-platform/internal/llm"
	"github.com/tsagbook/booking-platform/pkg/metrics"
)

// SessionStore holds per-session conversation transcripts. Implementations
// may assume at most one in-flight message per session id; concurrent
// access across sessions must be safe.
type SessionStore interface {
	// History returns the transcript and whether the session exists.
	History(sessionID string) ([]llm.Message, bool)

	// Append adds turns to the end of a session's transcript, creating
	// the session if needed.
	Append(sessionID string, turns ...llm.Message)

	// Clear discards a session's transcript entirely.
	Clear(sessionID string)
}

// MemorySessionStore keeps transcripts in process memory for the process
// lifetime. Horizontally scaled deployments need sticky routing or an
// external implementation of SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]llm.Message
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]llm.Message),
	}
}

// History returns a copy of the session transcript.
func (s *MemorySessionStore) History(sessionID string) ([]llm.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]llm.Message, len(turns))
	copy(out, turns)
	return out, true
}

// Append adds turns to a session, creating it if needed.
func (s *MemorySessionStore) Append(sessionID string, turns ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		metrics.SessionsActive.Inc()
	}
	s.sessions[sessionID] = append(s.sessions[sessionID], turns...)
}

// Clear discards a session's transcript.
func (s *MemorySessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		metrics.SessionsActive.Dec()
	}
}
