// Package lasterror keeps the most recent failure per session, so
// embedders that poll for errors instead of handling returns can ask
// "what just went wrong" without racing other sessions.
package lasterror

import (
	"sync"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// Slots is a set of per-session error slots. The zero value is not
// usable; call NewSlots.
type Slots struct {
	mu    sync.RWMutex
	slots map[string]*domain.ErrorInfo
}

// NewSlots creates an empty slot set.
func NewSlots() *Slots {
	return &Slots{slots: make(map[string]*domain.ErrorInfo)}
}

// Record stores the failure for a session. A nil error clears the slot,
// so a successful call wipes the previous failure.
func (s *Slots) Record(session string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.slots, session)
		return
	}
	s.slots[session] = domain.ErrorInfoFrom(err)
}

// Last returns the most recent failure of a session, or nil.
func (s *Slots) Last(session string) *domain.ErrorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[session]
}

// Clear drops the slot of one session.
func (s *Slots) Clear(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, session)
}

// Reset drops every slot.
func (s *Slots) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]*domain.ErrorInfo)
}
