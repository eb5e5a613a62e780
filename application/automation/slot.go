package automation

import (
	"sync"

	"cabal-assist/core/state"
)

// Slot is the token that keeps at most one flow running at a time.
type Slot struct {
	mu    sync.Mutex
	owner state.FlowKind
}

// NewSlot creates a free slot.
func NewSlot() *Slot {
	return &Slot{}
}

// TryAcquire claims the slot for kind. It fails if any flow holds it.
func (s *Slot) TryAcquire(kind state.FlowKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != "" {
		return false
	}
	s.owner = kind
	return true
}

// Release frees the slot if kind holds it.
func (s *Slot) Release(kind state.FlowKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == kind {
		s.owner = ""
	}
}

// Owner returns the flow holding the slot, or "" when free.
func (s *Slot) Owner() state.FlowKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}
