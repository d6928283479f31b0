package matchmaker

import (
	"sync"

	"gomoku-backend/internal/player"
)

// Matchmaker holds at most one unpaired participant process-wide. The
// check-and-pair runs in a single critical section, so two simultaneous
// joiners can never both pair with the same waiting participant and no
// joiner observes a half-updated slot.
type Matchmaker struct {
	mu      sync.Mutex
	waiting player.Participant
}

func New() *Matchmaker {
	return &Matchmaker{}
}

// Join offers p for pairing. When the slot is empty, or holds a participant
// whose connection has since died, p takes the slot and paired is false.
// Otherwise the waiting participant is popped and returned as the opponent:
// it joined first, so it becomes role 1.
func (m *Matchmaker) Join(p player.Participant) (opponent player.Participant, paired bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.waiting == nil || !m.waiting.Open() {
		m.waiting = p
		return nil, false
	}

	opponent = m.waiting
	m.waiting = nil
	return opponent, true
}

// Withdraw clears the slot if p is the one waiting, so a future joiner is
// not paired with a dead connection.
func (m *Matchmaker) Withdraw(p player.Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.waiting == p {
		m.waiting = nil
	}
}

// Waiting reports whether p currently occupies the slot.
func (m *Matchmaker) Waiting(p player.Participant) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting == p
}
