package session

import (
	"sync"

	"github.com/google/uuid"
)

// Entry associates a session identifier with the match it belongs to.
type Entry struct {
	MatchID string
	Role    int
}

// Registry maps client-durable session identifiers to their match
// association. Identifiers are accepted verbatim from the client and only
// echoed back as a continuity hint; the registry exists so a rejoining
// handshake can be recognized and so bindings can be reclaimed together with
// their match.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Resolve returns the client-supplied identifier, or mints a fresh one when
// the client sent none.
func Resolve(clientSupplied string) string {
	if clientSupplied == "" {
		return uuid.NewString()
	}
	return clientSupplied
}

// Bind records that sessionID occupies role in matchID.
func (r *Registry) Bind(sessionID, matchID string, role int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sessionID] = Entry{MatchID: matchID, Role: role}
}

// Lookup returns the binding for sessionID, if any.
func (r *Registry) Lookup(sessionID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[sessionID]
	return e, ok
}

// ReleaseMatch drops every binding pointing at matchID. Called when the
// gateway evicts the match.
func (r *Registry) ReleaseMatch(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, e := range r.entries {
		if e.MatchID == matchID {
			delete(r.entries, sid)
		}
	}
}

// Len reports the number of live bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
