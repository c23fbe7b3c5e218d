// Package presence tracks which identities currently have live WebSocket
// connections. An identity may hold several connections at once (multiple
// browser tabs or devices); it counts as online while at least one is live.
package presence

import "sync"

// Tracker maps each identity to the set of its live connection ids.
// All methods are safe for concurrent use. A single mutex guards the whole
// map so that "set became empty, drop the entry" happens in one critical
// section and cannot race a concurrent add for the same identity.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]map[string]struct{})}
}

// AddConnection registers connID under identity and reports whether this was
// the identity's first live connection (the offline-to-online transition).
// An empty identity or connID is a no-op returning false. Re-adding an
// already registered connID is deduplicated.
func (t *Tracker) AddConnection(identity, connID string) bool {
	if identity == "" || connID == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conns, ok := t.sessions[identity]
	if !ok {
		conns = make(map[string]struct{})
		t.sessions[identity] = conns
	}
	first := len(conns) == 0
	conns[connID] = struct{}{}
	return first
}

// RemoveConnection removes connID from identity's live set and reports
// whether that left the identity with no live connections (the
// online-to-offline transition). Unknown identities or connection ids are
// no-ops returning false, never errors.
func (t *Tracker) RemoveConnection(identity, connID string) bool {
	if identity == "" || connID == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conns, ok := t.sessions[identity]
	if !ok {
		return false
	}
	if _, ok := conns[connID]; !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(t.sessions, identity)
		return true
	}
	return false
}

// ConnectedIdentities returns a point-in-time copy of all online identities.
// Later tracker mutations do not affect a returned snapshot.
func (t *Tracker) ConnectedIdentities() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	identities := make([]string, 0, len(t.sessions))
	for identity := range t.sessions {
		identities = append(identities, identity)
	}
	return identities
}

// IsOnline reports whether identity currently has at least one live connection.
func (t *Tracker) IsOnline(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	conns, ok := t.sessions[identity]
	return ok && len(conns) > 0
}
