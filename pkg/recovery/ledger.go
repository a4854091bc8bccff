package recovery

import "sync"

// Ledger counts recovery attempts per session. It is the only state in the
// engine that outlives a single call, so it is an explicit injectable object
// rather than ambient package state; independent orchestrators can share one
// by passing the same instance.
type Ledger struct {
	mu       sync.Mutex
	sessions map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{sessions: make(map[string]int)}
}

// Increment bumps the session's attempt count and returns the new value.
// Increments are serialized so concurrent sessions cannot both observe
// headroom under the ceiling and jointly exceed it.
func (l *Ledger) Increment(session string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[session]++
	return l.sessions[session]
}

// Count returns the session's current attempt count.
func (l *Ledger) Count(session string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions[session]
}

// Reset clears one session's count. Exposed for housekeeping and test
// isolation.
func (l *Ledger) Reset(session string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, session)
}

// ResetAll clears every session.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = make(map[string]int)
}
