package ivr

import (
	"errors"
	"sync"
	"time"

	"github.com/zulandar/helpline/internal/directory"
)

// ErrSessionNotFound is returned for events referencing an unknown, expired,
// or never-connected call. Callers must ack the gateway without failing.
var ErrSessionNotFound = errors.New("ivr: session not found")

// Session is the exclusive mutable context of one call. All access goes
// through its mutex: events for the same call are serialized, while distinct
// calls proceed in parallel.
type Session struct {
	mu sync.Mutex

	CallID  string
	State   State
	Retries int

	// Employee bound after a successful directory lookup; cleared when the
	// caller rejects the name confirmation.
	Employee *directory.Employee

	// Draft under construction. Replaced with a fresh draft when the caller
	// files an additional ticket.
	Draft *TicketDraft

	// PendingPhone holds a captured phone number awaiting yes/no
	// confirmation before it is committed to the draft.
	PendingPhone string

	// TicketsFiled counts dispatched tickets on this call.
	TicketsFiled int

	// LastEvent is the arrival time of the most recent event, used by the
	// stale-session sweeper.
	LastEvent time.Time

	// outcome is fixed when the session enters a terminal state, and
	// recorded when the closing play finishes.
	outcome CallOutcome
}

// lock serializes event handling for this call.
func (s *Session) lock()   { s.mu.Lock() }
func (s *Session) unlock() { s.mu.Unlock() }

// Registry owns one Session per active call, keyed by call connection ID.
// It is the only mutable state shared across concurrent webhook events.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for callID, creating one in MainMenu with
// an empty draft on first sight. The second return reports whether the
// session was created by this call.
func (r *Registry) GetOrCreate(callID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[callID]; ok {
		return s, false
	}
	s := &Session{
		CallID:    callID,
		State:     StateMainMenu,
		Draft:     NewTicketDraft(),
		LastEvent: time.Now(),
	}
	r.sessions[callID] = s
	return s, true
}

// Get returns the session for callID or ErrSessionNotFound.
func (r *Registry) Get(callID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[callID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Destroy removes the session for callID. Destroying an unknown or already
// destroyed call is a no-op, so terminate paths can release unconditionally.
func (r *Registry) Destroy(callID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, callID)
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IdleSince returns the call IDs of sessions with no event since cutoff.
// The registry lock is released before session locks are taken, so an event
// handler holding a session lock can never deadlock against the sweeper.
func (r *Registry) IdleSince(cutoff time.Time) []string {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	var ids []string
	for _, s := range snapshot {
		s.mu.Lock()
		if s.LastEvent.Before(cutoff) {
			ids = append(ids, s.CallID)
		}
		s.mu.Unlock()
	}
	return ids
}
