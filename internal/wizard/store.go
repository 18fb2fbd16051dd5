package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxIdle is how long an untouched session survives.
const DefaultMaxIdle = 2 * time.Hour

// Store keeps live wizard sessions in memory, keyed by session id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxIdle  time.Duration
	now      func() time.Time
}

func NewStore(maxIdle time.Duration) *Store {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &Store{
		sessions: make(map[string]*Session),
		maxIdle:  maxIdle,
		now:      time.Now,
	}
}

// Create starts a fresh session and returns it.
func (st *Store) Create() *Session {
	session := newSession(uuid.NewString(), st.now())
	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()
	return session
}

// Get returns a live session and refreshes its activity clock.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	session, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	session.touch(st.now())
	return session, true
}

// Delete removes a session and cancels its in-flight work.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	session, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		session.Reset()
	}
}

// EvictIdle drops sessions that have been inactive past the idle limit
// and reports how many were removed.
func (st *Store) EvictIdle() int {
	now := st.now()
	st.mu.Lock()
	var stale []*Session
	for id, session := range st.sessions {
		if session.idleSince(now) > st.maxIdle {
			stale = append(stale, session)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, session := range stale {
		session.Reset()
	}
	return len(stale)
}
