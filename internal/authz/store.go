package authz

import "sync"

// Store holds the resolved actor per session. Writers replace the whole
// actor, never mutate one in place, so readers always observe either the
// previous snapshot or the new one and never a half-updated permission set.
type Store struct {
	mu     sync.RWMutex
	actors map[string]*Actor
}

// NewStore constructs an empty actor store.
func NewStore() *Store {
	return &Store{actors: make(map[string]*Actor)}
}

// Get returns the actor snapshot for the session, or nil when none is
// cached.
func (s *Store) Get(sessionID string) *Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actors[sessionID]
}

// Replace swaps in a new actor snapshot for the session. Used after login,
// actor refresh and site switch.
func (s *Store) Replace(sessionID string, actor *Actor) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if actor == nil {
		delete(s.actors, sessionID)
		return
	}
	s.actors[sessionID] = actor
}

// Clear removes the session's actor. Used on logout.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, sessionID)
}
