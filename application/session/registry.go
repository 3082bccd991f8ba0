package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound - returned for lookups of unknown or finished sessions
var ErrSessionNotFound = errors.New("session not found")

// Registry is a concurrency-safe map of live sessions keyed by session id
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry - creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Add - registers a session under its id
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get - looks up a live session by id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove - drops a session from the registry; the session itself is
// responsible for its own teardown
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len - reports how many sessions are currently registered
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
