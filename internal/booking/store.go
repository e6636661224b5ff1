package booking

import (
	"errors"
	"sync"
)

var ErrSessionNotFound = errors.New("booking session not found")

// Store holds booking sessions for the life of the process. Durable
// persistence belongs to the external booking service; this is the engine's
// local, optimistic view.
type Store interface {
	Save(session *Session) error
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
}

type MemoryStore struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Save(session *Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) List() []*Session {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (s *MemoryStore) Delete(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
