package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/Ezhil1K/ChemSure/config"
)

// SessionStore keeps one display Controller per browser session, in memory
type SessionStore struct {
	sessions    map[string]*Controller
	mu          sync.Mutex
	lookup      Lookup
	maxSessions int // Maximum sessions to keep, 0 = unlimited
}

func NewSessionStore(cfg *config.StoreConfig, lookup Lookup) *SessionStore {
	maxSessions := cfg.MaxSessions
	if maxSessions < 0 {
		maxSessions = 0
	}
	slog.Info("session store initialized", "max_sessions", maxSessions)
	return &SessionStore{
		sessions:    make(map[string]*Controller),
		lookup:      lookup,
		maxSessions: maxSessions,
	}
}

// Get returns the controller for id, creating it on first use
func (s *SessionStore) Get(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.sessions[id]; ok {
		return c
	}

	c := NewController(s.lookup)
	s.sessions[id] = c
	s.cleanupIfNeeded(id)
	return c
}

// Peek returns the controller for id without creating one
func (s *SessionStore) Peek(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[id]; ok {
		c.Close()
		delete(s.sessions, id)
	}
}

// cleanupIfNeeded evicts the least recently seen sessions, never keep.
// Must be called with lock held.
func (s *SessionStore) cleanupIfNeeded(keep string) {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return
	}

	type entry struct {
		id       string
		lastSeen int64
	}
	entries := make([]entry, 0, len(s.sessions))
	for id, c := range s.sessions {
		if id == keep {
			continue
		}
		entries = append(entries, entry{id: id, lastSeen: c.LastSeen().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].lastSeen < entries[j].lastSeen
	})

	removeCount := len(s.sessions) - s.maxSessions
	for i := 0; i < removeCount && i < len(entries); i++ {
		slog.Info("evicting idle session", "session_id", entries[i].id)
		s.sessions[entries[i].id].Close()
		delete(s.sessions, entries[i].id)
	}
}

// Count returns the number of sessions in the store
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
