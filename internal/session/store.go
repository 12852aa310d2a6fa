package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store keeps per-session state in memory for the lifetime of the process.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// NewID returns a fresh session id.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Snapshot returns a copy of the session's state, creating an empty one
// for unknown ids.
func (s *Store) Snapshot(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id).Clone()
}

// Update runs fn against the live state under the store lock.
func (s *Store) Update(id string, fn func(*State)) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(id)
	fn(st)
	return st.Clone()
}

func (s *Store) get(id string) *State {
	e, ok := s.entries[id]
	if !ok {
		e = &entry{state: NewState()}
		s.entries[id] = e
	}
	e.lastSeen = s.now()
	return e.state
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper periodically expires idle sessions until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, every time.Duration) {
	if s.idleTTL <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.WithField("removed", n).Debug("expired idle sessions")
				}
			}
		}
	}()
}
