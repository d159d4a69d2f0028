package collection

import (
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store keeps one Workflow per session. Workflows idle for longer than the
// store's idle window are evicted, unless a submission is in flight.
type Store struct {
	mu    sync.Mutex
	items *gocache.Cache
}

type storeEntry struct {
	workflow *Workflow
	dropped  atomic.Bool
}

// NewStore returns a Store that forgets workflows idle for longer than idle.
// A non-positive idle keeps workflows until dropped.
func NewStore(idle time.Duration) *Store {
	expiry, cleanup := idle, idle/2
	if idle <= 0 {
		expiry, cleanup = gocache.NoExpiration, 0
	}
	s := &Store{items: gocache.New(expiry, cleanup)}
	s.items.OnEvicted(s.evicted)
	return s
}

// Get returns the session's workflow, creating it on first use. Every call
// restarts the idle window.
func (s *Store) Get(sessionID string) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entry *storeEntry
	if value, ok := s.items.Get(sessionID); ok {
		entry = value.(*storeEntry)
	} else {
		entry = &storeEntry{workflow: NewWorkflow()}
	}
	s.items.SetDefault(sessionID, entry)
	return entry.workflow
}

// Drop forgets the session's workflow.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.items.Get(sessionID); ok {
		value.(*storeEntry).dropped.Store(true)
	}
	s.items.Delete(sessionID)
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	return s.items.ItemCount()
}

// evicted puts back a workflow that expired mid-submission so its result is
// not lost.
func (s *Store) evicted(sessionID string, value any) {
	entry, ok := value.(*storeEntry)
	if !ok || entry.dropped.Load() || entry.workflow.Phase() != Submitting {
		return
	}
	_ = s.items.Add(sessionID, entry, gocache.DefaultExpiration)
}
