package cache

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// MemoryStore is an in-process Store: a mutex-guarded LRU whose entries also
// expire by TTL on read.
type MemoryStore struct {
	clock      clockwork.Clock
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*node
	head       *node // most recently used
	tail       *node // least recently used
}

type node struct {
	key   string
	entry Entry
	prev  *node
	next  *node
}

// NewMemoryStore creates a store holding at most maxEntries tables.
func NewMemoryStore(clock clockwork.Clock, maxEntries int) *MemoryStore {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &MemoryStore{
		clock:      clock,
		maxEntries: maxEntries,
		entries:    make(map[string]*node),
	}
}

// Get implements Store. Expired entries are dropped and reported as misses.
func (s *MemoryStore) Get(_ context.Context, key string) (domain.ResultTable, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if n.entry.Expired(s.clock.Now()) {
		s.unlink(n)
		delete(s.entries, key)
		return nil, false, nil
	}
	s.moveToFront(n)
	return n.entry.Table.Clone(), true, nil
}

// Put implements Store. An existing entry for key is replaced, not updated.
func (s *MemoryStore) Put(_ context.Context, key string, table domain.ResultTable, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.unlink(old)
	}
	n := &node{key: key, entry: Entry{Table: table.Clone(), CreatedAt: s.clock.Now(), TTL: ttl}}
	s.entries[key] = n
	s.addToFront(n)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
	return nil
}

// Len returns the number of entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CheckReadiness implements the readiness contract; memory is always ready.
func (s *MemoryStore) CheckReadiness(context.Context) error { return nil }

func (s *MemoryStore) moveToFront(n *node) {
	if n == s.head {
		return
	}
	s.unlink(n)
	s.addToFront(n)
}

func (s *MemoryStore) addToFront(n *node) {
	n.next = s.head
	n.prev = nil
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *MemoryStore) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (s *MemoryStore) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.unlink(s.tail)
}
