package processor

import "sync"

// recentSet is a bounded set of recently seen event IDs used to suppress
// replays under at-least-once delivery. When full, the oldest entry is
// evicted, so very old replays can still slip through; that residual window
// is accepted. Shared by all shard workers of one processor.
//
// Lookup and commit are separate operations: a page's IDs are committed
// only after the page's side effects are durable, so a failed page can be
// redelivered without its records reading as duplicates.
type recentSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
}

func newRecentSet(capacity int) *recentSet {
	if capacity < 1 {
		capacity = 1
	}
	return &recentSet{
		seen: make(map[string]struct{}, capacity),
		ring: make([]string, capacity),
	}
}

// Contains reports whether id has been committed
func (s *recentSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[id]
	return ok
}

// Record commits id, evicting the oldest entry when full. Recording an id
// already present is a no-op.
func (s *recentSet) Record(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return
	}

	if evicted := s.ring[s.next]; evicted != "" {
		delete(s.seen, evicted)
	}
	s.ring[s.next] = id
	s.seen[id] = struct{}{}
	s.next = (s.next + 1) % len(s.ring)
}
