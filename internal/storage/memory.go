package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps per-key request logs in process memory behind the same
// Store contract as the Redis client. It is the test double for the limiter
// and a usable backend for single-process deployments.
type MemoryStore struct {
	mu       sync.Mutex
	sets     map[string]*memorySet
	stopChan chan struct{}
	stopped  bool
}

type memorySet struct {
	entries   []ScoredEntry // ascending by score
	expiresAt time.Time     // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sets:     make(map[string]*memorySet),
		stopChan: make(chan struct{}),
	}

	go s.cleanupLoop(time.Minute)

	return s
}

func (s *MemoryStore) PurgeOlderThan(_ context.Context, key string, cutoff int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.live(key)
	if set == nil {
		return nil
	}

	kept := set.entries[:0]
	for _, e := range set.entries {
		if e.Score >= float64(cutoff) {
			kept = append(kept, e)
		}
	}
	set.entries = kept

	return nil
}

func (s *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.live(key)
	if set == nil {
		return 0, nil
	}

	return int64(len(set.entries)), nil
}

func (s *MemoryStore) RangeWithScores(_ context.Context, key string, start, stop int64) ([]ScoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.live(key)
	if set == nil {
		return nil, nil
	}

	n := int64(len(set.entries))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if start >= n || stop < start {
		return nil, nil
	}
	if stop >= n {
		stop = n - 1
	}

	out := make([]ScoredEntry, stop-start+1)
	copy(out, set.entries[start:stop+1])

	return out, nil
}

func (s *MemoryStore) AddScored(_ context.Context, key string, score int64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.live(key)
	if set == nil {
		set = &memorySet{}
		s.sets[key] = set
	}

	entry := ScoredEntry{Member: member, Score: float64(score)}

	// Insert after any equal scores to keep arrival order stable.
	i := sort.Search(len(set.entries), func(i int) bool {
		return set.entries[i].Score > entry.Score
	})
	set.entries = append(set.entries, ScoredEntry{})
	copy(set.entries[i+1:], set.entries[i:])
	set.entries[i] = entry

	return nil
}

func (s *MemoryStore) SetExpiry(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.live(key)
	if set == nil {
		return nil
	}
	set.expiresAt = time.Now().Add(ttl)

	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		close(s.stopChan)
		s.stopped = true
	}

	return nil
}

// live returns the set under key, discarding it first if its TTL has lapsed.
// Callers must hold s.mu.
func (s *MemoryStore) live(key string) *memorySet {
	set, ok := s.sets[key]
	if !ok {
		return nil
	}

	if !set.expiresAt.IsZero() && time.Now().After(set.expiresAt) {
		delete(s.sets, key)
		return nil
	}

	return set
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, set := range s.sets {
		if !set.expiresAt.IsZero() && now.After(set.expiresAt) {
			delete(s.sets, key)
		}
	}
}
