package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory Sink used for dry runs and tests.
type MemoryStore struct {
	mu sync.RWMutex

	// key: artifact name, value: content
	data map[string][]byte

	// retention configuration for historical artifacts
	maxHistory int            // max number of historical artifacts
	maxAge     time.Duration  // optional max age, judged by the name's timestamp
	loc        *time.Location // zone the artifact names are written in
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; likewise maxAge.
// loc must match the clock the artifact names are stamped with; nil means time.Local.
func NewMemoryStore(maxHistory int, maxAge time.Duration, loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.Local
	}
	return &MemoryStore{
		data:       make(map[string][]byte),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		loc:        loc,
		now:        time.Now,
	}
}

// Put stores a copy of data and enforces retention.
func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[name] = append([]byte(nil), data...)
	s.enforceRetention()
	return nil
}

// Get returns a copy of the stored artifact.
func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// List returns historical artifact names in ascending order.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLocked(), nil
}

func (s *MemoryStore) historyLocked() []string {
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		if IsHistoryName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// enforceRetention must be called with s.mu held. latest.json is never evicted.
func (s *MemoryStore) enforceRetention() {
	history := s.historyLocked()

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		over := len(history) - s.maxHistory
		for _, name := range history[:over] {
			delete(s.data, name)
		}
		history = history[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		for _, name := range history {
			ts, err := ParseHistoryName(name, s.loc)
			if err != nil || !ts.Before(cutoff) {
				break
			}
			delete(s.data, name)
		}
	}
}
