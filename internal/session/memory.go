package session

import (
	"context"
	"sync"
	"time"
)

// janitorInterval is how often expired records are swept.
const janitorInterval = 10 * time.Minute

// MemoryStore is the default Store: a mutex-guarded map with a background
// janitor that sweeps expired records. Suitable for a single process; use
// RedisStore when sessions must survive restarts or span instances.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	done    chan struct{}
	once    sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore and starts its janitor.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]Record),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Get returns a copy of the record, or (nil, nil) when missing or expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(rec.ExpiresAt) {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

// Save stores a copy of the record.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	s.records[rec.ID] = *rec
	s.mu.Unlock()
	return nil
}

// Delete removes the record. Deleting a missing id is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, rec := range s.records {
				if now.After(rec.ExpiresAt) {
					delete(s.records, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
