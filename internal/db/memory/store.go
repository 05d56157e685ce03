// Package memory implements db.Store in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/modeldemo/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultMaxEntries bounds the store when Options.MaxEntries is not set.
const DefaultMaxEntries = 10000

// Options configures an in-memory store.
type Options struct {
	// MaxEntries caps the number of keys; the least recently used key is
	// evicted first.
	MaxEntries int
	// SweepInterval enables a background sweep of expired keys. Zero disables it.
	SweepInterval time.Duration
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

// Store is a thread-safe, size-bounded in-memory KV store. Values are copied
// on the way in and out so callers cannot mutate stored data.
type Store struct {
	mu     sync.RWMutex
	data   *lru.Cache[string, entry]
	closed bool
	now    func() time.Time
	stop   chan struct{}
}

// NewStore creates an empty in-memory store.
func NewStore(opts Options) *Store {
	size := opts.MaxEntries
	if size <= 0 {
		size = DefaultMaxEntries
	}
	data, _ := lru.New[string, entry](size) // only fails for size <= 0

	s := &Store{
		data: data,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go s.sweepLoop(opts.SweepInterval)
	}
	return s
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.PurgeExpired()
		}
	}
}

// Len returns the number of keys currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	return s.data.Len()
}

// PurgeExpired removes every expired key and returns how many were removed.
func (s *Store) PurgeExpired() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}

	now := s.now()
	removed := 0
	for _, key := range s.data.Keys() {
		if e, ok := s.data.Peek(key); ok && e.expired(now) {
			s.data.Remove(key)
			removed++
		}
	}
	return removed
}

// Ping reports whether the store is still open.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return db.ErrClosed
	}
	return nil
}

// WaitForReady is immediate for an in-memory store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close drops all data and stops the sweep. Subsequent operations fail with db.ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.stop)
	s.data.Purge()
}

// Get returns a copy of the stored value. Expired keys are removed on read.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrClosed}
	}

	e, ok := s.data.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if e.expired(s.now()) {
		s.data.Remove(key)
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a copy of value. A non-positive ttl means no expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	copied := make([]byte, len(value))
	copy(copied, value)

	e := entry{value: copied}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpSet, Err: db.ErrClosed}
	}
	s.data.Add(key, e)
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpDel, Err: db.ErrClosed}
	}
	s.data.Remove(key)
	return nil
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
