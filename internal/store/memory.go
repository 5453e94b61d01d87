package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Compile-time check that MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store for tests and local development.
// All operations are thread-safe. Data is lost on process restart.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	sets   map[string]map[string]struct{}
	now    func() time.Time
	// failWith, when set, is returned (wrapped) by every operation.
	failWith error
	// failOn, when set, fails the operations it matches.
	failOn func(op, key string) bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryEntry),
		sets:   make(map[string]map[string]struct{}),
		now:    time.Now,
	}
}

// SetClock replaces the clock used for expiry checks.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailWith makes every subsequent operation fail with err wrapped in ErrUnavailable.
// Passing nil restores normal behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// FailOn makes operations for which match returns true fail with ErrUnavailable.
// Ops are named after the Store methods in lower case ("set", "setnx", "update"...).
// match runs with the store locked. Passing nil clears it.
func (s *MemoryStore) FailOn(match func(op, key string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = match
}

// Len returns the number of live string keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.values {
		if _, ok := s.lookup(k); ok {
			n++
		}
	}
	return n
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("get", key); err != nil {
		return "", false, err
	}
	e, ok := s.lookup(key)
	return e.value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("set", key); err != nil {
		return err
	}
	s.values[key] = s.entry(value, ttl)
	return nil
}

func (s *MemoryStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("setnx", key); err != nil {
		return false, err
	}
	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.values[key] = s.entry(value, ttl)
	return true, nil
}

func (s *MemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if err := s.err("del", k); err != nil {
			return err
		}
	}
	for _, k := range keys {
		delete(s.values, k)
		delete(s.sets, k)
	}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("exists", key); err != nil {
		return false, err
	}
	if _, ok := s.lookup(key); ok {
		return true, nil
	}
	_, ok := s.sets[key]
	return ok, nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("update", key); err != nil {
		return err
	}
	e, found := s.lookup(key)
	next, err := fn(e.value, found)
	if err != nil {
		return err
	}
	e.value = next
	s.values[key] = e
	return nil
}

func (s *MemoryStore) SAdd(ctx context.Context, key, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("sadd", key); err != nil {
		return false, err
	}
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	if _, dup := set[member]; dup {
		return false, nil
	}
	set[member] = struct{}{}
	return true, nil
}

func (s *MemoryStore) SCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("scard", key); err != nil {
		return 0, err
	}
	return int64(len(s.sets[key])), nil
}

func (s *MemoryStore) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err("smembers", key); err != nil {
		return nil, err
	}
	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

// lookup must be called with mu held. Expired entries are evicted.
func (s *MemoryStore) lookup(key string) (memoryEntry, bool) {
	e, ok := s.values[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.values, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	return e
}

func (s *MemoryStore) err(op, key string) error {
	if s.failWith != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, s.failWith)
	}
	if s.failOn != nil && s.failOn(op, key) {
		return fmt.Errorf("%w: injected %s failure on %s", ErrUnavailable, op, key)
	}
	return nil
}
