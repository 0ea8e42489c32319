package kv

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt *time.Time
}

// MemoryStore is an in-memory implementation of Store. It backs local
// development and is the substitutable fake the services are tested against.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.store[key]
	if !exists {
		return nil, nil
	}
	if entry.expiresAt != nil && time.Now().After(*entry.expiresAt) {
		return nil, nil
	}

	return entry.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.store[key] = &memoryEntry{value: buf}

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, key)

	return nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0)
	for key, entry := range s.store {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if entry.expiresAt != nil && now.After(*entry.expiresAt) {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: entry.value})
	}

	return entries, nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	if entry, exists := s.store[key]; exists {
		if entry.expiresAt == nil || time.Now().Before(*entry.expiresAt) {
			num, err := strconv.Atoi(string(entry.value))
			if err != nil {
				return 0, err
			}
			count = num
		}
	}

	count++

	entry := &memoryEntry{value: []byte(strconv.Itoa(count))}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		entry.expiresAt = &expiresAt
	}
	s.store[key] = entry

	return count, nil
}
