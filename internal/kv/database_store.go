package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// DatabaseStore implements Store on top of the relational kv_entries table
// using Bun. Uniqueness and concurrent access are handled entirely by the
// database; this layer performs no locking and no multi-statement
// transactions.
type DatabaseStore struct {
	db bun.IDB
	// cleanupInterval controls how often expired entries are cleaned up.
	cleanupInterval time.Duration
	// stopCleanup is used to signal the cleanup goroutine to stop.
	stopCleanup chan struct{}
	// done signals that the cleanup goroutine has stopped.
	done chan struct{}
	// cleanupStarted tracks whether the cleanup goroutine has been started.
	cleanupStarted bool
	// closeOnce ensures Close() is idempotent.
	closeOnce sync.Once
}

type DatabaseStoreConfig struct {
	CleanupInterval time.Duration
}

func NewDatabaseStore(db bun.IDB, config DatabaseStoreConfig) *DatabaseStore {
	cleanupInterval := time.Minute
	if config.CleanupInterval != 0 {
		cleanupInterval = config.CleanupInterval
	}

	return &DatabaseStore{
		db:              db,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// StartCleanup starts the background goroutine that removes expired counter
// entries. Call after migrations have completed. Safe to call more than once.
func (s *DatabaseStore) StartCleanup() {
	if s.cleanupStarted {
		return
	}
	s.cleanupStarted = true
	go s.cleanupExpiredEntries()
}

func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Record
	err := s.db.NewSelect().Model(&entry).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		if _, err := s.db.NewDelete().Model((*Record)(nil)).Where("key = ?", key).Exec(ctx); err != nil {
			slog.Error("error deleting expired entry", slog.String("key", key), slog.Any("error", err))
		}
		return nil, nil
	}

	return []byte(entry.Value), nil
}

func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte) error {
	entry := Record{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().Model(&entry).
		On("CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// Delete removes a key. Idempotent: deleting a non-existent key is not an
// error.
func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().Model((*Record)(nil)).Where("key = ?", key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *DatabaseStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	var records []Record
	// SQLite has no default LIKE escape character, so spell it out.
	err := s.db.NewSelect().Model(&records).
		Where(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	now := time.Now()
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		if rec.ExpiresAt != nil && now.After(*rec.ExpiresAt) {
			continue
		}
		entries = append(entries, Entry{Key: rec.Key, Value: []byte(rec.Value)})
	}

	return entries, nil
}

func (s *DatabaseStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	count := 0

	var entry Record
	err := s.db.NewSelect().Model(&entry).Where("key = ?", key).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// starts at zero
	case err != nil:
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	default:
		if entry.ExpiresAt == nil || time.Now().Before(*entry.ExpiresAt) {
			num, convErr := strconv.Atoi(entry.Value)
			if convErr != nil {
				return 0, fmt.Errorf("value at key %s is not a valid integer: %w", key, convErr)
			}
			count = num
		}
	}

	count++

	newEntry := Record{
		Key:       key,
		Value:     strconv.Itoa(count),
		UpdatedAt: time.Now(),
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		newEntry.ExpiresAt = &expiresAt
	}

	_, err = s.db.NewInsert().Model(&newEntry).
		On("CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return count, nil
}

// escapeLike escapes LIKE metacharacters so a prefix containing "%" or "_"
// matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// cleanupExpiredEntries runs periodically to remove expired entries from the
// database so abandoned rate-limit windows do not accumulate.
func (s *DatabaseStore) cleanupExpiredEntries() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.removeExpiredEntries()
		}
	}
}

func (s *DatabaseStore) removeExpiredEntries() {
	ctx := context.Background()

	_, err := s.db.NewDelete().Model((*Record)(nil)).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		slog.Error("error cleaning up expired entries from kv_entries", slog.Any("error", err))
	}
}

// Close stops the cleanup goroutine. Idempotent.
func (s *DatabaseStore) Close() error {
	s.closeOnce.Do(func() {
		if s.cleanupStarted {
			close(s.stopCleanup)
			<-s.done
		}
	})
	return nil
}
