package geocoding

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStore is an in-process LRU store with per-entry expiry.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

type memoryItem struct {
	key     string
	entry   Entry
	expires time.Time
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	return NewMemoryStoreWithClock(capacity, time.Now)
}

// NewMemoryStoreWithClock allows injecting the clock used for expiry.
func NewMemoryStoreWithClock(capacity int, now func() time.Time) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}

	return &MemoryStore{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      now,
	}
}

// Get returns an unexpired entry and marks it as recently used.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return Entry{}, false, nil
	}

	item, _ := elem.Value.(*memoryItem)
	if !s.now().Before(item.expires) {
		s.order.Remove(elem)
		delete(s.items, key)
		return Entry{}, false, nil
	}

	s.order.MoveToFront(elem)

	return item.entry, true, nil
}

// Set stores entry until ttl elapses, evicting the least recently used entry when full.
func (s *MemoryStore) Set(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires := s.now().Add(ttl)
	if elem, ok := s.items[key]; ok {
		elem.Value = &memoryItem{key: key, entry: entry, expires: expires}
		s.order.MoveToFront(elem)
		return nil
	}

	s.items[key] = s.order.PushFront(&memoryItem{key: key, entry: entry, expires: expires})

	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		item, _ := oldest.Value.(*memoryItem)
		s.order.Remove(oldest)
		delete(s.items, item.key)
	}

	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.order.Len()
}

// RedisClient is the subset of *redis.Client used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps entries in Redis so several instances share memoized lookups.
type RedisStore struct {
	client RedisClient
	prefix string
}

// NewRedisStore creates a store writing keys under prefix.
func NewRedisStore(client RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get reads and decodes an entry. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read geocode cache entry: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode geocode cache entry: %w", err)
	}

	return entry, true, nil
}

// Set encodes and writes an entry with the given expiry.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode geocode cache entry: %w", err)
	}

	if err = s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode cache entry: %w", err)
	}

	return nil
}
