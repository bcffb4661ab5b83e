package cache

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Prune(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Entry is the extracted text of one fetched page
type Entry struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessCount int       `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	Backend        string    `json:"backend"`
	TotalEntries   int       `json:"total_entries"`
	HitCount       int64     `json:"hit_count"`
	MissCount      int64     `json:"miss_count"`
	HitRate        float64   `json:"hit_rate"`
	SizeBytes      int64     `json:"size_bytes"`
	OldestEntry    time.Time `json:"oldest_entry"`
	ExpiredEntries int       `json:"expired_entries"`
}

// Common cache errors
var (
	ErrCacheMiss = errors.New("cache miss")
)

// MemoryCache implements in-memory cache
type MemoryCache struct {
	entries   map[string]*Entry
	mutex     sync.RWMutex
	duration  time.Duration
	hitCount  int64
	missCount int64
	now       func() time.Time
}

// NewMemoryCache creates a new in-memory cache. Expired entries are dropped
// lazily on Get and in bulk by Prune.
func NewMemoryCache(duration time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]*Entry),
		duration: duration,
		now:      time.Now,
	}
}

// Get retrieves an entry from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*Entry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.missCount++
		return nil, ErrCacheMiss
	}
	if c.now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.missCount++
		return nil, ErrCacheMiss
	}

	entry.AccessCount++
	c.hitCount++

	copied := *entry
	return &copied, nil
}

// Set stores an entry in cache
func (c *MemoryCache) Set(ctx context.Context, key string, entry *Entry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	stored := *entry
	stored.Key = key
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(c.duration)
	stored.AccessCount = 0

	c.entries[key] = &stored
	return nil
}

// Delete removes an entry from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Prune removes expired entries and reports how many were dropped
func (c *MemoryCache) Prune(ctx context.Context) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// GetStats returns cache statistics
func (c *MemoryCache) GetStats(ctx context.Context) (*Stats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := &Stats{
		Backend:      "memory",
		TotalEntries: len(c.entries),
		HitCount:     c.hitCount,
		MissCount:    c.missCount,
	}
	if c.hitCount+c.missCount > 0 {
		stats.HitRate = float64(c.hitCount) / float64(c.hitCount+c.missCount)
	}

	now := c.now()
	for _, entry := range c.entries {
		stats.SizeBytes += int64(len(entry.Text) + len(entry.URL))
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if now.After(entry.ExpiresAt) {
			stats.ExpiredEntries++
		}
	}
	return stats, nil
}

// Close is a no-op for the memory cache
func (c *MemoryCache) Close() error {
	return nil
}

// GenerateKey generates a cache key for a page URL
func GenerateKey(url string) string {
	// Create MD5 hash for consistent key length
	hash := md5.Sum([]byte(url))
	return fmt.Sprintf("page:%x", hash)
}
