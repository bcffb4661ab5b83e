package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pep299/study-planner/internal/config"
)

// Manager wraps a Cache with page-oriented helpers. A Manager without a
// backend (cache type "none") misses on every lookup and drops every write.
type Manager struct {
	cache Cache
}

// NewManager creates a manager for the configured backend
func NewManager(ctx context.Context, cacheType, bucket string, duration time.Duration) (*Manager, error) {
	var c Cache

	switch cacheType {
	case config.CacheNone, "":
		return &Manager{}, nil
	case config.CacheMemory:
		c = NewMemoryCache(duration)
	case config.CacheCloudStorage:
		gcs, err := NewCloudStorageCache(ctx, bucket, duration)
		if err != nil {
			return nil, fmt.Errorf("creating cloud storage cache: %w", err)
		}
		c = gcs
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}

	return &Manager{cache: c}, nil
}

// NewManagerWithCache wraps an existing backend
func NewManagerWithCache(c Cache) *Manager {
	return &Manager{cache: c}
}

// Enabled reports whether a backend is configured
func (m *Manager) Enabled() bool {
	return m != nil && m.cache != nil
}

// GetPage returns cached text for a URL
func (m *Manager) GetPage(ctx context.Context, url string) (string, bool, error) {
	if !m.Enabled() {
		return "", false, nil
	}
	entry, err := m.cache.Get(ctx, GenerateKey(url))
	if errors.Is(err, ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Text, true, nil
}

// SetPage caches extracted text for a URL
func (m *Manager) SetPage(ctx context.Context, url, text string) error {
	if !m.Enabled() {
		return nil
	}
	return m.cache.Set(ctx, GenerateKey(url), &Entry{URL: url, Text: text})
}

// Prune removes expired entries
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if !m.Enabled() {
		return 0, nil
	}
	return m.cache.Prune(ctx)
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	if !m.Enabled() {
		return &Stats{Backend: config.CacheNone}, nil
	}
	return m.cache.GetStats(ctx)
}

// Close releases the backend
func (m *Manager) Close() error {
	if !m.Enabled() {
		return nil
	}
	return m.cache.Close()
}
