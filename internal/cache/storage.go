package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const expiresAtMetadata = "expires_at"

// CloudStorageCache implements cache using Google Cloud Storage with JSON format
type CloudStorageCache struct {
	client     *storage.Client
	bucketName string
	duration   time.Duration
	prefix     string
}

// NewCloudStorageCache creates a new Cloud Storage cache
func NewCloudStorageCache(ctx context.Context, bucketName string, duration time.Duration) (*CloudStorageCache, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &CloudStorageCache{
		client:     client,
		bucketName: bucketName,
		duration:   duration,
		prefix:     "pages/",
	}, nil
}

func (c *CloudStorageCache) objectName(key string) string {
	return c.prefix + strings.ReplaceAll(key, ":", "_") + ".json"
}

// Get retrieves an entry from Cloud Storage
func (c *CloudStorageCache) Get(ctx context.Context, key string) (*Entry, error) {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// Set stores an entry in Cloud Storage
func (c *CloudStorageCache) Set(ctx context.Context, key string, entry *Entry) error {
	now := time.Now()
	stored := *entry
	stored.Key = key
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(c.duration)

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	writer := c.client.Bucket(c.bucketName).Object(c.objectName(key)).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.Metadata = map[string]string{expiresAtMetadata: stored.ExpiresAt.UTC().Format(time.RFC3339)}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}
	return nil
}

// Delete removes an entry from Cloud Storage
func (c *CloudStorageCache) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucketName).Object(c.objectName(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Prune deletes objects whose expires_at metadata has passed
func (c *CloudStorageCache) Prune(ctx context.Context) (int, error) {
	bucket := c.client.Bucket(c.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: c.prefix})

	now := time.Now()
	removed := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("listing objects: %w", err)
		}
		if !objectExpired(attrs, now, c.duration) {
			continue
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return removed, fmt.Errorf("deleting object %s: %w", attrs.Name, err)
		}
		removed++
	}
	return removed, nil
}

// GetStats returns cache statistics for Cloud Storage. Hit and miss counts
// are not tracked by this backend.
func (c *CloudStorageCache) GetStats(ctx context.Context) (*Stats, error) {
	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: c.prefix})

	stats := &Stats{Backend: "cloud-storage"}
	now := time.Now()
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		stats.TotalEntries++
		stats.SizeBytes += attrs.Size
		if stats.OldestEntry.IsZero() || attrs.Created.Before(stats.OldestEntry) {
			stats.OldestEntry = attrs.Created
		}
		if objectExpired(attrs, now, c.duration) {
			stats.ExpiredEntries++
		}
	}
	return stats, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageCache) Close() error {
	return c.client.Close()
}

// objectExpired falls back to creation time + ttl when metadata is missing.
func objectExpired(attrs *storage.ObjectAttrs, now time.Time, ttl time.Duration) bool {
	if raw, ok := attrs.Metadata[expiresAtMetadata]; ok {
		if expiresAt, err := time.Parse(time.RFC3339, raw); err == nil {
			return now.After(expiresAt)
		}
	}
	return now.After(attrs.Created.Add(ttl))
}
