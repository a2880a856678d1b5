// Package ocr implements the §5 shared OCR collaborator: a bounded, rate
// limited, circuit broken page-text fan-out in front of an insert-only
// text cache keyed by (source_document_id, sha256, page_number, dpi).
package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/citeline/chronology-core/internal/domain"
)

// CacheKey identifies one cached page-text entry.
type CacheKey struct {
	SourceDocumentID string
	SHA256           string
	PageNumber       int
	DPI              int
}

func (k CacheKey) redisKey() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d:%d", k.SourceDocumentID, k.SHA256, k.PageNumber, k.DPI)))
	return fmt.Sprintf("ocr:page:%x", sum)
}

// cachedPage is the JSON envelope stored in Redis. The cache is insert-only:
// entries are never evicted or overwritten once written (§5 "shared resources").
type cachedPage struct {
	Text     string          `json:"text"`
	Source   domain.TextSource `json:"source"`
	CachedAt time.Time       `json:"cached_at"`
}

// Cache fronts the shared Redis OCR cache with a process-local LRU, so that
// repeat lookups within a single run never round-trip to Redis.
type Cache struct {
	redis *redis.Client
	local *lru.Cache[string, cachedPage]
}

// NewCache dials the shared Redis cache and allocates the local LRU front-cache.
func NewCache(cfg domain.CacheConfig) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.PoolTimeout = cfg.PoolTimeout
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	size := cfg.LocalLRUSize
	if size <= 0 {
		size = 256
	}
	local, err := lru.New[string, cachedPage](size)
	if err != nil {
		return nil, fmt.Errorf("allocate local ocr cache: %w", err)
	}

	return &Cache{redis: client, local: local}, nil
}

// Get returns the cached text for a page, if present.
func (c *Cache) Get(ctx context.Context, key CacheKey) (text string, source domain.TextSource, found bool, err error) {
	rk := key.redisKey()

	if page, ok := c.local.Get(rk); ok {
		return page.Text, page.Source, true, nil
	}

	val, err := c.redis.Get(ctx, rk).Result()
	if err == redis.Nil {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("get ocr cache: %w", err)
	}

	var page cachedPage
	if err := json.Unmarshal([]byte(val), &page); err != nil {
		return "", "", false, nil
	}
	c.local.Add(rk, page)
	return page.Text, page.Source, true, nil
}

// Put writes a page's text to the shared cache. Entries are never expired:
// the same (source_document_id, sha256, page_number, dpi) tuple always
// produces the same OCR output, so a TTL would only cause re-work.
func (c *Cache) Put(ctx context.Context, key CacheKey, text string, source domain.TextSource) error {
	page := cachedPage{Text: text, Source: source, CachedAt: time.Now()}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal ocr cache entry: %w", err)
	}
	rk := key.redisKey()
	c.local.Add(rk, page)
	return c.redis.Set(ctx, rk, data, 0).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error { return c.redis.Close() }
