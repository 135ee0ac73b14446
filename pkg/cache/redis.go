package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCacheInterface is a best-effort lookaside cache for hot links. Entries
// may be stale or absent at any time; callers must fall through to the store
// and never treat a cache failure as fatal.
type LinkCacheInterface interface {
	GetByCode(ctx context.Context, code string) (*CachedLink, error)
	GetByOriginalURL(ctx context.Context, originalURL string) (*CachedLink, error)
	PutByCode(ctx context.Context, link *CachedLink, ttl time.Duration) (bool, error)
	PutByOriginalURL(ctx context.Context, link *CachedLink, ttl time.Duration) (bool, error)
}

type LinkCache struct {
	client *redis.Client
}

type CachedLink struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{client: client}
}

func (c *LinkCache) GetByCode(ctx context.Context, code string) (*CachedLink, error) {
	return c.get(ctx, "code:"+code)
}

func (c *LinkCache) GetByOriginalURL(ctx context.Context, originalURL string) (*CachedLink, error) {
	return c.get(ctx, "url:"+originalURL)
}

func (c *LinkCache) get(ctx context.Context, key string) (*CachedLink, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached CachedLink
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

// PutByCode stores the link under its short code unless an entry already
// exists. Returns whether the entry was written.
func (c *LinkCache) PutByCode(ctx context.Context, link *CachedLink, ttl time.Duration) (bool, error) {
	return c.putIfAbsent(ctx, "code:"+link.ShortCode, link, ttl)
}

// PutByOriginalURL stores the link under its original URL unless an entry
// already exists. Used by the idempotence check on shortening.
func (c *LinkCache) PutByOriginalURL(ctx context.Context, link *CachedLink, ttl time.Duration) (bool, error) {
	return c.putIfAbsent(ctx, "url:"+link.OriginalURL, link, ttl)
}

func (c *LinkCache) putIfAbsent(ctx context.Context, key string, link *CachedLink, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(link)
	if err != nil {
		return false, err
	}

	return c.client.SetNX(ctx, key, data, ttl).Result()
}
