package doctors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache fronts a Directory with a Redis TTL cache for the active-doctor
// roster, the hottest read in the chat path (every assistant turn loads it
// for context). Name and specialty lookups pass through uncached since their
// argument space is unbounded.
type Cache struct {
	Directory

	redis *redis.Client
	ttl   time.Duration
}

// NewCache wraps dir with roster caching. A nil client disables caching.
func NewCache(dir Directory, client *redis.Client, ttl time.Duration) *Cache {
	if dir == nil {
		panic("doctors: directory required")
	}
	return &Cache{Directory: dir, redis: client, ttl: ttl}
}

func rosterKey(limit int) string {
	return fmt.Sprintf("doctors:active:%d", limit)
}

// ListActive serves the roster from Redis when fresh, falling back to the
// underlying directory on miss or cache error. Cache failures never surface:
// a broken Redis degrades to direct reads.
func (c *Cache) ListActive(ctx context.Context, limit int) ([]Summary, error) {
	if c.redis == nil {
		return c.Directory.ListActive(ctx, limit)
	}

	key := rosterKey(limit)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached []Summary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	roster, err := c.Directory.ListActive(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(roster); err == nil {
		_ = c.redis.Set(ctx, key, data, c.ttl).Err()
	}
	return roster, nil
}
