package utils

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Cache stores JSON-encodable values with a TTL. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get decodes the entry into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	// Invalidate drops every key starting with prefix.
	Invalidate(ctx context.Context, prefix string)
}

// cacheItem 包装缓存数据和过期时间
type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

// LRUCache is the in-process cache used when no Redis is configured.
type LRUCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

func NewLRUCache(size int) (*LRUCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lruCache: l}, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *LRUCache) Get(_ context.Context, key string, dst interface{}) bool {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return false
	}

	// 检查过期
	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return false
	}

	return json.Unmarshal(val.data, dst) == nil
}

func (c *LRUCache) Invalidate(_ context.Context, prefix string) {
	for _, key := range c.lruCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lruCache.Remove(key)
		}
	}
}

func (c *LRUCache) Len() int {
	return c.lruCache.Len()
}
