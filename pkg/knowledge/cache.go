package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores exported documents per source key with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]TaggedDocument, bool)
	Set(ctx context.Context, key string, docs []TaggedDocument, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache keeps documents in process memory.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	// Expired items are purged every 10 minutes
	return &MemoryCache{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]TaggedDocument, bool) {
	if x, found := m.cache.Get(key); found {
		return x.([]TaggedDocument), true
	}
	return nil, false
}

func (m *MemoryCache) Set(_ context.Context, key string, docs []TaggedDocument, ttl time.Duration) error {
	m.cache.Set(key, docs, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

const redisKeyPrefix = "knowledge:"

// RedisCache shares exported documents between server instances.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]TaggedDocument, bool) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	var docs []TaggedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

func (r *RedisCache) Set(ctx context.Context, key string, docs []TaggedDocument, ttl time.Duration) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	err := r.rdb.Del(ctx, redisKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
