// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"exchange_backend/internal/feature/market/domain/entity"
	"exchange_backend/internal/feature/market/usecase"
)

var _ usecase.CharacterRepository = (*CachingCharacterRepository)(nil)

// CachingCharacterRepository decorates a CharacterRepository with Redis caching.
// The full character collection is cached as one JSON document.
type CachingCharacterRepository struct {
	inner     usecase.CharacterRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingCharacterRepository decorates a CharacterRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "characters".
func NewCachingCharacterRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CharacterRepository, namespace string) *CachingCharacterRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "characters"
	}
	return &CachingCharacterRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch writes through to the underlying repository and invalidates the cached collection.
func (c *CachingCharacterRepository) UpsertBatch(ctx context.Context, chars []entity.Character) error {
	if err := c.inner.UpsertBatch(ctx, chars); err != nil {
		return err
	}
	if c.rdb == nil || len(chars) == 0 {
		return nil
	}
	_ = c.rdb.Del(ctx, c.cacheKey()).Err() // Best effort
	return nil
}

// LoadEntities returns the collection from cache, falling back to the database.
func (c *CachingCharacterRepository) LoadEntities(ctx context.Context) ([]entity.Character, error) {
	if c.rdb == nil {
		return c.inner.LoadEntities(ctx)
	}

	key := c.cacheKey()

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Character
		if err := json.Unmarshal(b, &out); err == nil && len(out) > 0 {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.LoadEntities(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingCharacterRepository) cacheKey() string {
	return c.namespace + ":all"
}
