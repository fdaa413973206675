// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	marketadapters "exchange_backend/internal/feature/market/adapters"
	"exchange_backend/internal/feature/market/adapters/static"
	marketusecase "exchange_backend/internal/feature/market/usecase"
	portfolioadapters "exchange_backend/internal/feature/portfolio/adapters"
	portfoliousecase "exchange_backend/internal/feature/portfolio/usecase"
	"exchange_backend/internal/platform/cache"
)

// Character sources selectable with CHARACTER_SOURCE.
const (
	SourceStatic = "static"
	SourceDB     = "db"
)

const characterCacheTTL = 10 * time.Minute

// Models returns the GORM models migrated at startup.
func Models() []any {
	return []any{
		&marketadapters.CharacterModel{},
		&portfolioadapters.KVEntryModel{},
	}
}

// NewPortfolioStore creates a PortfolioStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL key/value table.
func NewPortfolioStore(rdb *redis.Client, db *gorm.DB, namespace string) portfoliousecase.PortfolioStore {
	if rdb != nil {
		return portfolioadapters.NewPortfolioRedis(rdb, namespace)
	}
	return portfolioadapters.NewPortfolioRepository(db)
}

// NewEntitySource creates the character source selected by name.
// The "db" source reads the SQL catalog through the Redis cache when Redis is available.
func NewEntitySource(name string, rdb *redis.Client, db *gorm.DB, namespace string) (marketusecase.EntitySource, error) {
	switch name {
	case SourceStatic, "":
		return static.NewSource(), nil
	case SourceDB:
		if db == nil {
			return nil, fmt.Errorf("CHARACTER_SOURCE=%s requires a database", name)
		}
		repo := marketadapters.NewCharacterRepository(db)
		return cache.NewCachingCharacterRepository(rdb, characterCacheTTL, repo, namespace+":characters"), nil
	default:
		return nil, fmt.Errorf("unknown CHARACTER_SOURCE %q", name)
	}
}
