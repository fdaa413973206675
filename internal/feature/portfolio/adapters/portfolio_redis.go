package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"exchange_backend/internal/feature/portfolio/domain"
	"exchange_backend/internal/feature/portfolio/usecase"
)

const portfolioKey = "portfolio"

// PortfolioRedis implements usecase.PortfolioStore using Redis.
type PortfolioRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.PortfolioStore = (*PortfolioRedis)(nil)

// NewPortfolioRedis creates a new PortfolioRedis instance. If prefix is empty, it uses "exchange".
func NewPortfolioRedis(client *redis.Client, prefix string) *PortfolioRedis {
	if prefix == "" {
		prefix = "exchange"
	}
	return &PortfolioRedis{
		client: client,
		prefix: prefix,
	}
}

// key returns the Redis key holding the portfolio blob.
func (r *PortfolioRedis) key() string {
	return fmt.Sprintf("%s:%s", r.prefix, portfolioKey)
}

// ReadPortfolio returns the saved blob, or domain.ErrPortfolioNotFound if nothing is stored.
func (r *PortfolioRedis) ReadPortfolio(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrPortfolioNotFound
		}
		return nil, err
	}
	return data, nil
}

// WritePortfolio replaces the saved blob. The key has no expiry.
func (r *PortfolioRedis) WritePortfolio(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key(), data, 0).Err()
}
