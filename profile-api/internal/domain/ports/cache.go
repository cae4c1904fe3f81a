package ports

import (
	"context"
	"time"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
)

// Cache returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (entities.CacheEntity, error)
	Set(ctx context.Context, key string, data entities.CacheEntity, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	HealthCheck(ctx context.Context) error
	Close() error
}
