package cache

import (
	"context"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

// TieredCache keeps a short-lived in-process copy of hot entries in front of
// a shared remote cache. Remote failures are returned, local ones cannot
// happen.
type TieredCache struct {
	local    *gocache.Cache
	remote   ports.Cache
	localTTL time.Duration
	logger   logger.Logger
}

func NewTieredCache(remote ports.Cache, localTTL time.Duration, log logger.Logger) *TieredCache {
	if localTTL <= 0 {
		localTTL = time.Minute
	}
	return &TieredCache{
		local:    gocache.New(localTTL, 2*localTTL),
		remote:   remote,
		localTTL: localTTL,
		logger:   logger.ForComponent(log, "tiered_cache"),
	}
}

func (t *TieredCache) Get(ctx context.Context, key string) (entities.CacheEntity, error) {
	if v, ok := t.local.Get(key); ok {
		return v.(entities.CacheEntity), nil
	}

	entry, err := t.remote.Get(ctx, key)
	if err != nil || entry == nil {
		return entry, err
	}
	t.local.Set(key, entry, t.localExpiry(entry))
	return entry, nil
}

func (t *TieredCache) Set(ctx context.Context, key string, data entities.CacheEntity, ttl time.Duration) error {
	if err := t.remote.Set(ctx, key, data, ttl); err != nil {
		t.local.Delete(key)
		return err
	}
	local := t.localTTL
	if ttl > 0 && ttl < local {
		local = ttl
	}
	t.local.Set(key, data, local)
	return nil
}

func (t *TieredCache) Delete(ctx context.Context, key string) error {
	t.local.Delete(key)
	return t.remote.Delete(ctx, key)
}

func (t *TieredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range t.local.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			t.local.Delete(key)
		}
	}
	return t.remote.DeleteByPattern(ctx, pattern)
}

func (t *TieredCache) HealthCheck(ctx context.Context) error {
	return t.remote.HealthCheck(ctx)
}

func (t *TieredCache) Close() error {
	t.local.Flush()
	return t.remote.Close()
}

func (t *TieredCache) LocalItemCount() int {
	return t.local.ItemCount()
}

func (t *TieredCache) localExpiry(e entities.CacheEntity) time.Duration {
	if e.GetExpiresAt().IsZero() {
		return t.localTTL
	}
	remaining := time.Until(e.GetExpiresAt())
	if remaining <= 0 {
		return time.Millisecond
	}
	if remaining < t.localTTL {
		return remaining
	}
	return t.localTTL
}
