package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type RedisCache struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisCache(host string, port int, password string, db, poolSize int, log logger.Logger) (*RedisCache, error) {
	log = logger.ForComponent(log, "redis_cache")
	if poolSize <= 0 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Redis cache initialized successfully")
	return &RedisCache{client: client, logger: log}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (entities.CacheEntity, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	meta, err := r.client.HGetAll(ctx, metaKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	entry := entryFromMeta(key, data, meta)
	go r.updateAccessStats(key)
	return entry, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data entities.CacheEntity, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data.GetData(), ttl)
	pipe.HSet(ctx, metaKey(key), metaFromEntry(data))
	pipe.Expire(ctx, metaKey(key), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set data in Redis: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key, metaKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// DeleteByPattern walks the keyspace with SCAN so large caches never block
// Redis the way KEYS would.
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			all := make([]string, 0, len(keys)*2)
			for _, k := range keys {
				all = append(all, k, metaKey(k))
			}
			n, err := r.client.Del(ctx, all...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Debugf("Deleted %d keys matching %s", deleted, pattern)
	return nil
}

func (r *RedisCache) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	r.logger.Info("Closing Redis cache...")
	return r.client.Close()
}

func (r *RedisCache) updateAccessStats(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.HIncrBy(ctx, metaKey(key), "hit_count", 1)
	pipe.HSet(ctx, metaKey(key), "last_accessed_at", time.Now().Format(time.RFC3339))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Debugf("Failed to update access stats for %s: %v", key, err)
	}
}

func metaKey(key string) string {
	return key + ":meta"
}

func metaFromEntry(e entities.CacheEntity) map[string]interface{} {
	return map[string]interface{}{
		"id":               e.GetID(),
		"cache_type":       string(e.GetCacheType()),
		"content_type":     e.GetContentType(),
		"file_name":        e.GetFileName(),
		"expires_at":       e.GetExpiresAt().Format(time.RFC3339),
		"hit_count":        e.GetHitCount(),
		"created_at":       e.GetCreatedAt().Format(time.RFC3339),
		"last_accessed_at": e.GetLastAccessedAt().Format(time.RFC3339),
	}
}

func entryFromMeta(key string, data []byte, meta map[string]string) *entities.CacheEntry {
	expiresAt, _ := time.Parse(time.RFC3339, meta["expires_at"])
	createdAt, _ := time.Parse(time.RFC3339, meta["created_at"])
	lastAccessedAt, _ := time.Parse(time.RFC3339, meta["last_accessed_at"])
	hits, _ := strconv.Atoi(meta["hit_count"])

	return &entities.CacheEntry{
		ID:             meta["id"],
		CacheKey:       key,
		CacheType:      entities.CacheType(meta["cache_type"]),
		Data:           data,
		ContentType:    meta["content_type"],
		FileName:       meta["file_name"],
		ExpiresAt:      expiresAt,
		HitCount:       hits,
		CreatedAt:      createdAt,
		LastAccessedAt: lastAccessedAt,
	}
}
