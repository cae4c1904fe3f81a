package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/testutils"
)

func entry(key string) *entities.CacheEntry {
	return &entities.CacheEntry{
		CacheKey:  key,
		CacheType: entities.CacheTypeSummary,
		Data:      []byte(`{"dataset":"ward_demographics"}`),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestTieredCacheServesLocalHitWithoutRemote(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("Set", ctx, "summary:a", mock.Anything, time.Hour).Return(nil).Once()

	c := NewTieredCache(remote, time.Minute, logger.Nop())
	require.NoError(t, c.Set(ctx, "summary:a", entry("summary:a"), time.Hour))

	got, err := c.Get(ctx, "summary:a")
	require.NoError(t, err)
	assert.Equal(t, "summary:a", got.GetCacheKey())
	remote.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestTieredCacheFillsLocalFromRemote(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("Get", ctx, "summary:b").Return(entry("summary:b"), nil).Once()

	c := NewTieredCache(remote, time.Minute, logger.Nop())

	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, "summary:b")
		require.NoError(t, err)
		require.NotNil(t, got)
	}
	remote.AssertNumberOfCalls(t, "Get", 1)
	assert.Equal(t, 1, c.LocalItemCount())
}

func TestTieredCacheMiss(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("Get", ctx, "summary:none").Return(nil, nil)

	c := NewTieredCache(remote, time.Minute, logger.Nop())
	got, err := c.Get(ctx, "summary:none")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.LocalItemCount())
}

func TestTieredCacheRemoteSetFailureKeepsLocalClean(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("Set", ctx, "summary:c", mock.Anything, time.Hour).Return(errors.New("redis down"))

	c := NewTieredCache(remote, time.Minute, logger.Nop())
	assert.Error(t, c.Set(ctx, "summary:c", entry("summary:c"), time.Hour))
	assert.Equal(t, 0, c.LocalItemCount())
}

func TestTieredCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("Set", ctx, mock.Anything, mock.Anything, time.Hour).Return(nil)
	remote.On("DeleteByPattern", ctx, "summary:ward_demographics:*").Return(nil).Once()

	c := NewTieredCache(remote, time.Minute, logger.Nop())
	require.NoError(t, c.Set(ctx, "summary:ward_demographics:ne", entry("x"), time.Hour))
	require.NoError(t, c.Set(ctx, "summary:ward_demographics:en", entry("y"), time.Hour))
	require.NoError(t, c.Set(ctx, "summary:irrigation_sources:en", entry("z"), time.Hour))

	require.NoError(t, c.DeleteByPattern(ctx, "summary:ward_demographics:*"))
	assert.Equal(t, 1, c.LocalItemCount())
	remote.AssertExpectations(t)
}

func TestTieredCacheDelegatesHealthAndClose(t *testing.T) {
	ctx := context.Background()
	remote := new(testutils.MockCache)
	remote.On("HealthCheck", ctx).Return(nil)
	remote.On("Close").Return(nil)
	remote.On("Delete", ctx, "k").Return(nil)

	c := NewTieredCache(remote, 0, logger.Nop())
	assert.NoError(t, c.HealthCheck(ctx))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
	remote.AssertExpectations(t)
}

func TestEntryMetaRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	e := &entities.CacheEntry{
		ID:             "id-1",
		CacheType:      entities.CacheTypeReport,
		ContentType:    entities.ReportContentType,
		FileName:       "report.xlsx",
		ExpiresAt:      now.Add(time.Hour),
		HitCount:       4,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	meta := metaFromEntry(e)
	strMeta := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case string:
			strMeta[k] = val
		case int:
			strMeta[k] = "4"
		}
	}

	got := entryFromMeta("report:key", []byte("xlsx"), strMeta)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, entities.CacheTypeReport, got.CacheType)
	assert.Equal(t, 4, got.HitCount)
	assert.True(t, got.ExpiresAt.Equal(e.ExpiresAt))
	assert.Equal(t, "report:key", got.CacheKey)
	assert.Equal(t, "summary:x:meta", metaKey("summary:x"))
}
