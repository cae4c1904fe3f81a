package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

type CacheService struct {
	cache      ports.Cache
	summaryTTL time.Duration
	reportTTL  time.Duration
	logger     logger.Logger
}

func NewCacheService(cache ports.Cache, summaryTTL, reportTTL time.Duration, log logger.Logger) *CacheService {
	return &CacheService{
		cache:      cache,
		summaryTTL: summaryTTL,
		reportTTL:  reportTTL,
		logger:     logger.ForComponent(log, "cache_service"),
	}
}

// GetSummary returns nil on a miss. Cache failures are logged and treated
// as misses so that summaries are still served from the database.
func (s *CacheService) GetSummary(ctx context.Context, dataset, locale string) *stats.Presentation {
	entry, err := s.cache.Get(ctx, summaryKey(dataset, locale))
	if err != nil {
		s.logger.Warnf("Failed to read cached summary %s/%s: %v", dataset, locale, err)
		return nil
	}
	if entry == nil || entry.IsExpired() {
		return nil
	}

	var p stats.Presentation
	if err := json.Unmarshal(entry.GetData(), &p); err != nil {
		s.logger.Warnf("Dropping undecodable cached summary %s/%s: %v", dataset, locale, err)
		_ = s.cache.Delete(ctx, summaryKey(dataset, locale))
		return nil
	}
	return &p
}

func (s *CacheService) CacheSummary(ctx context.Context, p *stats.Presentation) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	key := summaryKey(p.Dataset, p.Locale)
	return s.cache.Set(ctx, key, s.entry(key, entities.CacheTypeSummary, data, "application/json", "", s.summaryTTL), s.summaryTTL)
}

func (s *CacheService) GetChart(ctx context.Context, dataset, locale string) []byte {
	entry, err := s.cache.Get(ctx, chartKey(dataset, locale))
	if err != nil {
		s.logger.Warnf("Failed to read cached chart %s/%s: %v", dataset, locale, err)
		return nil
	}
	if entry == nil || entry.IsExpired() {
		return nil
	}
	return entry.GetData()
}

func (s *CacheService) CacheChart(ctx context.Context, dataset, locale string, png []byte) error {
	key := chartKey(dataset, locale)
	return s.cache.Set(ctx, key, s.entry(key, entities.CacheTypeChart, png, "image/png", "", s.summaryTTL), s.summaryTTL)
}

func (s *CacheService) GetReport(ctx context.Context, reportID string) (entities.CacheEntity, error) {
	return s.cache.Get(ctx, reportKey(reportID))
}

func (s *CacheService) CacheReport(ctx context.Context, report entities.ReportEntity, data []byte) error {
	key := reportKey(report.GetID())
	return s.cache.Set(ctx, key, s.entry(key, entities.CacheTypeReport, data, entities.ReportContentType, report.GetFileName(), s.reportTTL), s.reportTTL)
}

// InvalidateDataset drops every cached summary and chart of a dataset, in
// all locales.
func (s *CacheService) InvalidateDataset(ctx context.Context, dataset string) error {
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("summary:%s:*", dataset)); err != nil {
		return fmt.Errorf("failed to invalidate summaries of %s: %w", dataset, err)
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("chart:%s:*", dataset)); err != nil {
		return fmt.Errorf("failed to invalidate charts of %s: %w", dataset, err)
	}
	return nil
}

func (s *CacheService) CleanupExpiredCache(ctx context.Context, reportIDs []string) error {
	for _, id := range reportIDs {
		if err := s.cache.Delete(ctx, reportKey(id)); err != nil {
			return fmt.Errorf("failed to drop cached report %s: %w", id, err)
		}
	}
	return nil
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	return s.cache.HealthCheck(ctx)
}

func (s *CacheService) entry(key string, typ entities.CacheType, data []byte, contentType, fileName string, ttl time.Duration) *entities.CacheEntry {
	now := time.Now()
	return &entities.CacheEntry{
		ID:             uuid.New().String(),
		CacheKey:       key,
		CacheType:      typ,
		Data:           data,
		ContentType:    contentType,
		FileName:       fileName,
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

func summaryKey(dataset, locale string) string {
	return fmt.Sprintf("summary:%s:%s", dataset, locale)
}

func chartKey(dataset, locale string) string {
	return fmt.Sprintf("chart:%s:%s", dataset, locale)
}

func reportKey(reportID string) string {
	return "report:" + reportID
}
