package application

import (
	"context"
	"fmt"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/labels"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

// chartLocale is the locale charts are drawn in; the fonts bundled with
// gonum/plot carry no Devanagari glyphs.
const chartLocale = labels.LocaleEnglish

type SummaryService struct {
	recordRepo ports.RecordRepository
	cache      *CacheService
	charts     ports.ChartRenderer
	catalog    *labels.Catalog
	logger     logger.Logger
}

func NewSummaryService(recordRepo ports.RecordRepository, cache *CacheService, charts ports.ChartRenderer, catalog *labels.Catalog, log logger.Logger) *SummaryService {
	return &SummaryService{
		recordRepo: recordRepo,
		cache:      cache,
		charts:     charts,
		catalog:    catalog,
		logger:     logger.ForComponent(log, "summary_service"),
	}
}

func (s *SummaryService) Datasets() []string {
	return stats.Datasets()
}

// Summarize runs the pipeline over the stored records of a dataset and
// localizes the result. An empty dataset yields a zeroed summary.
func (s *SummaryService) Summarize(ctx context.Context, dataset, locale string) (*stats.Presentation, error) {
	ds, ok := stats.LookupDataset(dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownDataset, dataset)
	}
	locale = s.catalog.Resolve(locale)

	if p := s.cache.GetSummary(ctx, dataset, locale); p != nil {
		s.logger.Debugf("Summary cache hit for %s/%s", dataset, locale)
		return p, nil
	}

	records, err := s.recordRepo.ListByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of %s: %w", dataset, err)
	}
	raws := make([]stats.Raw, len(records))
	for i, r := range records {
		raws[i] = r.Raw()
	}

	summary := ds.Summarize(raws)
	if issues := summary.Problems(); len(issues) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"dataset": dataset,
			"issues":  len(issues),
		}).Warn("Dataset has data quality issues")
	}

	p := summary.Present(s.catalog, locale)
	if err := s.cache.CacheSummary(ctx, &p); err != nil {
		s.logger.Warnf("Failed to cache summary %s/%s: %v", dataset, locale, err)
	}
	return &p, nil
}

// Chart renders the bar chart of a dataset as PNG.
func (s *SummaryService) Chart(ctx context.Context, dataset string) ([]byte, error) {
	if _, ok := stats.LookupDataset(dataset); !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownDataset, dataset)
	}
	if png := s.cache.GetChart(ctx, dataset, chartLocale); png != nil {
		return png, nil
	}

	p, err := s.Summarize(ctx, dataset, chartLocale)
	if err != nil {
		return nil, err
	}
	png, err := s.charts.RenderBar(p.Chart, p.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart of %s: %w", dataset, err)
	}
	if err := s.cache.CacheChart(ctx, dataset, chartLocale, png); err != nil {
		s.logger.Warnf("Failed to cache chart of %s: %v", dataset, err)
	}
	return png, nil
}

func (s *SummaryService) Invalidate(ctx context.Context, dataset string) error {
	return s.cache.InvalidateDataset(ctx, dataset)
}

func (s *SummaryService) HealthCheck(ctx context.Context) error {
	if err := s.recordRepo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("record repository health check failed: %w", err)
	}
	if err := s.cache.HealthCheck(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
