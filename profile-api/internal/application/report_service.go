package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/labels"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type ReportOptions struct {
	Retention   time.Duration
	Parallelism int
}

type ReportService struct {
	summaries  ports.SummaryService
	reportRepo ports.ReportRepository
	excelGen   ports.ExcelGenerator
	storage    ports.ReportStorage
	cache      *CacheService
	catalog    *labels.Catalog
	opts       ReportOptions
	now        func() time.Time
	logger     logger.Logger
}

func NewReportService(
	summaries ports.SummaryService,
	reportRepo ports.ReportRepository,
	excelGen ports.ExcelGenerator,
	storage ports.ReportStorage,
	cache *CacheService,
	catalog *labels.Catalog,
	opts ReportOptions,
	log logger.Logger,
) *ReportService {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &ReportService{
		summaries:  summaries,
		reportRepo: reportRepo,
		excelGen:   excelGen,
		storage:    storage,
		cache:      cache,
		catalog:    catalog,
		opts:       opts,
		now:        time.Now,
		logger:     logger.ForComponent(log, "report_service"),
	}
}

func (s *ReportService) Generate(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	p, err := s.summaries.Summarize(ctx, dataset, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", dataset, err)
	}
	locale = p.Locale

	now := s.now().UTC()
	text := ports.ReportText{
		SummarySheet:   s.catalog.Message("report.summary_sheet", locale, nil),
		TotalsSheet:    s.catalog.Message("report.totals_sheet", locale, nil),
		NarrativeSheet: s.catalog.Message("report.narrative_sheet", locale, nil),
		GeneratedAt: s.catalog.Message("report.generated_at", locale, map[string]string{
			"time": now.Format("2006-01-02 15:04 MST"),
		}),
	}

	data, err := s.excelGen.GenerateSummaryReport(ctx, p, text, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate excel: %w", err)
	}

	return s.saveReport(ctx, dataset, locale, now, data)
}

func (s *ReportService) saveReport(ctx context.Context, dataset, locale string, now time.Time, data []byte) (entities.ReportEntity, error) {
	checksum := sha256.Sum256(data)
	reportID := uuid.New().String()
	fileName := fmt.Sprintf("%s_%s_%s.xlsx", dataset, locale, now.Format("20060102_150405"))

	report := &entities.Report{
		ID:          reportID,
		Dataset:     dataset,
		Locale:      locale,
		FileName:    fileName,
		FileSize:    int64(len(data)),
		StoragePath: fmt.Sprintf("%s/%s/%s", dataset, locale, fileName),
		DownloadURL: fmt.Sprintf("/api/v1/reports/%s/download", reportID),
		Checksum:    hex.EncodeToString(checksum[:]),
		GeneratedAt: now,
	}
	if s.opts.Retention > 0 {
		expiresAt := now.Add(s.opts.Retention)
		report.ExpiresAt = &expiresAt
	}

	if err := s.storage.UploadReport(ctx, report, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload report to storage: %w", err)
	}
	if err := s.reportRepo.SaveReport(ctx, report); err != nil {
		// Without a metadata row cleanup would never find the object.
		if delErr := s.storage.DeleteReport(ctx, report); delErr != nil {
			s.logger.Errorf("Failed to remove orphaned report object %s: %v", report.StoragePath, delErr)
		}
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}
	if err := s.cache.CacheReport(ctx, report, data); err != nil {
		s.logger.Warnf("Failed to cache report: %v", err)
	}

	s.logger.Infof("Generated report %s for %s/%s (%d bytes)", reportID, dataset, locale, len(data))
	return report, nil
}

// GetReport fails with ErrNotFound for unknown and expired reports.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (entities.ReportEntity, error) {
	report, err := s.reportRepo.FindReportByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil || report.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: report %s", entities.ErrNotFound, reportID)
	}
	return report, nil
}

// Latest returns the most recent live report of a dataset in a locale.
func (s *ReportService) Latest(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	locale = s.catalog.Resolve(locale)
	report, err := s.reportRepo.FindLatestReport(ctx, dataset, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest report: %w", err)
	}
	if report == nil || report.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: no report for %s/%s", entities.ErrNotFound, dataset, locale)
	}
	return report, nil
}

func (s *ReportService) DownloadReport(ctx context.Context, reportID string) (io.ReadCloser, string, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, "", err
	}

	if entry, err := s.cache.GetReport(ctx, reportID); err == nil && entry != nil && !entry.IsExpired() {
		return io.NopCloser(bytes.NewReader(entry.GetData())), report.GetFileName(), nil
	}

	reader, err := s.storage.DownloadReport(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download report: %w", err)
	}
	return reader, report.GetFileName(), nil
}

// RegenerateAll builds a fresh report for every dataset in every locale,
// at most Parallelism at a time. Failures of single reports do not stop
// the others; the first one is returned.
func (s *ReportService) RegenerateAll(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)

	for _, dataset := range s.summaries.Datasets() {
		for _, locale := range s.catalog.Locales() {
			dataset, locale := dataset, locale
			g.Go(func() error {
				if _, err := s.Generate(ctx, dataset, locale); err != nil {
					s.logger.Errorf("Failed to regenerate %s/%s: %v", dataset, locale, err)
					return fmt.Errorf("failed to regenerate %s/%s: %w", dataset, locale, err)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// CleanupExpiredReports removes expired report rows, their files and their
// cached bytes, and returns how many reports were removed.
func (s *ReportService) CleanupExpiredReports(ctx context.Context) (int, error) {
	expired, err := s.reportRepo.DeleteExpiredReports(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reports: %w", err)
	}

	ids := make([]string, 0, len(expired))
	for _, report := range expired {
		ids = append(ids, report.GetID())
		if err := s.storage.DeleteReport(ctx, report); err != nil {
			s.logger.Warnf("Failed to delete stored file of report %s: %v", report.GetID(), err)
		}
	}
	if err := s.cache.CleanupExpiredCache(ctx, ids); err != nil {
		s.logger.Warnf("Failed to clean report cache: %v", err)
	}

	if len(expired) > 0 {
		s.logger.Infof("Removed %d expired reports", len(expired))
	}
	return len(expired), nil
}

func (s *ReportService) HealthCheck(ctx context.Context) error {
	if err := s.reportRepo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("report repository health check failed: %w", err)
	}
	if err := s.storage.HealthCheck(ctx); err != nil {
		return fmt.Errorf("report storage health check failed: %w", err)
	}
	return nil
}
