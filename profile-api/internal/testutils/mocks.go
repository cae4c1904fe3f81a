package testutils

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (entities.CacheEntity, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.CacheEntity), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, data entities.CacheEntity, ttl time.Duration) error {
	args := m.Called(ctx, key, data, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCache) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Upsert(ctx context.Context, record *entities.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, dataset, unitKey string) (bool, error) {
	args := m.Called(ctx, dataset, unitKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) ListByDataset(ctx context.Context, dataset string) ([]*entities.Record, error) {
	args := m.Called(ctx, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Record), args.Error(1)
}

func (m *MockRecordRepository) CountByDataset(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockRecordRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRecordRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SaveReport(ctx context.Context, report entities.ReportEntity) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindReportByID(ctx context.Context, reportID string) (entities.ReportEntity, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ReportEntity), args.Error(1)
}

func (m *MockReportRepository) FindLatestReport(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	args := m.Called(ctx, dataset, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ReportEntity), args.Error(1)
}

func (m *MockReportRepository) DeleteExpiredReports(ctx context.Context, now time.Time) ([]entities.ReportEntity, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ReportEntity), args.Error(1)
}

func (m *MockReportRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, key, data, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockStorage) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockReportStorage struct {
	mock.Mock
}

func (m *MockReportStorage) UploadReport(ctx context.Context, report entities.ReportEntity, data io.Reader) error {
	args := m.Called(ctx, report, data)
	return args.Error(0)
}

func (m *MockReportStorage) DownloadReport(ctx context.Context, report entities.ReportEntity) (io.ReadCloser, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockReportStorage) DeleteReport(ctx context.Context, report entities.ReportEntity) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportStorage) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockExcelGenerator struct {
	mock.Mock
}

func (m *MockExcelGenerator) GenerateSummaryReport(ctx context.Context, p *stats.Presentation, text ports.ReportText, generatedAt time.Time) ([]byte, error) {
	args := m.Called(ctx, p, text, generatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) RenderBar(points []stats.ChartPoint, title string) ([]byte, error) {
	args := m.Called(points, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Datasets() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockSummaryService) Summarize(ctx context.Context, dataset, locale string) (*stats.Presentation, error) {
	args := m.Called(ctx, dataset, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.Presentation), args.Error(1)
}

func (m *MockSummaryService) Chart(ctx context.Context, dataset string) ([]byte, error) {
	args := m.Called(ctx, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSummaryService) Invalidate(ctx context.Context, dataset string) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}

func (m *MockSummaryService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	args := m.Called(ctx, dataset, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ReportEntity), args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, reportID string) (entities.ReportEntity, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ReportEntity), args.Error(1)
}

func (m *MockReportService) Latest(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	args := m.Called(ctx, dataset, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ReportEntity), args.Error(1)
}

func (m *MockReportService) DownloadReport(ctx context.Context, reportID string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockReportService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) List(ctx context.Context, dataset string) ([]*entities.Record, error) {
	args := m.Called(ctx, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Record), args.Error(1)
}

func (m *MockRecordService) Process(ctx context.Context, event entities.RecordEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRecordService) Counts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	args := m.Called(ctx, name, interval, task)
	return args.Error(0)
}

func (m *MockScheduler) RunNow(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockScheduler) Jobs() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockScheduler) Stop() {
	m.Called()
}

func (m *MockScheduler) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MemoryCache is a map-backed ports.Cache for service tests that care about
// what ends up cached rather than about call expectations.
type MemoryCache struct {
	mu      sync.Mutex
	Entries map[string]entities.CacheEntity
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Entries: make(map[string]entities.CacheEntity)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (entities.CacheEntity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.Entries[key]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data entities.CacheEntity, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries[key] = data
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Entries, key)
	return nil
}

func (c *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := pattern
	if n := len(prefix); n > 0 && prefix[n-1] == '*' {
		prefix = prefix[:n-1]
	}
	for k := range c.Entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.Entries, k)
		}
	}
	return nil
}

func (c *MemoryCache) HealthCheck(context.Context) error { return nil }
func (c *MemoryCache) Close() error                      { return nil }
