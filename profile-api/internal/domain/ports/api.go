package ports

import (
	"context"
	"io"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

type SummaryService interface {
	Datasets() []string
	Summarize(ctx context.Context, dataset, locale string) (*stats.Presentation, error)
	Chart(ctx context.Context, dataset string) ([]byte, error)
	Invalidate(ctx context.Context, dataset string) error
	HealthCheck(ctx context.Context) error
}

type ReportService interface {
	Generate(ctx context.Context, dataset, locale string) (entities.ReportEntity, error)
	GetReport(ctx context.Context, reportID string) (entities.ReportEntity, error)
	Latest(ctx context.Context, dataset, locale string) (entities.ReportEntity, error)
	DownloadReport(ctx context.Context, reportID string) (io.ReadCloser, string, error)
	HealthCheck(ctx context.Context) error
}

type RecordService interface {
	List(ctx context.Context, dataset string) ([]*entities.Record, error)
	Process(ctx context.Context, event entities.RecordEvent) error
	Counts(ctx context.Context) (map[string]int, error)
}

type APIServer interface {
	Start() error
	Stop(ctx context.Context) error
}
