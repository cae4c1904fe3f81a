package ports

import (
	"context"
	"time"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
)

type RecordRepository interface {
	Upsert(ctx context.Context, record *entities.Record) error
	Delete(ctx context.Context, dataset, unitKey string) (bool, error)
	ListByDataset(ctx context.Context, dataset string) ([]*entities.Record, error)
	CountByDataset(ctx context.Context) (map[string]int, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

type ReportRepository interface {
	SaveReport(ctx context.Context, report entities.ReportEntity) error
	FindReportByID(ctx context.Context, reportID string) (entities.ReportEntity, error)
	FindLatestReport(ctx context.Context, dataset, locale string) (entities.ReportEntity, error)
	DeleteExpiredReports(ctx context.Context, now time.Time) ([]entities.ReportEntity, error)
	HealthCheck(ctx context.Context) error
}
