package ports

import (
	"context"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
)

type Fetcher interface {
	// Fetch returns one event per upstream row of the dataset. Rows without
	// a unit key are skipped.
	Fetch(ctx context.Context, dataset string) ([]entities.RecordEvent, error)
	HealthCheck(ctx context.Context) error
}
