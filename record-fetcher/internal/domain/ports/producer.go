package ports

import (
	"context"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
)

type Producer interface {
	Produce(ctx context.Context, event entities.RecordEvent) error
	ProduceBatch(ctx context.Context, events []entities.RecordEvent) error
	HealthCheck(ctx context.Context) error
	Close() error
}
