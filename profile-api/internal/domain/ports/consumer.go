package ports

import (
	"context"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
)

type MessageHandler func(ctx context.Context, event entities.RecordEvent) error

type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
	HealthCheck(ctx context.Context) error
}
