package application

import (
	"context"
	"fmt"
	"time"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

// RecordProcessor applies record events from Kafka and from the admin
// endpoints. Every applied change invalidates the cached summaries of the
// affected dataset.
type RecordProcessor struct {
	recordRepo ports.RecordRepository
	summaries  ports.SummaryService
	logger     logger.Logger
}

func NewRecordProcessor(recordRepo ports.RecordRepository, summaries ports.SummaryService, log logger.Logger) *RecordProcessor {
	return &RecordProcessor{
		recordRepo: recordRepo,
		summaries:  summaries,
		logger:     logger.ForComponent(log, "record_processor"),
	}
}

func (p *RecordProcessor) Process(ctx context.Context, event entities.RecordEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	record := event.Record
	record.UnitKey = stats.CanonicalUnitKey(record.UnitKey)
	switch event.Op {
	case entities.OpUpsert:
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = time.Now().UTC()
		}
		if err := p.recordRepo.Upsert(ctx, &record); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		p.logger.Debugf("Upserted %s/%s", record.Dataset, record.UnitKey)
	case entities.OpDelete:
		deleted, err := p.recordRepo.Delete(ctx, record.Dataset, record.UnitKey)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		if !deleted {
			p.logger.Debugf("Delete of missing record %s/%s ignored", record.Dataset, record.UnitKey)
			return nil
		}
	}

	if err := p.summaries.Invalidate(ctx, record.Dataset); err != nil {
		p.logger.Warnf("Failed to invalidate summaries of %s: %v", record.Dataset, err)
	}
	return nil
}

func (p *RecordProcessor) List(ctx context.Context, dataset string) ([]*entities.Record, error) {
	if _, ok := stats.LookupDataset(dataset); !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnknownDataset, dataset)
	}
	records, err := p.recordRepo.ListByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Counts returns the number of stored records per dataset.
func (p *RecordProcessor) Counts(ctx context.Context) (map[string]int, error) {
	counts, err := p.recordRepo.CountByDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, nil
}
