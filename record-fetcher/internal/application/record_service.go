package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/ports"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

// RecordService copies upstream datasets onto the records topic.
type RecordService struct {
	fetcher     ports.Fetcher
	producer    ports.Producer
	scheduler   ports.Scheduler
	datasets    []string
	parallelism int
	logger      logger.Logger

	published atomic.Int64
	failures  atomic.Int64
	lastSync  atomic.Value

	// units holds the unit keys of the last published fetch per dataset.
	unitsMu sync.Mutex
	units   map[string]map[string]struct{}
}

func NewRecordService(
	fetcher ports.Fetcher,
	producer ports.Producer,
	scheduler ports.Scheduler,
	datasets []string,
	parallelism int,
	log logger.Logger,
) *RecordService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &RecordService{
		fetcher:     fetcher,
		producer:    producer,
		scheduler:   scheduler,
		datasets:    datasets,
		parallelism: parallelism,
		logger:      logger.ForComponent(log, "record_service"),
		units:       make(map[string]map[string]struct{}),
	}
}

func (s *RecordService) Start(ctx context.Context, interval time.Duration) error {
	s.logger.Infof("Starting record service for %d datasets with interval: %v", len(s.datasets), interval)

	if err := s.scheduler.Schedule(ctx, interval, s.Sync); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

func (s *RecordService) Stop() {
	s.logger.Info("Stopping record service")
	s.scheduler.Stop()

	if err := s.producer.Close(); err != nil {
		s.logger.Errorf("Failed to close producer: %v", err)
	}
}

// Sync fetches every dataset and publishes its rows. A failing dataset does
// not stop the others; all failures are returned together.
func (s *RecordService) Sync(ctx context.Context) error {
	startTime := time.Now()

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(s.parallelism)

	for _, dataset := range s.datasets {
		dataset := dataset
		g.Go(func() error {
			n, err := s.syncDataset(ctx, dataset)
			if err != nil {
				s.failures.Add(1)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			s.published.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	s.lastSync.Store(time.Now())
	if len(errs) > 0 {
		s.logger.Warnf("Sync finished in %v with %d of %d datasets failing", time.Since(startTime), len(errs), len(s.datasets))
		return errors.Join(errs...)
	}

	s.logger.Infof("Sync of %d datasets completed in %v", len(s.datasets), time.Since(startTime))
	return nil
}

// syncDataset publishes the fetched rows plus a delete for every unit that
// was published last time but is no longer upstream. An empty fetch deletes
// nothing.
func (s *RecordService) syncDataset(ctx context.Context, dataset string) (int, error) {
	events, err := s.fetcher.Fetch(ctx, dataset)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", dataset, err)
	}
	if len(events) == 0 {
		s.logger.Warnf("Upstream returned no rows for %s", dataset)
		return 0, nil
	}

	batch := events
	if deletes := s.vanished(dataset, events); len(deletes) > 0 {
		batch = make([]entities.RecordEvent, 0, len(events)+len(deletes))
		batch = append(batch, events...)
		batch = append(batch, deletes...)
		s.logger.Infof("%d units of %s disappeared upstream", len(deletes), dataset)
	}

	if err := s.producer.ProduceBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("publish %s: %w", dataset, err)
	}
	s.remember(dataset, events)

	s.logger.Debugf("Published %d events for %s", len(batch), dataset)
	return len(batch), nil
}

func (s *RecordService) vanished(dataset string, events []entities.RecordEvent) []entities.RecordEvent {
	current := make(map[string]struct{}, len(events))
	for _, e := range events {
		current[e.Record.UnitKey] = struct{}{}
	}

	s.unitsMu.Lock()
	var gone []string
	for unit := range s.units[dataset] {
		if _, ok := current[unit]; !ok {
			gone = append(gone, unit)
		}
	}
	s.unitsMu.Unlock()
	sort.Strings(gone)

	now := time.Now().UTC()
	deletes := make([]entities.RecordEvent, 0, len(gone))
	for _, unit := range gone {
		deletes = append(deletes, entities.RecordEvent{
			Op:        entities.OpDelete,
			Record:    entities.Record{Dataset: dataset, UnitKey: unit, Source: "upstream"},
			EmittedAt: now,
		})
	}
	return deletes
}

func (s *RecordService) remember(dataset string, events []entities.RecordEvent) {
	units := make(map[string]struct{}, len(events))
	for _, e := range events {
		units[e.Record.UnitKey] = struct{}{}
	}
	s.unitsMu.Lock()
	s.units[dataset] = units
	s.unitsMu.Unlock()
}

func (s *RecordService) HealthCheck(ctx context.Context) error {
	if err := s.fetcher.HealthCheck(ctx); err != nil {
		return fmt.Errorf("fetcher health check failed: %w", err)
	}
	if err := s.producer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("producer health check failed: %w", err)
	}
	return nil
}

func (s *RecordService) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"datasets":  len(s.datasets),
		"published": s.published.Load(),
		"failures":  s.failures.Load(),
	}
	if last, ok := s.lastSync.Load().(time.Time); ok {
		stats["last_sync"] = last.Format(time.RFC3339)
	}
	return stats
}
