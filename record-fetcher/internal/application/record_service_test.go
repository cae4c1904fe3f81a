package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
	"github.com/fernsky/digital-profile/record-fetcher/internal/testutils"
)

func events(dataset string, units ...string) []entities.RecordEvent {
	out := make([]entities.RecordEvent, 0, len(units))
	for _, u := range units {
		out = append(out, entities.RecordEvent{
			Op:     entities.OpUpsert,
			Record: entities.Record{Dataset: dataset, UnitKey: u, Fields: map[string]interface{}{"ward_number": u}},
		})
	}
	return out
}

func TestRecordService_Sync(t *testing.T) {
	t.Run("publishes every dataset", func(t *testing.T) {
		fetcher := &testutils.MockFetcher{}
		producer := &testutils.MockProducer{}
		wards := events("ward_demographics", "1", "2")
		religion := events("religion_population", "1:HINDU")

		fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(wards, nil)
		fetcher.On("Fetch", mock.Anything, "religion_population").Return(religion, nil)
		producer.On("ProduceBatch", mock.Anything, wards).Return(nil)
		producer.On("ProduceBatch", mock.Anything, religion).Return(nil)

		s := NewRecordService(fetcher, producer, &testutils.MockScheduler{},
			[]string{"ward_demographics", "religion_population"}, 2, logger.Nop())

		require.NoError(t, s.Sync(context.Background()))
		fetcher.AssertExpectations(t)
		producer.AssertExpectations(t)

		stats := s.Stats()
		assert.Equal(t, int64(3), stats["published"])
		assert.Equal(t, int64(0), stats["failures"])
		assert.Contains(t, stats, "last_sync")
	})

	t.Run("one failing dataset does not stop the rest", func(t *testing.T) {
		fetcher := &testutils.MockFetcher{}
		producer := &testutils.MockProducer{}
		wards := events("ward_demographics", "1")

		fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(wards, nil)
		fetcher.On("Fetch", mock.Anything, "irrigation_sources").Return(nil, errors.New("status 500"))
		producer.On("ProduceBatch", mock.Anything, wards).Return(nil)

		s := NewRecordService(fetcher, producer, &testutils.MockScheduler{},
			[]string{"ward_demographics", "irrigation_sources"}, 1, logger.Nop())

		err := s.Sync(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch irrigation_sources")
		producer.AssertExpectations(t)
		assert.Equal(t, int64(1), s.Stats()["failures"])
	})

	t.Run("empty dataset publishes nothing", func(t *testing.T) {
		fetcher := &testutils.MockFetcher{}
		producer := &testutils.MockProducer{}
		fetcher.On("Fetch", mock.Anything, "ward_demographics").Return([]entities.RecordEvent{}, nil)

		s := NewRecordService(fetcher, producer, &testutils.MockScheduler{}, []string{"ward_demographics"}, 1, logger.Nop())

		require.NoError(t, s.Sync(context.Background()))
		producer.AssertNotCalled(t, "ProduceBatch", mock.Anything, mock.Anything)
	})

	t.Run("publish failure", func(t *testing.T) {
		fetcher := &testutils.MockFetcher{}
		producer := &testutils.MockProducer{}
		fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(events("ward_demographics", "1"), nil)
		producer.On("ProduceBatch", mock.Anything, mock.Anything).Return(errors.New("out of brokers"))

		s := NewRecordService(fetcher, producer, &testutils.MockScheduler{}, []string{"ward_demographics"}, 1, logger.Nop())

		err := s.Sync(context.Background())
		assert.ErrorContains(t, err, "publish ward_demographics")
	})
}

func TestRecordService_SyncDeletesVanishedUnits(t *testing.T) {
	fetcher := &testutils.MockFetcher{}
	producer := &testutils.MockProducer{}
	first := events("ward_demographics", "1", "2", "3")
	second := events("ward_demographics", "1", "3")

	fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(first, nil).Once()
	fetcher.On("Fetch", mock.Anything, "ward_demographics").Return([]entities.RecordEvent{}, nil).Once()
	fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(second, nil).Once()
	producer.On("ProduceBatch", mock.Anything, first).Return(nil).Once()
	producer.On("ProduceBatch", mock.Anything, mock.MatchedBy(func(batch []entities.RecordEvent) bool {
		if len(batch) != 3 {
			return false
		}
		last := batch[2]
		return batch[0].Op == entities.OpUpsert && batch[1].Op == entities.OpUpsert &&
			last.Op == entities.OpDelete && last.Record.UnitKey == "2" && last.Record.Dataset == "ward_demographics"
	})).Return(nil).Once()

	s := NewRecordService(fetcher, producer, &testutils.MockScheduler{}, []string{"ward_demographics"}, 1, logger.Nop())

	require.NoError(t, s.Sync(context.Background()))
	require.NoError(t, s.Sync(context.Background()), "an empty fetch forgets nothing")
	require.NoError(t, s.Sync(context.Background()))

	fetcher.AssertExpectations(t)
	producer.AssertExpectations(t)
	assert.Equal(t, int64(6), s.Stats()["published"])
}

func TestRecordService_FailedPublishKeepsPreviousUnits(t *testing.T) {
	fetcher := &testutils.MockFetcher{}
	producer := &testutils.MockProducer{}
	fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(events("ward_demographics", "1", "2"), nil).Once()
	fetcher.On("Fetch", mock.Anything, "ward_demographics").Return(events("ward_demographics", "1"), nil)
	producer.On("ProduceBatch", mock.Anything, mock.Anything).Return(nil).Once()
	producer.On("ProduceBatch", mock.Anything, mock.Anything).Return(errors.New("out of brokers")).Once()
	producer.On("ProduceBatch", mock.Anything, mock.MatchedBy(func(batch []entities.RecordEvent) bool {
		return len(batch) == 2 && batch[1].Op == entities.OpDelete && batch[1].Record.UnitKey == "2"
	})).Return(nil).Once()

	s := NewRecordService(fetcher, producer, &testutils.MockScheduler{}, []string{"ward_demographics"}, 1, logger.Nop())

	require.NoError(t, s.Sync(context.Background()))
	require.Error(t, s.Sync(context.Background()))
	require.NoError(t, s.Sync(context.Background()), "the delete is retried on the next sync")
	producer.AssertExpectations(t)
}

func TestRecordService_StartStop(t *testing.T) {
	scheduler := &testutils.MockScheduler{}
	producer := &testutils.MockProducer{}
	scheduler.On("Schedule", mock.Anything, 15*time.Minute, mock.Anything).Return(nil)
	scheduler.On("Stop").Return()
	producer.On("Close").Return(errors.New("already closed"))

	s := NewRecordService(&testutils.MockFetcher{}, producer, scheduler, []string{"ward_demographics"}, 1, logger.Nop())

	require.NoError(t, s.Start(context.Background(), 15*time.Minute))
	s.Stop()

	scheduler.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestRecordService_StartFailure(t *testing.T) {
	scheduler := &testutils.MockScheduler{}
	scheduler.On("Schedule", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bad interval"))

	s := NewRecordService(&testutils.MockFetcher{}, &testutils.MockProducer{}, scheduler, nil, 1, logger.Nop())
	assert.ErrorContains(t, s.Start(context.Background(), time.Minute), "failed to start scheduler")
}

func TestRecordService_HealthCheck(t *testing.T) {
	fetcher := &testutils.MockFetcher{}
	producer := &testutils.MockProducer{}
	fetcher.On("HealthCheck", mock.Anything).Return(nil)
	producer.On("HealthCheck", mock.Anything).Return(errors.New("no brokers"))

	s := NewRecordService(fetcher, producer, &testutils.MockScheduler{}, nil, 1, logger.Nop())
	assert.ErrorContains(t, s.HealthCheck(context.Background()), "producer health check failed")
}
