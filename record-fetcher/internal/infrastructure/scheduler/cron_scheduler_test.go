package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

func TestCronScheduler_ScheduleRejectsNilTask(t *testing.T) {
	s := NewCronScheduler(time.Second, logger.Nop())
	defer s.Stop()

	assert.Error(t, s.Schedule(context.Background(), time.Minute, nil))
}

func TestCronScheduler_ClampsShortIntervals(t *testing.T) {
	s := NewCronScheduler(time.Second, logger.Nop())
	defer s.Stop()

	require.NoError(t, s.Schedule(context.Background(), time.Second, func(context.Context) error { return nil }))

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	schedule, ok := entries[0].Schedule.(cron.ConstantDelaySchedule)
	require.True(t, ok)
	assert.Equal(t, minInterval, schedule.Delay)
}

func TestCronScheduler_WrapTask(t *testing.T) {
	t.Run("task gets a deadline", func(t *testing.T) {
		s := NewCronScheduler(50*time.Millisecond, logger.Nop())
		var hadDeadline atomic.Bool

		s.wrapTask(context.Background(), func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hadDeadline.Store(ok)
			return nil
		})()

		assert.True(t, hadDeadline.Load())
	})

	t.Run("failure is logged, not raised", func(t *testing.T) {
		s := NewCronScheduler(time.Second, logger.Nop())
		assert.NotPanics(t, s.wrapTask(context.Background(), func(context.Context) error {
			return errors.New("upstream down")
		}))
	})

	t.Run("cancelled context skips the run", func(t *testing.T) {
		s := NewCronScheduler(time.Second, logger.Nop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		s.wrapTask(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})()
		assert.Zero(t, calls.Load())
	})
}

func TestCronScheduler_StopCancelsTasks(t *testing.T) {
	s := NewCronScheduler(0, logger.Nop())
	require.NoError(t, s.Schedule(context.Background(), time.Hour, func(context.Context) error { return nil }))

	s.Stop()
	assert.Empty(t, s.cancels)
}
