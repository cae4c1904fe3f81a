package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/ports"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

const minInterval = 10 * time.Second

type CronScheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  logger.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
	started bool
}

// cronLogger routes cron's own messages through our logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("%s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf("%s: %v %v", msg, err, keysAndValues)
}

func NewCronScheduler(timeout time.Duration, log logger.Logger) *CronScheduler {
	log = logger.ForComponent(log, "cron_scheduler")
	cl := cronLogger{log: log}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		timeout: timeout,
		logger:  log,
	}
}

// Schedule runs task every interval until ctx is done or Stop is called.
// A run that is still going when the next one is due makes that one skip.
func (s *CronScheduler) Schedule(ctx context.Context, interval time.Duration, task ports.Task) error {
	if task == nil {
		return fmt.Errorf("task must not be nil")
	}
	if interval < minInterval {
		s.logger.Warnf("Interval %v is below %v, using %v", interval, minInterval, minInterval)
		interval = minInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	entryID := s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.wrapTask(ctx, task)))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, cancel)
	if !s.started {
		s.cron.Start()
		s.started = true
		s.logger.Info("Cron scheduler started")
	}

	s.logger.Infof("Task %d scheduled every %v", entryID, interval)
	return nil
}

func (s *CronScheduler) wrapTask(ctx context.Context, task ports.Task) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		startTime := time.Now()

		taskCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		if err := task(taskCtx); err != nil {
			s.logger.Errorf("Task failed after %v: %v", time.Since(startTime), err)
			return
		}
		s.logger.Debugf("Task completed in %v", time.Since(startTime))
	}
}

// Stop cancels running tasks and waits for them to return.
func (s *CronScheduler) Stop() {
	s.logger.Info("Stopping cron scheduler")

	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("Cron scheduler stopped")
}
