package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type job struct {
	entryID cron.EntryID
	task    ports.Task
}

type CronScheduler struct {
	cron       *cron.Cron
	jobs       map[string]job
	jobTimeout time.Duration
	mu         sync.RWMutex
	running    sync.Map
	logger     logger.Logger
}

func NewCronScheduler(jobTimeout time.Duration, log logger.Logger) *CronScheduler {
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}
	c := cron.New(cron.WithSeconds())

	s := &CronScheduler{
		cron:       c,
		jobs:       make(map[string]job),
		jobTimeout: jobTimeout,
		logger:     logger.ForComponent(log, "cron_scheduler"),
	}

	c.Start()
	s.logger.Info("Cron scheduler started")
	return s
}

func (c *CronScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.jobs[name]; exists {
		return fmt.Errorf("job with name '%s' already exists", name)
	}

	cronExpr := intervalToCron(interval)
	c.logger.Infof("Scheduling job '%s' with interval %v (cron: %s)", name, interval, cronExpr)

	entryID, err := c.cron.AddFunc(cronExpr, func() {
		c.runTask(context.Background(), name, task)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job '%s': %w", name, err)
	}

	c.jobs[name] = job{entryID: entryID, task: task}
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (c *CronScheduler) RunNow(ctx context.Context, name string) error {
	c.mu.RLock()
	j, ok := c.jobs[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job '%s' is not registered", name)
	}
	return c.runTask(ctx, name, j.task)
}

func (c *CronScheduler) Jobs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runTask skips a run while the previous run of the same job is still going.
func (c *CronScheduler) runTask(parent context.Context, name string, task ports.Task) error {
	if _, busy := c.running.LoadOrStore(name, struct{}{}); busy {
		c.logger.Warnf("Job '%s' is still running, skipping this run", name)
		return nil
	}
	defer c.running.Delete(name)

	startTime := time.Now()
	log := c.logger.WithField("job", name)
	log.Info("Starting scheduled job")

	ctx, cancel := context.WithTimeout(parent, c.jobTimeout)
	defer cancel()

	if err := task(ctx); err != nil {
		log.Errorf("Job failed after %v: %v", time.Since(startTime), err)
		return err
	}

	log.Infof("Job completed successfully in %v", time.Since(startTime))
	return nil
}

func (c *CronScheduler) Stop() {
	c.logger.Info("Stopping cron scheduler...")
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.cron.Stop()
	<-ctx.Done()

	c.jobs = make(map[string]job)
	c.logger.Info("Cron scheduler stopped")
}

func (c *CronScheduler) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.cron.Entries()) == 0 && len(c.jobs) > 0 {
		return fmt.Errorf("cron has no entries but jobs are registered")
	}

	for name, j := range c.jobs {
		if entry := c.cron.Entry(j.entryID); entry.ID != j.entryID {
			return fmt.Errorf("job '%s' not found in cron", name)
		}
	}
	return nil
}

func intervalToCron(interval time.Duration) string {
	if interval <= 0 {
		return "@every 1m"
	}

	seconds := int(interval.Seconds())
	if seconds < 60 {
		if seconds < 10 {
			seconds = 10
		}
		return fmt.Sprintf("*/%d * * * * *", seconds)
	}

	minutes := int(interval.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("0 */%d * * * *", minutes)
	}

	hours := int(interval.Hours())
	if hours < 24 {
		return fmt.Sprintf("0 0 */%d * * *", hours)
	}
	return fmt.Sprintf("@every %s", interval)
}
