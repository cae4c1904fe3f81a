package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

type checker interface {
	HealthCheck(ctx context.Context) error
}

type HealthChecker struct {
	fetcher  checker
	producer checker
	logger   logger.Logger

	upstreamTimeout time.Duration
	kafkaTimeout    time.Duration
	retryInterval   time.Duration
	maxRetries      int
}

func NewHealthChecker(fetcher, producer checker, upstreamTimeout, kafkaTimeout, retryInterval time.Duration, maxRetries int, log logger.Logger) *HealthChecker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &HealthChecker{
		fetcher:         fetcher,
		producer:        producer,
		logger:          logger.ForComponent(log, "health_checker"),
		upstreamTimeout: upstreamTimeout,
		kafkaTimeout:    kafkaTimeout,
		retryInterval:   retryInterval,
		maxRetries:      maxRetries,
	}
}

func (h *HealthChecker) CheckAll(ctx context.Context) error {
	h.logger.Info("Starting health checks for all dependencies")

	if err := h.checkWithRetry(ctx, h.fetcher.HealthCheck, "upstream", h.upstreamTimeout); err != nil {
		return fmt.Errorf("upstream health check failed: %w", err)
	}
	if err := h.checkWithRetry(ctx, h.producer.HealthCheck, "Kafka", h.kafkaTimeout); err != nil {
		return fmt.Errorf("Kafka health check failed: %w", err)
	}

	h.logger.Info("All health checks passed")
	return nil
}

func (h *HealthChecker) checkWithRetry(ctx context.Context, check func(context.Context) error, name string, timeout time.Duration) error {
	var lastErr error

	for i := 0; i < h.maxRetries; i++ {
		h.logger.Debugf("Checking %s (attempt %d/%d)", name, i+1, h.maxRetries)

		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := check(checkCtx)
		cancel()

		if err == nil {
			h.logger.Infof("%s health check passed", name)
			return nil
		}

		lastErr = err
		h.logger.Warnf("%s health check failed (attempt %d/%d): %v", name, i+1, h.maxRetries, err)

		if i < h.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryInterval):
			}
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", h.maxRetries, lastErr)
}
