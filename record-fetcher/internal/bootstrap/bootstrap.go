package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fernsky/digital-profile/record-fetcher/config"
	"github.com/fernsky/digital-profile/record-fetcher/internal/application"
	"github.com/fernsky/digital-profile/record-fetcher/internal/infrastructure/http"
	"github.com/fernsky/digital-profile/record-fetcher/internal/infrastructure/messaging"
	"github.com/fernsky/digital-profile/record-fetcher/internal/infrastructure/scheduler"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

type Bootstrap struct {
	config *config.Config
	logger logger.Logger
}

func NewBootstrap() (*Bootstrap, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)

	return &Bootstrap{
		config: cfg,
		logger: log,
	}, nil
}

func (b *Bootstrap) Run() error {
	b.PrintConfigInfo()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		b.logger.Infof("Received signal: %v. Shutting down...", sig)
		cancel()
	}()

	fetcher, producer, err := b.initDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	b.logger.Info("Performing initial health checks...")
	hc := b.config.HealthCheck
	healthChecker := NewHealthChecker(fetcher, producer, hc.UpstreamTimeout, hc.KafkaTimeout, hc.RetryInterval, hc.MaxRetries, b.logger)
	if err := healthChecker.CheckAll(ctx); err != nil {
		producer.Close()
		return fmt.Errorf("initial health checks failed: %w", err)
	}

	service := application.NewRecordService(
		fetcher,
		producer,
		scheduler.NewCronScheduler(b.config.Scheduler.Timeout, b.logger),
		b.datasetNames(),
		b.config.Upstream.Parallelism,
		b.logger,
	)

	if b.config.Scheduler.RunOnStart {
		if err := service.Sync(ctx); err != nil {
			b.logger.Errorf("Initial sync failed: %v", err)
		}
	}

	if err := service.Start(ctx, b.config.Scheduler.Interval); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	<-ctx.Done()

	b.logger.Info("Stopping service...")
	service.Stop()
	b.logger.WithFields(service.Stats()).Info("Service stopped gracefully")
	return nil
}

func (b *Bootstrap) initDependencies() (*http.UpstreamFetcher, *messaging.KafkaProducer, error) {
	b.logger.Info("Initializing dependencies...")

	unitFields := make(map[string][]string, len(b.config.Upstream.Datasets))
	for _, d := range b.config.Upstream.Datasets {
		unitFields[d.Name] = d.UnitFields
	}
	fetcher := http.NewUpstreamFetcher(http.FetcherOptions{
		BaseURL:    b.config.Upstream.BaseURL,
		Token:      b.config.Upstream.Token,
		HealthPath: b.config.Upstream.HealthPath,
		Timeout:    b.config.Upstream.Timeout,
		UnitFields: unitFields,
	}, b.logger)

	producer, err := messaging.NewKafkaProducer(
		b.config.Kafka.Brokers,
		b.config.Kafka.Topic,
		b.config.Kafka.RequiredAcks,
		b.config.Kafka.MaxRetries,
		b.logger,
	)
	if err != nil {
		return nil, nil, err
	}
	b.logger.Infof("Kafka producer initialized for topic: %s", b.config.Kafka.Topic)

	return fetcher, producer, nil
}

func (b *Bootstrap) datasetNames() []string {
	names := make([]string, 0, len(b.config.Upstream.Datasets))
	for _, d := range b.config.Upstream.Datasets {
		names = append(names, d.Name)
	}
	return names
}

func (b *Bootstrap) PrintConfigInfo() {
	b.logger.Infof("Service Name: %s", b.config.App.Name)
	b.logger.Infof("Environment: %s", b.config.App.Env)
	b.logger.Infof("Upstream Base URL: %s", b.config.Upstream.BaseURL)
	b.logger.Infof("Kafka Brokers: %v", b.config.Kafka.Brokers)
	b.logger.Infof("Kafka Topic: %s", b.config.Kafka.Topic)
	b.logger.Infof("Datasets: %v", b.datasetNames())
	b.logger.Infof("Sync interval: %v", b.config.Scheduler.Interval)
}
