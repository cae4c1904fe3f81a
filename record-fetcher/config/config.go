package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Upstream    UpstreamConfig
	Kafka       KafkaConfig
	Scheduler   SchedulerConfig
	HealthCheck HealthCheckConfig
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type UpstreamConfig struct {
	BaseURL     string          `mapstructure:"base_url"`
	Token       string          `mapstructure:"token"`
	HealthPath  string          `mapstructure:"health_path"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	Parallelism int             `mapstructure:"parallelism"`
	Datasets    []DatasetConfig `mapstructure:"datasets"`
}

// DatasetConfig names an upstream dataset and the row fields that identify
// one unit of it.
type DatasetConfig struct {
	Name       string   `mapstructure:"name"`
	UnitFields []string `mapstructure:"unit_fields"`
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	RequiredAcks int16    `mapstructure:"required_acks"`
	MaxRetries   int      `mapstructure:"max_retries"`
}

type SchedulerConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

type HealthCheckConfig struct {
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	KafkaTimeout    time.Duration `mapstructure:"kafka_timeout"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// Unit fields accept aliases separated by "|", matching the field aliases
// the profile API normalizes.
const (
	wardUnit     = "ward_number|wardNumber|ward"
	sourceUnit   = "source_type|sourceType"
	religionUnit = "religion_type|religionType"
)

var knownDatasets = []DatasetConfig{
	{Name: "ward_demographics", UnitFields: []string{wardUnit}},
	{Name: "ward_irrigated_area", UnitFields: []string{wardUnit}},
	{Name: "irrigation_sources", UnitFields: []string{wardUnit, sourceUnit}},
	{Name: "religion_population", UnitFields: []string{wardUnit, religionUnit}},
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/record-fetcher/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if len(cfg.Upstream.Datasets) == 0 {
		cfg.Upstream.Datasets = append([]DatasetConfig(nil), knownDatasets...)
	}
	if names := os.Getenv("FETCH_DATASETS"); names != "" {
		cfg.Upstream.Datasets = selectDatasets(splitList(names))
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "record-fetcher")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("upstream.base_url", "http://profile-rpc:3000/api/profile")
	v.SetDefault("upstream.health_path", "/health")
	v.SetDefault("upstream.timeout", "15s")
	v.SetDefault("upstream.parallelism", 2)

	v.SetDefault("kafka.brokers", []string{"kafka:9093"})
	v.SetDefault("kafka.topic", "profile-records")
	v.SetDefault("kafka.required_acks", -1)
	v.SetDefault("kafka.max_retries", 5)

	v.SetDefault("scheduler.interval", "15m")
	v.SetDefault("scheduler.timeout", "5m")
	v.SetDefault("scheduler.run_on_start", true)

	v.SetDefault("healthcheck.upstream_timeout", "5s")
	v.SetDefault("healthcheck.kafka_timeout", "10s")
	v.SetDefault("healthcheck.retry_interval", "5s")
	v.SetDefault("healthcheck.max_retries", 5)
}

func overrideFromEnv(v *viper.Viper) {
	if baseURL := os.Getenv("UPSTREAM_BASE_URL"); baseURL != "" {
		v.Set("upstream.base_url", baseURL)
	}
	if token := os.Getenv("UPSTREAM_TOKEN"); token != "" {
		v.Set("upstream.token", token)
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", splitList(brokers))
	}
	if topic := os.Getenv("KAFKA_RECORDS_TOPIC"); topic != "" {
		v.Set("kafka.topic", topic)
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		v.Set("app.env", env)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("app.log_level", logLevel)
	}
}

// selectDatasets keeps the built-in unit fields for known names. Unknown
// names are keyed by ward.
func selectDatasets(names []string) []DatasetConfig {
	out := make([]DatasetConfig, 0, len(names))
	for _, name := range names {
		d := DatasetConfig{Name: name, UnitFields: []string{wardUnit}}
		for _, k := range knownDatasets {
			if k.Name == name {
				d = k
				break
			}
		}
		out = append(out, d)
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL must not be empty")
	}
	if cfg.Upstream.Parallelism < 1 {
		return fmt.Errorf("upstream parallelism must be at least 1")
	}
	seen := make(map[string]bool, len(cfg.Upstream.Datasets))
	for _, d := range cfg.Upstream.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset name must not be empty")
		}
		if seen[d.Name] {
			return fmt.Errorf("dataset %s is listed twice", d.Name)
		}
		seen[d.Name] = true
		if len(d.UnitFields) == 0 {
			return fmt.Errorf("dataset %s has no unit fields", d.Name)
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers must not be empty")
	}
	if cfg.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic must not be empty")
	}

	if cfg.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if cfg.HealthCheck.MaxRetries < 1 {
		return fmt.Errorf("health check retries must be at least 1")
	}
	return nil
}
