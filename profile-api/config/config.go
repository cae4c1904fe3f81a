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
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Scheduler   SchedulerConfig
	Cache       CacheConfig
	Reports     ReportsConfig
	Chart       ChartConfig
	Labels      LabelsConfig
	API         APIConfig
	HealthCheck HealthCheckConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type PostgresConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConnections    int32         `mapstructure:"max_connections"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type SchedulerConfig struct {
	ReportGenerationInterval time.Duration `mapstructure:"report_generation_interval"`
	CleanupInterval          time.Duration `mapstructure:"cleanup_interval"`
	Timeout                  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	SummaryTTL time.Duration `mapstructure:"summary_ttl"`
	ReportTTL  time.Duration `mapstructure:"report_ttl"`
	LocalTTL   time.Duration `mapstructure:"local_ttl"`
}

type ReportsConfig struct {
	Retention         time.Duration `mapstructure:"retention"`
	Parallelism       int           `mapstructure:"parallelism"`
	RegenerateOnStart bool          `mapstructure:"regenerate_on_start"`
	Creator           string        `mapstructure:"creator"`
}

type ChartConfig struct {
	WidthInches  float64 `mapstructure:"width_inches"`
	HeightInches float64 `mapstructure:"height_inches"`
}

type LabelsConfig struct {
	// OverridePath points to a YAML file merged over the built-in labels.
	OverridePath string `mapstructure:"override_path"`
}

type APIConfig struct {
	BasePath           string        `mapstructure:"base_path"`
	EnableSwagger      bool          `mapstructure:"enable_swagger"`
	CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	RateLimit          int           `mapstructure:"rate_limit"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
	CacheMaxAge        time.Duration `mapstructure:"cache_max_age"`
	AdminToken         string        `mapstructure:"admin_token"`
}

type HealthCheckConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/profile-api/")

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

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "profile-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "30s")

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"kafka:9093"})
	v.SetDefault("kafka.topic", "profile-records")
	v.SetDefault("kafka.group_id", "profile-api-group")

	v.SetDefault("postgres.host", "postgres")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "profile_user")
	v.SetDefault("postgres.password", "profile_pass")
	v.SetDefault("postgres.database", "digital_profile")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_connections", 20)
	v.SetDefault("postgres.connection_timeout", "30s")

	v.SetDefault("redis.host", "redis")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("minio.endpoint", "minio:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "profile-reports")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("scheduler.report_generation_interval", "6h")
	v.SetDefault("scheduler.cleanup_interval", "24h")
	v.SetDefault("scheduler.timeout", "10m")

	v.SetDefault("cache.summary_ttl", "1h")
	v.SetDefault("cache.report_ttl", "24h")
	v.SetDefault("cache.local_ttl", "1m")

	v.SetDefault("reports.retention", "720h")
	v.SetDefault("reports.parallelism", 2)
	v.SetDefault("reports.regenerate_on_start", false)
	v.SetDefault("reports.creator", "Digital Profile")

	v.SetDefault("chart.width_inches", 8)
	v.SetDefault("chart.height_inches", 4.2)

	v.SetDefault("labels.override_path", "")

	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.enable_swagger", true)
	v.SetDefault("api.cors_allowed_origins", []string{"*"})
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.rate_limit_window", "1m")
	v.SetDefault("api.cache_max_age", "5m")
	v.SetDefault("api.admin_token", "")

	v.SetDefault("healthcheck.timeout", "10s")
	v.SetDefault("healthcheck.interval", "30s")
	v.SetDefault("healthcheck.startup_delay", "5s")
}

func overrideFromEnv(v *viper.Viper) {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", splitList(brokers))
	}
	if topic := os.Getenv("KAFKA_RECORDS_TOPIC"); topic != "" {
		v.Set("kafka.topic", topic)
	}
	if groupID := os.Getenv("KAFKA_GROUP_ID"); groupID != "" {
		v.Set("kafka.group_id", groupID)
	}

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		v.Set("postgres.host", host)
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		v.Set("postgres.user", user)
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		v.Set("postgres.password", password)
	}
	if database := os.Getenv("POSTGRES_DB"); database != "" {
		v.Set("postgres.database", database)
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("redis.host", host)
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		v.Set("redis.password", password)
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		v.Set("minio.endpoint", endpoint)
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		v.Set("minio.access_key", accessKey)
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		v.Set("minio.secret_key", secretKey)
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		v.Set("minio.bucket", bucket)
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("api.cors_allowed_origins", splitList(origins))
	}
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		v.Set("api.admin_token", token)
	}
	if path := os.Getenv("LABELS_OVERRIDE_PATH"); path != "" {
		v.Set("labels.override_path", path)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.Set("app.env", env)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("app.log_level", logLevel)
	}
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
	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers must not be empty")
		}
		if cfg.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic must not be empty")
		}
	}
	if cfg.Postgres.Host == "" {
		return fmt.Errorf("postgres host must not be empty")
	}
	if cfg.Postgres.User == "" {
		return fmt.Errorf("postgres user must not be empty")
	}
	if cfg.Redis.Host == "" {
		return fmt.Errorf("redis host must not be empty")
	}
	if cfg.Minio.Endpoint == "" {
		return fmt.Errorf("minio endpoint must not be empty")
	}
	if cfg.Minio.Bucket == "" {
		return fmt.Errorf("minio bucket must not be empty")
	}

	if cfg.Scheduler.ReportGenerationInterval <= 0 {
		return fmt.Errorf("report generation interval must be positive")
	}
	if cfg.Scheduler.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}
	if cfg.Cache.SummaryTTL <= 0 {
		return fmt.Errorf("summary cache TTL must be positive")
	}
	if cfg.Reports.Parallelism < 1 {
		return fmt.Errorf("report parallelism must be at least 1")
	}

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.API.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}
