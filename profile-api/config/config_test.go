package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inDir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(original) })
}

func TestLoadDefaults(t *testing.T) {
	inDir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "profile-api", cfg.App.Name)
	assert.Equal(t, []string{"kafka:9093"}, cfg.Kafka.Brokers)
	assert.Equal(t, "profile-records", cfg.Kafka.Topic)
	assert.Equal(t, "postgres", cfg.Postgres.Host)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConnections)
	assert.Equal(t, time.Hour, cfg.Cache.SummaryTTL)
	assert.Equal(t, 720*time.Hour, cfg.Reports.Retention)
	assert.Equal(t, 2, cfg.Reports.Parallelism)
	assert.Equal(t, 8.0, cfg.Chart.WidthInches)
	assert.Equal(t, "/api/v1", cfg.API.BasePath)
	assert.Equal(t, []string{"*"}, cfg.API.CorsAllowedOrigins)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
app:
  name: "profile-api-test"
  env: "test"
  port: 9090
kafka:
  brokers: ["k1:9092", "k2:9092"]
postgres:
  host: "db"
cache:
  summary_ttl: "10m"
reports:
  parallelism: 4
labels:
  override_path: "/etc/profile-api/labels.yaml"
api:
  cors_allowed_origins: ["https://profile.example.gov.np"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	inDir(t, dir)

	t.Run("file values", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "profile-api-test", cfg.App.Name)
		assert.Equal(t, 9090, cfg.App.Port)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "db", cfg.Postgres.Host)
		assert.Equal(t, 10*time.Minute, cfg.Cache.SummaryTTL)
		assert.Equal(t, 4, cfg.Reports.Parallelism)
		assert.Equal(t, "/etc/profile-api/labels.yaml", cfg.Labels.OverridePath)
		assert.Equal(t, []string{"https://profile.example.gov.np"}, cfg.API.CorsAllowedOrigins)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "a:1, b:2")
		t.Setenv("POSTGRES_HOST", "pg.internal")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.np,https://b.np")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
		assert.Equal(t, "pg.internal", cfg.Postgres.Host)
		assert.Equal(t, []string{"https://a.np", "https://b.np"}, cfg.API.CorsAllowedOrigins)
	})
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [broken"), 0644))
	inDir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:       AppConfig{Port: 8080},
			Kafka:     KafkaConfig{Enabled: true, Brokers: []string{"k:9092"}, Topic: "t"},
			Postgres:  PostgresConfig{Host: "db", User: "u"},
			Redis:     RedisConfig{Host: "r"},
			Minio:     MinioConfig{Endpoint: "m:9000", Bucket: "b"},
			Scheduler: SchedulerConfig{ReportGenerationInterval: time.Hour, CleanupInterval: time.Hour},
			Cache:     CacheConfig{SummaryTTL: time.Minute},
			Reports:   ReportsConfig{Parallelism: 1},
			API:       APIConfig{RateLimit: 10},
		}
	}
	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no brokers", func(c *Config) { c.Kafka.Brokers = nil }, "kafka brokers"},
		{"no topic", func(c *Config) { c.Kafka.Topic = "" }, "kafka topic"},
		{"no postgres host", func(c *Config) { c.Postgres.Host = "" }, "postgres host"},
		{"no bucket", func(c *Config) { c.Minio.Bucket = "" }, "minio bucket"},
		{"zero interval", func(c *Config) { c.Scheduler.CleanupInterval = 0 }, "cleanup interval"},
		{"zero parallelism", func(c *Config) { c.Reports.Parallelism = 0 }, "parallelism"},
		{"bad port", func(c *Config) { c.App.Port = 70000 }, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("kafka disabled skips kafka checks", func(t *testing.T) {
		cfg := valid()
		cfg.Kafka = KafkaConfig{Enabled: false}
		assert.NoError(t, validateConfig(cfg))
	})
}
