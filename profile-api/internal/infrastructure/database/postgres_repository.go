package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile_records (
	id          UUID PRIMARY KEY,
	dataset     TEXT NOT NULL,
	unit_key    TEXT NOT NULL,
	fields      JSONB NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (dataset, unit_key)
);

CREATE TABLE IF NOT EXISTS profile_reports (
	id            UUID PRIMARY KEY,
	dataset       TEXT NOT NULL,
	locale        TEXT NOT NULL,
	file_name     TEXT NOT NULL,
	file_size     BIGINT NOT NULL,
	storage_path  TEXT NOT NULL,
	download_url  TEXT NOT NULL DEFAULT '',
	checksum      TEXT NOT NULL,
	generated_at  TIMESTAMPTZ NOT NULL,
	expires_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_profile_reports_dataset_locale
	ON profile_reports (dataset, locale, generated_at DESC);
`

type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

func (o Options) connString() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		o.User, o.Password, o.Host, o.Port, o.Database, sslMode)
}

// NewPool opens and pings a pool shared by both repositories.
func NewPool(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return pool, nil
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

type PostgresRecordRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresRecordRepository(pool *pgxpool.Pool, log logger.Logger) *PostgresRecordRepository {
	return &PostgresRecordRepository{
		pool:   pool,
		logger: logger.ForComponent(log, "postgres_record_repository"),
	}
}

// Upsert keys on (dataset, unit_key); the stored id of an existing row is kept.
func (r *PostgresRecordRepository) Upsert(ctx context.Context, record *entities.Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	query := `
		INSERT INTO profile_records (id, dataset, unit_key, fields, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dataset, unit_key) DO UPDATE SET
			fields = EXCLUDED.fields,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.Dataset,
		record.UnitKey,
		record.Fields,
		record.Source,
		now,
		record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s/%s: %w", record.Dataset, record.UnitKey, err)
	}
	return nil
}

func (r *PostgresRecordRepository) Delete(ctx context.Context, dataset, unitKey string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM profile_records WHERE dataset = $1 AND unit_key = $2`, dataset, unitKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete record %s/%s: %w", dataset, unitKey, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByDataset orders numeric unit keys naturally (2 before 10).
func (r *PostgresRecordRepository) ListByDataset(ctx context.Context, dataset string) ([]*entities.Record, error) {
	query := `
		SELECT id, dataset, unit_key, fields, source, created_at, updated_at
		FROM profile_records
		WHERE dataset = $1
		ORDER BY length(unit_key), unit_key
	`

	rows, err := r.pool.Query(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var results []*entities.Record
	for rows.Next() {
		var rec entities.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Dataset,
			&rec.UnitKey,
			&rec.Fields,
			&rec.Source,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		results = append(results, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return results, nil
}

func (r *PostgresRecordRepository) CountByDataset(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT dataset, COUNT(*) FROM profile_records GROUP BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dataset string
		var n int
		if err := rows.Scan(&dataset, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[dataset] = n
	}
	return counts, rows.Err()
}

func (r *PostgresRecordRepository) HealthCheck(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (r *PostgresRecordRepository) Close() error {
	r.logger.Info("Closing postgres pool...")
	r.pool.Close()
	return nil
}

type PostgresReportRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresReportRepository(pool *pgxpool.Pool, log logger.Logger) *PostgresReportRepository {
	return &PostgresReportRepository{
		pool:   pool,
		logger: logger.ForComponent(log, "postgres_report_repository"),
	}
}

const reportColumns = `id, dataset, locale, file_name, file_size, storage_path,
	download_url, checksum, generated_at, expires_at`

func (r *PostgresReportRepository) SaveReport(ctx context.Context, report entities.ReportEntity) error {
	query := `INSERT INTO profile_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		report.GetID(),
		report.GetDataset(),
		report.GetLocale(),
		report.GetFileName(),
		report.GetFileSize(),
		report.GetStoragePath(),
		report.GetDownloadURL(),
		report.GetChecksum(),
		report.GetGeneratedAt(),
		report.GetExpiresAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.GetID(), err)
	}
	return nil
}

func (r *PostgresReportRepository) FindReportByID(ctx context.Context, reportID string) (entities.ReportEntity, error) {
	if _, err := uuid.Parse(reportID); err != nil {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM profile_reports WHERE id = $1`, reportID)
	return scanReport(row)
}

func (r *PostgresReportRepository) FindLatestReport(ctx context.Context, dataset, locale string) (entities.ReportEntity, error) {
	query := `SELECT ` + reportColumns + ` FROM profile_reports
		WHERE dataset = $1 AND locale = $2
		ORDER BY generated_at DESC
		LIMIT 1`
	return scanReport(r.pool.QueryRow(ctx, query, dataset, locale))
}

func (r *PostgresReportRepository) DeleteExpiredReports(ctx context.Context, now time.Time) ([]entities.ReportEntity, error) {
	query := `DELETE FROM profile_reports WHERE expires_at IS NOT NULL AND expires_at < $1
		RETURNING ` + reportColumns

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired reports: %w", err)
	}
	defer rows.Close()

	var deleted []entities.ReportEntity
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, rep)
	}
	return deleted, rows.Err()
}

func (r *PostgresReportRepository) HealthCheck(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanReport(row pgx.Row) (entities.ReportEntity, error) {
	var report entities.Report
	err := row.Scan(
		&report.ID,
		&report.Dataset,
		&report.Locale,
		&report.FileName,
		&report.FileSize,
		&report.StoragePath,
		&report.DownloadURL,
		&report.Checksum,
		&report.GeneratedAt,
		&report.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	return &report, nil
}
