package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type MinioStorage struct {
	client *minio.Client
	logger logger.Logger
}

type MinioReportStorage struct {
	storage ports.Storage
	bucket  string
	logger  logger.Logger
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, log logger.Logger) (*MinioStorage, error) {
	log = logger.ForComponent(log, "minio_storage")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to list Minio buckets: %w", err)
	}

	log.Info("Minio storage initialized successfully")
	return &MinioStorage{
		client: client,
		logger: log,
	}, nil
}

func (m *MinioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	m.logger.Infof("Created bucket: %s", bucket)
	return nil
}

func (m *MinioStorage) Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) error {
	if err := m.EnsureBucket(ctx, bucket); err != nil {
		return err
	}

	_, err := m.client.PutObject(ctx, bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	m.logger.Debugf("Uploaded object to bucket: %s, key: %s", bucket, key)
	return nil
}

func (m *MinioStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	object, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}

	if _, err := object.Stat(); err != nil {
		object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s: %w", key, entities.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return object, nil
}

func (m *MinioStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (m *MinioStorage) HealthCheck(ctx context.Context) error {
	if _, err := m.client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("minio list buckets failed: %w", err)
	}
	return nil
}

func NewMinioReportStorage(storage ports.Storage, bucket string, log logger.Logger) *MinioReportStorage {
	return &MinioReportStorage{
		storage: storage,
		bucket:  bucket,
		logger:  logger.ForComponent(log, "minio_report_storage"),
	}
}

func (m *MinioReportStorage) UploadReport(ctx context.Context, report entities.ReportEntity, data io.Reader) error {
	key := StorageKey(report)
	if err := m.storage.Upload(ctx, m.bucket, key, data, report.GetFileSize(), entities.ReportContentType); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	m.logger.Infof("Uploaded report %s to Minio, key: %s", report.GetID(), key)
	return nil
}

func (m *MinioReportStorage) DownloadReport(ctx context.Context, report entities.ReportEntity) (io.ReadCloser, error) {
	return m.storage.Download(ctx, m.bucket, StorageKey(report))
}

func (m *MinioReportStorage) DeleteReport(ctx context.Context, report entities.ReportEntity) error {
	return m.storage.Delete(ctx, m.bucket, StorageKey(report))
}

func (m *MinioReportStorage) HealthCheck(ctx context.Context) error {
	return m.storage.HealthCheck(ctx)
}

// StorageKey prefers the path recorded with the report and falls back to
// dataset/locale/file.
func StorageKey(report entities.ReportEntity) string {
	if p := report.GetStoragePath(); p != "" {
		return p
	}
	return fmt.Sprintf("%s/%s/%s", report.GetDataset(), report.GetLocale(), report.GetFileName())
}
