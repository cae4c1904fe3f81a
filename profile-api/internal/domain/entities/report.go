package entities

import (
	"time"
)

const ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportEntity interface {
	GetID() string
	GetDataset() string
	GetLocale() string
	GetFileName() string
	GetFileSize() int64
	GetStoragePath() string
	GetDownloadURL() string
	GetChecksum() string
	GetGeneratedAt() time.Time
	GetExpiresAt() *time.Time
	IsExpired(now time.Time) bool
}

type Report struct {
	ID          string     `json:"id" db:"id"`
	Dataset     string     `json:"dataset" db:"dataset"`
	Locale      string     `json:"locale" db:"locale"`
	FileName    string     `json:"file_name" db:"file_name"`
	FileSize    int64      `json:"file_size" db:"file_size"`
	StoragePath string     `json:"storage_path" db:"storage_path"`
	DownloadURL string     `json:"download_url,omitempty" db:"download_url"`
	Checksum    string     `json:"checksum" db:"checksum"`
	GeneratedAt time.Time  `json:"generated_at" db:"generated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

func (e *Report) GetID() string             { return e.ID }
func (e *Report) GetDataset() string        { return e.Dataset }
func (e *Report) GetLocale() string         { return e.Locale }
func (e *Report) GetFileName() string       { return e.FileName }
func (e *Report) GetFileSize() int64        { return e.FileSize }
func (e *Report) GetStoragePath() string    { return e.StoragePath }
func (e *Report) GetDownloadURL() string    { return e.DownloadURL }
func (e *Report) GetChecksum() string       { return e.Checksum }
func (e *Report) GetGeneratedAt() time.Time { return e.GeneratedAt }
func (e *Report) GetExpiresAt() *time.Time  { return e.ExpiresAt }

func (e *Report) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
