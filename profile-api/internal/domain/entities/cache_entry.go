package entities

import (
	"time"
)

type CacheType string

const (
	CacheTypeSummary CacheType = "summary"
	CacheTypeReport  CacheType = "report"
	CacheTypeChart   CacheType = "chart"
)

type CacheEntity interface {
	GetID() string
	GetCacheKey() string
	GetCacheType() CacheType
	GetData() []byte
	GetContentType() string
	GetFileName() string
	GetExpiresAt() time.Time
	GetHitCount() int
	GetCreatedAt() time.Time
	GetLastAccessedAt() time.Time
	IsExpired() bool
}

type CacheEntry struct {
	ID             string    `json:"id"`
	CacheKey       string    `json:"cache_key"`
	CacheType      CacheType `json:"cache_type"`
	Data           []byte    `json:"data"`
	ContentType    string    `json:"content_type"`
	FileName       string    `json:"file_name,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	HitCount       int       `json:"hit_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

func (c *CacheEntry) GetID() string                { return c.ID }
func (c *CacheEntry) GetCacheKey() string          { return c.CacheKey }
func (c *CacheEntry) GetCacheType() CacheType      { return c.CacheType }
func (c *CacheEntry) GetData() []byte              { return c.Data }
func (c *CacheEntry) GetContentType() string       { return c.ContentType }
func (c *CacheEntry) GetFileName() string          { return c.FileName }
func (c *CacheEntry) GetExpiresAt() time.Time      { return c.ExpiresAt }
func (c *CacheEntry) GetHitCount() int             { return c.HitCount }
func (c *CacheEntry) GetCreatedAt() time.Time      { return c.CreatedAt }
func (c *CacheEntry) GetLastAccessedAt() time.Time { return c.LastAccessedAt }

func (c *CacheEntry) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}
