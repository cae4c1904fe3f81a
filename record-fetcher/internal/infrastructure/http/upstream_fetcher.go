package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

const sourceName = "upstream"

type UpstreamFetcher struct {
	client     *http.Client
	baseURL    string
	token      string
	healthPath string
	unitFields map[string][]string
	logger     logger.Logger
	now        func() time.Time
}

type FetcherOptions struct {
	BaseURL    string
	Token      string
	HealthPath string
	Timeout    time.Duration
	// UnitFields maps each dataset to the row fields forming its unit key.
	UnitFields map[string][]string
}

func NewUpstreamFetcher(opts FetcherOptions, log logger.Logger) *UpstreamFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/health"
	}
	return &UpstreamFetcher{
		client:     &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		healthPath: opts.HealthPath,
		unitFields: opts.UnitFields,
		logger:     logger.ForComponent(log, "upstream_fetcher"),
		now:        time.Now,
	}
}

// envelope covers upstreams that wrap the rows, {"data": [...]}.
type envelope struct {
	Data []map[string]interface{} `json:"data"`
}

func (f *UpstreamFetcher) Fetch(ctx context.Context, dataset string) ([]entities.RecordEvent, error) {
	fields, ok := f.unitFields[dataset]
	if !ok {
		return nil, fmt.Errorf("dataset %s is not configured", dataset)
	}

	f.logger.Debugf("Fetching dataset %s", dataset)
	body, err := f.get(ctx, f.baseURL+"/"+url.PathEscape(dataset))
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", dataset, err)
	}

	now := f.now().UTC()
	events := make([]entities.RecordEvent, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		unit, err := entities.UnitKey(row, fields)
		if err != nil {
			f.logger.Warnf("Skipping %s row %d: %v", dataset, i, err)
			skipped++
			continue
		}
		events = append(events, entities.RecordEvent{
			Op: entities.OpUpsert,
			Record: entities.Record{
				Dataset:   dataset,
				UnitKey:   unit,
				Fields:    row,
				Source:    sourceName,
				UpdatedAt: now,
			},
			EmittedAt: now,
		})
	}

	f.logger.WithFields(map[string]interface{}{
		"dataset": dataset,
		"rows":    len(rows),
		"skipped": skipped,
	}).Info("Fetched upstream dataset")
	return events, nil
}

func (f *UpstreamFetcher) HealthCheck(ctx context.Context) error {
	if _, err := f.get(ctx, f.baseURL+f.healthPath); err != nil {
		return fmt.Errorf("upstream health check failed: %w", err)
	}
	return nil
}

func (f *UpstreamFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func decodeRows(body []byte) ([]map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		return env.Data, nil
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
