package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

// Localizer picks the response locale and the dataset titles.
type Localizer interface {
	Resolve(lang string) string
	Message(key, locale string, args map[string]string) string
}

type APIHandler struct {
	summaries ports.SummaryService
	reports   ports.ReportService
	records   ports.RecordService
	localizer Localizer
	version   string
	logger    logger.Logger
}

func NewAPIHandler(summaries ports.SummaryService, reports ports.ReportService, records ports.RecordService, localizer Localizer, version string, log logger.Logger) *APIHandler {
	return &APIHandler{
		summaries: summaries,
		reports:   reports,
		records:   records,
		localizer: localizer,
		version:   version,
		logger:    logger.ForComponent(log, "api_handler"),
	}
}

// ListDatasets godoc
// @Summary List datasets
// @Description Lists the datasets that can be summarized, with localized titles and stored record counts
// @Tags summaries
// @Produce json
// @Param lang query string false "Locale (ne, en)"
// @Success 200 {object} DatasetsResponse
// @Router /datasets [get]
func (h *APIHandler) ListDatasets(c *gin.Context) {
	locale := h.locale(c)
	names := h.summaries.Datasets()

	counts, err := h.records.Counts(c.Request.Context())
	if err != nil {
		h.logger.Warnf("Failed to count records: %v", err)
	}

	resp := DatasetsResponse{Locale: locale, Datasets: make([]DatasetInfo, 0, len(names))}
	for _, name := range names {
		resp.Datasets = append(resp.Datasets, DatasetInfo{
			Name:        name,
			Title:       h.localizer.Message(name+".title", locale, nil),
			Description: h.localizer.Message(name+".description", locale, nil),
			Records:     counts[name],
		})
	}
	c.Header("Content-Language", locale)
	c.JSON(http.StatusOK, resp)
}

// GetSummary godoc
// @Summary Summarize a dataset
// @Description Runs the summary pipeline over a dataset and returns table, chart, totals and narrative
// @Tags summaries
// @Produce json
// @Param dataset path string true "Dataset name"
// @Param lang query string false "Locale (ne, en)"
// @Success 200 {object} stats.Presentation
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /summaries/{dataset} [get]
func (h *APIHandler) GetSummary(c *gin.Context) {
	p, err := h.summaries.Summarize(c.Request.Context(), c.Param("dataset"), h.locale(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Language", p.Locale)
	c.JSON(http.StatusOK, p)
}

// GetStructuredData godoc
// @Summary Dataset JSON-LD
// @Description Returns the schema.org Dataset description of a summary for embedding in public pages
// @Tags summaries
// @Produce application/ld+json
// @Param dataset path string true "Dataset name"
// @Param lang query string false "Locale (ne, en)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /summaries/{dataset}/structured-data [get]
func (h *APIHandler) GetStructuredData(c *gin.Context) {
	p, err := h.summaries.Summarize(c.Request.Context(), c.Param("dataset"), h.locale(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Language", p.Locale)
	c.Render(http.StatusOK, jsonLD{data: p.StructuredData})
}

// GetChart godoc
// @Summary Dataset bar chart
// @Description Renders the chart series of a dataset as PNG
// @Tags summaries
// @Produce image/png
// @Param dataset path string true "Dataset name"
// @Success 200 {file} file PNG image
// @Failure 404 {object} ErrorResponse
// @Router /summaries/{dataset}/chart.png [get]
func (h *APIHandler) GetChart(c *gin.Context) {
	png, err := h.summaries.Chart(c.Request.Context(), c.Param("dataset"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GetLatestReport godoc
// @Summary Latest report of a dataset
// @Tags reports
// @Produce json
// @Param dataset path string true "Dataset name"
// @Param lang query string false "Locale (ne, en)"
// @Success 200 {object} ReportResponse
// @Failure 404 {object} ErrorResponse
// @Router /summaries/{dataset}/report [get]
func (h *APIHandler) GetLatestReport(c *gin.Context) {
	report, err := h.reports.Latest(c.Request.Context(), c.Param("dataset"), h.locale(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReportResponse(report))
}

// GenerateReport godoc
// @Summary Generate an Excel report
// @Description Builds a workbook for a dataset, stores it and returns its metadata
// @Tags reports
// @Produce json
// @Param dataset path string true "Dataset name"
// @Param lang query string false "Locale (ne, en)"
// @Success 201 {object} ReportResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/{dataset} [post]
func (h *APIHandler) GenerateReport(c *gin.Context) {
	report, err := h.reports.Generate(c.Request.Context(), c.Param("dataset"), h.locale(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", report.GetDownloadURL())
	c.JSON(http.StatusCreated, newReportResponse(report))
}

// GetReport godoc
// @Summary Report metadata
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (h *APIHandler) GetReport(c *gin.Context) {
	report, err := h.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReportResponse(report))
}

// DownloadReport godoc
// @Summary Download report by ID
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Report ID"
// @Success 200 {file} file Excel file
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/{id}/download [get]
func (h *APIHandler) DownloadReport(c *gin.Context) {
	reader, fileName, err := h.reports.DownloadReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Type", entities.ReportContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Errorf("Failed to stream report: %v", err)
	}
}

// ListRecords godoc
// @Summary List stored records of a dataset
// @Tags records
// @Produce json
// @Param dataset path string true "Dataset name"
// @Success 200 {object} RecordsResponse
// @Failure 404 {object} ErrorResponse
// @Router /records/{dataset} [get]
func (h *APIHandler) ListRecords(c *gin.Context) {
	dataset := c.Param("dataset")
	records, err := h.records.List(c.Request.Context(), dataset)
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []*entities.Record{}
	}
	c.JSON(http.StatusOK, RecordsResponse{Dataset: dataset, Count: len(records), Records: records})
}

// PutRecord godoc
// @Summary Create or replace a record
// @Tags records
// @Accept json
// @Produce json
// @Param dataset path string true "Dataset name"
// @Param unit path string true "Unit key, e.g. ward number or ward:category"
// @Param record body RecordRequest true "Record fields"
// @Success 200 {object} entities.Record
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /records/{dataset}/{unit} [put]
func (h *APIHandler) PutRecord(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	source := req.Source
	if source == "" {
		source = "admin"
	}
	event := entities.RecordEvent{
		Op: entities.OpUpsert,
		Record: entities.Record{
			Dataset:   c.Param("dataset"),
			UnitKey:   c.Param("unit"),
			Fields:    req.Fields,
			Source:    source,
			UpdatedAt: time.Now().UTC(),
		},
		EmittedAt: time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.records.Process(c.Request.Context(), event); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event.Record)
}

// DeleteRecord godoc
// @Summary Delete a record
// @Tags records
// @Param dataset path string true "Dataset name"
// @Param unit path string true "Unit key"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /records/{dataset}/{unit} [delete]
func (h *APIHandler) DeleteRecord(c *gin.Context) {
	event := entities.RecordEvent{
		Op:        entities.OpDelete,
		Record:    entities.Record{Dataset: c.Param("dataset"), UnitKey: c.Param("unit")},
		EmittedAt: time.Now().UTC(),
	}
	if err := h.records.Process(c.Request.Context(), event); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *APIHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	health := HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Time:     time.Now(),
		Services: map[string]string{"api": "healthy"},
	}
	check := func(name string, fn func() error) {
		if err := fn(); err != nil {
			health.Status = "degraded"
			health.Services[name] = fmt.Sprintf("unhealthy: %v", err)
			return
		}
		health.Services[name] = "healthy"
	}
	check("summaries", func() error { return h.summaries.HealthCheck(ctx) })
	check("reports", func() error { return h.reports.HealthCheck(ctx) })

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// locale takes ?lang first and then the first Accept-Language tag.
func (h *APIHandler) locale(c *gin.Context) string {
	lang := c.Query("lang")
	if lang == "" {
		header := c.GetHeader("Accept-Language")
		if i := strings.IndexAny(header, ",;"); i >= 0 {
			header = header[:i]
		}
		lang = strings.TrimSpace(header)
	}
	return h.localizer.Resolve(lang)
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	var verr entities.ValidationError
	switch {
	case errors.Is(err, entities.ErrUnknownDataset), errors.Is(err, entities.ErrNotFound):
		h.respondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		h.respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.respondError(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *APIHandler) respondError(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("HTTP %d: %s", status, message)
	} else {
		h.logger.Debugf("HTTP %d: %s", status, message)
	}
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

func newReportResponse(r entities.ReportEntity) ReportResponse {
	return ReportResponse{
		ID:          r.GetID(),
		Dataset:     r.GetDataset(),
		Locale:      r.GetLocale(),
		FileName:    r.GetFileName(),
		FileSize:    r.GetFileSize(),
		Checksum:    r.GetChecksum(),
		DownloadURL: r.GetDownloadURL(),
		GeneratedAt: r.GetGeneratedAt(),
		ExpiresAt:   r.GetExpiresAt(),
	}
}

type DatasetInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Records     int    `json:"records"`
}

type DatasetsResponse struct {
	Locale   string        `json:"locale"`
	Datasets []DatasetInfo `json:"datasets"`
}

type RecordRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
	Source string                 `json:"source"`
}

type RecordsResponse struct {
	Dataset string             `json:"dataset"`
	Count   int                `json:"count"`
	Records []*entities.Record `json:"records"`
}

type ReportResponse struct {
	ID          string     `json:"id"`
	Dataset     string     `json:"dataset"`
	Locale      string     `json:"locale"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	Checksum    string     `json:"checksum"`
	DownloadURL string     `json:"download_url,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Time     time.Time         `json:"time"`
	Services map[string]string `json:"services"`
}
