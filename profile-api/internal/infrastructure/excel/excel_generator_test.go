package excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/labels"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

func presentation(t *testing.T) *stats.Presentation {
	t.Helper()
	catalog, err := labels.Default()
	require.NoError(t, err)

	p := stats.SummarizeDemographics([]stats.Raw{
		{"ward_number": 1, "male_population": 40, "female_population": 60, "total_households": 20},
		{"ward_number": 2, "male_population": 100, "female_population": 100, "total_households": 40},
	}).Present(catalog, "en")
	return &p
}

func TestGenerateSummaryReport(t *testing.T) {
	gen := NewExcelGeneratorImpl("digital-profile", logger.Nop())
	p := presentation(t)

	data, err := gen.GenerateSummaryReport(context.Background(), p, ports.ReportText{
		SummarySheet:   "Summary",
		TotalsSheet:    "Totals",
		NarrativeSheet: "Narrative",
		GeneratedAt:    "Generated at: 2026-01-01",
	}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Totals", "Narrative"}, f.GetSheetList())

	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ward-wise demographics", title)

	header, _ := f.GetCellValue("Summary", "A5")
	assert.Equal(t, "Ward", header)
	firstWard, _ := f.GetCellValue("Summary", "A6")
	assert.Equal(t, "Ward 1", firstWard)

	label, _ := f.GetCellValue("Totals", "A2")
	assert.Equal(t, "Total population", label)
	total, _ := f.GetCellValue("Totals", "B2")
	assert.Equal(t, "300", total)

	narrative, _ := f.GetCellValue("Narrative", "A1")
	assert.Contains(t, narrative, "300")
}

func TestGenerateSummaryReportEmptyDataset(t *testing.T) {
	gen := NewExcelGeneratorImpl("digital-profile", logger.Nop())
	catalog, err := labels.Default()
	require.NoError(t, err)
	p := stats.SummarizeIrrigatedArea(nil).Present(catalog, "ne")

	data, err := gen.GenerateSummaryReport(context.Background(), &p, ports.ReportText{}, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Totals", "Narrative"}, f.GetSheetList())
}

func TestGenerateSummaryReportCancelled(t *testing.T) {
	gen := NewExcelGeneratorImpl("digital-profile", logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.GenerateSummaryReport(ctx, presentation(t), ports.ReportText{}, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Totals", sheetName("", "Totals"))
	assert.Equal(t, "सारांश", sheetName("सारांश", "Summary"))
	assert.Len(t, []rune(sheetName("a very long sheet name that excel would reject", "x")), 31)
}
